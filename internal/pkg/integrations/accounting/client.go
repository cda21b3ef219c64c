// Package accounting wraps the accounting provider used for unit-of-measure
// and catalog synchronization. The provider requires a bearer token from its
// login endpoint; tokens are cached for an hour and refreshed transparently.
package accounting

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/karage/integrations/internal/pkg/env"
	"github.com/karage/integrations/internal/pkg/tokencache"
)

const (
	defaultBaseURL = "https://api.ledgerly.sa/v1"

	tokenCacheKey = "accounting_bearer"
	tokenTTL      = time.Hour
)

type Client struct {
	BaseURL  string
	Email    string
	Password string

	Tokens     tokencache.Cache
	HTTPClient *http.Client
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type entityResponse struct {
	ID      json.Number `json:"id"`
	Message string      `json:"message"`
}

// NewClientFromEnv creates an accounting client configured from the
// environment, with an injected token cache.
func NewClientFromEnv(tokens tokencache.Cache) *Client {
	return &Client{
		BaseURL:  strings.TrimRight(env.GetEnv("ACCOUNTING_API_BASE_URL", defaultBaseURL), "/"),
		Email:    strings.TrimSpace(env.GetEnv("ACCOUNTING_API_EMAIL", "")),
		Password: env.GetEnv("ACCOUNTING_API_PASSWORD", ""),
		Tokens:   tokens,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *Client) token(ctx context.Context, force bool) (string, error) {
	if !force {
		if tok, ok := c.Tokens.Get(ctx, tokenCacheKey); ok {
			return tok, nil
		}
	}

	body, err := json.Marshal(loginRequest{Email: c.Email, Password: c.Password})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("accounting: login call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("accounting: login rejected with status %d", resp.StatusCode)
	}
	var parsed loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil || parsed.Token == "" {
		return "", errors.New("accounting: login returned no token")
	}

	if err := c.Tokens.Put(ctx, tokenCacheKey, parsed.Token, tokenTTL); err != nil {
		log.Printf("accounting: failed to cache bearer token: %v", err)
	}
	return parsed.Token, nil
}

// post sends an authenticated request, retrying once with a fresh token when
// the provider reports the cached one expired.
func (c *Client) post(ctx context.Context, path string, payload any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	force := false
	for attempt := 0; attempt < 2; attempt++ {
		tok, err := c.token(ctx, force)
		if err != nil {
			return "", err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
		if err != nil {
			return "", err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+tok)

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			return "", fmt.Errorf("accounting: call to %s failed: %w", path, err)
		}

		if resp.StatusCode == http.StatusUnauthorized {
			resp.Body.Close()
			_ = c.Tokens.Invalidate(ctx, tokenCacheKey)
			force = true
			continue
		}

		var parsed entityResponse
		decodeErr := json.NewDecoder(resp.Body).Decode(&parsed)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
			return "", fmt.Errorf("accounting: %s rejected (%d): %s", path, resp.StatusCode, parsed.Message)
		}
		if decodeErr != nil || parsed.ID.String() == "" {
			return "", fmt.Errorf("accounting: %s returned no entity id", path)
		}
		return parsed.ID.String(), nil
	}

	return "", errors.New("accounting: token rejected twice, giving up")
}

// UnitPayload mirrors the provider's unit-of-measure schema.
type UnitPayload struct {
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
}

// EnsureUnit creates a unit of measure and returns its external ID.
func (c *Client) EnsureUnit(ctx context.Context, p UnitPayload) (string, error) {
	return c.post(ctx, "/units", p)
}

type CategoryPayload struct {
	Name string `json:"name"`
}

func (c *Client) EnsureCategory(ctx context.Context, p CategoryPayload) (string, error) {
	return c.post(ctx, "/categories", p)
}

type SupplierPayload struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	TaxNumber string `json:"tax_number"`
}

func (c *Client) EnsureSupplier(ctx context.Context, p SupplierPayload) (string, error) {
	return c.post(ctx, "/suppliers", p)
}

type ProductPayload struct {
	Name       string  `json:"name"`
	SKU        string  `json:"sku"`
	Price      float64 `json:"price"`
	UnitID     string  `json:"unit_id"`
	CategoryID string  `json:"category_id"`
}

func (c *Client) EnsureProduct(ctx context.Context, p ProductPayload) (string, error) {
	return c.post(ctx, "/products", p)
}

type BillLine struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

type BillPayload struct {
	Reference string     `json:"reference"`
	IssuedAt  string     `json:"issued_at"`
	Lines     []BillLine `json:"lines"`
}

// PushBill records a sales bill and returns its external ID.
func (c *Client) PushBill(ctx context.Context, p BillPayload) (string, error) {
	return c.post(ctx, "/bills", p)
}
