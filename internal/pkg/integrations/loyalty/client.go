// Package loyalty wraps the wallet-card loyalty provider API.
package loyalty

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/karage/integrations/internal/pkg/env"
)

const defaultBaseURL = "https://api.walletcards.io/v1"

type Client struct {
	BaseURL string
	APIKey  string

	HTTPClient *http.Client
}

// CardRequest describes the loyalty card to create for a customer.
type CardRequest struct {
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	Reference     string `json:"reference"`
}

// CardResult is the provider's view of a created card.
type CardResult struct {
	CardID     string `json:"card_id"`
	InstallURL string `json:"install_url"`
}

type cardResponse struct {
	Success bool        `json:"success"`
	Card    *CardResult `json:"card"`
	Message string      `json:"message"`
}

// NewClientFromEnv creates a loyalty client configured from the environment.
func NewClientFromEnv() *Client {
	return &Client{
		BaseURL: strings.TrimRight(env.GetEnv("LOYALTY_API_BASE_URL", defaultBaseURL), "/"),
		APIKey:  strings.TrimSpace(env.GetEnv("LOYALTY_API_KEY", "")),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// CreateCard registers a wallet card for a customer. A nil result is the
// only failure signal callers should act on; the provider's error payload
// is logged, not returned.
func (c *Client) CreateCard(ctx context.Context, req CardRequest) *CardResult {
	body, err := json.Marshal(req)
	if err != nil {
		return nil
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/cards", bytes.NewReader(body))
	if err != nil {
		return nil
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-API-Key", c.APIKey)

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		log.Printf("loyalty: card creation call failed: %v", err)
		return nil
	}
	defer resp.Body.Close()

	var parsed cardResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		log.Printf("loyalty: failed to decode card response: %v", err)
		return nil
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		log.Printf("loyalty: card creation rejected (%d): %s", resp.StatusCode, parsed.Message)
		return nil
	}
	if !parsed.Success || parsed.Card == nil || parsed.Card.CardID == "" {
		log.Printf("loyalty: card creation returned no card: %s", parsed.Message)
		return nil
	}
	return parsed.Card
}
