// Package esign wraps the e-signature provider API.
package esign

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

const defaultBaseURL = "https://api.signbox.dev/v1"

type Client struct {
	BaseURL   string
	AccessKey string

	HTTPClient *http.Client
}

// SignatureRequest describes a contract signature request for an order.
type SignatureRequest struct {
	Reference     string `json:"reference"`
	SignerName    string `json:"signer_name"`
	SignerPhone   string `json:"signer_phone"`
	DocumentTitle string `json:"document_title"`
	CallbackURL   string `json:"callback_url"`
}

// SignatureResult is the provider's view of an opened signature request.
type SignatureResult struct {
	RequestID string `json:"request_id"`
	SignURL   string `json:"sign_url"`
}

type signatureResponse struct {
	Success bool             `json:"success"`
	Request *SignatureResult `json:"request"`
	Message string           `json:"message"`
}

// NewClientFromEnv creates an e-sign client configured from the environment.
func NewClientFromEnv() *Client {
	return &Client{
		BaseURL:   strings.TrimRight(env.GetEnv("ESIGN_API_BASE_URL", defaultBaseURL), "/"),
		AccessKey: strings.TrimSpace(env.GetEnv("ESIGN_ACCESS_KEY", "")),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// CreateSignatureRequest opens a signature request. Nil means failure.
func (c *Client) CreateSignatureRequest(ctx context.Context, req SignatureRequest) *SignatureResult {
	body, err := json.Marshal(req)
	if err != nil {
		return nil
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/requests", bytes.NewReader(body))
	if err != nil {
		return nil
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.AccessKey)

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		log.Printf("esign: signature request call failed: %v", err)
		return nil
	}
	defer resp.Body.Close()

	var parsed signatureResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		log.Printf("esign: failed to decode signature response: %v", err)
		return nil
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		log.Printf("esign: signature request rejected (%d): %s", resp.StatusCode, parsed.Message)
		return nil
	}
	if !parsed.Success || parsed.Request == nil || parsed.Request.RequestID == "" {
		log.Printf("esign: signature request returned no id: %s", parsed.Message)
		return nil
	}
	return parsed.Request
}
