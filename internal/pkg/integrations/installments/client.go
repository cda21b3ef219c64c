// Package installments wraps the installment-payment provider API.
package installments

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

const defaultBaseURL = "https://api.installpay.sa/v2"

type Client struct {
	BaseURL    string
	MerchantID string
	SecretKey  string

	HTTPClient *http.Client
}

// CheckoutRequest describes the checkout session to open for an order.
type CheckoutRequest struct {
	OrderReference string  `json:"order_reference"`
	Amount         float64 `json:"amount"`
	Currency       string  `json:"currency"`
	CustomerPhone  string  `json:"customer_phone"`
	SuccessURL     string  `json:"success_url"`
	CancelURL      string  `json:"cancel_url"`
}

// CheckoutResult is the provider's view of a created checkout session.
type CheckoutResult struct {
	CheckoutID  string `json:"checkout_id"`
	PaymentURL  string `json:"payment_url"`
	ExpiresAtTS int64  `json:"expires_at"`
}

type checkoutResponse struct {
	Status   string          `json:"status"`
	Checkout *CheckoutResult `json:"checkout"`
	Message  string          `json:"message"`
}

// NewClientFromEnv creates an installments client configured from the
// environment. The provider uses Basic auth with merchant ID and secret.
func NewClientFromEnv() *Client {
	return &Client{
		BaseURL:    strings.TrimRight(env.GetEnv("INSTALLMENTS_API_BASE_URL", defaultBaseURL), "/"),
		MerchantID: strings.TrimSpace(env.GetEnv("INSTALLMENTS_MERCHANT_ID", "")),
		SecretKey:  strings.TrimSpace(env.GetEnv("INSTALLMENTS_SECRET_KEY", "")),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// CreateCheckout opens an installment checkout session. Nil means failure;
// the provider's message is logged for the operator.
func (c *Client) CreateCheckout(ctx context.Context, req CheckoutRequest) *CheckoutResult {
	body, err := json.Marshal(req)
	if err != nil {
		return nil
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/checkouts", bytes.NewReader(body))
	if err != nil {
		return nil
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(c.MerchantID, c.SecretKey)

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		log.Printf("installments: checkout call failed: %v", err)
		return nil
	}
	defer resp.Body.Close()

	var parsed checkoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		log.Printf("installments: failed to decode checkout response: %v", err)
		return nil
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		log.Printf("installments: checkout rejected (%d): %s", resp.StatusCode, parsed.Message)
		return nil
	}
	if !strings.EqualFold(parsed.Status, "created") || parsed.Checkout == nil || parsed.Checkout.CheckoutID == "" {
		log.Printf("installments: checkout returned no session: %s", parsed.Message)
		return nil
	}
	return parsed.Checkout
}
