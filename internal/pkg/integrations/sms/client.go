// Package sms wraps the SMS gateway used for OTP delivery.
package sms

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

const defaultBaseURL = "https://sms.gateway.sa/api"

type Client struct {
	BaseURL string
	APIKey  string
	Sender  string

	HTTPClient *http.Client
}

type sendRequest struct {
	APIKey  string `json:"api_key"`
	Sender  string `json:"sender"`
	To      string `json:"to"`
	Message string `json:"message"`
}

// SendResult reports a queued SMS message.
type SendResult struct {
	MessageID string `json:"message_id"`
}

type sendResponse struct {
	Status    string `json:"status"`
	MessageID string `json:"message_id"`
	Message   string `json:"message"`
}

// NewClientFromEnv creates an SMS client configured from the environment.
// This gateway takes its API key in the request body rather than a header.
func NewClientFromEnv() *Client {
	return &Client{
		BaseURL: strings.TrimRight(env.GetEnv("SMS_API_BASE_URL", defaultBaseURL), "/"),
		APIKey:  strings.TrimSpace(env.GetEnv("SMS_API_KEY", "")),
		Sender:  strings.TrimSpace(env.GetEnv("SMS_SENDER_NAME", "KARAGE")),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// SendMessage queues one SMS. Nil means the gateway did not accept it.
func (c *Client) SendMessage(ctx context.Context, to, message string) *SendResult {
	body, err := json.Marshal(sendRequest{
		APIKey:  c.APIKey,
		Sender:  c.Sender,
		To:      to,
		Message: message,
	})
	if err != nil {
		return nil
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return nil
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		log.Printf("sms: send call failed: %v", err)
		return nil
	}
	defer resp.Body.Close()

	var parsed sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		log.Printf("sms: failed to decode send response: %v", err)
		return nil
	}
	if resp.StatusCode != http.StatusOK || !strings.EqualFold(parsed.Status, "queued") {
		log.Printf("sms: send rejected (%d): %s", resp.StatusCode, parsed.Message)
		return nil
	}
	return &SendResult{MessageID: parsed.MessageID}
}
