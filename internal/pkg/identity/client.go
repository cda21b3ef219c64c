// Package identity wraps the upstream Karage identity API used to validate
// merchant session tokens.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/karage/integrations/internal/pkg/env"
)

const defaultBaseURL = "https://identity.karage.app/api"

type Client struct {
	BaseURL string
	APIKey  string

	HTTPClient *http.Client
}

type validateRequest struct {
	UserID int    `json:"UserId"`
	Token  string `json:"Token"`
}

type validateResponse struct {
	Status   string         `json:"Status"`
	Sessions []LoginSession `json:"Sessions"`
}

// LoginSession is one active session record reported by the identity API.
type LoginSession struct {
	Token       string `json:"Token"`
	UserID      uint   `json:"UserId"`
	LocationID  uint   `json:"LocationId"`
	CompanyCode string `json:"CompanyCode"`
}

// ErrSessionRejected is returned when the identity API answers but does not
// confirm the session (bad status, empty session list).
var ErrSessionRejected = errors.New("identity: session rejected by upstream")

// NewClientFromEnv creates an identity client configured from the environment.
func NewClientFromEnv() *Client {
	return &Client{
		BaseURL: strings.TrimRight(env.GetEnv("IDENTITY_API_BASE_URL", defaultBaseURL), "/"),
		APIKey:  strings.TrimSpace(env.GetEnv("IDENTITY_API_KEY", "")),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// ValidateSession asks the identity API whether token is an active session
// for userID. On success it returns the session matching the presented
// token, falling back to the first session the upstream reports.
// ErrSessionRejected means the upstream answered with a rejection; any other
// error is a transport or decoding failure.
func (c *Client) ValidateSession(ctx context.Context, userID uint, token string) (*LoginSession, error) {
	body, err := json.Marshal(validateRequest{UserID: int(userID), Token: token})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/sessions/validate", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("X-API-Key", c.APIKey)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity: session validation call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrSessionRejected
	}

	var parsed validateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, ErrSessionRejected
	}
	if !strings.EqualFold(parsed.Status, "success") || len(parsed.Sessions) == 0 {
		return nil, ErrSessionRejected
	}

	for i := range parsed.Sessions {
		if parsed.Sessions[i].Token == token {
			return &parsed.Sessions[i], nil
		}
	}
	return &parsed.Sessions[0], nil
}
