package loyalty

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		APIKey:     "loyalty-key",
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func TestCreateCardSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cards", r.URL.Path)
		assert.Equal(t, "loyalty-key", r.Header.Get("X-API-Key"))

		var req CardRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Dana", req.CustomerName)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(cardResponse{
			Success: true,
			Card:    &CardResult{CardID: "card-77", InstallURL: "https://wallet/card-77"},
		})
	}))
	defer srv.Close()

	result := newTestClient(srv.URL).CreateCard(context.Background(), CardRequest{CustomerName: "Dana", CustomerPhone: "+966500000000"})
	require.NotNil(t, result)
	assert.Equal(t, "card-77", result.CardID)
	assert.Equal(t, "https://wallet/card-77", result.InstallURL)
}

func TestCreateCardFailuresReturnNil(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "provider rejection",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnprocessableEntity)
				json.NewEncoder(w).Encode(cardResponse{Success: false, Message: "phone already enrolled"})
			},
		},
		{
			name: "success flag without card",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(cardResponse{Success: true})
			},
		},
		{
			name: "malformed payload",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("not json"))
			},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			result := newTestClient(srv.URL).CreateCard(context.Background(), CardRequest{CustomerName: "Dana"})
			assert.Nil(t, result)
		})
	}
}
