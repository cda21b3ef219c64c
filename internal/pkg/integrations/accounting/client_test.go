package accounting

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karage/integrations/internal/pkg/tokencache"
)

type providerStub struct {
	logins       int
	entityCalls  int
	validTokens  map[string]bool
	issueToken   func(n int) string
	rejectTokens bool
}

func newProviderStub() *providerStub {
	return &providerStub{
		validTokens: map[string]bool{},
		issueToken: func(n int) string {
			return "bearer-" + string(rune('a'+n))
		},
	}
}

func (s *providerStub) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/login" {
			tok := s.issueToken(s.logins)
			s.logins++
			s.validTokens[tok] = true
			json.NewEncoder(w).Encode(loginResponse{Token: tok})
			return
		}

		s.entityCalls++
		auth := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if s.rejectTokens || auth == "" || !s.validTokens[auth] {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"id": 991})
	}
}

func newTestAccountingClient(baseURL string, tokens tokencache.Cache) *Client {
	return &Client{
		BaseURL:    baseURL,
		Email:      "sync@karage.app",
		Password:   "secret",
		Tokens:     tokens,
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func TestClientLogsInOnceWhileTokenIsCached(t *testing.T) {
	stub := newProviderStub()
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	client := newTestAccountingClient(srv.URL, tokencache.NewMemoryCache())
	ctx := context.Background()

	id, err := client.EnsureUnit(ctx, UnitPayload{Name: "Kilogram", ShortName: "kg"})
	require.NoError(t, err)
	assert.Equal(t, "991", id)

	_, err = client.EnsureCategory(ctx, CategoryPayload{Name: "Beverages"})
	require.NoError(t, err)

	assert.Equal(t, 1, stub.logins, "second call must reuse the cached token")
}

func TestClientRefreshesTokenOnUnauthorized(t *testing.T) {
	stub := newProviderStub()
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	tokens := tokencache.NewMemoryCache()
	ctx := context.Background()

	// Seed a token the provider no longer accepts.
	require.NoError(t, tokens.Put(ctx, tokenCacheKey, "stale-token", time.Hour))

	client := newTestAccountingClient(srv.URL, tokens)
	id, err := client.EnsureSupplier(ctx, SupplierPayload{Name: "Acme Trading"})
	require.NoError(t, err)
	assert.Equal(t, "991", id)
	assert.Equal(t, 1, stub.logins, "a rejected token must trigger exactly one re-login")
	assert.Equal(t, 2, stub.entityCalls)
}

func TestClientGivesUpWhenTokenIsRejectedTwice(t *testing.T) {
	stub := newProviderStub()
	stub.rejectTokens = true
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	client := newTestAccountingClient(srv.URL, tokencache.NewMemoryCache())
	_, err := client.PushBill(context.Background(), BillPayload{Reference: "ORD-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token rejected twice")
}

func TestClientSurfacesProviderRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/login" {
			json.NewEncoder(w).Encode(loginResponse{Token: "tok"})
			return
		}
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]any{"message": "duplicate sku"})
	}))
	defer srv.Close()

	client := newTestAccountingClient(srv.URL, tokencache.NewMemoryCache())
	_, err := client.EnsureProduct(context.Background(), ProductPayload{Name: "Water", SKU: "W-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate sku")
}
