package controllers

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeOTPStore is an in-memory OTPStore for handler tests.
type fakeOTPStore struct {
	values map[string]string
}

func newFakeOTPStore() *fakeOTPStore {
	return &fakeOTPStore{values: make(map[string]string)}
}

func (s *fakeOTPStore) Set(key, value string, _ time.Duration) error {
	s.values[key] = value
	return nil
}

func (s *fakeOTPStore) Get(key string) (string, error) {
	value, ok := s.values[key]
	if !ok {
		return "", errors.New("missing key")
	}
	return value, nil
}

func (s *fakeOTPStore) Delete(key string) error {
	delete(s.values, key)
	return nil
}

func TestGenerateOTP(t *testing.T) {
	t.Parallel()

	for i := 0; i < 50; i++ {
		code, err := generateOTP(otpDigits)
		require.NoError(t, err)
		assert.Len(t, code, otpDigits)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9', "OTP must be digits only, got %q", code)
		}
	}
}

func TestOTPCacheKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "otp:+966501234567", otpCacheKey("+966501234567"))
}

func TestVerifyOTPConsumesCodeOnSuccess(t *testing.T) {
	store := newFakeOTPStore()
	require.NoError(t, store.Set(otpCacheKey("+966500000001"), "123456", otpTTL))

	sc := &SmsController{codes: store}
	app := fiber.New()
	app.Post("/otp/verify", resolvedPrincipal, sc.HandleVerifyOTP)

	verify := func(code string) int {
		body := `{"Phone":"+966500000001","Code":"` + code + `"}`
		req := httptest.NewRequest("POST", "/otp/verify", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, fiber.StatusOK, verify("123456"))
	assert.Empty(t, store.values, "a matching code must be consumed")
	assert.Equal(t, fiber.StatusUnauthorized, verify("123456"), "a consumed code must not verify again")
}

func TestVerifyOTPWrongCodeDoesNotConsume(t *testing.T) {
	store := newFakeOTPStore()
	require.NoError(t, store.Set(otpCacheKey("+966500000002"), "654321", otpTTL))

	sc := &SmsController{codes: store}
	app := fiber.New()
	app.Post("/otp/verify", resolvedPrincipal, sc.HandleVerifyOTP)

	req := httptest.NewRequest("POST", "/otp/verify", strings.NewReader(`{"Phone":"+966500000002","Code":"000000"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	stored, err := store.Get(otpCacheKey("+966500000002"))
	require.NoError(t, err)
	assert.Equal(t, "654321", stored, "a failed attempt must leave the code in place")
}
