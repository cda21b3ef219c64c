package controllers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karage/integrations/internal/pkg/middleware"
)

func TestSignConfirmTokenRoundTrip(t *testing.T) {
	t.Parallel()

	token, err := signConfirmToken(42, "link-secret")
	require.NoError(t, err)

	customerID, ok := middleware.VerifyCustomerToken(token, "link-secret")
	assert.True(t, ok)
	assert.Equal(t, uint(42), customerID)
}

func TestSignConfirmTokenRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	token, err := signConfirmToken(42, "link-secret")
	require.NoError(t, err)

	_, ok := middleware.VerifyCustomerToken(token, "other-secret")
	assert.False(t, ok)
}
