package service

import (
	"context"
	"testing"
	"time"

	"github.com/fairpricelabs/fairprice/internal/clock"
	"github.com/fairpricelabs/fairprice/internal/config"
	"github.com/fairpricelabs/fairprice/internal/identity/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tokenNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func newVerifier(secret string) domain.Verifier {
	return NewTokenVerifier(TokenVerifierParams{
		Config: config.Config{Auth: config.AuthConfig{TokenSecret: secret}},
		Clock:  clock.Fixed{T: tokenNow},
	})
}

func TestVerifyAcceptsSignedToken(t *testing.T) {
	v := newVerifier("secret-key")
	token := SignToken("secret-key", "user_1", tokenNow.Add(time.Hour).Unix())

	owner, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user_1", owner)
}

func TestVerifyAcceptsNoExpiry(t *testing.T) {
	v := newVerifier("secret-key")
	token := SignToken("secret-key", "user_1", 0)

	owner, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user_1", owner)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	v := newVerifier("secret-key")
	token := SignToken("other-key", "user_1", tokenNow.Add(time.Hour).Unix())

	_, err := v.Verify(context.Background(), token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestVerifyRejectsExpired(t *testing.T) {
	v := newVerifier("secret-key")
	token := SignToken("secret-key", "user_1", tokenNow.Add(-time.Minute).Unix())

	_, err := v.Verify(context.Background(), token)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	v := newVerifier("secret-key")

	for _, token := range []string{"", "abc", "a.b", "!!!.???"} {
		_, err := v.Verify(context.Background(), token)
		assert.ErrorIs(t, err, domain.ErrInvalidToken, "token %q", token)
	}
}
