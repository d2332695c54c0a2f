package domain

import (
	"context"
	"errors"
)

// Verifier checks a bearer session token and returns the owner it
// identifies.
type Verifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// WebhookHeaders carries the signed-webhook headers of the identity
// provider.
type WebhookHeaders struct {
	ID        string
	Timestamp string
	Signature string
}

// Event is one identity-provider event after signature verification.
type Event struct {
	Type string `json:"type"`
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

const (
	EventUserCreated = "user.created"
	EventUserDeleted = "user.deleted"
)

// WebhookService verifies and applies identity events.
type WebhookService interface {
	HandleEvent(ctx context.Context, payload []byte, headers WebhookHeaders) error
}

var (
	ErrInvalidToken     = errors.New("invalid_token")
	ErrTokenExpired     = errors.New("token_expired")
	ErrInvalidSignature = errors.New("invalid_webhook_signature")
	ErrStaleTimestamp   = errors.New("stale_webhook_timestamp")
)
