// Package payment adapts the external payment processor to the booking pipeline.
package payment

import (
	"context"
	"errors"

	"hotelbook/models"
)

var (
	// ErrInvalidAmount is returned for non-positive amounts.
	ErrInvalidAmount = errors.New("invalid payment amount")
	// ErrIntentNotFound is returned when the gateway has no such intent.
	ErrIntentNotFound = errors.New("payment intent not found")
	// ErrGatewayUnavailable is returned for network, timeout and 5xx/429 failures.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	// ErrGatewayRejected is returned when the gateway refuses a well-formed call.
	ErrGatewayRejected = errors.New("payment gateway rejected request")
)

// Gateway is the contract the booking pipeline needs from a payment processor.
type Gateway interface {
	// CreateIntent opens a payment for amount minor units of currency.
	CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*models.PaymentIntent, error)
	// RetrieveIntent reads an intent. It is idempotent and safe to retry.
	RetrieveIntent(ctx context.Context, intentID string) (*models.PaymentIntent, error)
}
