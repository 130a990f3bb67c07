package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"hotelbook/models"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"go.uber.org/zap"
)

// intentAPI is the slice of the Stripe client the adapter uses.
type intentAPI interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	Get(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

// StripeGateway implements Gateway on Stripe PaymentIntents.
type StripeGateway struct {
	intents intentAPI
	policy  RetryPolicy
	logger  *zap.Logger
}

// NewStripeGateway builds a gateway with its own Stripe client. The client's
// built-in network retries are turned off; RetryPolicy is the only retry layer.
func NewStripeGateway(apiKey string, policy RetryPolicy, logger *zap.Logger) *StripeGateway {
	cfg := &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: policy.normalized().Timeout},
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     logger.Sugar(),
	}
	sc := &client.API{}
	sc.Init(apiKey, &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, cfg),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, cfg),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, cfg),
	})
	return newStripeGateway(sc.PaymentIntents, policy, logger)
}

func newStripeGateway(intents intentAPI, policy RetryPolicy, logger *zap.Logger) *StripeGateway {
	return &StripeGateway{intents: intents, policy: policy, logger: logger}
}

// CreateIntent opens a PaymentIntent. Every attempt of one call shares a
// Stripe idempotency key, so a retried create never opens a second intent.
func (g *StripeGateway) CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*models.PaymentIntent, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAmount, amount)
	}
	idemKey := "pi-create-" + uuid.New().String()

	var out *models.PaymentIntent
	err := g.policy.do(ctx, func(actx context.Context) error {
		params := &stripe.PaymentIntentParams{
			Amount:   stripe.Int64(amount),
			Currency: stripe.String(strings.ToLower(currency)),
			AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
				Enabled: stripe.Bool(true),
			},
		}
		params.Context = actx
		params.SetIdempotencyKey(idemKey)
		for k, v := range metadata {
			params.AddMetadata(k, v)
		}

		pi, err := g.intents.New(params)
		if err != nil {
			return classify(err)
		}
		out = normalize(pi)
		return nil
	})
	if err != nil {
		g.logger.Warn("create payment intent failed", zap.Int64("amount", amount), zap.Error(err))
		return nil, err
	}
	g.logger.Info("payment intent created", zap.String("intentId", out.ID), zap.Int64("amount", amount))
	return out, nil
}

// RetrieveIntent reads a PaymentIntent, retrying transient failures.
func (g *StripeGateway) RetrieveIntent(ctx context.Context, intentID string) (*models.PaymentIntent, error) {
	if intentID == "" {
		return nil, fmt.Errorf("%w: empty id", ErrIntentNotFound)
	}

	var out *models.PaymentIntent
	err := g.policy.do(ctx, func(actx context.Context) error {
		params := &stripe.PaymentIntentParams{}
		params.Context = actx

		pi, err := g.intents.Get(intentID, params)
		if err != nil {
			return classify(err)
		}
		out = normalize(pi)
		return nil
	})
	if err != nil {
		g.logger.Warn("retrieve payment intent failed", zap.String("intentId", intentID), zap.Error(err))
		return nil, err
	}
	return out, nil
}

// classify maps a Stripe client error onto the package sentinels.
func classify(err error) error {
	var se *stripe.Error
	if errors.As(err, &se) {
		switch {
		case se.Code == stripe.ErrorCodeResourceMissing || se.HTTPStatusCode == http.StatusNotFound:
			return fmt.Errorf("%w: %s", ErrIntentNotFound, se.Msg)
		case se.HTTPStatusCode == http.StatusTooManyRequests || se.HTTPStatusCode >= http.StatusInternalServerError:
			return fmt.Errorf("%w: %s", ErrGatewayUnavailable, se.Msg)
		default:
			return fmt.Errorf("%w: %s", ErrGatewayRejected, se.Msg)
		}
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	// Network errors and per-attempt deadlines.
	return fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
}

// normalize folds Stripe's status set onto the four states the pipeline knows.
func normalize(pi *stripe.PaymentIntent) *models.PaymentIntent {
	status := models.IntentRequiresPayment
	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		status = models.IntentSucceeded
	case stripe.PaymentIntentStatusCanceled:
		status = models.IntentCanceled
	case stripe.PaymentIntentStatusRequiresPaymentMethod:
		if pi.LastPaymentError != nil {
			status = models.IntentFailed
		}
	}

	meta := make(map[string]string, len(pi.Metadata))
	for k, v := range pi.Metadata {
		meta[k] = v
	}
	return &models.PaymentIntent{
		ID:           pi.ID,
		Status:       status,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		ClientSecret: pi.ClientSecret,
		Metadata:     meta,
	}
}
