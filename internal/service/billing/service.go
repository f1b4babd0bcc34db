// Package billing creates hosted checkout sessions for the monthly
// subscription.
package billing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"

	"github.com/zhouzirui/scribe/backend/internal/logger"
	"github.com/zhouzirui/scribe/backend/internal/metrics"
	billingModel "github.com/zhouzirui/scribe/backend/internal/model/billing"
	"github.com/zhouzirui/scribe/backend/internal/upstream"
)

// SessionCreator is the slice of the stripe checkout session client used
// here. *session.Client from stripe-go satisfies it.
type SessionCreator interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// Options configures redirect targets.
type Options struct {
	SuccessURL string
	CancelURL  string
}

// Service builds the subscription checkout request and relays it.
type Service struct {
	sessions SessionCreator
	plan     billingModel.Plan
	opts     Options
	newKey   func() string
	log      logger.Logger
	metrics  *metrics.Metrics
}

// NewService wraps sessions with the fixed monthly plan.
func NewService(sessions SessionCreator, opts Options, log logger.Logger, m *metrics.Metrics) (*Service, error) {
	if sessions == nil {
		return nil, errors.New("checkout session client is required")
	}
	if opts.SuccessURL == "" || opts.CancelURL == "" {
		return nil, errors.New("success and cancel URLs are required")
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &Service{
		sessions: sessions,
		plan:     billingModel.MonthlyPlan(),
		opts:     opts,
		newKey:   uuid.NewString,
		log:      log.With(logger.String("component", "billing")),
		metrics:  m,
	}, nil
}

// CreateCheckoutSession asks the payment provider for exactly one
// subscription-mode session and returns its redirect URL. Failures are
// *upstream.Failure and are not retried.
func (s *Service) CreateCheckoutSession(ctx context.Context) (billingModel.Session, error) {
	params := s.buildParams(ctx)

	start := time.Now()
	sess, err := s.sessions.New(params)
	if err == nil && sess == nil {
		err = errors.New("empty checkout session")
	}
	s.metrics.ObserveUpstream(upstream.ProviderStripe, time.Since(start), err)
	if err != nil {
		s.log.Error("checkout session creation failed", logger.Error(err))
		return billingModel.Session{}, upstream.Wrap(upstream.ProviderStripe, err)
	}

	s.log.Info("checkout session created", logger.String("session_id", sess.ID))
	return billingModel.Session{URL: sess.URL}, nil
}

func (s *Service) buildParams(ctx context.Context) *stripe.CheckoutSessionParams {
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(s.plan.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(s.plan.ProductName),
					},
					UnitAmount: stripe.Int64(s.plan.UnitAmount),
					Recurring: &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
						Interval: stripe.String(s.plan.Interval),
					},
				},
				Quantity: stripe.Int64(s.plan.Quantity),
			},
		},
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL: stripe.String(s.opts.SuccessURL),
		CancelURL:  stripe.String(s.opts.CancelURL),
	}
	params.Context = ctx
	params.SetIdempotencyKey(s.newKey())
	return params
}
