package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mochico/storefront/internal/domain"
	"github.com/mochico/storefront/internal/order"
	apperrors "github.com/mochico/storefront/pkg/errors"
	"github.com/mochico/storefront/pkg/logger"
	"github.com/mochico/storefront/pkg/validator"
)

var errOrderRejected = errors.New("order collaborator reported failure")

// CheckoutService submits a session's cart as an order.
type CheckoutService struct {
	sessions  *SessionService
	submitter order.Submitter
	logger    *slog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(sessions *SessionService, submitter order.Submitter, logger *slog.Logger) *CheckoutService {
	return &CheckoutService{
		sessions:  sessions,
		submitter: submitter,
		logger:    logger,
	}
}

// Submit places an order for the session's cart. On success the cart is
// emptied, the drawer closed and the session moves to the success step. On
// failure the session is left untouched on the details step and a generic
// CHECKOUT_FAILED error is returned.
func (s *CheckoutService) Submit(ctx context.Context, id string, details domain.ShippingDetails) (*domain.Session, error) {
	details = details.Normalize()
	if err := validator.Validate(details); err != nil {
		return nil, err
	}

	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Cart.IsEmpty() {
		return nil, apperrors.InvalidInput("cart is empty")
	}

	log := logger.WithContext(ctx, s.logger)
	result, err := s.submitter.Submit(ctx, domain.OrderRequest{
		SessionID: id,
		Lines:     session.Cart.Lines,
		Shipping:  details,
	})
	if err == nil && !result.Success {
		err = errOrderRejected
	}
	if err != nil {
		CheckoutsTotal.WithLabelValues("failure").Inc()
		log.ErrorContext(ctx, "checkout failed",
			slog.Int("line_count", len(session.Cart.Lines)),
			slog.String("error", err.Error()),
		)
		return nil, apperrors.CheckoutFailed(err)
	}
	CheckoutsTotal.WithLabelValues("success").Inc()

	updated, err := s.sessions.mutate(ctx, id, func(cur domain.Session) (domain.Session, error) {
		return cur.CompleteCheckout(result.OrderID), nil
	})
	if err != nil {
		return nil, err
	}

	log.InfoContext(ctx, "checkout completed", slog.String("order_id", result.OrderID))
	s.sessions.publishCart(ctx, updated)
	return updated, nil
}

// Reset returns the session to the details step, as after "Continue Shopping".
func (s *CheckoutService) Reset(ctx context.Context, id string) (*domain.Session, error) {
	return s.sessions.mutate(ctx, id, func(cur domain.Session) (domain.Session, error) {
		return cur.ResetCheckout(), nil
	})
}
