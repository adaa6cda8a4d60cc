// Package order hands confirmed checkouts to fulfilment.
package order

import (
	"context"
	"log/slog"

	"github.com/mochico/storefront/internal/domain"
	"github.com/mochico/storefront/pkg/logger"
)

// Submitter places an order for the given request.
type Submitter interface {
	Submit(ctx context.Context, req domain.OrderRequest) (domain.OrderResult, error)
}

// OrderPublisher is the subset of *event.Producer used by KafkaSubmitter.
type OrderPublisher interface {
	PublishOrderSubmitted(ctx context.Context, orderID string, req domain.OrderRequest) error
}

// KafkaSubmitter publishes the order as an order.submitted event.
type KafkaSubmitter struct {
	events OrderPublisher
	newID  func() string
	logger *slog.Logger
}

func NewKafkaSubmitter(events OrderPublisher, logger *slog.Logger) *KafkaSubmitter {
	return &KafkaSubmitter{events: events, newID: domain.NewOrderID, logger: logger}
}

func (s *KafkaSubmitter) Submit(ctx context.Context, req domain.OrderRequest) (domain.OrderResult, error) {
	orderID := s.newID()
	if err := s.events.PublishOrderSubmitted(ctx, orderID, req); err != nil {
		return domain.OrderResult{}, err
	}

	logger.WithContext(ctx, s.logger).InfoContext(ctx, "order submitted",
		slog.String("order_id", orderID),
		slog.Int("line_count", len(req.Lines)),
	)
	return domain.OrderResult{Success: true, OrderID: orderID}, nil
}

// LogSubmitter accepts every order and only logs it. It stands in for
// fulfilment when no broker is configured.
type LogSubmitter struct {
	newID  func() string
	logger *slog.Logger
}

func NewLogSubmitter(logger *slog.Logger) *LogSubmitter {
	return &LogSubmitter{newID: domain.NewOrderID, logger: logger}
}

func (s *LogSubmitter) Submit(ctx context.Context, req domain.OrderRequest) (domain.OrderResult, error) {
	orderID := s.newID()
	total := domain.Cart{Lines: req.Lines}.Total()

	logger.WithContext(ctx, s.logger).InfoContext(ctx, "order accepted",
		slog.String("order_id", orderID),
		slog.Int("line_count", len(req.Lines)),
		slog.String("total", total.StringFixed(2)),
		slog.String("ship_to_city", req.Shipping.City),
		slog.String("ship_to_country", req.Shipping.Country),
	)
	return domain.OrderResult{Success: true, OrderID: orderID}, nil
}
