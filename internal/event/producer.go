package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mochico/storefront/internal/domain"
	pkgkafka "github.com/mochico/storefront/pkg/kafka"
	"github.com/mochico/storefront/pkg/logger"
)

// Kafka topics for storefront domain events.
var (
	TopicCartUpdated    = pkgkafka.Topic("cart", "updated")
	TopicReviewCreated  = pkgkafka.Topic("review", "created")
	TopicOrderSubmitted = pkgkafka.Topic("order", "submitted")
)

// Aggregate type constants.
const (
	AggregateTypeSession = "session"
	AggregateTypeProduct = "product"
	AggregateTypeOrder   = "order"
)

// SourceStorefront identifies events originating from the storefront service.
const SourceStorefront = "storefront"

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	SessionID string         `json:"session_id"`
	Items     []CartItemData `json:"items"`
	ItemCount int            `json:"item_count"`
	Total     string         `json:"total"`
	Currency  string         `json:"currency"`
}

// CartItemData is the item payload within cart and order events.
type CartItemData struct {
	ProductID int    `json:"product_id"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
}

// ReviewCreatedData is the payload for a review.created event.
type ReviewCreatedData struct {
	ProductID int    `json:"product_id"`
	ReviewID  string `json:"review_id"`
	Author    string `json:"author"`
	Rating    int    `json:"rating"`
	Date      string `json:"date"`
}

// OrderSubmittedData is the payload for an order.submitted event.
type OrderSubmittedData struct {
	OrderID   string                 `json:"order_id"`
	SessionID string                 `json:"session_id"`
	Items     []CartItemData         `json:"items"`
	Total     string                 `json:"total"`
	Currency  string                 `json:"currency"`
	Shipping  domain.ShippingDetails `json:"shipping"`
}

// Publisher is the subset of *pkgkafka.Producer used here.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes storefront domain events. A Producer without a
// publisher drops events, which is how the service runs without Kafka.
type Producer struct {
	kafka    Publisher
	currency string
	logger   *slog.Logger
}

// NewProducer creates a new event producer. kafka may be nil.
func NewProducer(kafka Publisher, currency string, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:    kafka,
		currency: currency,
		logger:   logger,
	}
}

// Enabled reports whether events are actually sent anywhere.
func (p *Producer) Enabled() bool {
	return p != nil && p.kafka != nil
}

func cartItems(lines []domain.CartLine) []CartItemData {
	items := make([]CartItemData, len(lines))
	for i, l := range lines {
		items[i] = CartItemData{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.Price.StringFixed(2),
			Quantity:  l.Quantity,
		}
	}
	return items
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}
	event.WithSessionID(logger.SessionIDFromContext(ctx)).
		WithMetadata(pkgkafka.MetadataCurrency, p.currency)

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}
	return nil
}

// PublishCartUpdated publishes a cart.updated event.
func (p *Producer) PublishCartUpdated(ctx context.Context, sessionID string, cart domain.Cart) error {
	if !p.Enabled() {
		return nil
	}

	data := CartUpdatedData{
		SessionID: sessionID,
		Items:     cartItems(cart.Lines),
		ItemCount: cart.ItemCount(),
		Total:     cart.Total().StringFixed(2),
		Currency:  p.currency,
	}
	if err := p.publish(ctx, TopicCartUpdated, sessionID, AggregateTypeSession, data); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published cart.updated event",
		slog.String("session_id", sessionID),
		slog.Int("item_count", data.ItemCount),
	)
	return nil
}

// PublishReviewCreated publishes a review.created event.
func (p *Producer) PublishReviewCreated(ctx context.Context, productID int, review domain.Review) error {
	if !p.Enabled() {
		return nil
	}

	data := ReviewCreatedData{
		ProductID: productID,
		ReviewID:  review.ID,
		Author:    review.Author,
		Rating:    review.Rating,
		Date:      review.Date,
	}
	if err := p.publish(ctx, TopicReviewCreated, fmt.Sprint(productID), AggregateTypeProduct, data); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published review.created event",
		slog.Int("product_id", productID),
		slog.String("review_id", review.ID),
	)
	return nil
}

// PublishOrderSubmitted publishes an order.submitted event. Unlike the other
// events this one is the order hand-off itself, so a disabled producer is an
// error.
func (p *Producer) PublishOrderSubmitted(ctx context.Context, orderID string, req domain.OrderRequest) error {
	if !p.Enabled() {
		return fmt.Errorf("publish %s event: no kafka producer configured", TopicOrderSubmitted)
	}

	total := domain.Cart{Lines: req.Lines}.Total()
	data := OrderSubmittedData{
		OrderID:   orderID,
		SessionID: req.SessionID,
		Items:     cartItems(req.Lines),
		Total:     total.StringFixed(2),
		Currency:  p.currency,
		Shipping:  req.Shipping,
	}
	if err := p.publish(ctx, TopicOrderSubmitted, orderID, AggregateTypeOrder, data); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published order.submitted event",
		slog.String("order_id", orderID),
		slog.Int("line_count", len(req.Lines)),
	)
	return nil
}
