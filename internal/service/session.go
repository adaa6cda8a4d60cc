package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/mochico/storefront/internal/domain"
	"github.com/mochico/storefront/internal/event"
	"github.com/mochico/storefront/internal/repository"
	apperrors "github.com/mochico/storefront/pkg/errors"
	"github.com/mochico/storefront/pkg/logger"
)

// maxSaveAttempts bounds the optimistic retry loop for one session update.
const maxSaveAttempts = 3

// SetViewInput holds the parameters for switching the active view.
type SetViewInput struct {
	View domain.ViewState `json:"view" validate:"required,oneof=HOME SHOP ABOUT"`
}

// SelectCategoryInput holds the parameters for choosing a category filter.
type SelectCategoryInput struct {
	Category string `json:"category" validate:"required"`
}

// ProductRefInput references a catalog product by id.
type ProductRefInput struct {
	ProductID int `json:"product_id" validate:"gt=0"`
}

// UpdateQuantityInput holds the signed quantity change for a cart line.
// A zero delta is accepted and changes nothing.
type UpdateQuantityInput struct {
	Delta int `json:"delta"`
}

// SessionService implements the per-session storefront state: the cart and
// the UI selections. Each update is one atomic transition applied with
// optimistic versioning.
type SessionService struct {
	repo     repository.SessionRepository
	catalog  *CatalogService
	producer *event.Producer
	currency string
	logger   *slog.Logger
	now      func() time.Time
}

// NewSessionService creates a new session service.
func NewSessionService(repo repository.SessionRepository, catalog *CatalogService, producer *event.Producer, currency string, logger *slog.Logger) *SessionService {
	return &SessionService{
		repo:     repo,
		catalog:  catalog,
		producer: producer,
		currency: currency,
		logger:   logger,
		now:      time.Now,
	}
}

// Get returns the session, or the initial state when it does not exist yet.
func (s *SessionService) Get(ctx context.Context, id string) (*domain.Session, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}

	session, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			fresh := domain.NewSession(id, s.now().UTC())
			return &fresh, nil
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return session, nil
}

// mutate applies fn to the latest session state and saves the result,
// retrying when another writer got there first.
func (s *SessionService) mutate(ctx context.Context, id string, fn func(domain.Session) (domain.Session, error)) (*domain.Session, error) {
	for attempt := 1; ; attempt++ {
		current, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}

		next, err := fn(*current)
		if err != nil {
			return nil, err
		}
		next.UpdatedAt = s.now().UTC()

		err = s.repo.SaveIfVersion(ctx, &next, current.Version)
		if err == nil {
			return &next, nil
		}
		if !errors.Is(err, apperrors.ErrConflict) {
			return nil, fmt.Errorf("save session: %w", err)
		}

		SessionConflicts.Inc()
		if attempt >= maxSaveAttempts {
			return nil, err
		}
		logger.WithContext(ctx, s.logger).DebugContext(ctx, "session write conflict, retrying",
			slog.Int("attempt", attempt),
		)
	}
}

func (s *SessionService) publishCart(ctx context.Context, session *domain.Session) {
	if err := s.producer.PublishCartUpdated(ctx, session.ID, session.Cart); err != nil {
		logger.WithContext(ctx, s.logger).WarnContext(ctx, "failed to publish cart.updated event",
			slog.String("error", err.Error()),
		)
	}
}

func (s *SessionService) product(id int) (domain.Product, error) {
	p, ok := s.catalog.Lookup(id)
	if !ok {
		return domain.Product{}, apperrors.NotFound("product", strconv.Itoa(id))
	}
	return p, nil
}

// AddToCart adds one unit of the product, opens the cart drawer and closes
// any open product detail.
func (s *SessionService) AddToCart(ctx context.Context, id string, productID int) (*domain.Session, error) {
	p, err := s.product(productID)
	if err != nil {
		return nil, err
	}

	session, err := s.mutate(ctx, id, func(cur domain.Session) (domain.Session, error) {
		return cur.AddToCart(p), nil
	})
	if err != nil {
		return nil, err
	}

	s.publishCart(ctx, session)
	return session, nil
}

// UpdateQuantity changes a cart line's quantity by delta, removing the line
// when it drops to zero. Unknown product ids and a zero delta leave the cart
// unchanged.
func (s *SessionService) UpdateQuantity(ctx context.Context, id string, productID, delta int) (*domain.Session, error) {
	changed := false
	session, err := s.mutate(ctx, id, func(cur domain.Session) (domain.Session, error) {
		_, found := cur.Cart.Line(productID)
		changed = found && delta != 0
		return cur.UpdateQuantity(productID, delta), nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.publishCart(ctx, session)
	}
	return session, nil
}

// Cart returns the session's cart with its totals.
func (s *SessionService) Cart(ctx context.Context, id string) (domain.CartSummary, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return domain.CartSummary{}, err
	}
	return session.Cart.Summary(s.currency), nil
}

// SetView switches the active page.
func (s *SessionService) SetView(ctx context.Context, id string, view domain.ViewState) (*domain.Session, error) {
	if !view.IsValid() {
		return nil, apperrors.InvalidInput("unknown view " + strconv.Quote(string(view)))
	}
	return s.mutate(ctx, id, func(cur domain.Session) (domain.Session, error) {
		return cur.SetView(view), nil
	})
}

// SelectCategory sets the category filter, which must be "All" or a
// category present in the catalog, and switches to the shop view.
func (s *SessionService) SelectCategory(ctx context.Context, id, category string) (*domain.Session, error) {
	name, ok := s.catalog.ResolveCategory(category)
	if !ok {
		return nil, apperrors.InvalidInput("unknown category " + strconv.Quote(category))
	}
	return s.mutate(ctx, id, func(cur domain.Session) (domain.Session, error) {
		return cur.SelectCategory(name), nil
	})
}

// OpenProduct opens the product detail view.
func (s *SessionService) OpenProduct(ctx context.Context, id string, productID int) (*domain.Session, error) {
	if _, err := s.product(productID); err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, func(cur domain.Session) (domain.Session, error) {
		return cur.OpenProduct(productID), nil
	})
}

func (s *SessionService) CloseProduct(ctx context.Context, id string) (*domain.Session, error) {
	return s.mutate(ctx, id, func(cur domain.Session) (domain.Session, error) {
		return cur.CloseProduct(), nil
	})
}

func (s *SessionService) OpenCart(ctx context.Context, id string) (*domain.Session, error) {
	return s.mutate(ctx, id, func(cur domain.Session) (domain.Session, error) {
		return cur.OpenCart(), nil
	})
}

func (s *SessionService) CloseCart(ctx context.Context, id string) (*domain.Session, error) {
	return s.mutate(ctx, id, func(cur domain.Session) (domain.Session, error) {
		return cur.CloseCart(), nil
	})
}

// Delete discards the session; the next request starts from the initial state.
func (s *SessionService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
