package repository

import (
	"context"

	"github.com/mochico/storefront/internal/domain"
)

// SessionRepository defines the interface for session persistence.
type SessionRepository interface {
	// Get retrieves a session by id. A missing session is a NOT_FOUND error.
	Get(ctx context.Context, id string) (*domain.Session, error)

	// SaveIfVersion stores session when the stored version still equals
	// expectedVersion (0 for a session that was never saved). On success
	// session.Version is advanced to expectedVersion+1. A stale write is a
	// CONFLICT error.
	SaveIfVersion(ctx context.Context, session *domain.Session, expectedVersion int) error

	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error
}
