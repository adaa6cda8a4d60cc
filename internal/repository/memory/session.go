// Package memory holds in-process repository implementations for single
// instance deployments and tests.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/mochico/storefront/internal/domain"
	apperrors "github.com/mochico/storefront/pkg/errors"
)

// SessionRepository keeps sessions in a map.
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{sessions: make(map[string]domain.Session)}
}

func (r *SessionRepository) Get(_ context.Context, id string) (*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, apperrors.NotFound("session", id)
	}
	s.Cart.Lines = cloneLines(s.Cart.Lines)
	return &s, nil
}

func (r *SessionRepository) SaveIfVersion(_ context.Context, session *domain.Session, expectedVersion int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := 0
	if stored, ok := r.sessions[session.ID]; ok {
		current = stored.Version
	}
	if current != expectedVersion {
		return apperrors.Conflict("session was modified concurrently")
	}

	session.Version = expectedVersion + 1
	stored := *session
	stored.Cart.Lines = cloneLines(session.Cart.Lines)
	r.sessions[session.ID] = stored
	return nil
}

func (r *SessionRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

// cloneLines copies lines; an empty cart stays an empty, non-nil slice.
func cloneLines(lines []domain.CartLine) []domain.CartLine {
	if len(lines) == 0 {
		return []domain.CartLine{}
	}
	return slices.Clone(lines)
}

// Len reports the number of stored sessions.
func (r *SessionRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
