package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mochico/storefront/internal/domain"
	apperrors "github.com/mochico/storefront/pkg/errors"
)

const keyPrefix = "session:"

// SessionRepository implements repository.SessionRepository using Redis.
// Sessions are stored as JSON snapshots and expire after ttl of inactivity.
type SessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionRepository creates a new Redis-backed session repository.
func NewSessionRepository(client *redis.Client, ttl time.Duration) *SessionRepository {
	return &SessionRepository{
		client: client,
		ttl:    ttl,
	}
}

// Get retrieves a session by id from Redis.
func (r *SessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	data, err := r.client.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.NotFound("session", id)
		}
		return nil, fmt.Errorf("redis get session: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}

	return &session, nil
}

// SaveIfVersion writes the session inside a WATCH transaction so that a
// concurrent writer between the version check and the SET aborts the save.
func (r *SessionRepository) SaveIfVersion(ctx context.Context, session *domain.Session, expectedVersion int) error {
	key := keyPrefix + session.ID

	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := storedVersion(ctx, tx, key)
		if err != nil {
			return err
		}
		if current != expectedVersion {
			return apperrors.Conflict("session was modified concurrently")
		}

		next := *session
		next.Version = expectedVersion + 1
		data, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, r.ttl)
			return nil
		})
		return err
	}, key)

	switch {
	case err == nil:
		session.Version = expectedVersion + 1
		return nil
	case errors.Is(err, redis.TxFailedErr):
		return apperrors.Conflict("session was modified concurrently")
	case errors.Is(err, apperrors.ErrConflict):
		return err
	default:
		return fmt.Errorf("redis save session: %w", err)
	}
}

func storedVersion(ctx context.Context, tx *redis.Tx, key string) (int, error) {
	data, err := tx.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get session: %w", err)
	}

	var stored struct {
		Version int `json:"version"`
	}
	if err := json.Unmarshal(data, &stored); err != nil {
		return 0, fmt.Errorf("unmarshal session: %w", err)
	}
	return stored.Version, nil
}

// Delete removes a session from Redis by id.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("redis del session: %w", err)
	}
	return nil
}
