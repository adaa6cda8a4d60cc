package catalog

import (
	"context"
	"time"

	"github.com/mochico/storefront/internal/domain"
)

// DefaultMemoryDelay simulates the latency of a remote catalog fetch.
const DefaultMemoryDelay = 800 * time.Millisecond

// MemorySource serves the built-in Mochi & Co. products.
type MemorySource struct {
	delay time.Duration
}

func NewMemorySource(delay time.Duration) *MemorySource {
	return &MemorySource{delay: delay}
}

func (s *MemorySource) Name() string { return KindMemory }

// Load waits for the configured delay, or until ctx is done.
func (s *MemorySource) Load(ctx context.Context) ([]domain.Product, error) {
	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return domain.MockProducts(), nil
}
