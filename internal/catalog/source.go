// Package catalog loads the product catalog from its configured source.
package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mochico/storefront/internal/domain"
	"github.com/mochico/storefront/pkg/tracing"
)

// Source kinds accepted by CATALOG_SOURCE.
const (
	KindMemory   = "memory"
	KindFile     = "file"
	KindPrintify = "printify"
	KindPostgres = "postgres"
)

// Source produces the full product catalog.
type Source interface {
	Name() string
	Load(ctx context.Context) ([]domain.Product, error)
}

// ReviewStore is implemented by sources that persist reviews added at runtime.
type ReviewStore interface {
	InsertReview(ctx context.Context, productID int, review domain.Review) error
}

// Load reads the catalog from src. A failing source yields an empty catalog
// and a logged diagnostic rather than an error, so the storefront can still
// serve its other views.
func Load(ctx context.Context, src Source, logger *slog.Logger) []domain.Product {
	ctx, span := tracing.Tracer("github.com/mochico/storefront/internal/catalog").Start(ctx, "catalog.Load")
	defer span.End()

	products, err := src.Load(ctx)
	if err != nil {
		span.RecordError(err)
		logger.ErrorContext(ctx, "failed to load catalog, continuing with an empty catalog",
			slog.String("source", src.Name()),
			slog.String("error", err.Error()),
		)
		return []domain.Product{}
	}
	if err := checkUniqueIDs(products); err != nil {
		span.RecordError(err)
		logger.ErrorContext(ctx, "catalog rejected, continuing with an empty catalog",
			slog.String("source", src.Name()),
			slog.String("error", err.Error()),
		)
		return []domain.Product{}
	}

	for i := range products {
		if products[i].Reviews == nil {
			products[i].Reviews = []domain.Review{}
		}
	}

	logger.InfoContext(ctx, "catalog loaded",
		slog.String("source", src.Name()),
		slog.Int("products", len(products)),
	)
	return products
}

func checkUniqueIDs(products []domain.Product) error {
	seen := make(map[int]struct{}, len(products))
	for _, p := range products {
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("duplicate product id %d", p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}
