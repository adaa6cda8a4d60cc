package catalog

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/shopspring/decimal"

	"github.com/mochico/storefront/internal/domain"
	"github.com/mochico/storefront/pkg/database"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrations returns the catalog schema migrations.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

const (
	listProductsQuery = `
		SELECT id, name, price::text, category, image, description, printify_id
		FROM products
		ORDER BY position, id`

	listReviewsQuery = `
		SELECT id, product_id, author, rating, comment, review_date::text
		FROM reviews
		ORDER BY created_at DESC, id`

	insertReviewQuery = `
		INSERT INTO reviews (id, product_id, author, rating, comment, review_date)
		VALUES ($1, $2, $3, $4, $5, $6)`

	upsertProductQuery = `
		INSERT INTO products (id, name, price, category, image, description, printify_id, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			price = EXCLUDED.price,
			category = EXCLUDED.category,
			image = EXCLUDED.image,
			description = EXCLUDED.description,
			printify_id = EXCLUDED.printify_id,
			position = EXCLUDED.position`
)

// PostgresSource reads products and their reviews from PostgreSQL.
type PostgresSource struct {
	db database.DBTX
}

func NewPostgresSource(db database.DBTX) *PostgresSource {
	return &PostgresSource{db: db}
}

func (s *PostgresSource) Name() string { return KindPostgres }

// Load returns products in catalog order with reviews newest first.
func (s *PostgresSource) Load(ctx context.Context) (products []domain.Product, err error) {
	ctx, end := database.TraceQuery(ctx, "ListProducts", listProductsQuery)
	defer func() { end(err) }()

	rows, err := s.db.Query(ctx, listProductsQuery)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	index := make(map[int]int)
	for rows.Next() {
		var (
			p     domain.Product
			price string
		)
		if err := rows.Scan(&p.ID, &p.Name, &price, &p.Category, &p.Image, &p.Description, &p.PrintifyID); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		if p.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("parse price of product %d: %w", p.ID, err)
		}
		p.Reviews = []domain.Review{}
		index[p.ID] = len(products)
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	if err := s.attachReviews(ctx, products, index); err != nil {
		return nil, err
	}

	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

func (s *PostgresSource) attachReviews(ctx context.Context, products []domain.Product, index map[int]int) error {
	rows, err := s.db.Query(ctx, listReviewsQuery)
	if err != nil {
		return fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			r         domain.Review
			productID int
		)
		if err := rows.Scan(&r.ID, &productID, &r.Author, &r.Rating, &r.Comment, &r.Date); err != nil {
			return fmt.Errorf("scan review: %w", err)
		}
		i, ok := index[productID]
		if !ok {
			continue
		}
		products[i].Reviews = append(products[i].Reviews, r)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate review rows: %w", err)
	}
	return nil
}

// InsertReview persists a review added at runtime.
func (s *PostgresSource) InsertReview(ctx context.Context, productID int, review domain.Review) (err error) {
	ctx, end := database.TraceQuery(ctx, "InsertReview", insertReviewQuery)
	defer func() { end(err) }()

	_, err = s.db.Exec(ctx, insertReviewQuery,
		review.ID, productID, review.Author, review.Rating, review.Comment, review.Date)
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

// UpsertProducts writes products in the given order. Reviews are not touched.
func (s *PostgresSource) UpsertProducts(ctx context.Context, products []domain.Product) (err error) {
	ctx, end := database.TraceQuery(ctx, "UpsertProducts", upsertProductQuery)
	defer func() { end(err) }()

	for i, p := range products {
		if _, err = s.db.Exec(ctx, upsertProductQuery,
			p.ID, p.Name, p.Price.StringFixed(2), p.Category, p.Image, p.Description, p.PrintifyID, i+1,
		); err != nil {
			return fmt.Errorf("upsert product %d: %w", p.ID, err)
		}
	}
	return nil
}
