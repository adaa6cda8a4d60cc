package catalog

import (
	"context"
	"errors"
	"io/fs"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mochico/storefront/internal/domain"
	"github.com/mochico/storefront/pkg/database"
)

func newPostgresTestFixture(t *testing.T) (*PostgresSource, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	return NewPostgresSource(mock), mock
}

var (
	productColumns = []string{"id", "name", "price", "category", "image", "description", "printify_id"}
	reviewColumns  = []string{"id", "product_id", "author", "rating", "comment", "review_date"}
)

// ---------------------------------------------------------------------------
// Load
// ---------------------------------------------------------------------------

func TestPostgresSource_Load_Success(t *testing.T) {
	src, mock := newPostgresTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT id, name, price::text").
		WillReturnRows(pgxmock.NewRows(productColumns).
			AddRow(1, "Cloud Pillow", "24.00", "Home", "img1", "Soft.", "").
			AddRow(2, "Peach Tea Set", "45.00", "Kitchen", "img2", "Tea.", "pf-2"))
	mock.ExpectQuery("FROM reviews").
		WillReturnRows(pgxmock.NewRows(reviewColumns).
			AddRow("r2", 1, "Kai", 4, "Cute.", "2023-11-05").
			AddRow("r1", 1, "Sophie", 5, "Cloud!", "2023-10-12").
			AddRow("orphan", 99, "Ghost", 1, "?", "2023-01-01"))

	products, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.True(t, products[0].Price.Equal(decimal.NewFromInt(24)))
	require.Len(t, products[0].Reviews, 2)
	assert.Equal(t, "r2", products[0].Reviews[0].ID)
	assert.NotNil(t, products[1].Reviews)
	assert.Empty(t, products[1].Reviews)
	assert.Equal(t, "pf-2", products[1].PrintifyID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSource_Load_QueryError(t *testing.T) {
	src, mock := newPostgresTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT id, name, price::text").WillReturnError(errors.New("connection refused"))

	_, err := src.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list products")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSource_Load_BadPrice(t *testing.T) {
	src, mock := newPostgresTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT id, name, price::text").
		WillReturnRows(pgxmock.NewRows(productColumns).AddRow(1, "x", "not-a-number", "Home", "", "", ""))

	_, err := src.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse price of product 1")
}

func TestPostgresSource_Load_ReviewsError(t *testing.T) {
	src, mock := newPostgresTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT id, name, price::text").
		WillReturnRows(pgxmock.NewRows(productColumns).AddRow(1, "x", "1.00", "Home", "", "", ""))
	mock.ExpectQuery("FROM reviews").WillReturnError(errors.New("timeout"))

	_, err := src.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list reviews")
}

// ---------------------------------------------------------------------------
// Writes
// ---------------------------------------------------------------------------

func TestPostgresSource_InsertReview(t *testing.T) {
	src, mock := newPostgresTestFixture(t)
	defer mock.Close()

	review := domain.Review{ID: "abc", Author: "Mia", Rating: 5, Comment: "Love it", Date: "2024-03-01"}
	mock.ExpectExec("INSERT INTO reviews").
		WithArgs("abc", 3, "Mia", 5, "Love it", "2024-03-01").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, src.InsertReview(context.Background(), 3, review))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSource_UpsertProducts(t *testing.T) {
	src, mock := newPostgresTestFixture(t)
	defer mock.Close()

	products := domain.MockProducts()[:2]
	for i, p := range products {
		mock.ExpectExec("INSERT INTO products").
			WithArgs(p.ID, p.Name, p.Price.StringFixed(2), p.Category, p.Image, p.Description, p.PrintifyID, i+1).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}

	require.NoError(t, src.UpsertProducts(context.Background(), products))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrations_Embedded(t *testing.T) {
	names, err := fs.Glob(Migrations(), "*.up.sql")
	require.NoError(t, err)
	assert.Contains(t, names, "0001_create_catalog.up.sql")
}
