package catalog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/mochico/storefront/internal/domain"
	"github.com/mochico/storefront/pkg/validator"
)

// File formats understood by FileSource.
const (
	FormatCSV  = "csv"
	FormatYAML = "yaml"
)

// productRecord is one catalog row in a CSV or YAML file. Prices are kept
// as text and parsed into decimals after decoding.
type productRecord struct {
	ID          int            `csv:"id" yaml:"id" json:"id" validate:"gt=0"`
	Name        string         `csv:"name" yaml:"name" json:"name" validate:"required"`
	Price       string         `csv:"price" yaml:"price" json:"price" validate:"required,numeric"`
	Category    string         `csv:"category" yaml:"category" json:"category" validate:"required"`
	Image       string         `csv:"image" yaml:"image" json:"image" validate:"omitempty,url"`
	Description string         `csv:"description" yaml:"description" json:"description"`
	PrintifyID  string         `csv:"printify_id" yaml:"printify_id" json:"printify_id"`
	Reviews     []reviewRecord `csv:"-" yaml:"reviews" json:"reviews" validate:"dive"`
}

type reviewRecord struct {
	ID      string `yaml:"id" json:"id" validate:"required"`
	Author  string `yaml:"author" json:"author" validate:"required"`
	Rating  int    `yaml:"rating" json:"rating" validate:"gte=1,lte=5"`
	Comment string `yaml:"comment" json:"comment"`
	Date    string `yaml:"date" json:"date" validate:"required,datetime=2006-01-02"`
}

type yamlCatalog struct {
	Products []productRecord `yaml:"products"`
}

// FileSource reads the catalog from a CSV or YAML file.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Name() string { return KindFile }

func (s *FileSource) Load(_ context.Context) ([]domain.Product, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open catalog file: %w", err)
	}
	defer f.Close()

	return Decode(f, FormatFromPath(s.path))
}

// FormatFromPath picks the file format from the extension; anything other
// than .csv is treated as YAML.
func FormatFromPath(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return FormatCSV
	}
	return FormatYAML
}

// Decode parses and validates a catalog document.
func Decode(r io.Reader, format string) ([]domain.Product, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var records []productRecord
	switch format {
	case FormatCSV:
		if err := gocsv.UnmarshalBytes(data, &records); err != nil {
			return nil, fmt.Errorf("decode csv catalog: %w", err)
		}
	case FormatYAML:
		var doc yamlCatalog
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil && err != io.EOF {
			return nil, fmt.Errorf("decode yaml catalog: %w", err)
		}
		records = doc.Products
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", format)
	}

	products := make([]domain.Product, 0, len(records))
	for i, rec := range records {
		p, err := rec.toProduct()
		if err != nil {
			return nil, fmt.Errorf("product #%d: %w", i+1, err)
		}
		products = append(products, p)
	}
	if err := checkUniqueIDs(products); err != nil {
		return nil, err
	}
	return products, nil
}

func (rec productRecord) toProduct() (domain.Product, error) {
	if err := validator.Validate(rec); err != nil {
		return domain.Product{}, err
	}
	price, err := decimal.NewFromString(rec.Price)
	if err != nil {
		return domain.Product{}, fmt.Errorf("parse price %q: %w", rec.Price, err)
	}
	if price.IsNegative() {
		return domain.Product{}, fmt.Errorf("price %s is negative", rec.Price)
	}

	reviews := make([]domain.Review, 0, len(rec.Reviews))
	for _, r := range rec.Reviews {
		reviews = append(reviews, domain.Review(r))
	}

	return domain.Product{
		ID:          rec.ID,
		Name:        rec.Name,
		Price:       price,
		Category:    rec.Category,
		Image:       rec.Image,
		Description: rec.Description,
		Reviews:     reviews,
		PrintifyID:  rec.PrintifyID,
	}, nil
}
