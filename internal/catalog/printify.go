package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/mochico/storefront/internal/domain"
	"github.com/mochico/storefront/pkg/httpclient"
)

// DefaultPrintifyBaseURL is the public Printify REST endpoint.
const DefaultPrintifyBaseURL = "https://api.printify.com/v1"

// printifyPageSize is the largest page the products endpoint serves.
const printifyPageSize = 50

// FallbackCategory is used for Printify products without tags.
const FallbackCategory = "Misc"

var htmlTagPattern = regexp.MustCompile(`<[^>]*>?`)

// PrintifyImage is one mockup image of a Printify product.
type PrintifyImage struct {
	Src        string `json:"src"`
	VariantIDs []int  `json:"variant_ids"`
	Position   string `json:"position"`
	IsDefault  bool   `json:"is_default"`
}

// PrintifyVariant is one purchasable variant. Price is in cents.
type PrintifyVariant struct {
	ID        int    `json:"id"`
	Price     int64  `json:"price"`
	Title     string `json:"title"`
	IsEnabled bool   `json:"is_enabled"`
}

// PrintifyProduct is the subset of the Printify product payload we map.
type PrintifyProduct struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Tags        []string          `json:"tags"`
	Images      []PrintifyImage   `json:"images"`
	Variants    []PrintifyVariant `json:"variants"`
}

type printifyPage struct {
	Data        []PrintifyProduct `json:"data"`
	CurrentPage int               `json:"current_page"`
	LastPage    int               `json:"last_page"`
}

// MapPrintifyProduct converts a Printify product into a catalog product.
func MapPrintifyProduct(p PrintifyProduct) domain.Product {
	return domain.Product{
		ID:          printifyProductID(p.ID),
		Name:        p.Title,
		Price:       lowestPrice(p.Variants),
		Category:    categoryFromTags(p.Tags),
		Image:       defaultImage(p.Images),
		Description: stripHTML(p.Description),
		Reviews:     []domain.Review{},
		PrintifyID:  p.ID,
	}
}

// printifyProductID keeps numeric ids as they are and hashes the hex ids the
// live API returns, so a product keeps its id across reloads.
func printifyProductID(printifyID string) int {
	if id, err := strconv.Atoi(printifyID); err == nil && id > 0 {
		return id
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(printifyID))
	id := int(h.Sum32() & 0x7fffffff)
	if id == 0 {
		id = 1
	}
	return id
}

func lowestPrice(variants []PrintifyVariant) decimal.Decimal {
	if len(variants) == 0 {
		return decimal.Zero
	}
	lowest := variants[0].Price
	for _, v := range variants[1:] {
		if v.Price < lowest {
			lowest = v.Price
		}
	}
	return decimal.New(lowest, -2)
}

func defaultImage(images []PrintifyImage) string {
	for _, img := range images {
		if img.IsDefault {
			return img.Src
		}
	}
	if len(images) > 0 {
		return images[0].Src
	}
	return ""
}

func categoryFromTags(tags []string) string {
	if len(tags) == 0 || tags[0] == "" {
		return FallbackCategory
	}
	r, size := utf8.DecodeRuneInString(tags[0])
	return string(unicode.ToUpper(r)) + tags[0][size:]
}

func stripHTML(s string) string {
	return strings.TrimSpace(htmlTagPattern.ReplaceAllString(s, ""))
}

// PrintifyConfig configures the Printify catalog source.
type PrintifyConfig struct {
	BaseURL string
	ShopID  string
}

// PrintifySource lists a Printify shop's products.
type PrintifySource struct {
	client httpclient.Doer
	cfg    PrintifyConfig
}

// NewPrintifySource builds a source on top of client, which is expected to
// carry the API token as a default Authorization header.
func NewPrintifySource(client httpclient.Doer, cfg PrintifyConfig) *PrintifySource {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultPrintifyBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &PrintifySource{
		client: client,
		cfg:    cfg,
	}
}

func (s *PrintifySource) Name() string { return KindPrintify }

// Load walks every page of the shop's product listing.
func (s *PrintifySource) Load(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	for page := 1; ; page++ {
		p, err := s.fetchPage(ctx, page)
		if err != nil {
			return nil, err
		}
		for _, item := range p.Data {
			products = append(products, MapPrintifyProduct(item))
		}
		if p.LastPage <= page || len(p.Data) == 0 {
			break
		}
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

func (s *PrintifySource) fetchPage(ctx context.Context, page int) (*printifyPage, error) {
	url := fmt.Sprintf("%s/shops/%s/products.json?page=%d&limit=%d", s.cfg.BaseURL, s.cfg.ShopID, page, printifyPageSize)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build printify request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("fetch printify products page %d: %w", page, err)
	}
	defer resp.Body.Close()

	if !httpclient.IsSuccess(resp.StatusCode) {
		return nil, httpclient.ParseResponseError(resp, "printify")
	}

	var out printifyPage
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode printify products page %d: %w", page, err)
	}
	return &out, nil
}
