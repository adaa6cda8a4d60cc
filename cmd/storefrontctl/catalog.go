package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/currency"

	"github.com/mochico/storefront/internal/app"
	"github.com/mochico/storefront/internal/catalog"
	"github.com/mochico/storefront/internal/config"
	"github.com/mochico/storefront/internal/domain"
	"github.com/mochico/storefront/internal/event"
	"github.com/mochico/storefront/internal/service"
)

func (c *cli) catalogCmd() *cobra.Command {
	var (
		category string
		source   string
		file     string
		delay    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List categories and products",
		Long: `Loads the catalog from the configured source and prints its categories
followed by the products, each with its price and average rating.`,
		Example: `  storefrontctl catalog
  storefrontctl catalog --category kitchen
  storefrontctl catalog --file products.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			overrides := map[string]string{"CATALOG_MEMORY_DELAY": delay.String()}
			if file != "" {
				overrides["CATALOG_SOURCE"] = catalog.KindFile
				overrides["CATALOG_FILE"] = file
			}
			if source != "" {
				overrides["CATALOG_SOURCE"] = source
			}
			cfg, err := c.loadConfig(overrides)
			if err != nil {
				return err
			}
			unit, err := domain.ParseCurrency(cfg.Currency)
			if err != nil {
				return err
			}

			src, closeSource, err := c.catalogSource(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeSource()

			products, err := src.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("load %s catalog: %w", src.Name(), err)
			}

			svc := service.NewCatalogService(products, nil, event.NewProducer(nil, cfg.Currency, c.logger), c.logger)
			resolved, ok := svc.ResolveCategory(category)
			if !ok {
				return fmt.Errorf("unknown category %q", category)
			}
			return printCatalog(cmd.Context(), cmd.OutOrStdout(), svc, resolved, unit)
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "only list products in this category (name or slug)")
	cmd.Flags().StringVar(&source, "source", "", "catalog source: memory, file, printify or postgres")
	cmd.Flags().StringVarP(&file, "file", "f", "", "read the catalog from a CSV or YAML file")
	cmd.Flags().DurationVar(&delay, "delay", 0, "simulated load delay of the memory source")
	return cmd
}

// catalogSource builds the source named by cfg. The returned func releases
// any connection the source holds.
func (c *cli) catalogSource(ctx context.Context, cfg *config.Config) (catalog.Source, func(), error) {
	switch cfg.CatalogSource {
	case catalog.KindFile:
		return catalog.NewFileSource(cfg.CatalogFile), func() {}, nil
	case catalog.KindPrintify:
		return app.NewPrintifySource(cfg, c.logger), func() {}, nil
	case catalog.KindPostgres:
		pool, err := app.OpenPostgres(ctx, cfg, c.logger)
		if err != nil {
			return nil, nil, err
		}
		return catalog.NewPostgresSource(pool), pool.Close, nil
	default:
		return catalog.NewMemorySource(cfg.CatalogMemoryDelay), func() {}, nil
	}
}

func printCatalog(ctx context.Context, out io.Writer, svc *service.CatalogService, category string, unit currency.Unit) error {
	categories := svc.Categories(ctx)
	names := make([]string, 0, len(categories))
	for _, cv := range categories {
		names = append(names, fmt.Sprintf("%s (%d)", cv.Name, cv.ProductCount))
	}
	if _, err := fmt.Fprintf(out, "Categories: %s\n\n", strings.Join(names, ", ")); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tRATING\tREVIEWS")
	for _, p := range domain.FilterByCategory(svc.Snapshot(), category) {
		summary := domain.Summarize(p)
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.1f\t%d\n",
			p.ID, p.Name, p.Category, domain.FormatMoney(unit, p.Price), summary.AverageRating, summary.TotalCount)
	}
	return tw.Flush()
}
