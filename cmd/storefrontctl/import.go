package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mochico/storefront/internal/app"
	"github.com/mochico/storefront/internal/catalog"
)

func (c *cli) importCmd() *cobra.Command {
	var (
		format string
		upsert bool
	)

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Validate a CSV or YAML catalog file",
		Long: `Parses and validates a catalog file. The format follows the file extension
unless --format is given. With --upsert the products are written to the
PostgreSQL catalog, replacing rows with the same id.`,
		Example: `  storefrontctl import products.csv
  storefrontctl import catalog.yaml --upsert`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if format == "" {
				format = catalog.FormatFromPath(path)
			}

			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			products, err := catalog.Decode(f, format)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d products OK\n", path, len(products))

			if !upsert {
				return nil
			}

			cfg, err := c.loadConfig(nil)
			if err != nil {
				return err
			}
			pool, err := app.OpenPostgres(cmd.Context(), cfg, c.logger)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := catalog.NewPostgresSource(pool).UpsertProducts(cmd.Context(), products); err != nil {
				return err
			}
			c.logger.Info("catalog imported",
				slog.String("file", path),
				slog.Int("products", len(products)),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "upserted %d products into %s\n", len(products), cfg.DBName)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "file format: csv or yaml")
	cmd.Flags().BoolVar(&upsert, "upsert", false, "write the products to PostgreSQL")
	return cmd
}
