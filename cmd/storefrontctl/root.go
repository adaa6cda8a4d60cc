package main

import (
	"log/slog"
	"maps"

	"github.com/spf13/cobra"

	"github.com/mochico/storefront/internal/config"
	"github.com/mochico/storefront/pkg/logger"
)

// cli carries the state shared by all subcommands.
type cli struct {
	logLevel string
	currency string
	logger   *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "storefrontctl",
		Short: "Operate the Mochi & Co. storefront",
		Long: `storefrontctl inspects and maintains the storefront catalog, talks to the
shop assistant from a terminal and tails the events the service publishes.

Configuration is read from the same environment variables as the server;
flags take precedence.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			c.logger = logger.NewText(c.logLevel, cmd.ErrOrStderr())
			return nil
		},
	}

	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&c.currency, "currency", "", "shop currency, overrides SHOP_CURRENCY")

	root.AddCommand(
		c.catalogCmd(),
		c.chatCmd(),
		c.importCmd(),
		c.eventsCmd(),
	)
	return root
}

// loadConfig loads the service configuration with the given variables taking
// precedence over the environment.
func (c *cli) loadConfig(overrides map[string]string) (*config.Config, error) {
	env := maps.Clone(overrides)
	if env == nil {
		env = make(map[string]string)
	}
	if c.currency != "" {
		env["SHOP_CURRENCY"] = c.currency
	}
	return config.LoadWithOverrides(env)
}
