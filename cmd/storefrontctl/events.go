package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mochico/storefront/internal/event"
	pkgkafka "github.com/mochico/storefront/pkg/kafka"
)

var errNoBrokers = errors.New("no kafka brokers configured, set KAFKA_BROKERS or --brokers")

func (c *cli) eventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect storefront events",
	}
	cmd.AddCommand(c.eventsTailCmd())
	return cmd
}

func (c *cli) eventsTailCmd() *cobra.Command {
	var (
		brokers   []string
		topics    []string
		group     string
		fromStart bool
	)

	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Print storefront events as they arrive",
		Long: `Follows the storefront topics and prints one line per event until
interrupted. Without --topic all storefront topics are followed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			overrides := map[string]string{}
			if len(brokers) > 0 {
				overrides["KAFKA_BROKERS"] = strings.Join(brokers, ",")
			}
			cfg, err := c.loadConfig(overrides)
			if err != nil {
				return err
			}
			if !cfg.KafkaEnabled() {
				return errNoBrokers
			}
			if len(topics) == 0 {
				topics = []string{event.TopicCartUpdated, event.TopicReviewCreated, event.TopicOrderSubmitted}
			}

			startOffset := kafka.LastOffset
			if fromStart {
				startOffset = kafka.FirstOffset
			}

			handler := printEvents(cmd.OutOrStdout())
			g, ctx := errgroup.WithContext(cmd.Context())
			for _, topic := range topics {
				consumer := pkgkafka.NewConsumer(pkgkafka.ConsumerConfig{
					Brokers:     cfg.KafkaBrokers,
					GroupID:     group,
					Topic:       topic,
					StartOffset: startOffset,
				}, handler, c.logger)
				g.Go(func() error {
					return consumer.Start(ctx)
				})
			}
			return g.Wait()
		},
	}

	cmd.Flags().StringSliceVar(&brokers, "brokers", nil, "kafka brokers, overrides KAFKA_BROKERS")
	cmd.Flags().StringSliceVarP(&topics, "topic", "t", nil, "topic to follow (repeatable)")
	cmd.Flags().StringVar(&group, "group", "", "consumer group; empty reads without committing offsets")
	cmd.Flags().BoolVar(&fromStart, "from-start", false, "start at the oldest retained event")
	return cmd
}

// printEvents returns a handler writing one line per event to w. It is safe
// for use by several consumers at once.
func printEvents(w io.Writer) pkgkafka.Handler {
	var mu sync.Mutex
	return func(_ context.Context, e *pkgkafka.Event) error {
		mu.Lock()
		defer mu.Unlock()
		line := fmt.Sprintf("%s  %-28s %s/%s  %s",
			e.Timestamp.UTC().Format(time.RFC3339),
			e.EventType,
			e.AggregateType,
			e.AggregateID,
			e.Data,
		)
		if sid := e.SessionID(); sid != "" {
			line += "  session=" + sid
		}
		_, err := fmt.Fprintln(w, line)
		return err
	}
}

