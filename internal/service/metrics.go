package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CatalogProducts reports the number of products currently served.
	CatalogProducts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "storefront_catalog_products",
			Help: "Number of products in the loaded catalog",
		},
	)

	ReviewsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_reviews_created_total",
			Help: "Total number of reviews added to the catalog",
		},
	)

	// CheckoutsTotal counts checkout attempts by outcome (success, failure).
	CheckoutsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_checkouts_total",
			Help: "Total number of checkout submissions by outcome",
		},
		[]string{"outcome"},
	)

	// ChatRepliesTotal counts assistant replies by kind: completion or one
	// of the fallback reasons.
	ChatRepliesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_chat_replies_total",
			Help: "Total number of assistant replies by kind",
		},
		[]string{"kind"},
	)

	SessionConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_session_write_conflicts_total",
			Help: "Total number of session writes retried after a version conflict",
		},
	)
)
