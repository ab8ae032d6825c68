package poller

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feedsift_fetches_total",
		Help: "Number of feed fetch attempts by outcome",
	}, []string{"feed", "status"})

	itemsFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "feedsift_items_fetched_total",
		Help: "Number of candidate items returned by upstream feeds",
	})

	itemsDuplicateTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "feedsift_items_duplicate_total",
		Help: "Number of candidate items skipped as already known",
	})

	itemsAcceptedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "feedsift_items_accepted_total",
		Help: "Number of new items accepted into the stored feeds",
	})

	itemsRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "feedsift_items_rejected_total",
		Help: "Number of new items rejected by the filter",
	})

	snapshotErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "feedsift_snapshot_errors_total",
		Help: "Number of failed known-items snapshot writes",
	})
)
