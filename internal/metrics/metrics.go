package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	SummaryRecomputeTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "platewise_summary_recompute_total",
		Help: "Daily summary recomputes by outcome.",
	}, []string{"status"})

	SummaryRecomputeSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "platewise_summary_recompute_seconds",
		Help:    "Time spent recomputing a daily summary.",
		Buckets: prometheus.DefBuckets,
	})

	MalformedEntriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "platewise_malformed_food_entries_total",
		Help: "Food entries with missing or non-numeric fields seen during aggregation.",
	})

	LiveSubscriptions = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "platewise_live_subscriptions",
		Help: "Active live query subscriptions.",
	}, []string{"view"})

	ReconcilePendingDays = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "platewise_reconcile_pending_days",
		Help: "Days waiting for a summary retry.",
	})

	MealWritesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "platewise_meal_writes_total",
		Help: "Meal and food mutations by operation.",
	}, []string{"operation"})
)

func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		SummaryRecomputeTotal,
		SummaryRecomputeSeconds,
		MalformedEntriesTotal,
		LiveSubscriptions,
		ReconcilePendingDays,
		MealWritesTotal,
	)
}
