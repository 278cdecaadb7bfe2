// Package metrics exposes Prometheus counters for report activity.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "daily_report"

var (
	ReportsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reports_created_total",
		Help:      "Daily reports created.",
	})

	TripEntryMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "trip_entry_mutations_total",
		Help:      "Trip entry mutations by operation.",
	}, []string{"op"})

	TotalsRecalculations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "report_totals_recalculations_total",
		Help:      "Report total recomputations after trip entry changes.",
	})

	AuthorizationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authorization_failures_total",
		Help:      "Rejected operations by reason.",
	}, []string{"reason"})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
