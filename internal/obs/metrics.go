package obs

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SummariesGenerated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cadetbot_sft_summaries_generated_total",
		Help: "SFT summaries successfully generated.",
	})

	SummaryValidationFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cadetbot_sft_summary_validation_failures_total",
		Help: "Summary requests rejected for under-subscribed groups.",
	})

	ApprovalsRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cadetbot_approvals_recorded_total",
			Help: "Admin confirmations recorded for gated actions.",
		},
		[]string{"action"},
	)

	WipesExecuted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cadetbot_database_wipes_total",
		Help: "Full database wipes executed after two-admin confirmation.",
	})

	BotUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cadetbot_bot_updates_total",
			Help: "Telegram updates handled, by kind.",
		},
		[]string{"kind"},
	)
)

// Init registers the metrics with the default registry.
func Init() {
	prometheus.MustRegister(
		SummariesGenerated,
		SummaryValidationFailures,
		ApprovalsRecorded,
		WipesExecuted,
		BotUpdates,
	)
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
