package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		QuestionnairesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sastav_questionnaires_completed_total",
			Help: "The total number of onboarding questionnaires converted into a starting rank.",
		}),
		SettlementRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sastav_settlement_runs_total",
			Help: "The total number of match settlement attempts.",
		}),
		SettlementFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sastav_settlement_failures_total",
			Help: "The total number of settlement attempts that reported an error.",
		}),
		RankUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sastav_rank_updates_total",
			Help: "The total number of rank rows written by settlement.",
		}),
		SettlementDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sastav_settlement_duration_seconds",
			Help:    "The duration of individual match settlements.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sastav_slack_notifications_sent_total",
			Help: "The total number of Slack notifications successfully sent.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sastav_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sastav_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.QuestionnairesCompleted,
		s.SettlementRuns,
		s.SettlementFailures,
		s.RankUpdates,
		s.SettlementDuration,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncQuestionnairesCompleted() {
	s.QuestionnairesCompleted.Inc()
}

func (s *Service) IncSettlementRuns() {
	s.SettlementRuns.Inc()
}

func (s *Service) IncSettlementFailures() {
	s.SettlementFailures.Inc()
}

func (s *Service) IncRankUpdates() {
	s.RankUpdates.Inc()
}

func (s *Service) ObserveSettlementDuration(duration float64) {
	s.SettlementDuration.Observe(duration)
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
