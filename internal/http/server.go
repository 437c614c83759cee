package http

import (
	"net/http"

	"github.com/sastavapp/sastav-server/internal/catalog"
	"github.com/sastavapp/sastav-server/internal/config"
	"github.com/sastavapp/sastav-server/internal/league"
	"github.com/sastavapp/sastav-server/internal/matches"
	"github.com/sastavapp/sastav-server/internal/metrics"
	"github.com/sastavapp/sastav-server/internal/notifier"
	"github.com/sastavapp/sastav-server/internal/pubsub"
	"github.com/sastavapp/sastav-server/internal/settlement"
)

func NewServer(matchStore matches.Store, leagueStore league.Store, cat *catalog.Catalog, engine *settlement.Engine, metricsSvc metrics.Metrics, metricsHandler http.Handler, cfg config.Config, notifier notifier.Notifier, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		Matches:        matchStore,
		League:         leagueStore,
		Catalog:        cat,
		Engine:         engine,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Notifier:       notifier,
		Router:         http.NewServeMux(),
		pubsub:         pubsub,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// This makes it easy to add more middlewares in the future, like an authentication middleware.
	// e.g. Chain(s.MyHandler(), paramsMiddleware, authMiddleware)
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("/health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("/clear", Chain(s.ClearStoreHandler(), paramsMiddleware))
	s.Router.Handle("/sports", Chain(s.ListSportsHandler(), paramsMiddleware))
	s.Router.Handle("/questionnaire", Chain(s.QuestionnaireHandler(), paramsMiddleware))
	s.Router.Handle("/matches", Chain(s.ListMatchesHandler(), paramsMiddleware))
	s.Router.Handle("/matches/create", Chain(s.CreateMatchHandler(), paramsMiddleware))
	s.Router.Handle("/matches/join", Chain(s.JoinMatchHandler(), paramsMiddleware))
	s.Router.Handle("/matches/leave", Chain(s.LeaveMatchHandler(), paramsMiddleware))
	s.Router.Handle("/matches/score", Chain(s.SubmitScoreHandler(), paramsMiddleware))
	s.Router.Handle("/matches/settle", Chain(s.SettleMatchHandler(), paramsMiddleware))
	s.Router.Handle("/matches/history", Chain(s.HistoryHandler(), paramsMiddleware))
	s.Router.Handle("/ranks", Chain(s.LeaderboardHandler(), paramsMiddleware))
	s.Router.Handle("/cleanup-chat", Chain(s.CleanupChatHandler(), paramsMiddleware))
	s.Router.Handle("/cleanup-roster", Chain(s.CleanupRosterHandler(), paramsMiddleware))
	s.Router.Handle("/slack/command/leaderboard", Chain(s.LeaderboardCommandHandler(), paramsMiddleware, slackVerifyMiddleware(s.Cfg.Slack.SigningSecret)))
	s.Router.Handle("/slack/command/rank", Chain(s.PlayerRankCommandHandler(), paramsMiddleware, slackVerifyMiddleware(s.Cfg.Slack.SigningSecret)))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
