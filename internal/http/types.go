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

type Server struct {
	Matches        matches.Store
	League         league.Store
	Catalog        *catalog.Catalog
	Engine         *settlement.Engine
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Notifier       notifier.Notifier
	Router         *http.ServeMux
	pubsub         pubsub.PubSubClient
}
