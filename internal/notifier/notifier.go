package notifier

import (
	"github.com/sastavapp/sastav-server/internal/league"
	"github.com/sastavapp/sastav-server/internal/sastav"
	"github.com/sastavapp/sastav-server/internal/settlement"
)

// Notifier defines a high-level interface for sending notifications about business events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// For settled matches
	SendResultNotification(res *settlement.Result, dryRun bool) error
	// For slash commands
	SendLeaderboard(sport sastav.Sport, entries []league.RankEntry, dryRun bool) error

	// For formatting responses for slash commands
	FormatLeaderboardResponse(sport sastav.Sport, entries []league.RankEntry) (any, error)
	FormatPlayerRankResponse(entry league.RankEntry, history []sastav.MatchHistory) (any, error)
	FormatPlayerNotFoundResponse(query string) (any, error)
}
