package settlement

import (
	"github.com/sastavapp/sastav-server/internal/league"
	"github.com/sastavapp/sastav-server/internal/sastav"
)

// MatchStore is the slice of the match store the engine depends on.
type MatchStore interface {
	GetMatch(matchID string) (*sastav.Match, error)
	GetParticipants(matchID string) ([]sastav.Participant, error)
	GetLatestSubmission(matchID string) (*sastav.ScoreSubmission, error)
	CompleteMatch(matchID string, final sastav.Score) (int64, error)
	DeleteChatThread(matchID string) error
}

// RankStore is the slice of the league store the engine depends on.
type RankStore interface {
	UpsertPlayer(p league.PlayerInfo) error
	GetRank(userID, sport string) (int, bool, error)
	UpsertRank(userID, sport string, rank int) error
	InsertHistory(row sastav.MatchHistory) error
}

// Notifier is the notification surface the engine depends on.
type Notifier interface {
	SendResultNotification(res *Result, dryRun bool) error
}
