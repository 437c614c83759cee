package league

import "github.com/sastavapp/sastav-server/internal/sastav"

// Store defines the interface for interacting with players, ranks and the
// match-history ledger.
type Store interface {
	UpsertPlayer(p PlayerInfo) error
	GetPlayer(userID string) (*PlayerInfo, error)
	GetRank(userID, sport string) (int, bool, error)
	UpsertRank(userID, sport string, rank int) error
	InsertHistory(row sastav.MatchHistory) error
	GetHistory(userID, sport string, limit int) ([]sastav.MatchHistory, error)
	Leaderboard(sport string) ([]RankEntry, error)
	FindRankEntry(query, sport string) (*RankEntry, error)
	Clear()
}
