package notifier

import (
	"sync"

	"github.com/sastavapp/sastav-server/internal/league"
	"github.com/sastavapp/sastav-server/internal/sastav"
	"github.com/sastavapp/sastav-server/internal/settlement"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Call records
	SendResultNotificationCalls []*settlement.Result
	SendLeaderboardCalls        []sastav.Sport

	// Spies for format functions
	FormatLeaderboardResponseFunc    func(sport sastav.Sport, entries []league.RankEntry) (any, error)
	FormatPlayerRankResponseFunc     func(entry league.RankEntry, history []sastav.MatchHistory) (any, error)
	FormatPlayerNotFoundResponseFunc func(query string) (any, error)

	// Spies for send functions
	SendResultNotificationFunc func(res *settlement.Result, dryRun bool) error
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendResultNotificationCalls = nil
	m.SendLeaderboardCalls = nil
}

func (m *Mock) SendResultNotification(res *settlement.Result, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendResultNotificationCalls = append(m.SendResultNotificationCalls, res)
	if m.SendResultNotificationFunc != nil {
		return m.SendResultNotificationFunc(res, dryRun)
	}
	return nil
}

func (m *Mock) SendLeaderboard(sport sastav.Sport, entries []league.RankEntry, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendLeaderboardCalls = append(m.SendLeaderboardCalls, sport)
	return nil
}

func (m *Mock) FormatLeaderboardResponse(sport sastav.Sport, entries []league.RankEntry) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatLeaderboardResponseFunc != nil {
		return m.FormatLeaderboardResponseFunc(sport, entries)
	}
	return "formatted_leaderboard", nil
}

func (m *Mock) FormatPlayerRankResponse(entry league.RankEntry, history []sastav.MatchHistory) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatPlayerRankResponseFunc != nil {
		return m.FormatPlayerRankResponseFunc(entry, history)
	}
	return "formatted_player_rank", nil
}

func (m *Mock) FormatPlayerNotFoundResponse(query string) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatPlayerNotFoundResponseFunc != nil {
		return m.FormatPlayerNotFoundResponseFunc(query)
	}
	return "formatted_player_not_found", nil
}
