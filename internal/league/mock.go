package league

import (
	"fmt"
	"sync"

	"github.com/sastavapp/sastav-server/internal/sastav"
)

// MockStore is a mock implementation of the Store interface for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	UpsertPlayerFunc  func(p PlayerInfo) error
	GetPlayerFunc     func(userID string) (*PlayerInfo, error)
	GetRankFunc       func(userID, sport string) (int, bool, error)
	UpsertRankFunc    func(userID, sport string, rank int) error
	InsertHistoryFunc func(row sastav.MatchHistory) error
	GetHistoryFunc    func(userID, sport string, limit int) ([]sastav.MatchHistory, error)
	LeaderboardFunc   func(sport string) ([]RankEntry, error)
	FindRankEntryFunc func(query, sport string) (*RankEntry, error)

	// Call records
	UpsertPlayerCalls  []PlayerInfo
	UpsertRankCalls    []UpsertRankCall
	InsertHistoryCalls []sastav.MatchHistory
	GetRankCalls       []GetRankCall
	ClearCalls         int
}

// UpsertRankCall holds the arguments of one UpsertRank call.
type UpsertRankCall struct {
	UserID string
	Sport  string
	Rank   int
}

// GetRankCall holds the arguments of one GetRank call.
type GetRankCall struct {
	UserID string
	Sport  string
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

// Reset clears all call records.
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertPlayerCalls = nil
	m.UpsertRankCalls = nil
	m.InsertHistoryCalls = nil
	m.GetRankCalls = nil
	m.ClearCalls = 0
}

func (m *MockStore) UpsertPlayer(p PlayerInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertPlayerCalls = append(m.UpsertPlayerCalls, p)
	if m.UpsertPlayerFunc != nil {
		return m.UpsertPlayerFunc(p)
	}
	return nil
}

func (m *MockStore) GetPlayer(userID string) (*PlayerInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetPlayerFunc != nil {
		return m.GetPlayerFunc(userID)
	}
	return &PlayerInfo{ID: userID}, nil
}

func (m *MockStore) GetRank(userID, sport string) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetRankCalls = append(m.GetRankCalls, GetRankCall{UserID: userID, Sport: sport})
	if m.GetRankFunc != nil {
		return m.GetRankFunc(userID, sport)
	}
	return 0, false, nil
}

func (m *MockStore) UpsertRank(userID, sport string, rank int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertRankCalls = append(m.UpsertRankCalls, UpsertRankCall{UserID: userID, Sport: sport, Rank: rank})
	if m.UpsertRankFunc != nil {
		return m.UpsertRankFunc(userID, sport, rank)
	}
	return nil
}

func (m *MockStore) InsertHistory(row sastav.MatchHistory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InsertHistoryCalls = append(m.InsertHistoryCalls, row)
	if m.InsertHistoryFunc != nil {
		return m.InsertHistoryFunc(row)
	}
	return nil
}

func (m *MockStore) GetHistory(userID, sport string, limit int) ([]sastav.MatchHistory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetHistoryFunc != nil {
		return m.GetHistoryFunc(userID, sport, limit)
	}
	return nil, nil
}

func (m *MockStore) Leaderboard(sport string) ([]RankEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LeaderboardFunc != nil {
		return m.LeaderboardFunc(sport)
	}
	return nil, nil
}

func (m *MockStore) FindRankEntry(query, sport string) (*RankEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindRankEntryFunc != nil {
		return m.FindRankEntryFunc(query, sport)
	}
	return nil, fmt.Errorf("no ranked player matching %q for %s", query, sport)
}

func (m *MockStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClearCalls++
}
