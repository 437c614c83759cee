package matches

import (
	"sync"

	"github.com/sastavapp/sastav-server/internal/sastav"
)

// MockStore is a mock implementation of the Store interface for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	CreateMatchFunc         func(sport, ownerID string, startTime int64) (*sastav.Match, error)
	GetMatchFunc            func(matchID string) (*sastav.Match, error)
	ListOpenMatchesFunc     func(sport string) ([]*sastav.Match, error)
	ListUserMatchesFunc     func(userID string) ([]*sastav.Match, error)
	JoinMatchFunc           func(p sastav.Participant) error
	LeaveMatchFunc          func(matchID, userID string) error
	GetParticipantsFunc     func(matchID string) ([]sastav.Participant, error)
	SubmitScoreFunc         func(sub sastav.ScoreSubmission) error
	GetLatestSubmissionFunc func(matchID string) (*sastav.ScoreSubmission, error)
	CompleteMatchFunc       func(matchID string, final sastav.Score) (int64, error)
	DeleteChatThreadFunc    func(matchID string) error
	DeleteParticipantsFunc  func(matchID string) error

	// Call records
	JoinMatchCalls          []sastav.Participant
	SubmitScoreCalls        []sastav.ScoreSubmission
	CompleteMatchCalls      []CompleteMatchCall
	DeleteChatThreadCalls   []string
	DeleteParticipantsCalls []string
	ClearCalls              int
}

// CompleteMatchCall holds the arguments of one CompleteMatch call.
type CompleteMatchCall struct {
	MatchID string
	Final   sastav.Score
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

// Reset clears all call records.
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.JoinMatchCalls = nil
	m.SubmitScoreCalls = nil
	m.CompleteMatchCalls = nil
	m.DeleteChatThreadCalls = nil
	m.DeleteParticipantsCalls = nil
	m.ClearCalls = 0
}

func (m *MockStore) CreateMatch(sport, ownerID string, startTime int64) (*sastav.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateMatchFunc != nil {
		return m.CreateMatchFunc(sport, ownerID, startTime)
	}
	return &sastav.Match{ID: "mock-match", Sport: sport, OwnerID: ownerID, StartTime: startTime, Status: sastav.StatusScheduled}, nil
}

func (m *MockStore) GetMatch(matchID string) (*sastav.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetMatchFunc != nil {
		return m.GetMatchFunc(matchID)
	}
	return nil, ErrMatchNotFound
}

func (m *MockStore) ListOpenMatches(sport string) ([]*sastav.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListOpenMatchesFunc != nil {
		return m.ListOpenMatchesFunc(sport)
	}
	return nil, nil
}

func (m *MockStore) ListUserMatches(userID string) ([]*sastav.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListUserMatchesFunc != nil {
		return m.ListUserMatchesFunc(userID)
	}
	return nil, nil
}

func (m *MockStore) JoinMatch(p sastav.Participant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.JoinMatchCalls = append(m.JoinMatchCalls, p)
	if m.JoinMatchFunc != nil {
		return m.JoinMatchFunc(p)
	}
	return nil
}

func (m *MockStore) LeaveMatch(matchID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LeaveMatchFunc != nil {
		return m.LeaveMatchFunc(matchID, userID)
	}
	return nil
}

func (m *MockStore) GetParticipants(matchID string) ([]sastav.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetParticipantsFunc != nil {
		return m.GetParticipantsFunc(matchID)
	}
	return nil, nil
}

func (m *MockStore) SubmitScore(sub sastav.ScoreSubmission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SubmitScoreCalls = append(m.SubmitScoreCalls, sub)
	if m.SubmitScoreFunc != nil {
		return m.SubmitScoreFunc(sub)
	}
	return nil
}

func (m *MockStore) GetLatestSubmission(matchID string) (*sastav.ScoreSubmission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetLatestSubmissionFunc != nil {
		return m.GetLatestSubmissionFunc(matchID)
	}
	return nil, nil
}

func (m *MockStore) CompleteMatch(matchID string, final sastav.Score) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CompleteMatchCalls = append(m.CompleteMatchCalls, CompleteMatchCall{MatchID: matchID, Final: final})
	if m.CompleteMatchFunc != nil {
		return m.CompleteMatchFunc(matchID, final)
	}
	return 1, nil
}

func (m *MockStore) DeleteChatThread(matchID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteChatThreadCalls = append(m.DeleteChatThreadCalls, matchID)
	if m.DeleteChatThreadFunc != nil {
		return m.DeleteChatThreadFunc(matchID)
	}
	return nil
}

func (m *MockStore) DeleteParticipants(matchID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteParticipantsCalls = append(m.DeleteParticipantsCalls, matchID)
	if m.DeleteParticipantsFunc != nil {
		return m.DeleteParticipantsFunc(matchID)
	}
	return nil
}

func (m *MockStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClearCalls++
}
