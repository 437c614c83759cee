package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                      sync.Mutex
	questionnairesCompleted int
	settlementRuns          int
	settlementFailures      int
	rankUpdates             int
	settlementDurations     []float64
	slackNotifSent          int
	slackNotifFailed        int
	startupTime             float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		settlementDurations: make([]float64, 0),
	}
}

func (m *Mock) IncQuestionnairesCompleted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.questionnairesCompleted++
}

func (m *Mock) IncSettlementRuns() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settlementRuns++
}

func (m *Mock) IncSettlementFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settlementFailures++
}

func (m *Mock) IncRankUpdates() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rankUpdates++
}

func (m *Mock) ObserveSettlementDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settlementDurations = append(m.settlementDurations, duration)
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifSent++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifFailed++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// QuestionnairesCompleted returns the number of times IncQuestionnairesCompleted was called.
func (m *Mock) QuestionnairesCompleted() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.questionnairesCompleted
}

// SettlementRuns returns the number of times IncSettlementRuns was called.
func (m *Mock) SettlementRuns() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settlementRuns
}

// SettlementFailures returns the number of times IncSettlementFailures was called.
func (m *Mock) SettlementFailures() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settlementFailures
}

// RankUpdates returns the number of times IncRankUpdates was called.
func (m *Mock) RankUpdates() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rankUpdates
}

// SlackNotifSent returns the number of times IncSlackNotifSent was called.
func (m *Mock) SlackNotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifSent
}

// SlackNotifFailed returns the number of times IncSlackNotifFailed was called.
func (m *Mock) SlackNotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifFailed
}
