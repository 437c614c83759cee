package settlement_test

import (
	"errors"
	"testing"

	"github.com/sastavapp/sastav-server/internal/catalog"
	"github.com/sastavapp/sastav-server/internal/league"
	"github.com/sastavapp/sastav-server/internal/matches"
	"github.com/sastavapp/sastav-server/internal/metrics"
	"github.com/sastavapp/sastav-server/internal/pubsub"
	"github.com/sastavapp/sastav-server/internal/ranking"
	"github.com/sastavapp/sastav-server/internal/sastav"
	"github.com/sastavapp/sastav-server/internal/settlement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testNotifier struct {
	calls []*settlement.Result
	err   error
}

func (n *testNotifier) SendResultNotification(res *settlement.Result, dryRun bool) error {
	n.calls = append(n.calls, res)
	return n.err
}

type fixture struct {
	engine   *settlement.Engine
	matches  *matches.MockStore
	ranks    *league.MockStore
	notifier *testNotifier
	metrics  *metrics.Mock
	pubsub   *pubsub.MockPubSubClient
}

func newFixture() *fixture {
	cat := catalog.NewStatic(
		sastav.Sport{ID: "tennis", Name: "Tennis", Category: sastav.CategoryRacket},
		sastav.Sport{ID: "football", Name: "Football", Category: sastav.CategoryTeam},
	)
	f := &fixture{
		matches:  matches.NewMock(),
		ranks:    league.NewMock(),
		notifier: &testNotifier{},
		metrics:  metrics.NewMock(),
		pubsub:   pubsub.NewMock("TEST"),
	}
	f.engine = settlement.New(f.matches, f.ranks, cat, f.notifier, f.metrics, f.pubsub)
	return f
}

// scheduleMatch wires the match store mocks for a scheduled football match
// with the given rosters and latest submitted score.
func (f *fixture) scheduleMatch(sport string, team1, team2 []string, score sastav.Score) {
	f.matches.GetMatchFunc = func(matchID string) (*sastav.Match, error) {
		return &sastav.Match{ID: matchID, Sport: sport, Status: sastav.StatusScheduled}, nil
	}
	f.matches.GetParticipantsFunc = func(matchID string) ([]sastav.Participant, error) {
		var roster []sastav.Participant
		for _, id := range team1 {
			roster = append(roster, sastav.Participant{MatchID: matchID, UserID: id, Team: sastav.Team1, Name: id})
		}
		for _, id := range team2 {
			roster = append(roster, sastav.Participant{MatchID: matchID, UserID: id, Team: sastav.Team2, Name: id})
		}
		return roster, nil
	}
	f.matches.GetLatestSubmissionFunc = func(matchID string) (*sastav.ScoreSubmission, error) {
		submitter := ""
		if len(team1) > 0 {
			submitter = team1[0]
		}
		return &sastav.ScoreSubmission{MatchID: matchID, UserID: submitter, Score: score, SubmittedAt: 100}, nil
	}
}

func (f *fixture) setRanks(ranks map[string]int) {
	f.ranks.GetRankFunc = func(userID, sport string) (int, bool, error) {
		rank, ok := ranks[userID]
		return rank, ok, nil
	}
}

func teamScore(my, opp int) sastav.Score {
	return sastav.Score{Team: &sastav.TeamScore{My: my, Opp: opp}}
}

func TestCompleteQuestionnaire(t *testing.T) {
	f := newFixture()

	player := league.PlayerInfo{ID: "u1", Name: "Ana", Surname: "Kovač", Username: "anak"}
	rank, err := f.engine.CompleteQuestionnaire(player, "tennis", [4]int{0, 0, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, 250, rank)

	require.Len(t, f.ranks.UpsertPlayerCalls, 1)
	assert.Equal(t, player, f.ranks.UpsertPlayerCalls[0])

	require.Len(t, f.ranks.UpsertRankCalls, 1)
	assert.Equal(t, league.UpsertRankCall{UserID: "u1", Sport: "tennis", Rank: 250}, f.ranks.UpsertRankCalls[0])

	assert.Equal(t, 1, f.metrics.QuestionnairesCompleted())
}

func TestCompleteQuestionnaire_UnknownSport(t *testing.T) {
	f := newFixture()

	_, err := f.engine.CompleteQuestionnaire(league.PlayerInfo{ID: "u1"}, "curling", [4]int{0, 0, 0, 0})
	require.Error(t, err)
	assert.ErrorIs(t, err, settlement.ErrUnknownSport)
	assert.Empty(t, f.ranks.UpsertRankCalls)
}

func TestCompleteQuestionnaire_InvalidAnswers(t *testing.T) {
	f := newFixture()

	_, err := f.engine.CompleteQuestionnaire(league.PlayerInfo{ID: "u1"}, "tennis", [4]int{0, 0, 0, 5})
	require.Error(t, err)
	assert.ErrorIs(t, err, ranking.ErrUnanswered)
	assert.Empty(t, f.ranks.UpsertPlayerCalls, "nothing is persisted on a validation failure")
}

func TestSettleMatch_TeamSport(t *testing.T) {
	f := newFixture()
	f.scheduleMatch("football", []string{"u1", "u2"}, []string{"u3", "u4"}, teamScore(3, 1))
	f.setRanks(map[string]int{"u1": 1100, "u2": 1100, "u3": 1000, "u4": 1000})

	result, err := f.engine.SettleMatch("m1", false)
	require.NoError(t, err)

	assert.Equal(t, sastav.Team1, result.Winner)
	assert.Equal(t, 1100.0, result.Team1Avg)
	assert.Equal(t, 1000.0, result.Team2Avg)
	// The favorite won with a 100 point gap.
	assert.Equal(t, ranking.Exchange{Team1: 10, Team2: -10}, result.Exchange)

	require.Len(t, f.ranks.UpsertRankCalls, 4)
	byUser := make(map[string]int)
	for _, call := range f.ranks.UpsertRankCalls {
		assert.Equal(t, "football", call.Sport)
		byUser[call.UserID] = call.Rank
	}
	assert.Equal(t, 1110, byUser["u1"])
	assert.Equal(t, 1110, byUser["u2"])
	assert.Equal(t, 990, byUser["u3"])
	assert.Equal(t, 990, byUser["u4"])

	// One ledger row per opponent faced: 4 players x 2 opponents.
	require.Len(t, f.ranks.InsertHistoryCalls, 8)
	first := f.ranks.InsertHistoryCalls[0]
	assert.Equal(t, "m1", first.MatchID)
	assert.Equal(t, "u1", first.UserID)
	require.NotNil(t, first.OpponentID)
	assert.Equal(t, "u3", *first.OpponentID)
	assert.Equal(t, sastav.ResultWin, first.Result)
	assert.Equal(t, 1100, first.PointsBefore)
	assert.Equal(t, 1110, first.PointsAfter)
	assert.Equal(t, 10, first.PointsChange)

	require.Len(t, f.matches.CompleteMatchCalls, 1)
	assert.Equal(t, "m1", f.matches.CompleteMatchCalls[0].MatchID)
	assert.Equal(t, []string{"m1"}, f.matches.DeleteChatThreadCalls)

	require.Len(t, f.notifier.calls, 1)
	var topics []string
	for _, call := range f.pubsub.SendMessageCalls {
		topics = append(topics, call.Topic)
	}
	assert.Equal(t, []string{
		string(pubsub.EventCleanupRoster),
		string(pubsub.EventMatchSettled),
		string(pubsub.EventRankUpdated),
		string(pubsub.EventRankUpdated),
		string(pubsub.EventRankUpdated),
		string(pubsub.EventRankUpdated),
	}, topics)
	// The roster is scheduled for cleanup, never deleted inline.
	assert.Empty(t, f.matches.DeleteParticipantsCalls)

	assert.Equal(t, 1, f.metrics.SettlementRuns())
	assert.Equal(t, 0, f.metrics.SettlementFailures())
	assert.Equal(t, 4, f.metrics.RankUpdates())
}

func TestSettleMatch_RacketSport(t *testing.T) {
	f := newFixture()
	score := sastav.Score{Racket: &sastav.RacketScore{Sets: []sastav.SetScore{
		{Team1: 6, Team2: 4},
		{Team1: 3, Team2: 6},
		{Team1: 6, Team2: 2},
	}}}
	f.scheduleMatch("tennis", []string{"u1"}, []string{"u2"}, score)
	f.setRanks(map[string]int{"u1": 400, "u2": 420})

	result, err := f.engine.SettleMatch("m1", false)
	require.NoError(t, err)

	assert.Equal(t, sastav.Team1, result.Winner)
	// The underdog won inside the close band.
	assert.Equal(t, ranking.Exchange{Team1: 20, Team2: -20}, result.Exchange)
}

func TestSettleMatch_DefaultRank(t *testing.T) {
	f := newFixture()
	f.scheduleMatch("football", []string{"u1"}, []string{"u2"}, teamScore(2, 1))
	// Neither player has a rank row yet.
	f.setRanks(map[string]int{})

	result, err := f.engine.SettleMatch("m1", false)
	require.NoError(t, err)

	assert.Equal(t, float64(ranking.DefaultRank), result.Team1Avg)
	assert.Equal(t, float64(ranking.DefaultRank), result.Team2Avg)
	// Equal averages: team 1 is treated as the higher-rated side.
	assert.Equal(t, ranking.Exchange{Team1: 15, Team2: -15}, result.Exchange)
	assert.Equal(t, 1015, result.Players[0].PointsAfter)
}

func TestSettleMatch_EmptyOpposingTeam(t *testing.T) {
	f := newFixture()
	f.scheduleMatch("football", []string{"u1", "u2"}, nil, teamScore(2, 1))
	f.setRanks(map[string]int{"u1": 900, "u2": 900})

	result, err := f.engine.SettleMatch("m1", false)
	require.NoError(t, err)

	// The absent side settles against the neutral default average.
	assert.Equal(t, float64(ranking.DefaultRank), result.Team2Avg)
	assert.Len(t, result.Players, 2)

	// A single ledger row per present player, with no opponent recorded.
	require.Len(t, f.ranks.InsertHistoryCalls, 2)
	for _, row := range f.ranks.InsertHistoryCalls {
		assert.Nil(t, row.OpponentID)
	}
	assert.Len(t, f.ranks.UpsertRankCalls, 2)
}

func TestSettleMatch_NoParticipants(t *testing.T) {
	f := newFixture()
	f.scheduleMatch("football", nil, nil, teamScore(2, 1))
	f.matches.GetParticipantsFunc = func(matchID string) ([]sastav.Participant, error) {
		return nil, nil
	}

	_, err := f.engine.SettleMatch("m1", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, settlement.ErrNoParticipants)
}

func TestSettleMatch_AlreadyCompleted(t *testing.T) {
	f := newFixture()
	f.matches.GetMatchFunc = func(matchID string) (*sastav.Match, error) {
		return &sastav.Match{ID: matchID, Sport: "football", Status: sastav.StatusCompleted}, nil
	}

	_, err := f.engine.SettleMatch("m1", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, settlement.ErrAlreadyCompleted)
	assert.Empty(t, f.ranks.InsertHistoryCalls, "no history is written for a settled match")
	assert.Equal(t, 1, f.metrics.SettlementFailures())
}

func TestSettleMatch_LostConditionalUpdate(t *testing.T) {
	f := newFixture()
	f.scheduleMatch("football", []string{"u1"}, []string{"u2"}, teamScore(2, 1))
	f.setRanks(map[string]int{})
	// A concurrent settlement flips the status between our read and write.
	f.matches.CompleteMatchFunc = func(matchID string, final sastav.Score) (int64, error) {
		return 0, nil
	}

	_, err := f.engine.SettleMatch("m1", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, settlement.ErrAlreadyCompleted)
	assert.Empty(t, f.notifier.calls, "the losing settlement must not notify")
	assert.Empty(t, f.matches.DeleteChatThreadCalls)
	assert.Empty(t, f.pubsub.SendMessageCalls, "no cleanup is scheduled for the losing settlement")
}

func TestSettleMatch_RosterCleanupScheduledAfterCompletion(t *testing.T) {
	f := newFixture()
	f.scheduleMatch("football", []string{"u1"}, []string{"u2"}, teamScore(2, 1))
	f.setRanks(map[string]int{})

	var completedBeforeSchedule bool
	f.pubsub.SendMessageFunc = func(topic pubsub.EventType, data any) error {
		if topic == pubsub.EventCleanupRoster {
			completedBeforeSchedule = len(f.matches.CompleteMatchCalls) == 1
		}
		return nil
	}

	_, err := f.engine.SettleMatch("m1", false)
	require.NoError(t, err)

	require.NotEmpty(t, f.pubsub.SendMessageCalls)
	assert.Equal(t, string(pubsub.EventCleanupRoster), f.pubsub.SendMessageCalls[0].Topic)
	assert.True(t, completedBeforeSchedule, "the roster cleanup is scheduled only once the match is completed")
}

func TestSettleMatch_NoScoreSubmitted(t *testing.T) {
	f := newFixture()
	f.scheduleMatch("football", []string{"u1"}, []string{"u2"}, teamScore(2, 1))
	f.matches.GetLatestSubmissionFunc = func(matchID string) (*sastav.ScoreSubmission, error) {
		return nil, nil
	}

	_, err := f.engine.SettleMatch("m1", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, settlement.ErrNoScoreSubmitted)
}

func TestSettleMatch_TiedScore(t *testing.T) {
	f := newFixture()
	f.scheduleMatch("football", []string{"u1"}, []string{"u2"}, teamScore(2, 2))

	_, err := f.engine.SettleMatch("m1", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ranking.ErrTiedResult)
	assert.Empty(t, f.ranks.InsertHistoryCalls)
	assert.Equal(t, 1, f.metrics.SettlementFailures())
}

func TestSettleMatch_RankUpsertFailureLeavesMatchRetryable(t *testing.T) {
	f := newFixture()
	f.scheduleMatch("football", []string{"u1"}, []string{"u2"}, teamScore(2, 1))
	f.setRanks(map[string]int{})

	upsertErr := errors.New("disk full")
	f.ranks.UpsertRankFunc = func(userID, sport string, rank int) error {
		return upsertErr
	}

	_, err := f.engine.SettleMatch("m1", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, upsertErr)

	var stepErr *settlement.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "upsert rank", stepErr.Step)

	assert.Empty(t, f.matches.CompleteMatchCalls, "the match must not be finalized after a failed write")
	assert.Empty(t, f.notifier.calls)
}

func TestSettleMatch_DryRun(t *testing.T) {
	f := newFixture()
	f.scheduleMatch("football", []string{"u1"}, []string{"u2"}, teamScore(3, 1))
	f.setRanks(map[string]int{"u1": 1000, "u2": 1200})

	result, err := f.engine.SettleMatch("m1", true)
	require.NoError(t, err)

	// The full outcome is computed...
	assert.Equal(t, sastav.Team1, result.Winner)
	assert.Equal(t, ranking.Exchange{Team1: 25, Team2: -25}, result.Exchange)

	// ...but nothing is persisted or announced.
	assert.Empty(t, f.ranks.InsertHistoryCalls)
	assert.Empty(t, f.ranks.UpsertRankCalls)
	assert.Empty(t, f.matches.CompleteMatchCalls)
	assert.Empty(t, f.matches.DeleteChatThreadCalls)
	assert.Empty(t, f.notifier.calls)
	assert.Empty(t, f.pubsub.SendMessageCalls)
}
