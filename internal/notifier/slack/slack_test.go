package slack

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sastavapp/sastav-server/internal/league"
	"github.com/sastavapp/sastav-server/internal/metrics"
	"github.com/sastavapp/sastav-server/internal/ranking"
	"github.com/sastavapp/sastav-server/internal/sastav"
	"github.com/sastavapp/sastav-server/internal/settlement"
	slackapi "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSlackAPI is a mock implementation of the parts of the slack.Client that we use.
type mockSlackAPI struct {
	postMessageContextFunc func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error)
}

func (m *mockSlackAPI) PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
	if m.postMessageContextFunc != nil {
		return m.postMessageContextFunc(ctx, channelID, options...)
	}
	return "C12345", "123456789.12345", nil
}

func TestSendMessage_DryRun(t *testing.T) {
	metrics := metrics.NewMock()
	// Pass nil for the api, as it shouldn't be called in dry-run mode.
	notifier := NewNotifierWithAPI(nil, "C123", metrics)

	message := slackapi.NewBlockMessage()
	_, _, err := notifier.sendMessage(message, true)
	require.NoError(t, err)
	assert.Equal(t, 0, metrics.SlackNotifSent())
}

func TestSendMessage_Success(t *testing.T) {
	postMessageCalled := false
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			postMessageCalled = true
			assert.Equal(t, "C123", channelID)
			return "C123", "ts123", nil
		},
	}

	metrics := metrics.NewMock()
	notifier := NewNotifierWithAPI(api, "C123", metrics)

	message := slackapi.NewBlockMessage(slackapi.NewSectionBlock(slackapi.NewTextBlockObject("plain_text", "hello", false, false), nil, nil))
	_, _, err := notifier.sendMessage(message, false)

	require.NoError(t, err)
	assert.True(t, postMessageCalled, "PostMessageContext should have been called")
	assert.Equal(t, 1, metrics.SlackNotifSent())
	assert.Equal(t, 0, metrics.SlackNotifFailed())
}

func TestSendMessage_Failure(t *testing.T) {
	postMessageCalled := false
	expectedErr := errors.New("slack API is down")
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			postMessageCalled = true
			return "", "", expectedErr
		},
	}

	metrics := metrics.NewMock()
	notifier := NewNotifierWithAPI(api, "C123", metrics)

	message := slackapi.NewBlockMessage()
	_, _, err := notifier.sendMessage(message, false)

	require.Error(t, err)
	assert.ErrorIs(t, err, expectedErr)
	assert.True(t, postMessageCalled)
	assert.Equal(t, 0, metrics.SlackNotifSent())
	assert.Equal(t, 1, metrics.SlackNotifFailed())
}

func testResult() *settlement.Result {
	return &settlement.Result{
		Match: &sastav.Match{
			ID:        "match-1",
			Sport:     "football",
			StartTime: time.Date(2026, 5, 2, 18, 0, 0, 0, time.UTC).Unix(),
			Status:    sastav.StatusCompleted,
		},
		Sport:  sastav.Sport{ID: "football", Name: "Football", Category: sastav.CategoryTeam},
		Winner: sastav.Team1,
		FinalScore: sastav.Score{
			Team: &sastav.TeamScore{My: 3, Opp: 1},
		},
		Exchange: ranking.Exchange{Team1: 20, Team2: -15},
		Team1Avg: 980,
		Team2Avg: 1010,
		Players: []settlement.PlayerOutcome{
			{
				Participant:  sastav.Participant{UserID: "u1", Team: sastav.Team1, Name: "Ana", Surname: "Kovač"},
				Result:       sastav.ResultWin,
				PointsBefore: 980,
				PointsAfter:  1000,
				PointsChange: 20,
			},
			{
				Participant:  sastav.Participant{UserID: "u2", Team: sastav.Team2, Name: "Marko", Surname: "Horvat"},
				Result:       sastav.ResultLoss,
				PointsBefore: 1010,
				PointsAfter:  995,
				PointsChange: -15,
			},
		},
	}
}

func TestSendResultNotification(t *testing.T) {
	var sentBlocks int
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			sentBlocks = len(options)
			return "C123", "ts123", nil
		},
	}

	metrics := metrics.NewMock()
	notifier := NewNotifierWithAPI(api, "C123", metrics)

	err := notifier.SendResultNotification(testResult(), false)
	require.NoError(t, err)
	assert.NotZero(t, sentBlocks)
	assert.Equal(t, 1, metrics.SlackNotifSent())
}

func TestFormatResultNotification(t *testing.T) {
	notifier := NewNotifierWithAPI(nil, "C123", metrics.NewMock())

	msg := notifier.formatResultNotification(testResult())
	require.NotEmpty(t, msg.Blocks.BlockSet)

	header, ok := msg.Blocks.BlockSet[0].(*slackapi.HeaderBlock)
	require.True(t, ok, "first block should be a header")
	assert.Contains(t, header.Text.Text, "Football")
}

func TestFormatResultNotification_RacketScore(t *testing.T) {
	notifier := NewNotifierWithAPI(nil, "C123", metrics.NewMock())

	res := testResult()
	res.Sport = sastav.Sport{ID: "tennis", Name: "Tennis", Category: sastav.CategoryRacket}
	res.FinalScore = sastav.Score{
		Racket: &sastav.RacketScore{Sets: []sastav.SetScore{{Team1: 6, Team2: 4}, {Team1: 7, Team2: 5}}},
	}

	msg := notifier.formatResultNotification(res)

	var scoreText string
	for _, block := range msg.Blocks.BlockSet {
		if section, ok := block.(*slackapi.SectionBlock); ok && section.Text != nil {
			scoreText += section.Text.Text + "\n"
		}
	}
	assert.Contains(t, scoreText, "6-4, 7-5")
}

func TestFormatLeaderboard(t *testing.T) {
	notifier := NewNotifierWithAPI(nil, "C123", metrics.NewMock())
	sport := sastav.Sport{ID: "padel", Name: "Padel", Category: sastav.CategoryRacket}

	entries := []league.RankEntry{
		{UserID: "u1", Name: "Ana", Surname: "Kovač", Rank: 1200},
		{UserID: "u2", Name: "Marko", Surname: "Horvat", Rank: 990},
	}

	msg := notifier.formatLeaderboard(sport, entries)
	// Header + one section per entry.
	require.Len(t, msg.Blocks.BlockSet, 3)

	first, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
	require.True(t, ok)
	assert.Contains(t, first.Text.Text, "🥇")
	assert.Contains(t, first.Text.Text, "Ana")
	assert.Contains(t, first.Text.Text, "1200")
}

func TestFormatLeaderboard_Empty(t *testing.T) {
	notifier := NewNotifierWithAPI(nil, "C123", metrics.NewMock())
	sport := sastav.Sport{ID: "padel", Name: "Padel", Category: sastav.CategoryRacket}

	msg := notifier.formatLeaderboard(sport, nil)
	require.Len(t, msg.Blocks.BlockSet, 2)

	section, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
	require.True(t, ok)
	assert.Contains(t, section.Text.Text, "No ranked players")
}

func TestFormatPlayerNotFound(t *testing.T) {
	notifier := NewNotifierWithAPI(nil, "C123", metrics.NewMock())

	resp, err := notifier.FormatPlayerNotFoundResponse("ghost")
	require.NoError(t, err)

	msg, ok := resp.(slackapi.Message)
	require.True(t, ok)
	section, ok := msg.Blocks.BlockSet[0].(*slackapi.SectionBlock)
	require.True(t, ok)
	assert.Contains(t, section.Text.Text, "ghost")
}
