package slack

import (
	"fmt"
	"strings"
	"time"

	"github.com/sastavapp/sastav-server/internal/league"
	"github.com/sastavapp/sastav-server/internal/sastav"
	"github.com/sastavapp/sastav-server/internal/settlement"
	"github.com/slack-go/slack"
)

// formatResultNotification creates the Slack message for a settled match using Block Kit.
func (s *Notifier) formatResultNotification(res *settlement.Result) slack.Message {
	blocks := make([]slack.Block, 0)

	// Header
	headerText := slack.NewTextBlockObject("plain_text", fmt.Sprintf("🏆 %s match finished! 🏆", res.Sport.Name), true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	// Details
	timeStr := time.Unix(res.Match.StartTime, 0).Format("Monday 02 Jan, 15:04")
	detailsText := fmt.Sprintf("Played %s · %s won", timeStr, teamLabel(res.Winner))
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", detailsText, false, false), nil, nil))

	// Score
	scoreText := formatScore(res.FinalScore, res.Sport.Category)
	if scoreText != "" {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "Score: "+scoreText, true, false), nil, nil))
	}

	// Per-player point changes
	var lines []string
	for _, p := range res.Players {
		sign := "+"
		if p.PointsChange < 0 {
			sign = ""
		}
		lines = append(lines, fmt.Sprintf("• %s %s: %d → %d (%s%d)",
			p.Participant.Name, p.Participant.Surname, p.PointsBefore, p.PointsAfter, sign, p.PointsChange))
	}
	if len(lines) > 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "Points:\n"+strings.Join(lines, "\n"), true, false), nil, nil))
	}

	// Context (team averages)
	contextText := fmt.Sprintf("Team averages: %.1f vs %.1f", res.Team1Avg, res.Team2Avg)
	blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", contextText, true, false)))

	return slack.NewBlockMessage(blocks...)
}

// formatLeaderboard creates a Slack message to display the per-sport rank leaderboard.
func (s *Notifier) formatLeaderboard(sport sastav.Sport, entries []league.RankEntry) slack.Message {
	blocks := make([]slack.Block, 0)

	// Header
	headerText := slack.NewTextBlockObject("plain_text", fmt.Sprintf("🏆 %s Leaderboard 🏆", sport.Name), true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(entries) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No ranked players yet. Go play some matches!", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	// Player Ranks
	for i, entry := range entries {
		rank := i + 1
		var medal string
		switch rank {
		case 1:
			medal = "🥇"
		case 2:
			medal = "🥈"
		case 3:
			medal = "🥉"
		}

		playerText := fmt.Sprintf("%d. %s %s %s\n> *Rank*: %d",
			rank,
			medal,
			entry.Name,
			entry.Surname,
			entry.Rank,
		)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", playerText, false, false), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatPlayerRank creates a Slack message to display a single player's rank and recent matches.
func (s *Notifier) formatPlayerRank(entry league.RankEntry, history []sastav.MatchHistory) slack.Message {
	blocks := make([]slack.Block, 0)

	// Header
	headerText := fmt.Sprintf("🏆 Rank for %s %s 🏆", entry.Name, entry.Surname)
	blocks = append(blocks, slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", headerText, true, false)))

	rankText := fmt.Sprintf("> *Rank*: %d", entry.Rank)
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", rankText, false, false), nil, nil))

	if len(history) > 0 {
		var lines []string
		for _, h := range history {
			icon := "✅"
			if h.Result == sastav.ResultLoss {
				icon = "❌"
			}
			sign := "+"
			if h.PointsChange < 0 {
				sign = ""
			}
			lines = append(lines, fmt.Sprintf("%s %s · %s%d (%s)", icon, h.Sport, sign, h.PointsChange, time.Unix(h.CreatedAt, 0).Format(time.DateOnly)))
		}
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "Recent matches:\n"+strings.Join(lines, "\n"), true, false), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatPlayerNotFound creates a Slack message for when a player's rank is not found.
func (s *Notifier) formatPlayerNotFound(query string) slack.Message {
	text := fmt.Sprintf("Sorry, I couldn't find a ranked player matching *%s*. Try a different name.", query)
	return slack.NewBlockMessage(
		slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", text, false, false), nil, nil),
	)
}

func teamLabel(team sastav.TeamNumber) string {
	if team == sastav.Team2 {
		return "Team 2"
	}
	return "Team 1"
}

func formatScore(score sastav.Score, category sastav.SportCategory) string {
	switch category {
	case sastav.CategoryRacket:
		if score.Racket == nil {
			return ""
		}
		var sets []string
		for _, set := range score.Racket.Sets {
			sets = append(sets, fmt.Sprintf("%d-%d", set.Team1, set.Team2))
		}
		return strings.Join(sets, ", ")
	case sastav.CategoryTeam:
		if score.Team == nil {
			return ""
		}
		return fmt.Sprintf("%d-%d", score.Team.My, score.Team.Opp)
	}
	return ""
}
