package settlement

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sastavapp/sastav-server/internal/catalog"
	"github.com/sastavapp/sastav-server/internal/league"
	"github.com/sastavapp/sastav-server/internal/metrics"
	"github.com/sastavapp/sastav-server/internal/pubsub"
	"github.com/sastavapp/sastav-server/internal/ranking"
	"github.com/sastavapp/sastav-server/internal/sastav"
)

// New creates a new settlement Engine.
func New(matchStore MatchStore, rankStore RankStore, cat *catalog.Catalog, notifier Notifier, metrics metrics.Metrics, ps pubsub.PubSubClient) *Engine {
	return &Engine{
		matches:  matchStore,
		ranks:    rankStore,
		catalog:  cat,
		notifier: notifier,
		metrics:  metrics,
		pubsub:   ps,
	}
}

// CompleteQuestionnaire converts the four onboarding answers into a starting
// rank and stores it. A repeat submission for the same sport overwrites the
// prior rank instead of accumulating.
func (e *Engine) CompleteQuestionnaire(player league.PlayerInfo, sport string, answers [ranking.NumQuestions]int) (int, error) {
	if _, ok := e.catalog.Get(sport); !ok {
		return 0, fmt.Errorf("sport %q: %w", sport, ErrUnknownSport)
	}

	rank, err := ranking.CalculateStartingRank(answers)
	if err != nil {
		return 0, err
	}

	if err := e.ranks.UpsertPlayer(player); err != nil {
		return 0, &StepError{Step: "upsert player", Err: err}
	}
	if err := e.ranks.UpsertRank(player.ID, sport, rank); err != nil {
		return 0, &StepError{Step: "upsert rank", Err: err}
	}

	e.metrics.IncQuestionnairesCompleted()
	log.Info("Questionnaire completed", "userID", player.ID, "sport", sport, "rank", rank)
	return rank, nil
}

// SettleMatch finalizes a match: it resolves the winner from the submitted
// score, computes the per-team rank deltas, writes the history ledger and the
// new ranks, and only then marks the match completed. Any persistence failure
// before the final status update leaves the match retryable.
func (e *Engine) SettleMatch(matchID string, dryRun bool) (*Result, error) {
	start := time.Now()
	e.metrics.IncSettlementRuns()

	res, err := e.settle(matchID, dryRun)
	if err != nil {
		e.metrics.IncSettlementFailures()
		return nil, err
	}

	e.metrics.ObserveSettlementDuration(time.Since(start).Seconds())
	return res, nil
}

func (e *Engine) settle(matchID string, dryRun bool) (*Result, error) {
	log.Info("Settling match", "matchID", matchID, "dryRun", dryRun)

	match, err := e.matches.GetMatch(matchID)
	if err != nil {
		return nil, err
	}
	if match.Status == sastav.StatusCompleted {
		return nil, fmt.Errorf("match %s: %w", matchID, ErrAlreadyCompleted)
	}

	sport, ok := e.catalog.Get(match.Sport)
	if !ok {
		return nil, fmt.Errorf("sport %q: %w", match.Sport, ErrUnknownSport)
	}

	sub, err := e.matches.GetLatestSubmission(matchID)
	if err != nil {
		return nil, &StepError{Step: "load score submission", Err: err}
	}
	if sub == nil {
		return nil, fmt.Errorf("match %s: %w", matchID, ErrNoScoreSubmitted)
	}

	winner, err := ranking.ResolveWinner(sub.Score, sport.Category)
	if err != nil {
		return nil, err
	}

	roster, err := e.matches.GetParticipants(matchID)
	if err != nil {
		return nil, &StepError{Step: "load participants", Err: err}
	}
	var team1, team2 []sastav.Participant
	for _, p := range roster {
		if p.Team == sastav.Team1 {
			team1 = append(team1, p)
		} else {
			team2 = append(team2, p)
		}
	}
	if len(team1) == 0 && len(team2) == 0 {
		return nil, fmt.Errorf("match %s: %w", matchID, ErrNoParticipants)
	}

	before := make(map[string]int, len(roster))
	for _, p := range roster {
		rank, found, err := e.ranks.GetRank(p.UserID, match.Sport)
		if err != nil {
			return nil, &StepError{Step: "load ranks", Err: err}
		}
		if !found {
			rank = ranking.DefaultRank
		}
		before[p.UserID] = rank
	}

	avg1 := ranking.TeamAverage(teamRanks(team1, before))
	avg2 := ranking.TeamAverage(teamRanks(team2, before))
	ex := ranking.PointsChange(avg1, avg2, winner)

	result := &Result{
		Match:      match,
		Sport:      sport,
		Winner:     winner,
		FinalScore: sub.Score,
		Exchange:   ex,
		Team1Avg:   avg1,
		Team2Avg:   avg2,
	}
	for _, p := range roster {
		delta := ex.Team1
		if p.Team == sastav.Team2 {
			delta = ex.Team2
		}
		outcome := sastav.ResultLoss
		if p.Team == winner {
			outcome = sastav.ResultWin
		}
		result.Players = append(result.Players, PlayerOutcome{
			Participant:  p,
			Result:       outcome,
			PointsBefore: before[p.UserID],
			PointsAfter:  before[p.UserID] + delta,
			PointsChange: delta,
		})
	}

	if dryRun {
		log.Info("[Dry Run] Would settle match", "matchID", matchID, "winner", winner, "team1_delta", ex.Team1, "team2_delta", ex.Team2)
		return result, nil
	}

	// History first, then ranks, then the status flip. Partial history rows
	// from a failed attempt are not rolled back; the match stays retryable
	// because the status is only flipped at the very end.
	createdAt := time.Now().Unix()
	if err := e.writeHistory(match, team1, team2, result, createdAt); err != nil {
		return nil, err
	}

	for _, outcome := range result.Players {
		if err := e.ranks.UpsertRank(outcome.Participant.UserID, match.Sport, outcome.PointsAfter); err != nil {
			return nil, &StepError{Step: "upsert rank", Err: err}
		}
		e.metrics.IncRankUpdates()
	}

	affected, err := e.matches.CompleteMatch(matchID, sub.Score)
	if err != nil {
		return nil, &StepError{Step: "finalize match", Err: err}
	}
	if affected == 0 {
		// A concurrent settlement won the conditional update.
		return nil, fmt.Errorf("match %s: %w", matchID, ErrAlreadyCompleted)
	}
	match.Status = sastav.StatusCompleted
	match.AdminConfirmed = true
	match.FinalScore = &sub.Score

	// Cleanup and notifications are best effort; the settlement already
	// succeeded at this point. The roster is not deleted inline: a cleanup
	// event schedules it for the push consumer.
	if err := e.matches.DeleteChatThread(matchID); err != nil {
		log.Error("Failed to delete chat thread", "error", err, "matchID", matchID)
	}
	if err := e.pubsub.SendMessage(pubsub.EventCleanupRoster, rosterCleanup{MatchID: matchID}); err != nil {
		log.Error("Failed to publish cleanup-roster event", "error", err, "matchID", matchID)
	}
	if err := e.pubsub.SendMessage(pubsub.EventMatchSettled, result); err != nil {
		log.Error("Failed to publish match-settled event", "error", err, "matchID", matchID)
	}
	for _, outcome := range result.Players {
		update := rankUpdate{UserID: outcome.Participant.UserID, Sport: match.Sport, Rank: outcome.PointsAfter}
		if err := e.pubsub.SendMessage(pubsub.EventRankUpdated, update); err != nil {
			log.Error("Failed to publish rank-updated event", "error", err, "matchID", matchID, "userID", update.UserID)
		}
	}
	if err := e.notifier.SendResultNotification(result, dryRun); err != nil {
		log.Error("Failed to send result notification", "error", err, "matchID", matchID)
	}

	log.Info("Match settled", "matchID", matchID, "winner", winner, "team1_delta", ex.Team1, "team2_delta", ex.Team2)
	return result, nil
}

// writeHistory appends one ledger row per opponent faced, or a single row
// with no opponent when the opposing roster is empty.
func (e *Engine) writeHistory(match *sastav.Match, team1, team2 []sastav.Participant, result *Result, createdAt int64) error {
	outcomes := make(map[string]PlayerOutcome, len(result.Players))
	for _, o := range result.Players {
		outcomes[o.Participant.UserID] = o
	}

	write := func(p sastav.Participant, opponents []sastav.Participant) error {
		o := outcomes[p.UserID]
		row := sastav.MatchHistory{
			MatchID:      match.ID,
			UserID:       p.UserID,
			Sport:        match.Sport,
			Result:       o.Result,
			PointsBefore: o.PointsBefore,
			PointsAfter:  o.PointsAfter,
			PointsChange: o.PointsChange,
			Team:         p.Team,
			Name:         p.Name,
			Surname:      p.Surname,
			Username:     p.Username,
			CreatedAt:    createdAt,
		}
		if len(opponents) == 0 {
			if err := e.ranks.InsertHistory(row); err != nil {
				return &StepError{Step: "insert history", Err: err}
			}
			return nil
		}
		for _, opp := range opponents {
			row.OpponentID = &opp.UserID
			if err := e.ranks.InsertHistory(row); err != nil {
				return &StepError{Step: "insert history", Err: err}
			}
		}
		return nil
	}

	for _, p := range team1 {
		if err := write(p, team2); err != nil {
			return err
		}
	}
	for _, p := range team2 {
		if err := write(p, team1); err != nil {
			return err
		}
	}
	return nil
}

func teamRanks(team []sastav.Participant, ranks map[string]int) []int {
	out := make([]int, 0, len(team))
	for _, p := range team {
		out = append(out, ranks[p.UserID])
	}
	return out
}
