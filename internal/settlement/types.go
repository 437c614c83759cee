package settlement

import (
	"errors"
	"fmt"

	"github.com/sastavapp/sastav-server/internal/catalog"
	"github.com/sastavapp/sastav-server/internal/metrics"
	"github.com/sastavapp/sastav-server/internal/pubsub"
	"github.com/sastavapp/sastav-server/internal/ranking"
	"github.com/sastavapp/sastav-server/internal/sastav"
)

// Engine orchestrates match settlement and questionnaire completion.
type Engine struct {
	matches  MatchStore
	ranks    RankStore
	catalog  *catalog.Catalog
	notifier Notifier
	metrics  metrics.Metrics
	pubsub   pubsub.PubSubClient
}

var (
	// ErrAlreadyCompleted means the match was settled before, or a
	// concurrent settlement finalized it first.
	ErrAlreadyCompleted = errors.New("match already completed")
	// ErrNoScoreSubmitted means no participant has submitted a score yet.
	ErrNoScoreSubmitted = errors.New("no score submitted for match")
	// ErrNoParticipants means the match has an entirely empty roster.
	ErrNoParticipants = errors.New("match has no participants")
	// ErrUnknownSport means the match references a sport missing from the catalog.
	ErrUnknownSport = errors.New("unknown sport")
)

// StepError reports which settlement step failed, so the caller can decide
// whether a retry is safe. The match is never finalized after a StepError.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("settlement step %q failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// PlayerOutcome is the settlement outcome for one participant.
type PlayerOutcome struct {
	Participant  sastav.Participant `json:"participant"`
	Result       sastav.MatchResult `json:"result"`
	PointsBefore int                `json:"points_before"`
	PointsAfter  int                `json:"points_after"`
	PointsChange int                `json:"points_change"`
}

// rosterCleanup is the payload of a cleanup-roster event.
type rosterCleanup struct {
	MatchID string `msgpack:"match_id"`
}

// rankUpdate is the payload of a rank-updated event, one per participant.
type rankUpdate struct {
	UserID string `msgpack:"user_id"`
	Sport  string `msgpack:"sport"`
	Rank   int    `msgpack:"rank"`
}

// Result describes a fully settled match.
type Result struct {
	Match      *sastav.Match     `json:"match"`
	Sport      sastav.Sport      `json:"sport"`
	Winner     sastav.TeamNumber `json:"winner"`
	FinalScore sastav.Score      `json:"final_score"`
	Exchange   ranking.Exchange  `json:"exchange"`
	Team1Avg   float64           `json:"team1_avg"`
	Team2Avg   float64           `json:"team2_avg"`
	Players    []PlayerOutcome   `json:"players"`
}
