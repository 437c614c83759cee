package sastav

// SportCategory groups sports by how their scores are recorded.
type SportCategory string

const (
	// CategoryRacket covers sports scored as a list of sets (tennis, padel).
	CategoryRacket SportCategory = "RACKET"
	// CategoryTeam covers sports scored as two aggregate totals (football, basketball, handball).
	CategoryTeam SportCategory = "TEAM"
)

// Sport describes one entry of the sport catalog.
type Sport struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Category SportCategory `json:"category"`
}

// MatchStatus defines the lifecycle state of a match.
type MatchStatus string

const (
	StatusScheduled MatchStatus = "SCHEDULED"
	StatusCompleted MatchStatus = "COMPLETED"
)

// TeamNumber identifies one of the two sides of a match.
type TeamNumber int

const (
	Team1 TeamNumber = 1
	Team2 TeamNumber = 2
)

// Match represents a single organized match.
type Match struct {
	ID             string      `json:"id"`
	Sport          string      `json:"sport"`
	OwnerID        string      `json:"owner_id"`
	StartTime      int64       `json:"start_time"`
	CreatedAt      int64       `json:"created_at"`
	Status         MatchStatus `json:"status"`
	AdminConfirmed bool        `json:"admin_confirmed"`
	FinalScore     *Score      `json:"final_score,omitempty"`
}

// Participant is one player signed up for a match on a chosen team.
type Participant struct {
	MatchID  string     `json:"match_id"`
	UserID   string     `json:"user_id"`
	Team     TeamNumber `json:"team"`
	Name     string     `json:"name"`
	Surname  string     `json:"surname"`
	Username string     `json:"username"`
}

// SetScore is the score of a single completed set, from team 1's perspective.
type SetScore struct {
	Team1 int `json:"team1"`
	Team2 int `json:"team2"`
}

// RacketScore is the score shape for racket sports: a list of completed sets.
type RacketScore struct {
	Sets []SetScore `json:"sets"`
}

// TeamScore is the score shape for team sports: two aggregate totals,
// recorded from team 1's perspective.
type TeamScore struct {
	My  int `json:"my"`
	Opp int `json:"opp"`
}

// Score is a tagged union of the two score shapes. Exactly one of Racket or
// Team is set, matching the category of the match's sport.
type Score struct {
	Racket *RacketScore `json:"racket,omitempty"`
	Team   *TeamScore   `json:"team,omitempty"`
}

// ScoreSubmission is one participant's submitted score for a match.
// Submissions are last-write-wins per (match, user).
type ScoreSubmission struct {
	MatchID     string `json:"match_id"`
	UserID      string `json:"user_id"`
	Score       Score  `json:"score"`
	SubmittedAt int64  `json:"submitted_at"`
}

// SportRank is a user's current rank for one sport. One row per (user, sport).
type SportRank struct {
	UserID string `json:"user_id"`
	Sport  string `json:"sport"`
	Rank   int    `json:"rank"`
}

// MatchResult is the outcome of a match from one participant's perspective.
type MatchResult string

const (
	ResultWin  MatchResult = "win"
	ResultLoss MatchResult = "loss"
)

// MatchHistory is one immutable ledger row written at settlement. For matches
// with two non-empty rosters there is one row per (participant, opponent)
// pair; when the opposing roster is empty, a single row with a nil OpponentID.
type MatchHistory struct {
	MatchID      string      `json:"match_id"`
	UserID       string      `json:"user_id"`
	OpponentID   *string     `json:"opponent_id"`
	Sport        string      `json:"sport"`
	Result       MatchResult `json:"result"`
	PointsBefore int         `json:"points_before"`
	PointsAfter  int         `json:"points_after"`
	PointsChange int         `json:"points_change"`
	Team         TeamNumber  `json:"team"`
	Name         string      `json:"name"`
	Surname      string      `json:"surname"`
	Username     string      `json:"username"`
	CreatedAt    int64       `json:"created_at"`
}
