package matches

import "github.com/sastavapp/sastav-server/internal/sastav"

// Store defines the interface for the match lifecycle: creation, rosters,
// score submissions, finalization and the attached chat thread.
type Store interface {
	CreateMatch(sport, ownerID string, startTime int64) (*sastav.Match, error)
	GetMatch(matchID string) (*sastav.Match, error)
	ListOpenMatches(sport string) ([]*sastav.Match, error)
	ListUserMatches(userID string) ([]*sastav.Match, error)
	JoinMatch(p sastav.Participant) error
	LeaveMatch(matchID, userID string) error
	GetParticipants(matchID string) ([]sastav.Participant, error)
	SubmitScore(sub sastav.ScoreSubmission) error
	GetLatestSubmission(matchID string) (*sastav.ScoreSubmission, error)
	// CompleteMatch finalizes a match only if it is not completed yet and
	// returns the number of affected rows. Zero means another settlement won.
	CompleteMatch(matchID string, final sastav.Score) (int64, error)
	DeleteChatThread(matchID string) error
	DeleteParticipants(matchID string) error
	Clear()
}
