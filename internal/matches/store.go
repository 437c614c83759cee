package matches

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/sastavapp/sastav-server/internal/sastav"
)

// ErrMatchNotFound is returned when a match id does not exist.
var ErrMatchNotFound = errors.New("match not found")

// ErrMatchCompleted is returned when an operation requires a match that is
// not yet completed.
var ErrMatchCompleted = errors.New("match already completed")

// store handles all database operations for the match lifecycle.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new match Store.
func New(db *sql.DB) Store {
	return &store{
		db: db,
	}
}

// CreateMatch inserts a new scheduled match together with its chat thread.
func (s *store) CreateMatch(sport, ownerID string, startTime int64) (*sastav.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	match := &sastav.Match{
		ID:        uuid.NewString(),
		Sport:     sport,
		OwnerID:   ownerID,
		StartTime: startTime,
		CreatedAt: time.Now().Unix(),
		Status:    sastav.StatusScheduled,
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO matches (id, sport, owner_id, start_time, created_at, status)
		VALUES (?, ?, ?, ?, ?, ?)
	`, match.ID, match.Sport, match.OwnerID, match.StartTime, match.CreatedAt, match.Status)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to insert match: %w", err)
	}

	_, err = tx.Exec("INSERT INTO chat_threads (match_id, created_at) VALUES (?, ?)", match.ID, match.CreatedAt)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to create chat thread: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit match creation: %w", err)
	}

	log.Info("Created match", "matchID", match.ID, "sport", sport, "owner", ownerID)
	return match, nil
}

// GetMatch retrieves a single match by id.
func (s *store) GetMatch(matchID string) (*sastav.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT id, sport, owner_id, start_time, created_at, status, admin_confirmed, final_score_json
		FROM matches WHERE id = ?
	`, matchID)

	match, err := scanMatch(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("match %s: %w", matchID, ErrMatchNotFound)
		}
		return nil, fmt.Errorf("failed to query match %s: %w", matchID, err)
	}
	return match, nil
}

// ListOpenMatches retrieves all scheduled matches, optionally filtered by sport.
func (s *store) ListOpenMatches(sport string) ([]*sastav.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, sport, owner_id, start_time, created_at, status, admin_confirmed, final_score_json
		FROM matches WHERE status = ?
	`
	args := []any{sastav.StatusScheduled}
	if sport != "" {
		query += " AND sport = ?"
		args = append(args, sport)
	}
	query += " ORDER BY start_time"

	return s.queryMatches(query, args...)
}

// ListUserMatches retrieves all matches a user participates in, newest first.
func (s *store) ListUserMatches(userID string) ([]*sastav.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryMatches(`
		SELECT m.id, m.sport, m.owner_id, m.start_time, m.created_at, m.status, m.admin_confirmed, m.final_score_json
		FROM matches m
		JOIN participants p ON p.match_id = m.id
		WHERE p.user_id = ?
		ORDER BY m.start_time DESC
	`, userID)
}

func (s *store) queryMatches(query string, args ...any) ([]*sastav.Match, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	var matches []*sastav.Match
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			log.Error("Failed to scan match row", "error", err)
			continue
		}
		matches = append(matches, match)
	}
	return matches, nil
}

// scanMatch is a helper to scan a single match row.
func scanMatch(scanner interface{ Scan(...any) error }) (*sastav.Match, error) {
	var match sastav.Match
	var finalScoreJSON sql.NullString

	err := scanner.Scan(
		&match.ID, &match.Sport, &match.OwnerID, &match.StartTime, &match.CreatedAt,
		&match.Status, &match.AdminConfirmed, &finalScoreJSON,
	)
	if err != nil {
		return nil, err
	}

	if finalScoreJSON.Valid && finalScoreJSON.String != "" {
		var score sastav.Score
		if err := json.Unmarshal([]byte(finalScoreJSON.String), &score); err != nil {
			log.Error("Failed to unmarshal final_score_json", "error", err, "matchID", match.ID)
		} else {
			match.FinalScore = &score
		}
	}
	return &match, nil
}

// JoinMatch adds a user to a match roster with the chosen team. A repeated
// join updates the team instead of creating a second row.
func (s *store) JoinMatch(p sastav.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var status sastav.MatchStatus
	err := s.db.QueryRow("SELECT status FROM matches WHERE id = ?", p.MatchID).Scan(&status)
	if err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("match %s: %w", p.MatchID, ErrMatchNotFound)
		}
		return fmt.Errorf("failed to check match %s: %w", p.MatchID, err)
	}
	if status == sastav.StatusCompleted {
		return fmt.Errorf("match %s: %w", p.MatchID, ErrMatchCompleted)
	}

	_, err = s.db.Exec(`
		INSERT INTO participants (match_id, user_id, team, name, surname, username)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(match_id, user_id) DO UPDATE SET
			team = excluded.team,
			name = excluded.name,
			surname = excluded.surname,
			username = excluded.username;
	`, p.MatchID, p.UserID, p.Team, p.Name, p.Surname, p.Username)
	if err != nil {
		return fmt.Errorf("failed to join match %s: %w", p.MatchID, err)
	}
	return nil
}

// LeaveMatch removes a user from a match roster before the match starts.
// A settled roster is immutable.
func (s *store) LeaveMatch(matchID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var status sastav.MatchStatus
	err := s.db.QueryRow("SELECT status FROM matches WHERE id = ?", matchID).Scan(&status)
	if err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("match %s: %w", matchID, ErrMatchNotFound)
		}
		return fmt.Errorf("failed to check match %s: %w", matchID, err)
	}
	if status == sastav.StatusCompleted {
		return fmt.Errorf("match %s: %w", matchID, ErrMatchCompleted)
	}

	res, err := s.db.Exec("DELETE FROM participants WHERE match_id = ? AND user_id = ?", matchID, userID)
	if err != nil {
		return fmt.Errorf("failed to leave match %s: %w", matchID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("user %s is not in match %s", userID, matchID)
	}
	return nil
}

// GetParticipants retrieves the full roster of a match.
func (s *store) GetParticipants(matchID string) ([]sastav.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT match_id, user_id, team, name, surname, username
		FROM participants WHERE match_id = ? ORDER BY team, user_id
	`, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants for %s: %w", matchID, err)
	}
	defer rows.Close()

	var participants []sastav.Participant
	for rows.Next() {
		var p sastav.Participant
		var name, surname, username sql.NullString
		if err := rows.Scan(&p.MatchID, &p.UserID, &p.Team, &name, &surname, &username); err != nil {
			log.Error("Failed to scan participant row", "error", err, "matchID", matchID)
			continue
		}
		p.Name = name.String
		p.Surname = surname.String
		p.Username = username.String
		participants = append(participants, p)
	}
	return participants, nil
}

// SubmitScore records a participant's score, replacing any prior submission
// from the same user. Last write wins per (match, user).
func (s *store) SubmitScore(sub sastav.ScoreSubmission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	scoreJSON, err := json.Marshal(sub.Score)
	if err != nil {
		return fmt.Errorf("failed to marshal score: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO score_submissions (match_id, user_id, score_json, submitted_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(match_id, user_id) DO UPDATE SET
			score_json = excluded.score_json,
			submitted_at = excluded.submitted_at;
	`, sub.MatchID, sub.UserID, string(scoreJSON), sub.SubmittedAt)
	if err != nil {
		return fmt.Errorf("failed to submit score for match %s: %w", sub.MatchID, err)
	}
	return nil
}

// GetLatestSubmission retrieves the most recent score submission for a match,
// or nil when no participant has submitted yet.
func (s *store) GetLatestSubmission(matchID string) (*sastav.ScoreSubmission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sub sastav.ScoreSubmission
	var scoreJSON string
	err := s.db.QueryRow(`
		SELECT match_id, user_id, score_json, submitted_at
		FROM score_submissions WHERE match_id = ?
		ORDER BY submitted_at DESC LIMIT 1
	`, matchID).Scan(&sub.MatchID, &sub.UserID, &scoreJSON, &sub.SubmittedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query submissions for %s: %w", matchID, err)
	}
	if err := json.Unmarshal([]byte(scoreJSON), &sub.Score); err != nil {
		return nil, fmt.Errorf("failed to unmarshal score for %s: %w", matchID, err)
	}
	return &sub, nil
}

// CompleteMatch transitions a match to completed with its final score. The
// conditional update is the serialization point: of two concurrent
// settlements only one sees an affected row.
func (s *store) CompleteMatch(matchID string, final sastav.Score) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	finalJSON, err := json.Marshal(final)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal final score: %w", err)
	}

	res, err := s.db.Exec(`
		UPDATE matches
		SET status = ?, admin_confirmed = 1, final_score_json = ?
		WHERE id = ? AND status != ?
	`, sastav.StatusCompleted, string(finalJSON), matchID, sastav.StatusCompleted)
	if err != nil {
		return 0, fmt.Errorf("failed to complete match %s: %w", matchID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows for %s: %w", matchID, err)
	}
	return affected, nil
}

// DeleteChatThread removes a match's chat thread and all its messages.
func (s *store) DeleteChatThread(matchID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM chat_messages WHERE match_id = ?", matchID); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete chat messages for %s: %w", matchID, err)
	}
	if _, err := tx.Exec("DELETE FROM chat_threads WHERE match_id = ?", matchID); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete chat thread for %s: %w", matchID, err)
	}
	return tx.Commit()
}

// DeleteParticipants removes a settled match's roster rows. Called by the
// roster cleanup consumer after settlement; a missing roster is a no-op.
func (s *store) DeleteParticipants(matchID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM participants WHERE match_id = ?", matchID); err != nil {
		return fmt.Errorf("failed to delete participants for %s: %w", matchID, err)
	}
	return nil
}

// Clear wipes all match data. Used by the /clear endpoint.
func (s *store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		log.Error("Failed to begin transaction for clearing match store", "error", err)
		return
	}

	for _, table := range []string{"chat_messages", "chat_threads", "score_submissions", "participants", "matches"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			log.Error("Failed to clear table", "table", table, "error", err)
			tx.Rollback()
			return
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("Failed to commit transaction for clearing match store", "error", err)
	}
}
