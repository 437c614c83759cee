package league

import (
	"database/sql"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/sastavapp/sastav-server/internal/sastav"
)

// New creates a new league Store.
func New(db *sql.DB) Store {
	return &store{
		db: db,
	}
}

// UpsertPlayer inserts a new player profile or refreshes an existing one.
func (s *store) UpsertPlayer(p PlayerInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO players (id, name, surname, username)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			surname = excluded.surname,
			username = excluded.username;
	`, p.ID, p.Name, p.Surname, p.Username)
	if err != nil {
		return fmt.Errorf("failed to upsert player %s: %w", p.ID, err)
	}
	return nil
}

// GetPlayer retrieves a single player profile by id.
func (s *store) GetPlayer(userID string) (*PlayerInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var p PlayerInfo
	var name, surname, username sql.NullString
	err := s.db.QueryRow("SELECT id, name, surname, username FROM players WHERE id = ?", userID).
		Scan(&p.ID, &name, &surname, &username)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("player %s not found", userID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	p.Name = name.String
	p.Surname = surname.String
	p.Username = username.String
	return &p, nil
}

// GetRank returns the current rank for a (user, sport) pair. The second
// return value reports whether a rank row exists; callers decide the fallback.
func (s *store) GetRank(userID, sport string) (int, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rank int
	err := s.db.QueryRow("SELECT rank FROM sport_ranks WHERE user_id = ? AND sport = ?", userID, sport).Scan(&rank)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to query rank for %s/%s: %w", userID, sport, err)
	}
	return rank, true, nil
}

// UpsertRank writes the current rank for a (user, sport) pair, overwriting
// any prior value. One row per pair, never accumulated.
func (s *store) UpsertRank(userID, sport string, rank int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO sport_ranks (user_id, sport, rank)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id, sport) DO UPDATE SET
			rank = excluded.rank;
	`, userID, sport, rank)
	if err != nil {
		return fmt.Errorf("failed to upsert rank for %s/%s: %w", userID, sport, err)
	}
	return nil
}

// InsertHistory appends one immutable row to the match-history ledger.
func (s *store) InsertHistory(row sastav.MatchHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var opponent any
	if row.OpponentID != nil {
		opponent = *row.OpponentID
	}
	_, err := s.db.Exec(`
		INSERT INTO match_history (match_id, user_id, opponent_id, sport, result, points_before, points_after, points_change, team, name, surname, username, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, row.MatchID, row.UserID, opponent, row.Sport, row.Result, row.PointsBefore, row.PointsAfter, row.PointsChange, row.Team, row.Name, row.Surname, row.Username, row.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert history row for %s in match %s: %w", row.UserID, row.MatchID, err)
	}
	return nil
}

// GetHistory retrieves the most recent ledger rows for a user, optionally
// filtered by sport.
func (s *store) GetHistory(userID, sport string, limit int) ([]sastav.MatchHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT match_id, user_id, opponent_id, sport, result, points_before, points_after, points_change, team, name, surname, username, created_at
		FROM match_history
		WHERE user_id = ?
	`
	args := []any{userID}
	if sport != "" {
		query += " AND sport = ?"
		args = append(args, sport)
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history for %s/%s: %w", userID, sport, err)
	}
	defer rows.Close()

	var history []sastav.MatchHistory
	for rows.Next() {
		var row sastav.MatchHistory
		var opponent, name, surname, username sql.NullString
		err := rows.Scan(
			&row.MatchID, &row.UserID, &opponent, &row.Sport, &row.Result,
			&row.PointsBefore, &row.PointsAfter, &row.PointsChange, &row.Team,
			&name, &surname, &username, &row.CreatedAt,
		)
		if err != nil {
			log.Error("Failed to scan history row", "error", err)
			continue
		}
		if opponent.Valid {
			id := opponent.String
			row.OpponentID = &id
		}
		row.Name = name.String
		row.Surname = surname.String
		row.Username = username.String
		history = append(history, row)
	}
	return history, nil
}

// Leaderboard returns all ranked players for a sport, best first.
func (s *store) Leaderboard(sport string) ([]RankEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT r.user_id, p.name, p.surname, p.username, r.rank
		FROM sport_ranks r
		LEFT JOIN players p ON r.user_id = p.id
		WHERE r.sport = ?
		ORDER BY r.rank DESC, r.user_id
	`, sport)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard for %s: %w", sport, err)
	}
	defer rows.Close()

	var entries []RankEntry
	for rows.Next() {
		var e RankEntry
		var name, surname, username sql.NullString
		if err := rows.Scan(&e.UserID, &name, &surname, &username, &e.Rank); err != nil {
			log.Error("Failed to scan leaderboard row", "error", err)
			continue
		}
		e.Name = name.String
		e.Surname = surname.String
		e.Username = username.String
		entries = append(entries, e)
	}
	return entries, nil
}

// FindRankEntry looks up a single ranked player for a sport by username,
// first name or surname. The match is case-insensitive.
func (s *store) FindRankEntry(query, sport string) (*RankEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var e RankEntry
	var name, surname, username sql.NullString
	err := s.db.QueryRow(`
		SELECT r.user_id, p.name, p.surname, p.username, r.rank
		FROM sport_ranks r
		JOIN players p ON r.user_id = p.id
		WHERE r.sport = ?
		  AND (p.username LIKE ? OR p.name LIKE ? OR p.surname LIKE ?)
		ORDER BY r.rank DESC
		LIMIT 1
	`, sport, query, query, query).Scan(&e.UserID, &name, &surname, &username, &e.Rank)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no ranked player matching %q for %s", query, sport)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find rank entry for %q: %w", query, err)
	}
	e.Name = name.String
	e.Surname = surname.String
	e.Username = username.String
	return &e, nil
}

// Clear wipes players, ranks and history. Used by the /clear endpoint.
func (s *store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		log.Error("Failed to begin transaction for clearing league store", "error", err)
		return
	}

	for _, table := range []string{"match_history", "sport_ranks", "players"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			log.Error("Failed to clear table", "table", table, "error", err)
			tx.Rollback()
			return
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("Failed to commit transaction for clearing league store", "error", err)
	}
}
