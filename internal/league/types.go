package league

import (
	"database/sql"
	"sync"
)

// store handles all database operations for players, ranks and history.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// PlayerInfo represents a player profile in the store.
type PlayerInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Username string `json:"username"`
}

// RankEntry is one row of a per-sport leaderboard.
type RankEntry struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Username string `json:"username"`
	Rank     int    `json:"rank"`
}
