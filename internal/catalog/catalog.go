// Package catalog holds the sport catalog, loaded once at startup and
// read-only afterwards. It replaces what used to be an ambient process-wide
// cache in earlier clients with an explicit service with a defined lifecycle.
package catalog

import (
	"database/sql"
	"fmt"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/sastavapp/sastav-server/internal/sastav"
)

// Catalog maps sport ids to their catalog entries. Immutable after Load.
type Catalog struct {
	sports map[string]sastav.Sport
}

// Load reads the sport catalog from the database.
func Load(db *sql.DB) (*Catalog, error) {
	rows, err := db.Query("SELECT id, name, category FROM sports")
	if err != nil {
		return nil, fmt.Errorf("failed to load sport catalog: %w", err)
	}
	defer rows.Close()

	sports := make(map[string]sastav.Sport)
	for rows.Next() {
		var s sastav.Sport
		if err := rows.Scan(&s.ID, &s.Name, &s.Category); err != nil {
			return nil, fmt.Errorf("failed to scan sport row: %w", err)
		}
		sports[s.ID] = s
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sport rows: %w", err)
	}

	log.Info("Loaded sport catalog", "sports", len(sports))
	return &Catalog{sports: sports}, nil
}

// NewStatic builds a catalog from a fixed list, used in tests and the seeder.
func NewStatic(sports ...sastav.Sport) *Catalog {
	m := make(map[string]sastav.Sport, len(sports))
	for _, s := range sports {
		m[s.ID] = s
	}
	return &Catalog{sports: m}
}

// Get returns the catalog entry for a sport id.
func (c *Catalog) Get(sportID string) (sastav.Sport, bool) {
	s, ok := c.sports[sportID]
	return s, ok
}

// Category returns the score category for a sport id.
func (c *Catalog) Category(sportID string) (sastav.SportCategory, bool) {
	s, ok := c.sports[sportID]
	return s.Category, ok
}

// List returns all sports sorted by id.
func (c *Catalog) List() []sastav.Sport {
	out := make([]sastav.Sport, 0, len(c.sports))
	for _, s := range c.sports {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
