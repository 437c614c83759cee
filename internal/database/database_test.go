package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDB_RunsMigrations(t *testing.T) {
	db, teardown, err := InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err, "InitDB should not return an error")
	defer teardown()

	for _, table := range []string{"sports", "players", "matches", "participants", "score_submissions", "sport_ranks", "match_history", "chat_threads", "chat_messages"} {
		var name string
		err = db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		require.NoError(t, err, "querying for %s table should not produce an error", table)
		assert.Equal(t, table, name)
	}

	// The sport catalog is seeded by the migrations.
	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM sports").Scan(&count)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, count, 5, "the sports table should be seeded")
}
