package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Stewz00/mailforge-api/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appliedMigrations(t *testing.T, path string) int {
	t.Helper()
	db, err := database.OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	defer db.Close()

	var applied int
	require.NoError(t, db.Get(&applied,
		`SELECT COUNT(*) FROM goose_db_version WHERE version_id > 0 AND is_applied = 1`))
	return applied
}

func TestMigrateCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mailforge.db")

	err := newRootCommand().Run(context.Background(), []string{"mailforge-api", "--database-url", path, "migrate", "up"})
	require.NoError(t, err)
	assert.Positive(t, appliedMigrations(t, path))

	err = newRootCommand().Run(context.Background(), []string{"mailforge-api", "--database-url", path, "migrate", "down"})
	require.NoError(t, err)
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmd := newRootCommand()

	var names []string
	for _, sub := range cmd.Commands {
		names = append(names, sub.Name)
	}
	assert.ElementsMatch(t, []string{"serve", "migrate"}, names)
}
