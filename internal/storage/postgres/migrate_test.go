package postgres

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMigrationVersion(t *testing.T) {
	_, dbURL := setupPostgres(t)

	version, dirty, err := MigrationVersion(dbURL, filepath.Join(projectRoot(), DefaultMigrationsPath))
	require.NoError(t, err)
	require.False(t, dirty)
	require.EqualValues(t, 1, version)
}

func TestMigrateDownRejectsZeroSteps(t *testing.T) {
	require.ErrorContains(t, MigrateDown("postgres://unused", "", 0), "steps must be > 0")
}

func TestRepository_MigrationStateAndPoolStats(t *testing.T) {
	pool, _ := setupPostgres(t)
	repo, err := NewRepository(pool)
	require.NoError(t, err)

	version, dirty, err := repo.MigrationState(context.Background())
	require.NoError(t, err)
	require.False(t, dirty)
	require.EqualValues(t, 1, version)

	stats := repo.PoolStats()
	require.Contains(t, stats, "max_connections")
	require.NoError(t, repo.Ping(context.Background()))
}
