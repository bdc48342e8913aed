package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/jokeeffe/pulse/internal/migrations"
	"github.com/jokeeffe/pulse/internal/pulse"
	"github.com/jokeeffe/pulse/internal/sqlite"
)

func newTestRepo(t *testing.T) sqlite.Repo {
	t.Helper()

	// A file-backed db: with :memory:, each pooled connection would
	// get its own empty database.
	dbx, err := sqlx.Open("sqlite", filepath.Join(t.TempDir(), "pulse.db"))
	require.NoError(t, err)
	t.Cleanup(func() { dbx.Close() })

	require.NoError(t, migrations.Run(dbx))

	return sqlite.New(dbx)
}

func TestInsertBuild(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	inserted, err := repo.InsertBuild(ctx, pulse.Build{
		Trigger:  "new_activity",
		Source:   "webhook",
		Items:    12,
		Duration: 1500 * time.Millisecond,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, inserted.ID)
	assert.Equal(t, "new_activity", inserted.Trigger)
	assert.Equal(t, "webhook", inserted.Source)
	assert.Equal(t, 12, inserted.Items)
	assert.Equal(t, 1500*time.Millisecond, inserted.Duration)
	assert.Empty(t, inserted.Error)
	assert.False(t, inserted.CreatedAt.IsZero())

	got, err := repo.Build(ctx, inserted.ID)
	require.NoError(t, err)
	assert.Equal(t, inserted.ID, got.ID)
}

func TestBuildNotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Build(context.Background(), "missing")
	assert.ErrorIs(t, err, pulse.ErrNotFound)
}

func TestBuildsNewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, trigger := range []string{"one", "two", "three"} {
		_, err := repo.InsertBuild(ctx, pulse.Build{Trigger: trigger})
		require.NoError(t, err)
	}

	builds, err := repo.Builds(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, builds, 2)

	all, err := repo.Builds(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestBuildRecordsFailure(t *testing.T) {
	repo := newTestRepo(t)

	b, err := repo.InsertBuild(context.Background(), pulse.Build{
		Trigger: "manual",
		Error:   "error publishing feed file: permission denied",
	})
	require.NoError(t, err)
	assert.Equal(t, "error publishing feed file: permission denied", b.Error)
}
