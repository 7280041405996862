package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestStore_RecordAndList(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	started := time.Now().Add(-2 * time.Minute)
	id, err := st.RecordRun(ctx, Run{
		StartedAt:    started,
		FinishedAt:   time.Now(),
		Species:      120,
		Resolved:     97,
		Unresolved:   23,
		Annotated:    80,
		Workers:      3,
		RateInterval: 200 * time.Millisecond,
		CacheDir:     "ncbi_cache",
		StatusPath:   "results/resolution_status.csv",
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	runs, err := st.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	run := runs[0]
	assert.Equal(t, id, run.ID)
	assert.Equal(t, 120, run.Species)
	assert.Equal(t, 97, run.Resolved)
	assert.Equal(t, 23, run.Unresolved)
	assert.Equal(t, 80, run.Annotated)
	assert.Equal(t, 3, run.Workers)
	assert.Equal(t, 200*time.Millisecond, run.RateInterval)
	assert.Equal(t, "ncbi_cache", run.CacheDir)
}

func TestStore_ListNewestFirst(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	older := time.Now().Add(-1 * time.Hour)
	newer := time.Now()

	_, err := st.RecordRun(ctx, Run{ID: "old", StartedAt: older, FinishedAt: older, Workers: 3})
	require.NoError(t, err)
	_, err = st.RecordRun(ctx, Run{ID: "new", StartedAt: newer, FinishedAt: newer, Workers: 3})
	require.NoError(t, err)

	runs, err := st.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "new", runs[0].ID)
	assert.Equal(t, "old", runs[1].ID)
}

func TestStore_ListLimit(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := st.RecordRun(ctx, Run{
			StartedAt:  time.Now().Add(time.Duration(i) * time.Minute),
			FinishedAt: time.Now(),
		})
		require.NoError(t, err)
	}

	runs, err := st.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestStore_MigrateIdempotent(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.Migrate(context.Background()))
}
