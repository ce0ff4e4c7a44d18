package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "manifest.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestStartAndFinishStage(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	run, err := s.StartStage(ctx, "merge")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, StatusRunning, run.Status)
	assert.Nil(t, run.FinishedAt)

	require.NoError(t, s.FinishStage(ctx, run.ID, "46 acquisitions"))

	runs, err := s.ListRuns(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, StatusComplete, runs[0].Status)
	assert.Equal(t, "46 acquisitions", runs[0].Detail)
	require.NotNil(t, runs[0].FinishedAt)
	assert.False(t, runs[0].FinishedAt.Before(runs[0].StartedAt))
}

func TestFailStage(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	run, err := s.StartStage(ctx, "zonal")
	require.NoError(t, err)
	require.NoError(t, s.FailStage(ctx, run.ID, "no cropped rasters"))

	runs, err := s.ListRuns(ctx, "zonal", 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, StatusFailed, runs[0].Status)
	assert.Equal(t, "no cropped rasters", runs[0].Detail)
}

func TestCloseUnknownRunFails(t *testing.T) {
	s := openTestStore(t)
	err := s.FinishStage(context.Background(), "no-such-run", "")
	assert.Error(t, err)
}

func TestListRunsFiltersByStage(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.StartStage(ctx, "merge")
	require.NoError(t, err)
	_, err = s.StartStage(ctx, "zonal")
	require.NoError(t, err)

	runs, err := s.ListRuns(ctx, "merge", 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "merge", runs[0].Stage)

	all, err := s.ListRuns(ctx, "", 10)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
