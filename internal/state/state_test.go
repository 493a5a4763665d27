// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package state

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/handbook-sync/pkg/types"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "state", "sync.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_RunLifecycle(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	runID, err := s.BeginRun(ctx, "https://x/wp-json/wp/v2/handbook", "en/", start)
	require.NoError(t, err)
	require.NoError(t, s.FinishRun(ctx, runID, 2, 1, 3, start.Add(time.Minute)))

	runs, err := s.Runs(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, Run{
		ID:         runID,
		Endpoint:   "https://x/wp-json/wp/v2/handbook",
		OutputDir:  "en/",
		StartedAt:  start,
		FinishedAt: start.Add(time.Minute),
		Created:    2,
		Updated:    1,
		Skipped:    3,
	}, runs[0])
}

func TestStore_RunsNewestFirstWithLimit(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	now := time.Now()

	var ids []int64
	for i := 0; i < 3; i++ {
		id, err := s.BeginRun(ctx, "e", "en/", now)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	runs, err := s.Runs(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, ids[2], runs[0].ID)
	assert.Equal(t, ids[1], runs[1].ID)
	assert.True(t, runs[0].FinishedAt.IsZero(), "unfinished run has no finish time")
}

func TestStore_RecordFileUpserts(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	item := types.Item{ID: 4, Link: "https://x/hb/a/", Title: "A"}

	run1, err := s.BeginRun(ctx, "e", "en/", now)
	require.NoError(t, err)
	require.NoError(t, s.RecordFile(ctx, run1, "en/", "a", item, "# A\n\nv1", types.OutcomeCreated, now))

	run2, err := s.BeginRun(ctx, "e", "en/", now)
	require.NoError(t, err)
	require.NoError(t, s.RecordFile(ctx, run2, "en/", "a", item, "# A\n\nv2", types.OutcomeUpdated, now))
	require.NoError(t, s.RecordFile(ctx, run2, "other/", "a", item, "# A\n\nv2", types.OutcomeCreated, now))

	files, err := s.Files(ctx, "en/")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, types.OutcomeUpdated, files[0].Outcome)
	assert.Equal(t, run2, files[0].RunID)
	assert.Equal(t, Digest("# A\n\nv2"), files[0].SHA256)
	assert.Equal(t, int64(4), files[0].ItemID)
	assert.Equal(t, now, files[0].SyncedAt)

	all, err := s.Files(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestDigest(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", Digest(""))
	assert.NotEqual(t, Digest("a"), Digest("b"))
}
