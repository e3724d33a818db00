package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := InitDBWithPath(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestRecordAndListRuns(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	first := &Run{
		SessionID:     "session-a",
		Project:       "/home/user/proj",
		Status:        StatusCompleted,
		IdeasFound:    3,
		IdeasPromoted: 1,
		SkillsCreated: 1,
		StartedAt:     now.Add(-2 * time.Minute),
		FinishedAt:    now.Add(-90 * time.Second),
	}
	require.NoError(t, RecordRun(ctx, db, first))
	require.NotZero(t, first.ID)
	assert.Equal(t, SourceHook, first.Source)

	second := &Run{
		SessionID:  "session-b",
		Project:    "/home/user/proj",
		Source:     SourceManual,
		Status:     StatusSkipped,
		Reason:     "insufficient prompts",
		StartedAt:  now.Add(-time.Minute),
		FinishedAt: now,
	}
	require.NoError(t, RecordRun(ctx, db, second))

	runs, err := ListRuns(ctx, db, "", 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// Newest first.
	assert.Equal(t, "session-b", runs[0].SessionID)
	assert.Equal(t, StatusSkipped, runs[0].Status)
	assert.Equal(t, "insufficient prompts", runs[0].Reason)
	assert.Equal(t, SourceManual, runs[0].Source)
	assert.Equal(t, 3, runs[1].IdeasFound)
}

func TestListRunsFiltersByProject(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for _, project := range []string{"/a", "/a", "/b"} {
		require.NoError(t, RecordRun(ctx, db, &Run{
			SessionID:  "s",
			Project:    project,
			Status:     StatusCompleted,
			StartedAt:  now,
			FinishedAt: now,
		}))
	}

	runs, err := ListRuns(ctx, db, "/a", 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	runs, err = ListRuns(ctx, db, "/a", 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
}

func TestRetryWithBackoffPermanent(t *testing.T) {
	permanent := errors.New("UNIQUE constraint failed: runs.id")
	calls := 0
	err := RetryWithBackoff(func() error {
		calls++
		return permanent
	})
	require.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestRetryWithBackoffTransient(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(func() error {
		calls++
		if calls < 3 {
			return errors.New("database is locked (5) (SQLITE_BUSY)")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}
