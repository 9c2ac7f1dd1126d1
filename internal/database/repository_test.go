package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RustingSword/time-tracker/internal/models"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()

	db, err := Connect(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.Initialize())
	return NewRepository(db)
}

func TestCreateAndListErrors(t *testing.T) {
	repo := newTestRepo(t)

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, msg := range []string{"first", "second", "third"} {
		require.NoError(t, repo.CreateErrorLog(&models.ErrorLog{
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Source:    "poller",
			ErrorMsg:  msg,
		}))
	}

	logs, err := repo.RecentErrors(2)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "third", logs[0].ErrorMsg)
	assert.Equal(t, "second", logs[1].ErrorMsg)
	assert.Equal(t, "poller", logs[0].Source)

	all, err := repo.RecentErrors(0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestRecordError(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.RecordError("logger", errors.New("disk full")))

	logs, err := repo.RecentErrors(10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "logger", logs[0].Source)
	assert.Equal(t, "disk full", logs[0].ErrorMsg)
	assert.WithinDuration(t, time.Now(), logs[0].Timestamp, time.Minute)
}

func TestDeleteErrorsBefore(t *testing.T) {
	repo := newTestRepo(t)

	now := time.Now()
	require.NoError(t, repo.CreateErrorLog(&models.ErrorLog{Timestamp: now.Add(-48 * time.Hour), Source: "poller", ErrorMsg: "old"}))
	require.NoError(t, repo.CreateErrorLog(&models.ErrorLog{Timestamp: now, Source: "poller", ErrorMsg: "new"}))

	n, err := repo.DeleteErrorsBefore(now.Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	logs, err := repo.RecentErrors(0)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "new", logs[0].ErrorMsg)
}

func TestClear(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.RecordError("poller", errors.New("boom")))
	require.NoError(t, repo.Clear())

	logs, err := repo.RecentErrors(0)
	require.NoError(t, err)
	assert.Empty(t, logs)
}
