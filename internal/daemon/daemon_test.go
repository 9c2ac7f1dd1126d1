package daemon

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDaemon(t *testing.T, alive func(int) bool) *Daemon {
	t.Helper()
	d := New(filepath.Join(t.TempDir(), "timetracker.pid"))
	if alive != nil {
		d.alive = alive
	}
	return d
}

func TestReadPIDMissingFile(t *testing.T) {
	d := newTestDaemon(t, nil)

	pid, err := d.ReadPID()
	require.NoError(t, err)
	assert.Zero(t, pid)
}

func TestWriteAndReadPID(t *testing.T) {
	d := newTestDaemon(t, nil)

	require.NoError(t, d.WritePID())

	pid, err := d.ReadPID()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
}

func TestReadPIDInvalid(t *testing.T) {
	d := newTestDaemon(t, nil)
	require.NoError(t, os.WriteFile(d.PIDFile(), []byte("not-a-pid"), 0644))

	_, err := d.ReadPID()
	assert.Error(t, err)
}

func TestIsRunningCurrentProcess(t *testing.T) {
	d := newTestDaemon(t, nil)
	require.NoError(t, d.WritePID())

	running, pid, err := d.IsRunning()
	require.NoError(t, err)
	assert.True(t, running)
	assert.Equal(t, os.Getpid(), pid)
}

func TestIsRunningRemovesStaleFile(t *testing.T) {
	d := newTestDaemon(t, func(int) bool { return false })
	require.NoError(t, os.WriteFile(d.PIDFile(), []byte("424242\n"), 0644))

	running, _, err := d.IsRunning()
	require.NoError(t, err)
	assert.False(t, running)

	_, err = os.Stat(d.PIDFile())
	assert.True(t, os.IsNotExist(err))
}

func TestAcquire(t *testing.T) {
	t.Run("free", func(t *testing.T) {
		d := newTestDaemon(t, nil)
		require.NoError(t, d.Acquire())

		pid, err := d.ReadPID()
		require.NoError(t, err)
		assert.Equal(t, os.Getpid(), pid)
	})

	t.Run("held by another process", func(t *testing.T) {
		d := newTestDaemon(t, func(int) bool { return true })
		other := os.Getpid() + 1
		require.NoError(t, os.WriteFile(d.PIDFile(), []byte(strconv.Itoa(other)), 0644))

		err := d.Acquire()
		var running *AlreadyRunningError
		require.ErrorAs(t, err, &running)
		assert.Equal(t, other, running.PID)
	})

	t.Run("stale", func(t *testing.T) {
		d := newTestDaemon(t, func(pid int) bool { return pid == os.Getpid() })
		require.NoError(t, os.WriteFile(d.PIDFile(), []byte("424242"), 0644))

		require.NoError(t, d.Acquire())
	})
}

func TestStopNotRunning(t *testing.T) {
	d := newTestDaemon(t, nil)

	_, err := d.Stop()
	assert.ErrorIs(t, err, ErrNotRunning)
}

func TestRemovePIDMissing(t *testing.T) {
	d := newTestDaemon(t, nil)
	assert.NoError(t, d.RemovePID())
}
