// Package daemon keeps one tracker per user through a PID file and lets
// other invocations inspect or stop it.
package daemon

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/shirou/gopsutil/process"
)

// ErrNotRunning is returned by Stop when no live tracker owns the PID file
var ErrNotRunning = errors.New("tracker is not running")

// AlreadyRunningError reports the PID of the tracker that holds the file
type AlreadyRunningError struct {
	PID int
}

func (e *AlreadyRunningError) Error() string {
	return fmt.Sprintf("tracker already running (PID %d)", e.PID)
}

type Daemon struct {
	pidFile string

	// alive is swapped in tests
	alive func(pid int) bool
}

func New(pidFile string) *Daemon {
	return &Daemon{pidFile: pidFile, alive: pidAlive}
}

func pidAlive(pid int) bool {
	exists, err := process.PidExists(int32(pid))
	return err == nil && exists
}

// PIDFile returns the file location
func (d *Daemon) PIDFile() string {
	return d.pidFile
}

// Acquire writes the current PID unless another live tracker already owns
// the file. Stale files are replaced.
func (d *Daemon) Acquire() error {
	running, pid, err := d.IsRunning()
	if err != nil {
		return err
	}
	if running && pid != os.Getpid() {
		return &AlreadyRunningError{PID: pid}
	}
	return d.WritePID()
}

func (d *Daemon) WritePID() error {
	pid := os.Getpid()
	if err := os.WriteFile(d.pidFile, fmt.Appendf(nil, "%d\n", pid), 0644); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	return nil
}

// ReadPID returns 0 when the file does not exist
func (d *Daemon) ReadPID() (int, error) {
	data, err := os.ReadFile(d.pidFile)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read PID file: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID in file: %w", err)
	}

	return pid, nil
}

func (d *Daemon) RemovePID() error {
	if err := os.Remove(d.pidFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

// IsRunning reports whether the PID in the file belongs to a live process.
// A stale file is removed.
func (d *Daemon) IsRunning() (bool, int, error) {
	pid, err := d.ReadPID()
	if err != nil {
		return false, 0, err
	}
	if pid <= 0 {
		return false, 0, nil
	}

	if !d.alive(pid) {
		_ = d.RemovePID()
		return false, 0, nil
	}

	return true, pid, nil
}

// Stop sends SIGTERM to the running tracker, which writes its exit marker
// and removes the PID file itself.
func (d *Daemon) Stop() (int, error) {
	running, pid, err := d.IsRunning()
	if err != nil {
		return 0, fmt.Errorf("error checking tracker status: %w", err)
	}
	if !running {
		return 0, ErrNotRunning
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return 0, fmt.Errorf("failed to find process: %w", err)
	}

	if err := proc.Signal(syscall.SIGTERM); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			_ = d.RemovePID()
			return 0, ErrNotRunning
		}
		return 0, fmt.Errorf("failed to send SIGTERM: %w", err)
	}

	return pid, nil
}
