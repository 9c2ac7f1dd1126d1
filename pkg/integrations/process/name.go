package process

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/process"
)

// Name resolves a PID to the short name of its executable.
func Name(pid int32) (string, error) {
	if pid <= 0 {
		return "", fmt.Errorf("invalid pid %d", pid)
	}

	proc, err := process.NewProcess(pid)
	if err != nil {
		return "", fmt.Errorf("failed to find process %d: %w", pid, err)
	}

	name, err := proc.Name()
	if err == nil && name != "" {
		return name, nil
	}

	// Kernel comm is truncated to 15 chars, the executable path is not
	exe, exeErr := proc.Exe()
	if exeErr != nil {
		if err == nil {
			err = exeErr
		}
		return "", fmt.Errorf("failed to read process name for %d: %w", pid, err)
	}

	return strings.TrimSpace(filepath.Base(exe)), nil
}
