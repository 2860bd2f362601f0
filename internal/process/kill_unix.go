//go:build !windows

package process

import (
	"fmt"
	"syscall"
)

// KillTree kills pid and its children by sending SIGKILL to the process
// group led by pid.
func KillTree(pid int) error {
	if pid <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPID, pid)
	}
	return syscall.Kill(-pid, syscall.SIGKILL)
}
