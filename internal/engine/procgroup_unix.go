//go:build unix

package engine

import (
	"os/exec"
	"syscall"
)

// setProcessGroup starts the engine in its own process group so cancellation
// also kills any helpers it spawned.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
