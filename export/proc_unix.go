//go:build unix

package export

import (
	"os/exec"
	"syscall"
	"time"
)

// configureProcess puts the converter in its own process group so a timeout
// kills the whole tree, not just the launcher LibreOffice forks from.
func configureProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = 5 * time.Second
}
