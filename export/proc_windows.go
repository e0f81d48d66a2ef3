//go:build windows

package export

import (
	"os/exec"
	"time"
)

// configureProcess relies on CommandContext's default kill on Windows;
// process groups work differently there and Excel COM spawns no children
// worth chasing.
func configureProcess(cmd *exec.Cmd) {
	cmd.WaitDelay = 5 * time.Second
}
