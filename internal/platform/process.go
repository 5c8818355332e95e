package platform

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"time"
)

// Command constants
const (
	TaskKillCommand = "taskkill"
	PKillCommand    = "pkill"
)

// KillTimeout bounds a single kill command invocation
const KillTimeout = 10 * time.Second

// KillProcessByName force-terminates processes matching name. A missing
// process or missing kill tool is not an error; it reports whether anything
// was terminated.
func KillProcessByName(ctx context.Context, name string) (bool, error) {
	if name == "" {
		return false, fmt.Errorf("process name is empty")
	}

	ctx, cancel := context.WithTimeout(ctx, KillTimeout)
	defer cancel()

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case OSWindows:
		cmd = exec.CommandContext(ctx, TaskKillCommand, "/f", "/im", name)
	default:
		// -x matches the process name exactly so the updater never matches itself
		cmd = exec.CommandContext(ctx, PKillCommand, "-x", name)
	}

	if err := cmd.Run(); err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			// taskkill and pkill exit non-zero when nothing matched
			return false, nil
		}
		if ctx.Err() != nil {
			return false, fmt.Errorf("kill %s: %w", name, ctx.Err())
		}
		return false, nil
	}
	return true, nil
}

// StartDetached launches program in the background, detached from the
// caller's session and console, with stdio discarded. It does not wait.
func StartDetached(program string, args ...string) error {
	if _, err := os.Stat(program); err != nil {
		return fmt.Errorf("program not found: %w", err)
	}

	cmd := exec.Command(program, args...)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.SysProcAttr = detachedProcAttr()

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", program, err)
	}
	// the child outlives us; release its handle instead of waiting
	return cmd.Process.Release()
}
