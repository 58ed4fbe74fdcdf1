package executor

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"time"

	"github.com/Cyclone1070/kestrel/internal/config"
)

// binarySampleSize is how much leading output is inspected for binary content.
const binarySampleSize = 8000

// Result represents the outcome of a command execution.
type Result struct {
	Stdout    string
	Stderr    string
	ExitCode  int
	Truncated bool
}

// OSCommandExecutor implements command execution using os/exec for real system commands.
type OSCommandExecutor struct {
	config *config.Config
}

// NewOSCommandExecutor creates a new OSCommandExecutor with injected config.
func NewOSCommandExecutor(cfg *config.Config) *OSCommandExecutor {
	if cfg == nil {
		panic("cfg is required")
	}
	return &OSCommandExecutor{config: cfg}
}

// RunWithTimeout executes a command in its own process group.
// On timeout the group is interrupted, then killed after the graceful
// shutdown period. On context cancellation the group is killed at once.
// A non-zero exit is reported through Result.ExitCode and an *exec.ExitError.
func (f *OSCommandExecutor) RunWithTimeout(ctx context.Context, command []string, dir string, env []string, timeout time.Duration) (*Result, error) {
	if len(command) == 0 {
		return nil, os.ErrInvalid
	}

	grace := time.Duration(f.config.Tools.GracefulShutdownMs) * time.Millisecond
	maxBytes := int(f.config.Tools.MaxCommandOutputSize)

	stdout := newCollector(maxBytes, binarySampleSize)
	stderr := newCollector(maxBytes, binarySampleSize)

	// We don't use CommandContext because we want to handle graceful shutdown
	cmd := exec.Command(command[0], command[1:]...)
	cmd.Dir = dir
	cmd.Env = env
	cmd.Stdin = nil
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = grace
	setupProcessGroup(cmd)

	if err := cmd.Start(); err != nil {
		return nil, &CommandError{Cmd: command[0], Cause: err, Stage: "start"}
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var execErr error
	select {
	case err := <-done:
		execErr = err
	case <-ctx.Done():
		killProcessGroup(cmd)
		<-done
		execErr = ctx.Err()
	case <-timer.C:
		interruptProcessGroup(cmd)
		select {
		case <-done:
		case <-time.After(grace):
			killProcessGroup(cmd)
			<-done
		}
		execErr = ErrTimeout
	}

	exitCode := 0
	if execErr != nil {
		exitCode = getExitCode(execErr)
	}

	return &Result{
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		ExitCode:  exitCode,
		Truncated: stdout.Truncated() || stderr.Truncated(),
	}, execErr
}

func getExitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
