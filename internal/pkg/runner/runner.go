package runner

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/airenas/go-app/pkg/goapp"
)

// Runner executes an external command and waits for it to finish
type Runner interface {
	Run(ctx context.Context, cmd string, args []string) error
}

// ProcessError indicates external process failure:
// the binary could not be started, it exited with non zero code
// or it was stopped by context cancel/timeout
type ProcessError struct {
	Cmd      string
	ExitCode int // -1 when the process never started
	Stderr   string
	Killed   bool
}

func (e *ProcessError) Error() string {
	if e.Killed {
		return strings.TrimSpace(fmt.Sprintf("%s killed. %s", e.Cmd, e.Stderr))
	}
	if e.ExitCode < 0 {
		return strings.TrimSpace(fmt.Sprintf("%s failed to start. %s", e.Cmd, e.Stderr))
	}
	return strings.TrimSpace(fmt.Sprintf("%s exited with code %d. %s", e.Cmd, e.ExitCode, e.Stderr))
}

// Exec invokes commands using os/exec.
// No retries here - retry policy, if any, belongs to the caller
type Exec struct {
}

// NewExec creates exec based runner
func NewExec() *Exec {
	return &Exec{}
}

// Run starts the command with stdin closed, captures stderr, waits for exit
func (r *Exec) Run(ctx context.Context, cmd string, args []string) error {
	goapp.Log.Debug().Str("cmd", cmd).Strs("args", args).Msg("run")
	c := exec.CommandContext(ctx, cmd, args...)
	var stderr bytes.Buffer
	c.Stderr = &stderr
	if err := c.Start(); err != nil {
		return &ProcessError{Cmd: cmd, ExitCode: -1, Stderr: err.Error()}
	}
	if err := c.Wait(); err != nil {
		if ctx.Err() != nil {
			return &ProcessError{Cmd: cmd, ExitCode: c.ProcessState.ExitCode(), Killed: true,
				Stderr: strings.TrimSpace(ctx.Err().Error() + ". " + stderr.String())}
		}
		return &ProcessError{Cmd: cmd, ExitCode: c.ProcessState.ExitCode(),
			Stderr: strings.TrimSpace(stderr.String())}
	}
	return nil
}
