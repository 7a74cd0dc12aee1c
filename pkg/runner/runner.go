// Package runner runs external commands on behalf of generator and shell steps.
package runner

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

// WaitDelay bounds how long Run waits for output pipes to close once the
// command has exited or been killed. A child that still holds stdout cannot
// keep Run blocked past it.
const WaitDelay = time.Second

// Result holds the outcome of a command that ran to completion.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Opts holds optional parameters for a command.
type Opts struct {
	Dir string            // working directory
	Env map[string]string // extra environment variables
}

// CommandRunner runs a command synchronously.
//
// Run returns a Result with ExitCode set whenever the process started and
// exited, including non-zero exits. The error is reserved for failures to run
// at all: binary not found, context done, I/O failure.
type CommandRunner interface {
	Run(ctx context.Context, name string, args []string, opts Opts) (Result, error)
}

// ExecRunner is the os/exec implementation of CommandRunner.
type ExecRunner struct{}

// NewExecRunner creates a new ExecRunner.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes the command and captures stdout and stderr.
func (r *ExecRunner) Run(ctx context.Context, name string, args []string, opts Opts) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = WaitDelay
	killProcessGroup(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if opts.Dir != "" {
		cmd.Dir = opts.Dir
	}

	if len(opts.Env) > 0 {
		cmd.Env = cmd.Environ()
		for k, v := range opts.Env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
	}

	err := cmd.Run()

	result := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, ctxErr
	}

	if errors.Is(err, exec.ErrWaitDelay) {
		// The command exited but left a child holding its output.
		result.ExitCode = cmd.ProcessState.ExitCode()
		return result, nil
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, err
	}

	return result, nil
}

// Shell returns the name and args that run command through sh -c.
func Shell(command string) (string, []string) {
	return "sh", []string{"-c", command}
}
