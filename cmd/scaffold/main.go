package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

var version = "dev"

const (
	_ = iota
	exitStepsFailed
	exitUsage
	exitDotenvError
	exitLoggingSetupFailed
	exitLoadRecipeFailed
	exitLoadSubstitutionsFailed
	exitLoadInstancesFailed
	exitTargetCheckFailed
	exitInstancesFailed
	exitWriteReportFailed
)

// exitError carries the process exit code out of a command.
type exitError struct {
	code int
	msg  string
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return e.msg
	}
	return e.msg + ": " + e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func exitWith(code int, msg string, err error) error {
	return &exitError{code: code, msg: msg, err: err}
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout))
}

func run(ctx context.Context, args []string, stdout io.Writer) int {
	cmd := newRootCommand(stdout)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if ee.code != exitStepsFailed {
			slog.Error(ee.msg, "error", ee.err)
		}
		return ee.code
	}

	slog.Error("invalid invocation", "error", err)
	return exitUsage
}

func includeEnv() error {
	err := godotenv.Load()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return exitWith(exitDotenvError, "failed to load .env", err)
		}
		slog.Debug("no .env file found")
		return nil
	}
	slog.Info("using .env file")
	return nil
}
