package steps

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/systemstart/many-scaffold/pkg/api"
	"github.com/systemstart/many-scaffold/pkg/failure"
	"github.com/systemstart/many-scaffold/pkg/runner"
)

type generatorParams struct {
	Generator string `yaml:"generator" validate:"required"`
	Args      []string
}

type generatorStep struct {
	base
	params generatorParams
}

func newGeneratorStep(b base, cfg api.StepConfig) *generatorStep {
	return &generatorStep{base: b, params: generatorParams{Generator: cfg.Generator, Args: cfg.Args}}
}

func (s *generatorStep) Describe() string {
	return strings.TrimSpace("run generator " + s.params.Generator + " " + strings.Join(s.params.Args, " "))
}

func (s *generatorStep) Run(ctx context.Context, sctx StepContext) (*StepResult, error) {
	if len(sctx.Generator) == 0 {
		return nil, failure.New(failure.KindConfiguration, "no generator command configured")
	}

	args := append(sctx.Generator[1:len(sctx.Generator):len(sctx.Generator)], s.params.Generator)
	args = append(args, s.params.Args...)

	return runCommand(ctx, sctx, s.name, sctx.Generator[0], args)
}

type shellParams struct {
	Command string `yaml:"command" validate:"required"`
}

type shellStep struct {
	base
	params shellParams
}

func newShellStep(b base, cfg api.StepConfig) *shellStep {
	return &shellStep{base: b, params: shellParams{Command: cfg.Command}}
}

func (s *shellStep) Describe() string {
	return "run " + s.params.Command
}

func (s *shellStep) Run(ctx context.Context, sctx StepContext) (*StepResult, error) {
	name, args := runner.Shell(s.params.Command)
	return runCommand(ctx, sctx, s.name, name, args)
}

// runCommand runs an external command in the target root and treats any
// non-zero exit as failure.KindSubprocessFailed. It never retries.
func runCommand(ctx context.Context, sctx StepContext, step, name string, args []string) (*StepResult, error) {
	if sctx.Runner == nil {
		return nil, failure.New(failure.KindConfiguration, "no command runner")
	}

	cmdline := strings.Join(append([]string{name}, args...), " ")
	slog.Info("running command", "step", step, "command", cmdline, "dir", sctx.Root)

	res, err := sctx.Runner.Run(ctx, name, args, runner.Opts{Dir: sctx.Root})
	output := combinedOutput(res)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, failure.Wrap(failure.KindTimedOut, cmdline, ctx.Err())
		}
		if ctx.Err() != nil {
			err = context.Cause(ctx)
		}
		return nil, failure.Subprocess(cmdline, -1, err)
	}

	result := &StepResult{Output: output, ExitCode: res.ExitCode}
	if res.ExitCode != 0 {
		return result, failure.Subprocess(cmdline, res.ExitCode, stderrTail(res.Stderr))
	}

	result.Note = "exit 0"
	return result, nil
}

func combinedOutput(res runner.Result) string {
	switch {
	case res.Stdout == "":
		return res.Stderr
	case res.Stderr == "":
		return res.Stdout
	default:
		return res.Stdout + res.Stderr
	}
}

// stderrTail returns the last few lines of stderr as an error, or nil.
func stderrTail(stderr string) error {
	stderr = strings.TrimSpace(stderr)
	if stderr == "" {
		return nil
	}
	lines := strings.Split(stderr, "\n")
	if len(lines) > 5 {
		lines = lines[len(lines)-5:]
	}
	return fmt.Errorf("stderr: %s", strings.Join(lines, "\n"))
}
