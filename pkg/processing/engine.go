package processing

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aymanbagabas/go-udiff"
	"github.com/google/uuid"

	"github.com/systemstart/many-scaffold/pkg/failure"
	"github.com/systemstart/many-scaffold/pkg/fsys"
	"github.com/systemstart/many-scaffold/pkg/runner"
	"github.com/systemstart/many-scaffold/pkg/steps"
)

// Options controls a run. The zero value stops at the first failure, makes
// changes, has no timeout and records no diffs.
type Options struct {
	ContinueOnError bool
	DryRun          bool
	// StepTimeout applies to steps without their own timeout. 0 disables it.
	StepTimeout time.Duration
	// Diff attaches a unified diff of every text change to the outcome.
	Diff bool
	// Substitutions override the recipe's own.
	Substitutions map[string]string
}

// Executor runs recipes against one target tree through injected
// collaborators.
type Executor struct {
	FS        fsys.FS
	Sources   fs.FS
	Root      string
	Runner    runner.CommandRunner
	Generator []string
}

// Run applies recipe to the project at targetRoot using the real filesystem
// and os/exec. targetRoot must be an existing, writable directory; otherwise
// an error is returned and no report is produced.
func Run(ctx context.Context, recipe *steps.Recipe, targetRoot string, opts Options) (*Report, error) {
	if err := CheckTarget(targetRoot); err != nil {
		return nil, err
	}
	if err := recipe.Validate(); err != nil {
		return nil, err
	}

	root, err := filepath.Abs(targetRoot)
	if err != nil {
		return nil, fmt.Errorf("resolving target root: %w", err)
	}

	target, err := fsys.NewOS(root)
	if err != nil {
		return nil, failure.FromFS(root, err)
	}
	defer func() { _ = target.Close() }()

	e := &Executor{
		FS:        target,
		Root:      root,
		Runner:    runner.NewExecRunner(),
		Generator: recipe.Generator(),
	}
	if dir := recipe.Templates(); dir != "" {
		e.Sources = os.DirFS(dir)
	}

	return e.Run(ctx, recipe, opts), nil
}

// CheckTarget verifies that dir exists, is a directory and is writable.
func CheckTarget(dir string) error {
	if dir == "" {
		return failure.New(failure.KindConfiguration, "target root not set")
	}

	st, err := os.Stat(dir)
	if err != nil {
		return failure.FromFS(dir, fmt.Errorf("checking target root: %w", err))
	}
	if !st.IsDir() {
		return failure.WithPath(failure.KindConfiguration, dir, "target root is not a directory", nil)
	}
	if err := fsys.Writable(dir); err != nil {
		return failure.WithPath(failure.KindIO, dir, "target root is not writable", err)
	}
	return nil
}

// Run executes the steps of recipe strictly in order and reports one outcome
// per step. Step failures never abort Run itself; they are recorded in the
// report.
func (e *Executor) Run(ctx context.Context, recipe *steps.Recipe, opts Options) *Report {
	report := &Report{
		RunID:           uuid.NewString(),
		Recipe:          recipe.Name(),
		Target:          e.Root,
		DryRun:          opts.DryRun,
		ContinueOnError: opts.ContinueOnError,
		StartedAt:       time.Now(),
	}

	sctx := steps.StepContext{
		FS:            e.FS,
		Sources:       e.Sources,
		Root:          e.Root,
		Runner:        e.Runner,
		Generator:     e.Generator,
		Substitutions: MergeSubstitutions(recipe.Substitutions(), opts.Substitutions),
	}

	slog.Info("running recipe", "recipe", recipe.Name(), "run", report.RunID, "steps", recipe.Len(), "dryRun", opts.DryRun)

	halted := false
	for i, step := range recipe.All() {
		outcome := Outcome{
			Index:  i,
			Name:   step.Name(),
			Kind:   step.Type(),
			Action: step.Describe(),
		}

		switch {
		case halted:
			outcome.Status = StatusSkipped
			outcome.Message = "not run after earlier failure"
		case opts.DryRun:
			outcome.Status = StatusSuccess
			outcome.Message = "dry run"
			slog.Info("would run step", "step", step.Name(), "kind", step.Type(), "action", outcome.Action)
		default:
			e.runStep(ctx, step, sctx, opts, &outcome)
			if outcome.Status == StatusFailed && !opts.ContinueOnError {
				halted = true
			}
		}

		report.Outcomes = append(report.Outcomes, outcome)
	}

	report.Duration = time.Since(report.StartedAt)

	counts := report.Counts()
	slog.Info("recipe finished", "recipe", recipe.Name(),
		"succeeded", counts[StatusSuccess], "skipped", counts[StatusSkipped], "failed", counts[StatusFailed],
		"duration", report.Duration)

	return report
}

func (e *Executor) runStep(ctx context.Context, step steps.Step, sctx steps.StepContext, opts Options, outcome *Outcome) {
	timeout := step.Timeout()
	if timeout == 0 {
		timeout = opts.StepTimeout
	}

	stepCtx, cancel := ctx, context.CancelFunc(func() {})
	if timeout > 0 {
		stepCtx, cancel = context.WithTimeout(ctx, timeout)
	}
	defer cancel()

	slog.Info("running step", "step", step.Name(), "kind", step.Type(), "action", outcome.Action)

	start := time.Now()
	result, err := step.Run(stepCtx, sctx)
	outcome.Duration = time.Since(start)

	if result != nil {
		outcome.Output = result.Output
		outcome.ExitCode = result.ExitCode
		if opts.Diff {
			outcome.Diff = diff(result)
		}
	}

	if err != nil {
		if errors.Is(stepCtx.Err(), context.DeadlineExceeded) && failure.KindOf(err) != failure.KindTimedOut {
			err = failure.Wrap(failure.KindTimedOut, fmt.Sprintf("step exceeded %s", timeout), err)
		}

		outcome.Status = StatusFailed
		outcome.ErrorKind = failure.KindOf(err)
		if outcome.ErrorKind == "" {
			outcome.ErrorKind = failure.KindIO
		}
		outcome.Message = err.Error()
		outcome.Err = err
		if fe, ok := failure.As(err); ok && fe.ExitCode != 0 {
			outcome.ExitCode = fe.ExitCode
		}

		slog.Error("step failed", "step", step.Name(), "kind", step.Type(), "error", err)
		return
	}

	outcome.Status = StatusSuccess
	if result != nil {
		outcome.Message = result.Note
		if result.Skipped {
			outcome.Status = StatusSkipped
		}
	}
	slog.Debug("step finished", "step", step.Name(), "status", outcome.Status, "duration", outcome.Duration)
}

// diff renders the text changes of a step as unified diffs, one per file.
func diff(result *steps.StepResult) string {
	var out string
	for _, c := range result.Changes {
		if !c.Changed() {
			continue
		}
		out += udiff.Unified("a/"+c.Path, "b/"+c.Path, c.Before, c.After)
	}
	return out
}
