package steps

import (
	"context"
	"io/fs"
	"maps"
	"time"

	"github.com/systemstart/many-scaffold/pkg/fsys"
	"github.com/systemstart/many-scaffold/pkg/inject"
	"github.com/systemstart/many-scaffold/pkg/runner"
)

// StepContext provides the runtime context for a step.
type StepContext struct {
	FS      fsys.FS // target project tree
	Sources fs.FS   // template source tree for copy, render and tree steps
	Root    string  // working directory for external commands
	Runner  runner.CommandRunner

	Generator     []string // generator command prefix
	Substitutions map[string]string
}

// StepResult holds the outcome of a step that did not fail.
type StepResult struct {
	Skipped  bool
	Note     string
	Changes  []inject.Change // text edits, in order
	Output   string          // captured subprocess output
	ExitCode int
}

// Step is the interface all recipe steps implement. A Step only describes an
// action; nothing happens until Run is called.
type Step interface {
	Name() string
	Type() string
	// Describe returns the intended action in one line.
	Describe() string
	// Timeout returns the step's own timeout, or 0 for the executor default.
	Timeout() time.Duration
	Run(ctx context.Context, sctx StepContext) (*StepResult, error)
}

type base struct {
	name    string
	typ     string
	timeout time.Duration
	subs    map[string]string
}

func (b base) Name() string           { return b.name }
func (b base) Type() string           { return b.typ }
func (b base) Timeout() time.Duration { return b.timeout }

// substitutions merges the step's own substitutions over the run's.
func (b base) substitutions(sctx StepContext) map[string]string {
	merged := make(map[string]string, len(sctx.Substitutions)+len(b.subs))
	maps.Copy(merged, sctx.Substitutions)
	maps.Copy(merged, b.subs)
	return merged
}
