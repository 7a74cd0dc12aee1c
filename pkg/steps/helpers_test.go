package steps

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/systemstart/many-scaffold/pkg/api"
	"github.com/systemstart/many-scaffold/pkg/fsys"
	"github.com/systemstart/many-scaffold/pkg/runner"
)

// stubRunner records invocations and returns a fixed result.
type stubRunner struct {
	calls  []stubCall
	result runner.Result
	err    error
}

type stubCall struct {
	Name string
	Args []string
	Dir  string
}

func (r *stubRunner) Run(_ context.Context, name string, args []string, opts runner.Opts) (runner.Result, error) {
	r.calls = append(r.calls, stubCall{Name: name, Args: args, Dir: opts.Dir})
	return r.result, r.err
}

// sources builds a template source tree from path/content pairs.
func sources(files map[string]string) fstest.MapFS {
	m := make(fstest.MapFS, len(files))
	for name, content := range files {
		m[name] = &fstest.MapFile{Data: []byte(content), Mode: 0o644}
	}
	return m
}

func newStepContext(target map[string]string, src map[string]string) (StepContext, *fsys.Mem) {
	mem := fsys.NewMem(target)
	return StepContext{
		FS:            mem,
		Sources:       sources(src),
		Root:          "/project",
		Runner:        &stubRunner{},
		Generator:     []string{"bin/rails", "generate"},
		Substitutions: map[string]string{"app_name": "acme"},
	}, mem
}

// mustStep builds a step from cfg, failing the test on error.
func mustStep(t *testing.T, cfg api.StepConfig) Step {
	t.Helper()
	if cfg.Name == "" {
		cfg.Name = cfg.Type
	}
	s, err := NewStep(cfg)
	if err != nil {
		t.Fatalf("NewStep(%s): %v", cfg.Type, err)
	}
	return s
}

// run runs step against sctx and fails the test on error.
func run(t *testing.T, step Step, sctx StepContext) *StepResult {
	t.Helper()
	res, err := step.Run(context.Background(), sctx)
	if err != nil {
		t.Fatalf("%s: unexpected error: %v", step.Name(), err)
	}
	return res
}

// file returns the content of name in mem, failing the test if it is missing.
func file(t *testing.T, mem *fsys.Mem, name string) string {
	t.Helper()
	content, ok := mem.Files()[name]
	if !ok {
		t.Fatalf("%s not written; files: %v", name, mem.Files())
	}
	return content
}
