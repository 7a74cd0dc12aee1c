package steps

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/systemstart/many-scaffold/pkg/api"
	"github.com/systemstart/many-scaffold/pkg/failure"
	"github.com/systemstart/many-scaffold/pkg/inject"
)

type removeParams struct {
	Path      string `yaml:"path" validate:"required,localpath,ne=."`
	MissingOK bool
}

type removeStep struct {
	base
	params removeParams
}

func newRemoveStep(b base, cfg api.StepConfig) *removeStep {
	return &removeStep{base: b, params: removeParams{Path: cfg.Path, MissingOK: cfg.MissingOK}}
}

func (s *removeStep) Describe() string {
	return "remove " + s.params.Path
}

func (s *removeStep) Run(_ context.Context, sctx StepContext) (*StepResult, error) {
	p := s.params.Path

	info, err := sctx.FS.Stat(p)
	if err != nil {
		err = failure.FromFS(p, err)
		if s.params.MissingOK && failure.KindOf(err) == failure.KindPathNotFound {
			slog.Info("nothing to remove", "step", s.name, "path", p)
			return &StepResult{Skipped: true, Note: "missing"}, nil
		}
		return nil, err
	}

	if info.IsDir() {
		if err := sctx.FS.RemoveAll(p); err != nil {
			return nil, failure.FromFS(p, fmt.Errorf("removing directory: %w", err))
		}
		return &StepResult{Note: "directory removed"}, nil
	}

	before, err := sctx.FS.ReadFile(p)
	if err != nil {
		return nil, failure.FromFS(p, err)
	}
	if err := sctx.FS.Remove(p); err != nil {
		return nil, failure.FromFS(p, fmt.Errorf("removing: %w", err))
	}

	return &StepResult{Note: "removed", Changes: []inject.Change{{Path: p, Before: string(before)}}}, nil
}
