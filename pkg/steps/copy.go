package steps

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/systemstart/many-scaffold/pkg/api"
	"github.com/systemstart/many-scaffold/pkg/failure"
	"github.com/systemstart/many-scaffold/pkg/inject"
)

type copyParams struct {
	Source string `yaml:"source" validate:"required,localpath"`
	Dest   string `yaml:"dest" validate:"required,localpath"`
	Force  bool
}

type copyStep struct {
	base
	params copyParams
}

func newCopyStep(b base, cfg api.StepConfig) *copyStep {
	return &copyStep{base: b, params: copyParams{Source: cfg.Source, Dest: cfg.Dest, Force: cfg.Force}}
}

func (s *copyStep) Describe() string {
	return fmt.Sprintf("copy %s to %s", s.params.Source, s.params.Dest)
}

func (s *copyStep) Run(_ context.Context, sctx StepContext) (*StepResult, error) {
	if sctx.Sources == nil {
		return nil, failure.New(failure.KindConfiguration, "no template source tree")
	}

	info, err := fs.Stat(sctx.Sources, s.params.Source)
	if err != nil {
		return nil, failure.FromFS(s.params.Source, err)
	}
	if info.IsDir() {
		return nil, failure.WithPath(failure.KindConfiguration, s.params.Source, "source is a directory, use a tree step", nil)
	}

	data, err := fs.ReadFile(sctx.Sources, s.params.Source)
	if err != nil {
		return nil, failure.FromFS(s.params.Source, err)
	}

	change, note, err := writeDest(sctx.FS, s.params.Dest, data, filePerm(info), s.params.Force)
	if err != nil {
		return nil, err
	}

	slog.Debug("copied file", "step", s.name, "source", s.params.Source, "dest", s.params.Dest, "result", note)
	return &StepResult{Note: note, Changes: []inject.Change{change}}, nil
}
