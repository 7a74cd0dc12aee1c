package steps

import (
	"context"
	"log/slog"

	"github.com/systemstart/many-scaffold/pkg/api"
	"github.com/systemstart/many-scaffold/pkg/fsys"
	"github.com/systemstart/many-scaffold/pkg/inject"
)

type createParams struct {
	Dest    string `yaml:"dest" validate:"required,localpath"`
	Content string `yaml:"content" validate:"required"`
	Render  bool
	Force   bool
}

type createStep struct {
	base
	params createParams
}

func newCreateStep(b base, cfg api.StepConfig) *createStep {
	return &createStep{base: b, params: createParams{Dest: cfg.Dest, Content: cfg.Content, Render: cfg.Render, Force: cfg.Force}}
}

func (s *createStep) Describe() string {
	return "create " + s.params.Dest
}

func (s *createStep) Run(_ context.Context, sctx StepContext) (*StepResult, error) {
	content, err := s.text(sctx, "content", s.params.Content, s.params.Render)
	if err != nil {
		return nil, err
	}

	change, note, err := writeDest(sctx.FS, s.params.Dest, []byte(content), fsys.DefaultFilePerm, s.params.Force)
	if err != nil {
		return nil, err
	}

	slog.Info("create step wrote file", "step", s.name, "dest", s.params.Dest, "result", note)
	return &StepResult{Note: note, Changes: []inject.Change{change}}, nil
}
