package steps

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/systemstart/many-scaffold/pkg/api"
	"github.com/systemstart/many-scaffold/pkg/failure"
	"github.com/systemstart/many-scaffold/pkg/inject"
	"github.com/systemstart/many-scaffold/pkg/render"
)

type renderParams struct {
	Source string `yaml:"source" validate:"required,localpath"`
	Dest   string `yaml:"dest" validate:"required,localpath"`
	Force  bool
}

type renderStep struct {
	base
	params renderParams
}

func newRenderStep(b base, cfg api.StepConfig) *renderStep {
	return &renderStep{base: b, params: renderParams{Source: cfg.Source, Dest: cfg.Dest, Force: cfg.Force}}
}

func (s *renderStep) Describe() string {
	return fmt.Sprintf("render %s to %s", s.params.Source, s.params.Dest)
}

func (s *renderStep) Run(_ context.Context, sctx StepContext) (*StepResult, error) {
	if sctx.Sources == nil {
		return nil, failure.New(failure.KindConfiguration, "no template source tree")
	}

	out, err := render.File(sctx.Sources, s.params.Source, s.substitutions(sctx))
	if err != nil {
		return nil, err
	}

	info, _ := fs.Stat(sctx.Sources, s.params.Source)
	change, note, err := writeDest(sctx.FS, s.params.Dest, []byte(out), filePerm(info), s.params.Force)
	if err != nil {
		return nil, err
	}

	return &StepResult{Note: note, Changes: []inject.Change{change}}, nil
}
