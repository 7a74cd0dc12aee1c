package steps

import (
	"context"
	"fmt"

	"github.com/systemstart/many-scaffold/pkg/api"
	"github.com/systemstart/many-scaffold/pkg/inject"
)

type injectParams struct {
	Path    string `yaml:"path" validate:"required,localpath"`
	Anchor  string `yaml:"anchor" validate:"required"`
	Payload string `yaml:"payload" validate:"required"`
	Render  bool
}

type injectStep struct {
	base
	params   injectParams
	position inject.Position
}

func newInjectStep(b base, cfg api.StepConfig) *injectStep {
	pos := inject.After
	if cfg.Type == api.StepTypeInjectBefore {
		pos = inject.Before
	}
	return &injectStep{
		base:     b,
		params:   injectParams{Path: cfg.Path, Anchor: cfg.Anchor, Payload: cfg.Payload, Render: cfg.Render},
		position: pos,
	}
}

func (s *injectStep) Describe() string {
	return fmt.Sprintf("inject %d bytes %s %q in %s", len(s.params.Payload), s.position, s.params.Anchor, s.params.Path)
}

func (s *injectStep) Run(_ context.Context, sctx StepContext) (*StepResult, error) {
	payload, err := s.text(sctx, "payload", s.params.Payload, s.params.Render)
	if err != nil {
		return nil, err
	}

	change, err := inject.Inject(sctx.FS, s.params.Path, s.params.Anchor, payload, s.position)
	if err != nil {
		return nil, err
	}

	return &StepResult{Note: "injected", Changes: []inject.Change{change}}, nil
}
