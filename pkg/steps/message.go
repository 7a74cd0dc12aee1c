package steps

import (
	"context"
	"log/slog"

	"github.com/systemstart/many-scaffold/pkg/api"
)

type messageParams struct {
	Text   string `yaml:"text" validate:"required"`
	Render bool
}

type messageStep struct {
	base
	params messageParams
}

func newMessageStep(b base, cfg api.StepConfig) *messageStep {
	return &messageStep{base: b, params: messageParams{Text: cfg.Text, Render: cfg.Render}}
}

func (s *messageStep) Describe() string {
	return "say " + s.params.Text
}

func (s *messageStep) Run(_ context.Context, sctx StepContext) (*StepResult, error) {
	text, err := s.text(sctx, "text", s.params.Text, s.params.Render)
	if err != nil {
		return nil, err
	}
	slog.Info(text, "step", s.name)
	return &StepResult{Note: text}, nil
}
