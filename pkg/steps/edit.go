package steps

import (
	"context"
	"fmt"
	"regexp"

	"github.com/systemstart/many-scaffold/pkg/api"
	"github.com/systemstart/many-scaffold/pkg/inject"
)

type editParams struct {
	Path    string `yaml:"path" validate:"required,localpath"`
	Payload string `yaml:"payload" validate:"required"`
	Render  bool
}

// editStep prepends or appends to a file.
type editStep struct {
	base
	params editParams
}

func newEditStep(b base, cfg api.StepConfig) *editStep {
	return &editStep{base: b, params: editParams{Path: cfg.Path, Payload: cfg.Payload, Render: cfg.Render}}
}

func (s *editStep) Describe() string {
	return fmt.Sprintf("%s %d bytes to %s", s.typ, len(s.params.Payload), s.params.Path)
}

func (s *editStep) Run(_ context.Context, sctx StepContext) (*StepResult, error) {
	payload, err := s.text(sctx, "payload", s.params.Payload, s.params.Render)
	if err != nil {
		return nil, err
	}

	var change inject.Change
	if s.typ == api.StepTypePrepend {
		change, err = inject.Prepend(sctx.FS, s.params.Path, payload)
	} else {
		change, err = inject.Append(sctx.FS, s.params.Path, payload)
	}
	if err != nil {
		return nil, err
	}

	return &StepResult{Note: s.typ + "ed", Changes: []inject.Change{change}}, nil
}

type replaceParams struct {
	Path        string `yaml:"path" validate:"required,localpath"`
	Pattern     string `yaml:"pattern" validate:"required,regexp"`
	Replacement string
	Render      bool
}

type replaceStep struct {
	base
	params  replaceParams
	pattern *regexp.Regexp // compiled after validation
}

func newReplaceStep(b base, cfg api.StepConfig) *replaceStep {
	return &replaceStep{base: b, params: replaceParams{
		Path:        cfg.Path,
		Pattern:     cfg.Pattern,
		Replacement: cfg.Replacement,
		Render:      cfg.Render,
	}}
}

func (s *replaceStep) Describe() string {
	return fmt.Sprintf("replace /%s/ in %s", s.params.Pattern, s.params.Path)
}

func (s *replaceStep) Run(_ context.Context, sctx StepContext) (*StepResult, error) {
	replacement, err := s.text(sctx, "replacement", s.params.Replacement, s.params.Render)
	if err != nil {
		return nil, err
	}

	change, err := inject.Replace(sctx.FS, s.params.Path, s.pattern, replacement)
	if err != nil {
		return nil, err
	}

	return &StepResult{Note: "replaced", Changes: []inject.Change{change}}, nil
}
