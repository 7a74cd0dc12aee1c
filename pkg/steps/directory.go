package steps

import (
	"context"
	"fmt"
	"path"

	"github.com/systemstart/many-scaffold/pkg/api"
	"github.com/systemstart/many-scaffold/pkg/failure"
	"github.com/systemstart/many-scaffold/pkg/fsys"
	"github.com/systemstart/many-scaffold/pkg/inject"
)

type directoryParams struct {
	Path string `yaml:"path" validate:"required,localpath,ne=."`
	Keep bool
}

type directoryStep struct {
	base
	params directoryParams
}

func newDirectoryStep(b base, cfg api.StepConfig) *directoryStep {
	keep := cfg.Keep == nil || *cfg.Keep
	return &directoryStep{base: b, params: directoryParams{Path: cfg.Path, Keep: keep}}
}

func (s *directoryStep) Describe() string {
	if s.params.Keep {
		return fmt.Sprintf("create directory %s with %s", s.params.Path, api.KeepFilename)
	}
	return "create directory " + s.params.Path
}

// Run creates the directory. Version control does not track empty
// directories, so a newly created one gets a .keep marker. An existing
// directory is left as it is.
func (s *directoryStep) Run(_ context.Context, sctx StepContext) (*StepResult, error) {
	p := s.params.Path

	info, err := sctx.FS.Stat(p)
	if err == nil {
		if !info.IsDir() {
			return nil, failure.WithPath(failure.KindPathExists, p, "exists and is not a directory", nil)
		}
		return &StepResult{Note: "exists"}, nil
	}

	if err := sctx.FS.MkdirAll(p, fsys.DefaultDirPerm); err != nil {
		return nil, failure.FromFS(p, fmt.Errorf("creating directory: %w", err))
	}

	if !s.params.Keep {
		return &StepResult{Note: "created"}, nil
	}

	keep := path.Join(p, api.KeepFilename)
	if err := sctx.FS.WriteFile(keep, nil, fsys.DefaultFilePerm); err != nil {
		return nil, failure.FromFS(keep, fmt.Errorf("writing keep file: %w", err))
	}
	return &StepResult{Note: "created", Changes: []inject.Change{{Path: keep}}}, nil
}
