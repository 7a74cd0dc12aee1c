package steps

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"slices"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/systemstart/many-scaffold/pkg/api"
	"github.com/systemstart/many-scaffold/pkg/failure"
	"github.com/systemstart/many-scaffold/pkg/inject"
	"github.com/systemstart/many-scaffold/pkg/render"
)

type treeParams struct {
	Source  string   `yaml:"source" validate:"required,localpath"`
	Dest    string   `yaml:"dest" validate:"required,localpath"`
	Include []string `yaml:"include" validate:"dive,required"`
	Exclude []string `yaml:"exclude" validate:"dive,required"`
	Render  bool
	Force   bool
}

// treeStep copies a directory of the template source tree, optionally
// rendering every file.
type treeStep struct {
	base
	params treeParams
}

func newTreeStep(b base, cfg api.StepConfig) *treeStep {
	return &treeStep{base: b, params: treeParams{
		Source:  cfg.Source,
		Dest:    cfg.Dest,
		Include: cfg.Files.Include,
		Exclude: cfg.Files.Exclude,
		Render:  cfg.Render,
		Force:   cfg.Force,
	}}
}

func (s *treeStep) Describe() string {
	verb := "copy"
	if s.params.Render {
		verb = "render"
	}
	return fmt.Sprintf("%s tree %s to %s", verb, s.params.Source, s.params.Dest)
}

func (s *treeStep) Run(_ context.Context, sctx StepContext) (*StepResult, error) {
	if sctx.Sources == nil {
		return nil, failure.New(failure.KindConfiguration, "no template source tree")
	}

	info, err := fs.Stat(sctx.Sources, s.params.Source)
	if err != nil {
		return nil, failure.FromFS(s.params.Source, err)
	}
	if !info.IsDir() {
		return nil, failure.WithPath(failure.KindConfiguration, s.params.Source, "source is not a directory", nil)
	}

	src, err := fs.Sub(sctx.Sources, s.params.Source)
	if err != nil {
		return nil, failure.FromFS(s.params.Source, err)
	}

	files, err := filterFiles(src, s.params.Include, s.params.Exclude)
	if err != nil {
		return nil, failure.Wrap(failure.KindConfiguration, "filtering files", err)
	}

	slog.Info("tree step processing files", "step", s.name, "count", len(files))

	subs := s.substitutions(sctx)
	result := &StepResult{}
	for _, file := range files {
		change, err := s.copyFile(sctx, src, file, subs)
		if err != nil {
			return result, err
		}
		result.Changes = append(result.Changes, change)
	}

	result.Note = fmt.Sprintf("%d files", len(files))
	return result, nil
}

func (s *treeStep) copyFile(sctx StepContext, src fs.FS, file string, subs map[string]string) (inject.Change, error) {
	dest := path.Join(s.params.Dest, file)

	var data []byte
	if s.params.Render {
		out, err := render.File(src, file, subs)
		if err != nil {
			return inject.Change{}, fmt.Errorf("processing %s: %w", file, err)
		}
		data = []byte(out)
	} else {
		raw, err := fs.ReadFile(src, file)
		if err != nil {
			return inject.Change{}, failure.FromFS(file, err)
		}
		data = raw
	}

	info, _ := fs.Stat(src, file)
	change, note, err := writeDest(sctx.FS, dest, data, filePerm(info), s.params.Force)
	if err != nil {
		return inject.Change{}, err
	}

	slog.Debug("tree file written", "step", s.name, "dest", dest, "result", note)
	return change, nil
}

func globFS(fsys fs.FS, patterns []string) ([]string, error) {
	var result []string
	for _, pattern := range patterns {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		result = append(result, matches...)
	}
	slices.Sort(result)
	result = slices.Compact(result)
	return result, nil
}

func filterFiles(fsys fs.FS, include, exclude []string) ([]string, error) {
	if len(include) == 0 {
		include = []string{api.DefaultFileInclude}
	}

	included, err := globFS(fsys, include)
	if err != nil {
		return nil, fmt.Errorf("include filter: %w", err)
	}

	excluded, err := globFS(fsys, exclude)
	if err != nil {
		return nil, fmt.Errorf("exclude filter: %w", err)
	}

	var result []string
	for _, f := range included {
		info, err := fs.Stat(fsys, f)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", f, err)
		}
		if info.IsDir() {
			continue
		}
		if slices.Contains(excluded, f) {
			continue
		}
		result = append(result, f)
	}
	return result, nil
}
