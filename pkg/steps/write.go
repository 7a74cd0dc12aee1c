package steps

import (
	"bytes"
	"fmt"
	"io/fs"
	"path"

	"github.com/systemstart/many-scaffold/pkg/failure"
	"github.com/systemstart/many-scaffold/pkg/fsys"
	"github.com/systemstart/many-scaffold/pkg/inject"
	"github.com/systemstart/many-scaffold/pkg/render"
)

// writeDest writes data to dest, creating parent directories. An existing
// file with identical content is left alone; different content is only
// replaced when force is set.
func writeDest(target fsys.FS, dest string, data []byte, perm fs.FileMode, force bool) (inject.Change, string, error) {
	change := inject.Change{Path: dest, After: string(data)}

	info, statErr := target.Stat(dest)
	existed := statErr == nil

	switch {
	case existed && info.IsDir():
		return change, "", failure.WithPath(failure.KindPathExists, dest, "destination is a directory", nil)
	case existed:
		existing, err := target.ReadFile(dest)
		if err != nil {
			return change, "", failure.FromFS(dest, err)
		}
		change.Before = string(existing)
		if bytes.Equal(existing, data) {
			return change, "identical", nil
		}
		if !force {
			return change, "", failure.WithPath(failure.KindPathExists, dest, "destination exists with different content", nil)
		}
	case !fsys.Exists(target, path.Dir(dest)):
		if err := target.MkdirAll(path.Dir(dest), fsys.DefaultDirPerm); err != nil {
			return change, "", failure.FromFS(path.Dir(dest), fmt.Errorf("creating parent directories: %w", err))
		}
	}

	if err := target.WriteFile(dest, data, perm); err != nil {
		return change, "", failure.FromFS(dest, fmt.Errorf("writing: %w", err))
	}

	if existed {
		return change, "overwritten", nil
	}
	return change, "created", nil
}

// text returns s, rendered with the step's substitutions when enabled.
func (b base) text(sctx StepContext, what, s string, enabled bool) (string, error) {
	if !enabled {
		return s, nil
	}
	out, err := render.String(b.name+" "+what, s, b.substitutions(sctx))
	if err != nil {
		return "", err
	}
	return out, nil
}

func filePerm(info fs.FileInfo) fs.FileMode {
	if info == nil || info.Mode().Perm() == 0 {
		return fsys.DefaultFilePerm
	}
	return info.Mode().Perm()
}
