// Package inject edits text files in place: anchor-based insertion, prepend,
// append and regexp replacement.
//
// Anchors are matched literally against the first occurrence only. There is no
// fuzzy matching; a missing anchor fails with failure.KindAnchorNotFound and the
// file is left untouched.
package inject

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/systemstart/many-scaffold/pkg/failure"
	"github.com/systemstart/many-scaffold/pkg/fsys"
)

// Position selects where a payload goes relative to its anchor.
type Position int

const (
	After Position = iota
	Before
)

func (p Position) String() string {
	if p == Before {
		return "before"
	}
	return "after"
}

// Change records a file's content before and after an edit.
type Change struct {
	Path   string
	Before string
	After  string
}

// Changed reports whether the edit modified the content.
func (c Change) Changed() bool { return c.Before != c.After }

// InsertAt inserts payload immediately before or after the first occurrence of
// anchor in content.
func InsertAt(content, anchor, payload string, pos Position) (string, error) {
	if anchor == "" {
		return "", failure.New(failure.KindConfiguration, "anchor is empty")
	}
	i := strings.Index(content, anchor)
	if i < 0 {
		return "", failure.Newf(failure.KindAnchorNotFound, "anchor %q", anchor)
	}
	if pos == After {
		i += len(anchor)
	}
	return content[:i] + payload + content[i:], nil
}

// Inject inserts payload relative to the first occurrence of anchor in the file.
func Inject(fs fsys.FS, path, anchor, payload string, pos Position) (Change, error) {
	return edit(fs, path, func(content string) (string, error) {
		return InsertAt(content, anchor, payload, pos)
	})
}

// Prepend inserts payload at the start of the file.
func Prepend(fs fsys.FS, path, payload string) (Change, error) {
	return edit(fs, path, func(content string) (string, error) {
		return payload + content, nil
	})
}

// Append inserts payload at the end of the file.
func Append(fs fsys.FS, path, payload string) (Change, error) {
	return edit(fs, path, func(content string) (string, error) {
		return content + payload, nil
	})
}

// Replace replaces every match of pattern with replacement, expanding $1 style
// references. A pattern with no match fails with failure.KindAnchorNotFound.
func Replace(fs fsys.FS, path string, pattern *regexp.Regexp, replacement string) (Change, error) {
	return edit(fs, path, func(content string) (string, error) {
		if !pattern.MatchString(content) {
			return "", failure.Newf(failure.KindAnchorNotFound, "pattern %q", pattern.String())
		}
		return pattern.ReplaceAllString(content, replacement), nil
	})
}

// edit reads path, applies fn and writes the result back with the file's
// existing mode. Nothing is written when fn fails.
func edit(fs fsys.FS, path string, fn func(string) (string, error)) (Change, error) {
	info, err := fs.Stat(path)
	if err != nil {
		return Change{}, failure.FromFS(path, err)
	}
	if info.IsDir() {
		return Change{}, failure.WithPath(failure.KindConfiguration, path, "is a directory", nil)
	}

	data, err := fs.ReadFile(path)
	if err != nil {
		return Change{}, failure.FromFS(path, err)
	}

	before := string(data)
	after, err := fn(before)
	if err != nil {
		if fe, ok := failure.As(err); ok && fe.Path == "" {
			fe.Path = path
		}
		return Change{}, err
	}

	if err := fs.WriteFile(path, []byte(after), info.Mode().Perm()); err != nil {
		return Change{}, failure.FromFS(path, fmt.Errorf("writing: %w", err))
	}

	return Change{Path: path, Before: before, After: after}, nil
}
