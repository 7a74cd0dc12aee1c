// Package fsys provides the filesystem collaborator the steps mutate.
//
// All names are slash-separated paths relative to the target root, valid in the
// sense of fs.ValidPath. OS is the production implementation; Mem keeps the
// tree in memory and is what the step and executor tests run against.
package fsys

import (
	"io/fs"
	"os"
)

const (
	// DefaultFilePerm is used for files written without an explicit mode.
	DefaultFilePerm fs.FileMode = 0o644
	// DefaultDirPerm is used for directories created by MkdirAll.
	DefaultDirPerm fs.FileMode = 0o755
)

// FS is the interface for mutating a project tree.
type FS interface {
	fs.StatFS
	fs.ReadFileFS

	WriteFile(name string, data []byte, perm os.FileMode) error
	MkdirAll(name string, perm os.FileMode) error
	// Remove removes a file or an empty directory.
	Remove(name string) error
	// RemoveAll removes name and any children. A missing name is not an error.
	RemoveAll(name string) error
}

// Exists reports whether name exists in fsys.
func Exists(fsys fs.StatFS, name string) bool {
	_, err := fsys.Stat(name)
	return err == nil
}

func pathError(op, name string, err error) error {
	return &fs.PathError{Op: op, Path: name, Err: err}
}
