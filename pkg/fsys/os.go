package fsys

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"
)

// OS is the production FS rooted at a directory on disk. It is backed by an
// os.Root, so no name, symlinks included, can reach outside the directory.
// Files are written atomically through a temp file and rename, so a failed
// write leaves any previous content in place.
type OS struct {
	dir  string
	root *os.Root
	view fs.FS
}

// NewOS opens dir and returns an FS rooted at it. Close releases the root.
func NewOS(dir string) (*OS, error) {
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, err
	}
	return &OS{dir: dir, root: root, view: root.FS()}, nil
}

// Root returns the directory the FS is rooted at.
func (o *OS) Root() string { return o.dir }

// Close releases the underlying root.
func (o *OS) Close() error { return o.root.Close() }

func (o *OS) resolve(op, name string) (string, error) {
	if !fs.ValidPath(name) {
		return "", pathError(op, name, fs.ErrInvalid)
	}
	return filepath.FromSlash(name), nil
}

func (o *OS) Open(name string) (fs.File, error) {
	return o.view.Open(name)
}

func (o *OS) Stat(name string) (fs.FileInfo, error) {
	return fs.Stat(o.view, name)
}

func (o *OS) ReadFile(name string) ([]byte, error) {
	return fs.ReadFile(o.view, name)
}

func (o *OS) WriteFile(name string, data []byte, perm os.FileMode) error {
	if _, err := o.resolve("write", name); err != nil {
		return err
	}
	return o.writeFileAtomic(name, data, perm)
}

func (o *OS) MkdirAll(name string, perm os.FileMode) error {
	p, err := o.resolve("mkdir", name)
	if err != nil {
		return err
	}
	return o.root.MkdirAll(p, perm)
}

func (o *OS) Remove(name string) error {
	p, err := o.resolve("remove", name)
	if err != nil {
		return err
	}
	if name == "." {
		return pathError("remove", name, fs.ErrPermission)
	}
	return o.root.Remove(p)
}

func (o *OS) RemoveAll(name string) error {
	p, err := o.resolve("remove", name)
	if err != nil {
		return err
	}
	if name == "." {
		return pathError("remove", name, fs.ErrPermission)
	}
	return o.root.RemoveAll(p)
}

// writeFileAtomic writes data to name using a temp file in the same
// directory and a rename. The parent directory must exist.
func (o *OS) writeFileAtomic(name string, data []byte, perm os.FileMode) error {
	tmp := filepath.FromSlash(path.Join(path.Dir(name), ".scaffold-tmp-"+uuid.NewString()))
	f, err := o.root.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return pathError("write", name, fs.ErrNotExist)
		}
		return err
	}

	success := false
	defer func() {
		if !success {
			_ = o.root.Remove(tmp)
		}
	}()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := o.root.Chmod(tmp, perm); err != nil {
		return err
	}
	if err := o.root.Rename(tmp, filepath.FromSlash(name)); err != nil {
		return err
	}

	success = true
	return nil
}
