package fsys

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"slices"
	"strings"
	"testing/fstest"
)

var (
	errNotDir   = errors.New("not a directory")
	errIsDir    = errors.New("is a directory")
	errNotEmpty = errors.New("directory not empty")
)

// Mem is an in-memory FS backed by fstest.MapFS. Parent directories of files
// exist implicitly, as they do in MapFS. It is not safe for concurrent use.
type Mem struct {
	m fstest.MapFS
}

// NewMem returns a Mem holding the given files, keyed by slash path.
func NewMem(files map[string]string) *Mem {
	m := make(fstest.MapFS, len(files))
	for name, content := range files {
		m[name] = &fstest.MapFile{Data: []byte(content), Mode: DefaultFilePerm}
	}
	return &Mem{m: m}
}

func (m *Mem) Open(name string) (fs.File, error)          { return m.m.Open(name) }
func (m *Mem) Stat(name string) (fs.FileInfo, error)      { return m.m.Stat(name) }
func (m *Mem) ReadFile(name string) ([]byte, error)       { return m.m.ReadFile(name) }
func (m *Mem) ReadDir(name string) ([]fs.DirEntry, error) { return m.m.ReadDir(name) }

func (m *Mem) WriteFile(name string, data []byte, perm os.FileMode) error {
	if !fs.ValidPath(name) || name == "." {
		return pathError("write", name, fs.ErrInvalid)
	}
	if info, err := m.m.Stat(name); err == nil && info.IsDir() {
		return pathError("write", name, errIsDir)
	}
	if dir := path.Dir(name); dir != "." {
		info, err := m.m.Stat(dir)
		if err != nil {
			return pathError("write", name, fs.ErrNotExist)
		}
		if !info.IsDir() {
			return pathError("write", name, errNotDir)
		}
	}
	m.m[name] = &fstest.MapFile{Data: slices.Clone(data), Mode: perm.Perm()}
	return nil
}

func (m *Mem) MkdirAll(name string, perm os.FileMode) error {
	if !fs.ValidPath(name) {
		return pathError("mkdir", name, fs.ErrInvalid)
	}
	if name == "." {
		return nil
	}
	parts := strings.Split(name, "/")
	for i := range parts {
		p := strings.Join(parts[:i+1], "/")
		info, err := m.m.Stat(p)
		if err != nil {
			m.m[p] = &fstest.MapFile{Mode: fs.ModeDir | perm.Perm()}
			continue
		}
		if !info.IsDir() {
			return pathError("mkdir", p, errNotDir)
		}
	}
	return nil
}

func (m *Mem) Remove(name string) error {
	if !fs.ValidPath(name) || name == "." {
		return pathError("remove", name, fs.ErrInvalid)
	}
	info, err := m.m.Stat(name)
	if err != nil {
		return pathError("remove", name, fs.ErrNotExist)
	}
	if info.IsDir() && len(m.children(name)) > 0 {
		return pathError("remove", name, errNotEmpty)
	}
	delete(m.m, name)
	return nil
}

func (m *Mem) RemoveAll(name string) error {
	if !fs.ValidPath(name) || name == "." {
		return pathError("remove", name, fs.ErrInvalid)
	}
	delete(m.m, name)
	for _, child := range m.children(name) {
		delete(m.m, child)
	}
	return nil
}

func (m *Mem) children(dir string) []string {
	prefix := dir + "/"
	var out []string
	for k := range m.m {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out
}

// Files returns the content of every regular file, keyed by slash path.
func (m *Mem) Files() map[string]string {
	out := make(map[string]string, len(m.m))
	for k, f := range m.m {
		if f.Mode.IsDir() {
			continue
		}
		out[k] = string(f.Data)
	}
	return out
}
