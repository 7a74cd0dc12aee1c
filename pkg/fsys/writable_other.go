//go:build !unix

package fsys

import "os"

// Writable reports whether the current process may create entries in dir by
// creating and removing a temporary file.
func Writable(dir string) error {
	f, err := os.CreateTemp(dir, ".scaffold-check-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}
