//go:build unix

package fsys

import "golang.org/x/sys/unix"

// Writable reports whether the current process may create entries in dir.
func Writable(dir string) error {
	return unix.Access(dir, unix.W_OK)
}
