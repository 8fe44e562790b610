// Package fs provides the filesystem abstraction all pipeline stages work
// through. Production code runs against the host filesystem; tests run against
// an in-memory filesystem with the same semantics, so every stage can be
// exercised against a disposable root.
package fs

import (
	"os"
	"path/filepath"
)

// File represents an open file handle supporting basic I/O operations.
// Implementations should behave consistently with the standard library.
// Metadata lookups go through Filesystem.Stat by path rather than through the
// handle.
type File interface {
	Close() error
	Name() string
	Read(p []byte) (n int, err error)
	Write(p []byte) (n int, err error)
}

// Filesystem is the set of operations pipeline stages perform on disk.
type Filesystem interface {
	Create(name string) (File, error)
	Open(name string) (File, error)
	Exists(path string) (bool, error)
	Stat(name string) (os.FileInfo, error)
	MkdirAll(path string, perm os.FileMode) error
	ReadDir(dirname string) ([]os.FileInfo, error)
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, perm os.FileMode) error
	Remove(name string) error
	RemoveAll(path string) error
	Walk(root string, walkFn filepath.WalkFunc) error
	TempDir(dir, prefix string) (string, error)
}
