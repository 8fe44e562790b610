package fs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// FS implements the Filesystem interface using go-billy.
type FS struct {
	fs billy.Filesystem
}

// NewFS creates a new FS using the given go-billy filesystem.
func NewFS(fsys billy.Filesystem) *FS {
	return &FS{fs: fsys}
}

// NewInMemoryFS creates a new in-memory filesystem.
func NewInMemoryFS() *FS {
	return &FS{fs: memfs.New()}
}

// NewOSFS creates a new OS filesystem rooted at path.
func NewOSFS(path string) *FS {
	return &FS{fs: osfs.New(path)}
}

// Create implements Filesystem.Create.
//
//nolint:ireturn // API returns the fs.File interface by design for flexibility.
func (b *FS) Create(name string) (File, error) {
	f, err := b.fs.Create(name)
	if err != nil {
		return nil, fmt.Errorf("fs: create %q: %w", name, err)
	}
	return f, nil
}

// Open implements Filesystem.Open.
//
//nolint:ireturn // API returns the fs.File interface by design for flexibility.
func (b *FS) Open(name string) (File, error) {
	f, err := b.fs.Open(name)
	if err != nil {
		return nil, fmt.Errorf("fs: open %q: %w", name, err)
	}
	return f, nil
}

// Exists implements Filesystem.Exists.
func (b *FS) Exists(path string) (bool, error) {
	_, err := b.fs.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case os.IsNotExist(err):
		return false, nil
	default:
		return false, fmt.Errorf("fs: stat %q: %w", path, err)
	}
}

// Stat implements Filesystem.Stat.
func (b *FS) Stat(name string) (os.FileInfo, error) {
	info, err := b.fs.Stat(name)
	if err != nil {
		return nil, fmt.Errorf("fs: stat %q: %w", name, err)
	}
	return info, nil
}

// MkdirAll implements Filesystem.MkdirAll.
func (b *FS) MkdirAll(path string, perm os.FileMode) error {
	if err := b.fs.MkdirAll(path, perm); err != nil {
		return fmt.Errorf("fs: mkdirall %q: %w", path, err)
	}
	return nil
}

// ReadDir implements Filesystem.ReadDir.
func (b *FS) ReadDir(dirname string) ([]os.FileInfo, error) {
	list, err := b.fs.ReadDir(dirname)
	if err != nil {
		return nil, fmt.Errorf("fs: readdir %q: %w", dirname, err)
	}
	return list, nil
}

// ReadFile implements Filesystem.ReadFile.
func (b *FS) ReadFile(path string) ([]byte, error) {
	bts, err := util.ReadFile(b.fs, path)
	if err != nil {
		return nil, fmt.Errorf("fs: readfile %q: %w", path, err)
	}
	return bts, nil
}

// WriteFile implements Filesystem.WriteFile.
func (b *FS) WriteFile(path string, data []byte, perm os.FileMode) error {
	if err := util.WriteFile(b.fs, path, data, perm); err != nil {
		return fmt.Errorf("fs: writefile %q: %w", path, err)
	}
	return nil
}

// Remove implements Filesystem.Remove.
func (b *FS) Remove(name string) error {
	if err := b.fs.Remove(name); err != nil {
		return fmt.Errorf("fs: remove %q: %w", name, err)
	}
	return nil
}

// RemoveAll implements Filesystem.RemoveAll. Removing a path that does not
// exist is not an error, matching os.RemoveAll.
func (b *FS) RemoveAll(path string) error {
	if err := util.RemoveAll(b.fs, path); err != nil {
		return fmt.Errorf("fs: removeall %q: %w", path, err)
	}
	return nil
}

// Walk implements Filesystem.Walk.
func (b *FS) Walk(root string, walkFn filepath.WalkFunc) error {
	if err := util.Walk(b.fs, root, walkFn); err != nil {
		return fmt.Errorf("fs: walk %q: %w", root, err)
	}
	return nil
}

// TempDir implements Filesystem.TempDir.
func (b *FS) TempDir(dir, prefix string) (string, error) {
	name, err := util.TempDir(b.fs, dir, prefix)
	if err != nil {
		return "", fmt.Errorf("fs: tempdir dir=%q prefix=%q: %w", dir, prefix, err)
	}
	return name, nil
}

// Raw returns the underlying go-billy filesystem.
//
//nolint:ireturn // returning interface here is intentional to expose the adapter target.
func (b *FS) Raw() billy.Filesystem {
	return b.fs
}
