package fs

import (
	"fmt"
	"os"
	"path/filepath"
)

// CopyFile copies a single file, creating the destination directory as needed.
// The destination is truncated if it already exists.
func CopyFile(fsys Filesystem, src, dst string, perm os.FileMode) error {
	data, err := fsys.ReadFile(src)
	if err != nil {
		return fmt.Errorf("fs: copy %q: %w", src, err)
	}
	if err := fsys.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return fsys.WriteFile(dst, data, perm)
}

// CopyDir recursively copies the contents of src into dst, preserving the
// relative layout. Files already present under dst are overwritten; files not
// present under src are left alone (callers wanting a clean destination must
// RemoveAll first).
func CopyDir(fsys Filesystem, src, dst string) error {
	return fsys.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return fmt.Errorf("fs: copydir rel %q: %w", path, err)
		}
		target := filepath.Join(dst, rel)
		if info.IsDir() {
			return fsys.MkdirAll(target, 0o755)
		}
		return CopyFile(fsys, path, target, info.Mode().Perm())
	})
}
