// Package filesystem provides a FileSystem backed by the os package.
package filesystem

import (
	"os"

	"github.com/felixgeelhaar/provision/internal/ports"
)

// RealFileSystem implements ports.FileSystem using the local disk.
type RealFileSystem struct{}

// NewRealFileSystem creates a file system adapter for the local disk.
func NewRealFileSystem() *RealFileSystem {
	return &RealFileSystem{}
}

// ReadFile reads the contents of a file.
func (fs *RealFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile writes data to a file, creating it if necessary.
func (fs *RealFileSystem) WriteFile(path string, data []byte, perm os.FileMode) error {
	return os.WriteFile(path, data, perm)
}

// Exists checks whether a path exists without following symlinks, so a
// dangling symlink still counts as present and can be removed.
func (fs *RealFileSystem) Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// IsDir checks whether a path is a directory.
func (fs *RealFileSystem) IsDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// Remove removes a single file or empty directory.
func (fs *RealFileSystem) Remove(path string) error {
	return os.Remove(path)
}

// RemoveAll removes a path and any children it contains.
func (fs *RealFileSystem) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

// MkdirAll creates a directory and any missing parents.
func (fs *RealFileSystem) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// Rename moves a file or directory to a new path.
func (fs *RealFileSystem) Rename(oldPath, newPath string) error {
	return os.Rename(oldPath, newPath)
}

// ExpandPath resolves a leading ~ against the local home directory.
func (fs *RealFileSystem) ExpandPath(path string) string {
	return ports.ExpandPath(path)
}

// Ensure RealFileSystem implements FileSystem.
var _ ports.FileSystem = (*RealFileSystem)(nil)
