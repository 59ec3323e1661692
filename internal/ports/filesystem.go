package ports

import (
	"os"
	"path/filepath"
	"strings"
)

// FileSystem provides the file system operations provisioning steps need.
//
// ExpandPath resolves ~ against the home directory of the machine the
// FileSystem writes to, so manifest paths mean the same thing whether the
// target is local or reached over SSH.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, perm os.FileMode) error
	Exists(path string) bool
	IsDir(path string) bool
	Remove(path string) error
	RemoveAll(path string) error
	MkdirAll(path string, perm os.FileMode) error
	Rename(oldPath, newPath string) error
	ExpandPath(path string) string
}

// ExpandPath expands a leading ~ to the local user's home directory.
func ExpandPath(path string) string {
	if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return path
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
