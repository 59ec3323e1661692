package remote

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/felixgeelhaar/provision/internal/ports"
)

// FileSystem performs file operations on a remote host through POSIX
// commands. It mirrors the local adapter's semantics where steps depend on
// them: a missing file reads as os.ErrNotExist, and RemoveAll of a missing
// path succeeds.
type FileSystem struct {
	client *Client

	homeOnce sync.Once
	homeDir  string
}

// NewFileSystem creates a FileSystem backed by the SSH client.
func NewFileSystem(client *Client) *FileSystem {
	return &FileSystem{client: client}
}

// ReadFile reads a remote file.
func (fs *FileSystem) ReadFile(path string) ([]byte, error) {
	result, err := fs.run("cat " + shellQuote(path))
	if err != nil {
		return nil, err
	}
	if !result.Success() {
		if isNotExist(result.Stderr) {
			return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
		}
		return nil, fmt.Errorf("reading %s: %s", path, strings.TrimSpace(result.Stderr))
	}
	return []byte(result.Stdout), nil
}

// WriteFile writes data to a remote file and sets its permissions.
func (fs *FileSystem) WriteFile(path string, data []byte, perm os.FileMode) error {
	quoted := shellQuote(path)
	line := fmt.Sprintf("cat > %s && chmod %o %s", quoted, perm.Perm(), quoted)

	result, err := fs.client.run(context.Background(), line, bytes.NewReader(data))
	if err != nil {
		return err
	}
	if !result.Success() {
		return fmt.Errorf("writing %s: %s", path, strings.TrimSpace(result.Stderr))
	}
	return nil
}

// Exists checks whether a remote path exists. The extra -L test reports
// dangling symlinks as present, matching the local adapter.
func (fs *FileSystem) Exists(path string) bool {
	quoted := shellQuote(path)
	result, err := fs.run(fmt.Sprintf("test -e %s || test -L %s", quoted, quoted))
	return err == nil && result.Success()
}

// IsDir checks whether a remote path is a directory.
func (fs *FileSystem) IsDir(path string) bool {
	result, err := fs.run("test -d " + shellQuote(path))
	return err == nil && result.Success()
}

// Remove removes a single remote file or empty directory.
func (fs *FileSystem) Remove(path string) error {
	quoted := shellQuote(path)
	line := fmt.Sprintf("if test -d %s; then rmdir %s; else rm %s; fi", quoted, quoted, quoted)
	return fs.expectSuccess(line, "removing "+path)
}

// RemoveAll removes a remote path and any children it contains.
func (fs *FileSystem) RemoveAll(path string) error {
	return fs.expectSuccess("rm -rf "+shellQuote(path), "removing "+path)
}

// MkdirAll creates a remote directory and any missing parents.
func (fs *FileSystem) MkdirAll(path string, perm os.FileMode) error {
	line := fmt.Sprintf("mkdir -p -m %o %s", perm.Perm(), shellQuote(path))
	return fs.expectSuccess(line, "creating "+path)
}

// Rename moves a remote file or directory.
func (fs *FileSystem) Rename(oldPath, newPath string) error {
	line := fmt.Sprintf("mv %s %s", shellQuote(oldPath), shellQuote(newPath))
	return fs.expectSuccess(line, "renaming "+oldPath)
}

// ExpandPath resolves a leading ~ against the remote user's home directory,
// so manifest paths land in the provisioned account's home rather than the
// operator's local one.
func (fs *FileSystem) ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home := fs.home()
	if home == "" {
		return path
	}
	if path == "~" {
		return home
	}
	return home + path[1:]
}

// home queries $HOME on the remote once and caches it.
func (fs *FileSystem) home() string {
	fs.homeOnce.Do(func() {
		result, err := fs.run(`printf %s "$HOME"`)
		if err == nil && result.Success() {
			fs.homeDir = strings.TrimSpace(result.Stdout)
		}
	})
	return fs.homeDir
}

func (fs *FileSystem) run(line string) (ports.CommandResult, error) {
	return fs.client.run(context.Background(), line, nil)
}

func (fs *FileSystem) expectSuccess(line, action string) error {
	result, err := fs.run(line)
	if err != nil {
		return err
	}
	if !result.Success() {
		return fmt.Errorf("%s: %s", action, strings.TrimSpace(result.Stderr))
	}
	return nil
}

func isNotExist(stderr string) bool {
	return strings.Contains(stderr, "No such file or directory")
}

// Ensure FileSystem implements ports.FileSystem.
var _ ports.FileSystem = (*FileSystem)(nil)
