package mocks

import (
	"errors"
	"os"
	"testing"
)

func TestFileSystem_ReadWrite(t *testing.T) {
	fs := NewFileSystem()
	fs.AddFile("/home/u/.profile", "export EDITOR=vim\n")

	content, err := fs.ReadFile("/home/u/.profile")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(content) != "export EDITOR=vim\n" {
		t.Errorf("content = %q", content)
	}

	if err := fs.WriteFile("/home/u/.zshrc", []byte("alias g=git\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if !fs.Exists("/home/u/.zshrc") {
		t.Error("written file should exist")
	}
}

func TestFileSystem_ReadFile_NotFound(t *testing.T) {
	fs := NewFileSystem()
	_, err := fs.ReadFile("/missing")
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ReadFile() error = %v, want os.ErrNotExist", err)
	}
}

func TestFileSystem_Dirs(t *testing.T) {
	fs := NewFileSystem()
	fs.AddDir("/home/u/dotfiles")

	if !fs.Exists("/home/u/dotfiles") {
		t.Error("dir should exist")
	}
	if !fs.IsDir("/home/u/dotfiles") {
		t.Error("IsDir should be true for dirs")
	}

	fs.AddFile("/home/u/.zshrc", "")
	if fs.IsDir("/home/u/.zshrc") {
		t.Error("IsDir should be false for files")
	}
}

func TestFileSystem_Remove(t *testing.T) {
	fs := NewFileSystem()
	fs.AddFile("/home/u/.zshrc", "old")

	if err := fs.Remove("/home/u/.zshrc"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if fs.Exists("/home/u/.zshrc") {
		t.Error("removed file should not exist")
	}

	if err := fs.Remove("/home/u/.zshrc"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Remove() on missing path error = %v, want os.ErrNotExist", err)
	}
}

func TestFileSystem_RemoveAll(t *testing.T) {
	fs := NewFileSystem()
	fs.AddDir("/home/u/dotfiles")
	fs.AddFile("/home/u/dotfiles/.zshrc", "")
	fs.AddFile("/home/u/dotfiles/nvim/init.lua", "")
	fs.AddFile("/home/u/dotfiles.bak", "keep")

	if err := fs.RemoveAll("/home/u/dotfiles"); err != nil {
		t.Fatalf("RemoveAll() error = %v", err)
	}
	if fs.Exists("/home/u/dotfiles") || fs.Exists("/home/u/dotfiles/nvim/init.lua") {
		t.Error("RemoveAll should remove the tree")
	}
	if !fs.Exists("/home/u/dotfiles.bak") {
		t.Error("RemoveAll should not touch sibling paths")
	}
}

func TestFileSystem_Rename(t *testing.T) {
	fs := NewFileSystem()
	fs.AddFile("/tmp/history.yaml.tmp", "runs: []\n")

	if err := fs.Rename("/tmp/history.yaml.tmp", "/tmp/history.yaml"); err != nil {
		t.Fatalf("Rename() error = %v", err)
	}
	if fs.Exists("/tmp/history.yaml.tmp") {
		t.Error("old path should be gone")
	}
	content, err := fs.ReadFile("/tmp/history.yaml")
	if err != nil || string(content) != "runs: []\n" {
		t.Errorf("ReadFile() = %q, %v", content, err)
	}

	if err := fs.Rename("/missing", "/dest"); err == nil {
		t.Error("Rename() should fail for missing source")
	}
}

func TestFileSystem_ExpandPath(t *testing.T) {
	fs := NewFileSystem()

	if got := fs.ExpandPath("~/dotfiles"); got != "/home/test/dotfiles" {
		t.Errorf("ExpandPath(~/dotfiles) = %q, want the fixed test home", got)
	}
	if got := fs.ExpandPath("~"); got != "/home/test" {
		t.Errorf("ExpandPath(~) = %q, want the fixed test home", got)
	}
	if got := fs.ExpandPath("/etc/profile"); got != "/etc/profile" {
		t.Errorf("ExpandPath(/etc/profile) = %q, want it unchanged", got)
	}
}
