package process

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/juju/errors"
)

func TestResolve_ToolDirectory(t *testing.T) {
	dir := t.TempDir()
	name := "svnlook"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}
	got, err := Resolve(dir, "svnlook")
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(dir, name) {
		t.Errorf("Resolve = %q, want %q", got, filepath.Join(dir, name))
	}
}

func TestResolve_NotFound(t *testing.T) {
	t.Run("missing in directory", func(t *testing.T) {
		_, err := Resolve(t.TempDir(), "svnadmin")
		if !errors.Is(err, errors.NotFound) {
			t.Errorf("error = %v, want not found", err)
		}
	})
	t.Run("directory instead of file", func(t *testing.T) {
		dir := t.TempDir()
		name := "svnadmin"
		if runtime.GOOS == "windows" {
			name += ".exe"
		}
		if err := os.Mkdir(filepath.Join(dir, name), 0755); err != nil {
			t.Fatal(err)
		}
		_, err := Resolve(dir, "svnadmin")
		if !errors.Is(err, errors.NotFound) {
			t.Errorf("error = %v, want not found", err)
		}
	})
	t.Run("missing on PATH", func(t *testing.T) {
		_, err := Resolve("", "svnbackuper-no-such-tool")
		if !errors.Is(err, errors.NotFound) {
			t.Errorf("error = %v, want not found", err)
		}
	})
}

func TestResolve_EmptyName(t *testing.T) {
	_, err := Resolve("", "")
	if !errors.Is(err, errors.NotValid) {
		t.Errorf("error = %v, want not valid", err)
	}
}
