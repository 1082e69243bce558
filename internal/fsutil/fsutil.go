// Package fsutil holds the filesystem operations the backup run depends on.
package fsutil

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/juju/errors"
)

// RepositoryMarker is the file every Subversion repository has at its top
// level.
const RepositoryMarker = "format"

func Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// EnsureDir creates path and its parents. It is a no-op when the directory
// already exists.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return errors.Annotatef(err, "create directory %s", path)
	}
	return nil
}

// IsRepository reports whether dir looks like a Subversion repository: a
// format marker file next to a db directory.
func IsRepository(dir string) bool {
	marker, err := os.Stat(filepath.Join(dir, RepositoryMarker))
	if err != nil || !marker.Mode().IsRegular() {
		return false
	}
	db, err := os.Stat(filepath.Join(dir, "db"))
	return err == nil && db.IsDir()
}

// RemoveAll deletes path recursively. Hotcopies contain read-only files, so
// write permission is restored leaf to root before anything is removed.
func RemoveAll(path string) error {
	info, err := os.Lstat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Trace(err)
	}
	if info.IsDir() {
		if err := makeWritable(path); err != nil {
			return errors.Annotatef(err, "clear read-only flags under %s", path)
		}
	}
	if err := os.RemoveAll(path); err != nil {
		return errors.Annotatef(err, "remove %s", path)
	}
	return nil
}

func makeWritable(root string) error {
	return walkWritable(root, "")
}

func walkWritable(root, fixed string) error {
	var dirs []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// A directory without read permission cannot be listed until
			// its own mode is fixed.
			if d != nil && d.IsDir() && p != fixed {
				if chmodErr := os.Chmod(p, 0o755); chmodErr != nil {
					return err
				}
				return walkWritable(p, p)
			}
			return err
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if d.IsDir() {
			dirs = append(dirs, p)
			return nil
		}
		return addWrite(p)
	})
	if err != nil {
		return err
	}
	for i := len(dirs) - 1; i >= 0; i-- {
		if err := addWrite(dirs[i]); err != nil {
			return err
		}
	}
	return nil
}

func addWrite(p string) error {
	info, err := os.Lstat(p)
	if err != nil {
		return err
	}
	mode := info.Mode().Perm()
	if mode&0o200 != 0 && (!info.IsDir() || mode&0o700 == 0o700) {
		return nil
	}
	want := mode | 0o200
	if info.IsDir() {
		want |= 0o700
	}
	return os.Chmod(p, want)
}
