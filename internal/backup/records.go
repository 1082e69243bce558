package backup

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/juju/errors"
)

type RecordKind string

const (
	RecordDir RecordKind = "dir"
	RecordZip RecordKind = "zip"
)

// Record is one materialized backup of a repository revision.
type Record struct {
	Repository string
	Label      string
	Revision   int
	Kind       RecordKind
	Path       string
	Size       int64
	ModTime    time.Time
}

// Records lists the records of repo under backupRoot, oldest revision first.
// A repository without a backup directory has no records.
func Records(backupRoot, repo string) ([]Record, error) {
	repoDir := filepath.Join(backupRoot, repo)
	dirs, zips, err := pools(repoDir)
	if err != nil {
		return nil, err
	}
	var out []Record
	add := func(pool []labeled, kind RecordKind) error {
		for _, e := range pool {
			p := filepath.Join(repoDir, e.name)
			info, err := os.Stat(p)
			if err != nil {
				return errors.Trace(err)
			}
			size := info.Size()
			if kind == RecordDir {
				if size, err = dirSize(p); err != nil {
					return errors.Trace(err)
				}
			}
			label := e.name
			if kind == RecordZip {
				label = label[:len(label)-len(zipExt)]
			}
			out = append(out, Record{
				Repository: repo,
				Label:      label,
				Revision:   e.rev,
				Kind:       kind,
				Path:       p,
				Size:       size,
				ModTime:    info.ModTime(),
			})
		}
		return nil
	}
	if err := add(dirs, RecordDir); err != nil {
		return nil, err
	}
	if err := add(zips, RecordZip); err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Revision != out[j].Revision {
			return out[i].Revision < out[j].Revision
		}
		return out[i].Kind < out[j].Kind
	})
	return out, nil
}

// Find returns the record of repo with the given label, preferring the
// directory form when both exist.
func Find(backupRoot, repo, label string) (Record, error) {
	records, err := Records(backupRoot, repo)
	if err != nil {
		return Record{}, err
	}
	for _, r := range records {
		if r.Label == label {
			return r, nil
		}
	}
	return Record{}, errors.NotFoundf("backup %s of %s", label, repo)
}

// Repositories returns the names of the per-repository directories under
// backupRoot.
func Repositories(backupRoot string) ([]string, error) {
	entries, err := os.ReadDir(backupRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFoundf("backup root %s", backupRoot)
		}
		return nil, errors.Trace(err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func dirSize(root string) (int64, error) {
	var total int64
	err := filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			info, err := d.Info()
			if err != nil {
				return err
			}
			total += info.Size()
		}
		return nil
	})
	return total, err
}
