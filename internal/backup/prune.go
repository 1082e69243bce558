package backup

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/juju/errors"
	"github.com/juju/loggo"

	"SvnBackuper/internal/fsutil"
	"SvnBackuper/internal/svn"
)

const zipExt = ".zip"

type labeled struct {
	name string
	rev  int
}

// pools splits the entries of repoDir into label-shaped directories and
// label-shaped .zip files, each sorted oldest first. Anything else is ignored.
func pools(repoDir string) (dirs, zips []labeled, err error) {
	entries, err := os.ReadDir(repoDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, errors.Trace(err)
	}
	for _, e := range entries {
		name := e.Name()
		switch {
		case e.IsDir():
			if rev, ok := svn.ParseLabel(name); ok {
				dirs = append(dirs, labeled{name, rev})
			}
		case e.Type().IsRegular() && strings.HasSuffix(name, zipExt):
			if rev, ok := svn.ParseLabel(strings.TrimSuffix(name, zipExt)); ok {
				zips = append(zips, labeled{name, rev})
			}
		}
	}
	byRev := func(s []labeled) {
		sort.Slice(s, func(i, j int) bool { return s[i].rev < s[j].rev })
	}
	byRev(dirs)
	byRev(zips)
	return dirs, zips, nil
}

// Prune keeps the newest history directories and, separately, the newest
// history archives under repoDir. It returns the names it removed. A history
// below 1 disables pruning.
func Prune(repoDir string, history int, logger loggo.Logger) ([]string, error) {
	return prune(repoDir, history, logger, false)
}

// PruneCandidates reports what Prune would remove without touching anything.
func PruneCandidates(repoDir string, history int) ([]string, error) {
	return prune(repoDir, history, loggo.Logger{}, true)
}

func prune(repoDir string, history int, logger loggo.Logger, dryRun bool) ([]string, error) {
	if history < 1 {
		return nil, nil
	}
	dirs, zips, err := pools(repoDir)
	if err != nil {
		return nil, err
	}
	var removed []string
	var firstErr error
	for _, pool := range [][]labeled{dirs, zips} {
		if len(pool) <= history {
			continue
		}
		for _, e := range pool[:len(pool)-history] {
			if dryRun {
				removed = append(removed, e.name)
				continue
			}
			p := filepath.Join(repoDir, e.name)
			if err := fsutil.RemoveAll(p); err != nil {
				logger.Errorf("cannot remove backup %s: %v", p, err)
				if firstErr == nil {
					firstErr = errors.Annotatef(err, "remove %s", p)
				}
				continue
			}
			logger.Infof("removed backup %s", p)
			removed = append(removed, e.name)
		}
	}
	return removed, firstErr
}
