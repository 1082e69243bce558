// Package restore puts a backup record back in place as a repository.
package restore

import (
	"context"
	"os"
	"path/filepath"

	"github.com/juju/errors"
	"github.com/juju/loggo"

	"SvnBackuper/internal/archive"
	"SvnBackuper/internal/backup"
	"SvnBackuper/internal/fsutil"
	"SvnBackuper/internal/svn"
)

// Fetcher downloads a mirrored record. *archive.Mirror implements it.
type Fetcher interface {
	Fetch(ctx context.Context, repo, label, dst string) (*archive.Manifest, error)
}

type Restorer struct {
	Tools      *svn.Tools
	BackupRoot string
	Fetcher    Fetcher
	Logger     loggo.Logger
}

type Options struct {
	// DryRun resolves the record and checks the target without writing.
	DryRun bool
}

// Restore writes the local record label of repo to target. Archives are
// extracted; directory records are copied with svnadmin hotcopy. target must
// be absent or an empty directory.
func (r *Restorer) Restore(ctx context.Context, repo, label, target string, opts Options) (backup.Record, error) {
	if err := validate(repo, label, target); err != nil {
		return backup.Record{}, err
	}
	rec, err := backup.Find(r.BackupRoot, repo, label)
	if err != nil {
		return backup.Record{}, errors.Trace(err)
	}
	if err := checkTarget(target); err != nil {
		return rec, err
	}
	if opts.DryRun {
		r.Logger.Infof("would restore %s %s (%s) to %s", repo, label, rec.Kind, target)
		return rec, nil
	}
	return rec, r.materialize(ctx, rec, target)
}

// FromMirror restores from the remote mirror when no local record exists.
// The download goes to a temporary file, so pruned history is not
// recreated under the backup root.
func (r *Restorer) FromMirror(ctx context.Context, repo, label, target string, opts Options) (backup.Record, error) {
	if err := validate(repo, label, target); err != nil {
		return backup.Record{}, err
	}
	if rec, err := backup.Find(r.BackupRoot, repo, label); err == nil {
		r.Logger.Infof("%s %s is available locally", repo, label)
		if err := checkTarget(target); err != nil {
			return rec, err
		}
		if opts.DryRun {
			return rec, nil
		}
		return rec, r.materialize(ctx, rec, target)
	}
	if r.Fetcher == nil {
		return backup.Record{}, errors.NotValidf("no mirror configured")
	}
	if err := checkTarget(target); err != nil {
		return backup.Record{}, err
	}
	if opts.DryRun {
		r.Logger.Infof("would fetch %s %s from the mirror to %s", repo, label, target)
		return backup.Record{Repository: repo, Label: label, Kind: backup.RecordZip}, nil
	}

	tmp, err := os.MkdirTemp("", "svnbackuper-restore-")
	if err != nil {
		return backup.Record{}, errors.Trace(err)
	}
	defer os.RemoveAll(tmp)

	zipPath := filepath.Join(tmp, label+".zip")
	m, err := r.Fetcher.Fetch(ctx, repo, label, zipPath)
	if err != nil {
		return backup.Record{}, errors.Annotatef(err, "fetch %s %s", repo, label)
	}
	rec := backup.Record{
		Repository: repo,
		Label:      label,
		Revision:   m.Revision,
		Kind:       backup.RecordZip,
		Path:       zipPath,
		Size:       m.Size,
		ModTime:    m.Created,
	}
	return rec, r.materialize(ctx, rec, target)
}

func (r *Restorer) materialize(ctx context.Context, rec backup.Record, target string) error {
	// svnadmin hotcopy refuses an existing destination; checkTarget already
	// made sure it is empty.
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return errors.Trace(err)
	}

	r.Logger.Infof("restoring %s %s (%s) to %s", rec.Repository, rec.Label, rec.Kind, target)
	var err error
	switch rec.Kind {
	case backup.RecordZip:
		err = archive.Extract(ctx, rec.Path, target)
	case backup.RecordDir:
		err = r.hotcopy(ctx, rec.Path, target)
	default:
		err = errors.NotSupportedf("record kind %q", rec.Kind)
	}
	if err != nil {
		if rmErr := fsutil.RemoveAll(target); rmErr != nil {
			r.Logger.Errorf("cannot remove partial restore %s: %v", target, rmErr)
		}
		return errors.Annotatef(err, "restore %s %s", rec.Repository, rec.Label)
	}
	if !fsutil.IsRepository(target) {
		r.Logger.Warningf("%s does not look like a repository after restore", target)
	}
	return nil
}

func (r *Restorer) hotcopy(ctx context.Context, src, dst string) error {
	if r.Tools == nil {
		return errors.NotValidf("restore of a directory record without svn tools")
	}
	res, err := r.Tools.HotCopy(ctx, src, dst)
	if err != nil {
		return err
	}
	if !res.Success() {
		return errors.Errorf("svnadmin hotcopy: %s (exit %d)", res.Status, res.ExitCode)
	}
	return nil
}

func validate(repo, label, target string) error {
	if repo == "" || filepath.Base(repo) != repo {
		return errors.NotValidf("repository name %q", repo)
	}
	if _, ok := svn.ParseLabel(label); !ok {
		return errors.NotValidf("label %q", label)
	}
	if target == "" {
		return errors.NotValidf("empty target")
	}
	return nil
}

func checkTarget(target string) error {
	info, err := os.Stat(target)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Trace(err)
	}
	if !info.IsDir() {
		return errors.AlreadyExistsf("target %s", target)
	}
	entries, err := os.ReadDir(target)
	if err != nil {
		return errors.Trace(err)
	}
	if len(entries) > 0 {
		return errors.AlreadyExistsf("non-empty target %s", target)
	}
	return nil
}
