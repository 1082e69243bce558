// Package backup drives point-in-time backups of Subversion repositories:
// probe the head revision, hot copy it once per revision, optionally
// compress it, and keep a fixed number of records per repository.
package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/juju/errors"
	"github.com/juju/loggo"

	"SvnBackuper/internal/archive"
	"SvnBackuper/internal/fsutil"
	"SvnBackuper/internal/svn"
)

type Options struct {
	RepositoryRoot string
	BackupRoot     string
	// History is the number of records kept per repository and per form.
	// Values below 1 disable pruning.
	History  int
	Compress bool
	Method   archive.Method
}

func (o Options) Validate() error {
	if o.RepositoryRoot == "" {
		return errors.NotValidf("empty repository root")
	}
	if o.BackupRoot == "" {
		return errors.NotValidf("empty backup root")
	}
	return nil
}

// Mirror receives compressed records after they are written locally.
type Mirror interface {
	Push(ctx context.Context, repo, label, zipPath, runID string) (bool, error)
	Prune(ctx context.Context, repo string) ([]string, error)
}

type Notifier interface {
	NotifyStart(ctx context.Context, runID string) error
	NotifyBackup(ctx context.Context, repo, label string, duration time.Duration, size int64) error
	NotifyWarning(ctx context.Context, repo, message string) error
	NotifyError(ctx context.Context, repo string, err error) error
	NotifyPrune(ctx context.Context, repo string, deleted int) error
	NotifySummary(ctx context.Context, runID, summary string, failed int) error
}

type Repository struct {
	Name string
	Path string
}

type Orchestrator struct {
	opts     Options
	tools    *svn.Tools
	logger   loggo.Logger
	mirror   Mirror
	notifier Notifier
	runID    string
	now      func() time.Time
}

type Option func(*Orchestrator)

func WithMirror(m Mirror) Option {
	return func(o *Orchestrator) { o.mirror = m }
}

func WithNotifier(n Notifier) Option {
	return func(o *Orchestrator) { o.notifier = n }
}

func WithRunID(id string) Option {
	return func(o *Orchestrator) { o.runID = id }
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

func New(opts Options, tools *svn.Tools, logger loggo.Logger, options ...Option) *Orchestrator {
	if opts.Method == "" {
		opts.Method = archive.MethodDeflate
	}
	o := &Orchestrator{
		opts:   opts,
		tools:  tools,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range options {
		opt(o)
	}
	if o.runID == "" {
		o.runID = uuid.NewString()
	}
	return o
}

func (o *Orchestrator) RunID() string {
	return o.runID
}

// Run backs up every repository found under the repository root. The
// returned error is only set when the run could not start; per-repository
// failures are recorded in the report.
func (o *Orchestrator) Run(ctx context.Context) (*Report, error) {
	if err := o.opts.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	repos, err := Discover(o.opts.RepositoryRoot)
	if err != nil {
		return nil, err
	}
	if err := fsutil.EnsureDir(o.opts.BackupRoot); err != nil {
		return nil, errors.Annotatef(err, "create backup root %s", o.opts.BackupRoot)
	}

	report := &Report{RunID: o.runID, Started: o.now()}
	o.logger.Infof("run %s: %d candidate(s) under %s", o.runID, len(repos), o.opts.RepositoryRoot)
	o.notify("start", func(n Notifier) error { return n.NotifyStart(ctx, o.runID) })

	for _, repo := range repos {
		if err := ctx.Err(); err != nil {
			report.Finished = o.now()
			return report, errors.Annotate(err, "run interrupted")
		}
		report.Outcomes = append(report.Outcomes, o.process(ctx, repo))
	}

	report.Finished = o.now()
	o.logger.Infof("run %s finished in %s: %s", o.runID, report.Finished.Sub(report.Started).Round(time.Millisecond), report.Summary())
	o.notify("summary", func(n Notifier) error {
		return n.NotifySummary(ctx, o.runID, report.Summary(), report.Failed())
	})
	return report, nil
}

// Discover lists the repositories to back up. A root that is itself a
// repository is the only candidate; otherwise every immediate subdirectory
// is one.
func Discover(root string) ([]Repository, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFoundf("repository root %s", root)
		}
		return nil, errors.Annotatef(err, "repository root %s", root)
	}
	if !info.IsDir() {
		return nil, errors.NotFoundf("repository root directory %s", root)
	}
	if fsutil.IsRepository(root) {
		abs, err := filepath.Abs(root)
		if err != nil {
			abs = root
		}
		return []Repository{{Name: filepath.Base(abs), Path: root}}, nil
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, errors.Annotatef(err, "list repository root %s", root)
	}
	var repos []Repository
	for _, e := range entries {
		p := filepath.Join(root, e.Name())
		if !e.IsDir() {
			// Symlinked repositories are followed.
			if e.Type()&os.ModeSymlink == 0 {
				continue
			}
			if st, err := os.Stat(p); err != nil || !st.IsDir() {
				continue
			}
		}
		repos = append(repos, Repository{Name: e.Name(), Path: p})
	}
	return repos, nil
}

func (o *Orchestrator) process(ctx context.Context, repo Repository) (out Outcome) {
	start := o.now()
	out = Outcome{Repository: repo.Name, Path: repo.Path}
	defer func() {
		if r := recover(); r != nil {
			out.Kind = Failed
			out.Err = errors.Errorf("panic while processing %s: %v", repo.Name, r)
		}
		out.Duration = o.now().Sub(start)
		o.finish(ctx, &out)
	}()

	rev, ok, err := o.tools.Youngest(ctx, repo.Path)
	if err != nil {
		out.Kind = Failed
		out.Err = errors.Annotatef(err, "probe %s", repo.Name)
		return out
	}
	if !ok {
		out.Kind = NotRepository
		o.logger.Warningf("%s is not a repository, skipping", repo.Path)
		return out
	}
	out.Revision = rev
	out.Label = svn.Label(rev)

	repoDir := filepath.Join(o.opts.BackupRoot, repo.Name)
	if err := fsutil.EnsureDir(repoDir); err != nil {
		out.Kind = Failed
		out.Err = errors.Annotatef(err, "create %s", repoDir)
		return out
	}

	backupErr := o.backup(ctx, repo, repoDir, &out)

	pruned, pruneErr := Prune(repoDir, o.opts.History, o.logger)
	out.Pruned = pruned
	switch {
	case backupErr != nil:
		out.Kind = Failed
		out.Err = backupErr
	case pruneErr != nil:
		out.Kind = Failed
		out.Err = pruneErr
	}

	if o.mirror != nil {
		o.syncMirror(ctx, repo, repoDir, &out)
	}
	return out
}

func (o *Orchestrator) backup(ctx context.Context, repo Repository, repoDir string, out *Outcome) error {
	target := filepath.Join(repoDir, out.Label)
	zipPath := target + zipExt
	if fsutil.Exists(zipPath) {
		out.Kind = UpToDate
		o.logger.Infof("%s %s is already backed up", repo.Name, out.Label)
		// The zip is renamed into place only when complete, so a directory
		// beside it is a leftover of an interrupted run.
		if fsutil.Exists(target) {
			if err := fsutil.RemoveAll(target); err != nil {
				return errors.Annotatef(err, "remove leftover %s", target)
			}
			o.logger.Infof("removed leftover directory %s", target)
		}
		return nil
	}
	if fsutil.Exists(target) {
		out.Kind = UpToDate
		o.logger.Infof("%s %s is already backed up", repo.Name, out.Label)
		return nil
	}

	o.logger.Infof("backing up %s from %s", out.Label, repo.Name)
	res, err := o.tools.HotCopy(ctx, repo.Path, target)
	if err == nil && !res.Success() {
		err = errors.Errorf("svnadmin hotcopy %s: %s (exit %d)", repo.Name, res.Status, res.ExitCode)
	}
	if err != nil {
		if rmErr := fsutil.RemoveAll(target); rmErr != nil {
			o.logger.Errorf("cannot remove partial backup %s: %v", target, rmErr)
		}
		return errors.Annotatef(err, "back up %s", out.Label)
	}
	out.Kind = BackedUp

	if !o.opts.Compress {
		size, err := dirSize(target)
		if err != nil {
			o.logger.Debugf("size of %s: %v", target, err)
		}
		out.Size = size
		return nil
	}

	size, err := archive.CompressDir(ctx, target, zipPath, o.opts.Method)
	if err != nil {
		return errors.Annotatef(err, "compress %s (directory kept)", target)
	}
	out.Compressed = true
	out.Size = size
	if err := fsutil.RemoveAll(target); err != nil {
		return errors.Annotatef(err, "remove %s after compression", target)
	}
	return nil
}

func (o *Orchestrator) syncMirror(ctx context.Context, repo Repository, repoDir string, out *Outcome) {
	if out.Label != "" {
		zipPath := filepath.Join(repoDir, out.Label+zipExt)
		if fsutil.Exists(zipPath) {
			pushed, err := o.mirror.Push(ctx, repo.Name, out.Label, zipPath, o.runID)
			if err != nil {
				out.Warnings = append(out.Warnings, fmt.Sprintf("mirror upload failed: %v", err))
			}
			out.Mirrored = pushed
		}
	}
	deleted, err := o.mirror.Prune(ctx, repo.Name)
	if err != nil {
		out.Warnings = append(out.Warnings, fmt.Sprintf("mirror prune failed: %v", err))
	}
	if len(deleted) > 0 {
		o.logger.Infof("%s: removed %d mirrored record(s)", repo.Name, len(deleted))
	}
}

func (o *Orchestrator) finish(ctx context.Context, out *Outcome) {
	for _, w := range out.Warnings {
		o.logger.Warningf("%s: %s", out.Repository, w)
		msg := w
		o.notify("warning", func(n Notifier) error { return n.NotifyWarning(ctx, out.Repository, msg) })
	}
	switch out.Kind {
	case Failed:
		o.logger.Errorf("%s: %v", out.Repository, out.Err)
		o.notify("error", func(n Notifier) error { return n.NotifyError(ctx, out.Repository, out.Err) })
	case BackedUp:
		o.notify("backup", func(n Notifier) error {
			return n.NotifyBackup(ctx, out.Repository, out.Label, out.Duration, out.Size)
		})
	}
	if len(out.Pruned) > 0 {
		o.notify("prune", func(n Notifier) error { return n.NotifyPrune(ctx, out.Repository, len(out.Pruned)) })
	}
}

// notify delivers one event. Delivery failures are logged and never change
// the outcome of the run.
func (o *Orchestrator) notify(event string, send func(Notifier) error) {
	if o.notifier == nil {
		return
	}
	if err := send(o.notifier); err != nil {
		o.logger.Warningf("%s notification failed: %v", event, err)
	}
}
