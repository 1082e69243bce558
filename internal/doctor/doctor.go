// Package doctor checks that a host is ready to run backups.
package doctor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"SvnBackuper/internal/backup"
	"SvnBackuper/internal/config"
	"SvnBackuper/internal/lock"
	"SvnBackuper/internal/s3"
	"SvnBackuper/internal/svn"
)

type Status int

const (
	OK Status = iota
	Warn
	Fail
)

func (s Status) String() string {
	switch s {
	case OK:
		return "OK"
	case Warn:
		return "WARN"
	default:
		return "ERROR"
	}
}

type CheckResult struct {
	Name   string
	Status Status
	Detail string
}

type Options struct {
	ConfigPath string
	Tools      *svn.Tools
}

func Run(ctx context.Context, cfg *config.Config, opts Options) []CheckResult {
	var results []CheckResult
	add := func(name string, st Status, format string, args ...any) {
		results = append(results, CheckResult{Name: name, Status: st, Detail: fmt.Sprintf(format, args...)})
	}

	if cfg == nil {
		add("config", Fail, "configuration not loaded")
		return results
	}
	if err := config.CheckPermissions(opts.ConfigPath); err != nil {
		add("config", Warn, "%v", err)
	} else {
		add("config", OK, "configuration loaded (%s)", opts.ConfigPath)
	}

	repos, err := backup.Discover(cfg.RepositoryRoot)
	if err != nil {
		add("repositories", Fail, "%v", err)
	} else {
		add("repositories", OK, "%d candidate(s) under %s", len(repos), cfg.RepositoryRoot)
	}

	st, detail := checkWritable(cfg.BackupRoot)
	add("backup root", st, "%s", detail)

	if opts.Tools != nil {
		for _, tool := range []string{svn.ToolLook, svn.ToolAdmin} {
			v, err := opts.Tools.Version(ctx, tool)
			if err != nil {
				add(tool, Fail, "%v", err)
				continue
			}
			add(tool, OK, "version %s", v)
		}
		st, detail := checkClient(ctx, opts.Tools, repos)
		add(svn.ToolClient, st, "%s", detail)
	}

	if cfg.Lock != nil && cfg.Lock.Enabled {
		st, detail := checkLock(ctx, cfg.Lock.Dir)
		add("lock", st, "%s", detail)
	}

	if cfg.MirrorEnabled() {
		st, detail := checkS3(ctx, cfg)
		add("s3", st, "%s", detail)
	}
	return results
}

// Failed reports whether any check failed outright.
func Failed(results []CheckResult) bool {
	for _, r := range results {
		if r.Status == Fail {
			return true
		}
	}
	return false
}

// checkClient runs "svn info" on the first repository through a file:// URL.
// The client is optional, so failures are warnings.
func checkClient(ctx context.Context, tools *svn.Tools, repos []backup.Repository) (Status, string) {
	v, err := tools.Version(ctx, svn.ToolClient)
	if err != nil {
		return Warn, fmt.Sprintf("svn client unavailable (optional): %v", err)
	}
	if len(repos) == 0 {
		return OK, "version " + v
	}
	url, err := svn.FileURL(repos[0].Path)
	if err != nil {
		return Warn, err.Error()
	}
	res, err := tools.Run(ctx, svn.NewClient("info", url))
	if err != nil {
		return Warn, err.Error()
	}
	if !res.Success() {
		return Warn, fmt.Sprintf("version %s; svn info %s exited %d", v, url, res.ExitCode)
	}
	return OK, fmt.Sprintf("version %s; %s readable", v, repos[0].Name)
}

func checkWritable(dir string) (Status, string) {
	probe := dir
	for !exists(probe) {
		parent := filepath.Dir(probe)
		if parent == probe {
			break
		}
		probe = parent
	}
	f, err := os.CreateTemp(probe, ".svnbackuper-doctor-*")
	if err != nil {
		return Fail, fmt.Sprintf("cannot write in %s: %v", probe, err)
	}
	defer os.Remove(f.Name())
	if _, err := f.WriteString("test"); err != nil {
		_ = f.Close()
		return Fail, fmt.Sprintf("write temp file failed: %v", err)
	}
	if err := f.Close(); err != nil {
		return Fail, fmt.Sprintf("close temp file failed: %v", err)
	}
	if probe != dir {
		return Warn, fmt.Sprintf("%s does not exist yet; %s is writable", dir, probe)
	}
	return OK, fmt.Sprintf("%s writable", dir)
}

func checkLock(ctx context.Context, dir string) (Status, string) {
	l := lock.NewLocal(lock.LocalOptions{Dir: dir, Scope: "doctor"})
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := l.Acquire(ctx); err != nil {
		return Fail, fmt.Sprintf("local lock acquire failed: %v", err)
	}
	if err := l.Release(context.Background()); err != nil {
		return Fail, fmt.Sprintf("local lock release failed: %v", err)
	}
	return OK, fmt.Sprintf("lock dir accessible (%s)", filepath.Dir(l.Path()))
}

func checkS3(ctx context.Context, cfg *config.Config) (Status, string) {
	client, err := s3.New(ctx, cfg.S3.ClientOptions())
	if err != nil {
		return Fail, fmt.Sprintf("s3 client init failed: %v", err)
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := client.ListObjects(ctx, "", 1); err != nil {
		return Fail, fmt.Sprintf("s3 list failed: %v", err)
	}
	return OK, fmt.Sprintf("s3 OK (bucket=%s, prefix=%s)", cfg.S3.Bucket, cfg.S3.Prefix)
}

func exists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
