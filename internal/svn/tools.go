package svn

import (
	"context"
	"strings"
	"time"

	"github.com/juju/errors"
	"github.com/juju/loggo"

	"SvnBackuper/internal/process"
)

// Tools runs Subversion commands. Dir overrides the tool directory; when
// empty the tools are looked up on PATH.
type Tools struct {
	Runner  process.Runner
	Dir     string
	Timeout time.Duration
	Logger  loggo.Logger
}

// Run validates c and executes it. A non-zero exit is returned in the
// result, not as an error; errors mean the command was invalid or the tool
// could not be started.
func (t *Tools) Run(ctx context.Context, c Command) (process.Result, error) {
	failed := process.Result{Status: process.Error, ExitCode: -1}
	if err := c.Validate(); err != nil {
		return failed, errors.Trace(err)
	}
	path, err := process.Resolve(t.Dir, c.Tool())
	if err != nil {
		return failed, errors.Trace(err)
	}
	res, err := t.Runner.Run(ctx, process.Invocation{
		Path:    path,
		Args:    c.Args(),
		Timeout: t.Timeout,
	})
	if err != nil {
		return res, errors.Trace(err)
	}
	if msg := strings.TrimSpace(res.Stderr); msg != "" {
		t.Logger.Infof("%s: %s", c.Tool(), msg)
	}
	if res.Status == process.TimedOut {
		t.Logger.Warningf("%s %s timed out after %s", c.Tool(), strings.Join(c.Args(), " "), t.Timeout)
	}
	return res, nil
}

// Youngest probes the head revision of repo. ok is false when the tool
// failed or printed no revision.
func (t *Tools) Youngest(ctx context.Context, repo string) (rev int, ok bool, err error) {
	res, err := t.Run(ctx, Look{Command: "youngest", RepositoryPath: repo})
	if err != nil {
		return 0, false, err
	}
	if res.Success() {
		if rev, ok := ParseRevision(res.Stdout); ok {
			return rev, true, nil
		}
	}
	if out := strings.TrimSpace(res.Stdout); out != "" {
		t.Logger.Infof("%s", out)
	}
	return 0, false, nil
}

func (t *Tools) HotCopy(ctx context.Context, repo, dest string) (process.Result, error) {
	return t.Run(ctx, HotCopy{RepositoryPath: repo, BackupPath: dest, CleanLogs: true})
}

// Version returns the first line of "<tool> --version --quiet".
func (t *Tools) Version(ctx context.Context, tool string) (string, error) {
	res, err := t.Run(ctx, versionCommand{tool: tool})
	if err != nil {
		return "", err
	}
	if !res.Success() {
		return "", errors.Errorf("%s --version: %s (exit %d)", tool, res.Status, res.ExitCode)
	}
	line, _, _ := strings.Cut(strings.TrimSpace(res.Stdout), "\n")
	return line, nil
}
