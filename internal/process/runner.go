package process

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/juju/errors"
	"github.com/juju/loggo"
	"golang.org/x/sync/errgroup"
)

// DefaultKillGrace is how long Run waits for the output pipes to reach EOF
// after killing a timed out child before closing them itself.
const DefaultKillGrace = 2 * time.Second

type Runner interface {
	Run(ctx context.Context, inv Invocation) (Result, error)
}

// ExecRunner runs invocations as OS processes. Both output streams are read
// concurrently until EOF, so a child that fills one pipe while the other is
// idle never blocks.
type ExecRunner struct {
	Logger    loggo.Logger
	KillGrace time.Duration
}

func NewExecRunner(logger loggo.Logger) *ExecRunner {
	return &ExecRunner{Logger: logger, KillGrace: DefaultKillGrace}
}

type waitResult struct {
	drainErr error
	waitErr  error
}

func (r *ExecRunner) Run(ctx context.Context, inv Invocation) (Result, error) {
	res := Result{Status: Ready, ExitCode: -1}
	if inv.Path == "" {
		res.Status = Error
		return res, errors.NotValidf("empty executable path")
	}

	cmd := exec.Command(inv.Path, inv.Args...)
	cmd.Dir = inv.Dir
	cmd.Env = inv.environ()
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		res.Status = Error
		return res, errors.Annotate(err, "stdout pipe")
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		res.Status = Error
		return res, errors.Annotate(err, "stderr pipe")
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		res.Status = Error
		return res, errors.Annotatef(err, "starting %s", inv.Path)
	}
	res.Status = Running
	res.Pid = cmd.Process.Pid
	r.Logger.Debugf("started %s (pid %d)", inv, res.Pid)

	var outBuf, errBuf bytes.Buffer
	var g errgroup.Group
	g.Go(func() error { return drain(stdout, &outBuf, inv.OnStdout) })
	g.Go(func() error { return drain(stderr, &errBuf, inv.OnStderr) })

	// Wait closes the pipes, so it only runs once both readers hit EOF.
	done := make(chan waitResult, 1)
	go func() {
		drainErr := g.Wait()
		done <- waitResult{drainErr: drainErr, waitErr: cmd.Wait()}
	}()

	var timeout <-chan time.Time
	if inv.Timeout > 0 {
		timer := time.NewTimer(inv.Timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	var wr waitResult
	var runErr error
	select {
	case wr = <-done:
	case <-timeout:
		r.Logger.Warningf("%s exceeded timeout %s, killing pid %d", inv.Path, inv.Timeout, res.Pid)
		wr = r.stop(cmd, done, stdout, stderr)
		res.Status = TimedOut
	case <-ctx.Done():
		r.Logger.Warningf("%s cancelled, killing pid %d", inv.Path, res.Pid)
		wr = r.stop(cmd, done, stdout, stderr)
		res.Status = Error
		runErr = errors.Annotatef(ctx.Err(), "running %s", inv.Path)
	}

	res.Duration = time.Since(start)
	res.Stdout = outBuf.String()
	res.Stderr = errBuf.String()

	if res.Status == Running {
		var exitErr *exec.ExitError
		switch {
		case wr.waitErr == nil:
			res.Status = Complete
			res.ExitCode = 0
		case errors.As(wr.waitErr, &exitErr):
			res.Status = Complete
			res.ExitCode = exitErr.ExitCode()
		default:
			res.Status = Error
			runErr = errors.Annotatef(wr.waitErr, "waiting for %s", inv.Path)
		}
		if runErr == nil && wr.drainErr != nil {
			res.Status = Error
			runErr = errors.Annotatef(wr.drainErr, "reading output of %s", inv.Path)
		}
	}

	r.Logger.Tracef("%s finished: status=%s exit=%d elapsed=%s", inv.Path, res.Status, res.ExitCode, res.Duration)
	return res, runErr
}

// stop kills the child and everything it spawned, then waits for the
// readers and the reaper. Descendants that escaped the kill may still hold
// the pipes, so they are closed once the grace period runs out.
func (r *ExecRunner) stop(cmd *exec.Cmd, done <-chan waitResult, pipes ...io.Closer) waitResult {
	if err := killTree(cmd.Process); err != nil {
		r.Logger.Errorf("killing pid %d: %v", cmd.Process.Pid, err)
	}
	grace := r.KillGrace
	if grace <= 0 {
		grace = DefaultKillGrace
	}
	select {
	case wr := <-done:
		return wr
	case <-time.After(grace):
	}
	r.Logger.Debugf("pid %d output still open after %s, closing pipes", cmd.Process.Pid, grace)
	for _, p := range pipes {
		_ = p.Close()
	}
	return <-done
}

func drain(r io.Reader, buf *bytes.Buffer, onLine func(string)) error {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			buf.WriteString(line)
			if onLine != nil {
				onLine(strings.TrimRight(line, "\r\n"))
			}
		}
		if err != nil {
			if err == io.EOF || errors.Is(err, os.ErrClosed) {
				return nil
			}
			return err
		}
	}
}
