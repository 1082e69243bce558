package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/juju/loggo"

	"SvnBackuper/internal/process"
)

// systemctl runs "systemctl args..." and fails on a non-zero exit.
func systemctl(ctx context.Context, logs *loggo.Context, args ...string) error {
	path, err := process.Resolve("", "systemctl")
	if err != nil {
		return err
	}
	runner := process.NewExecRunner(moduleLogger(logs, "process"))
	res, err := runner.Run(ctx, process.Invocation{Path: path, Args: args, Timeout: time.Minute})
	if err != nil {
		return fmt.Errorf("systemctl %s: %w", strings.Join(args, " "), err)
	}
	if !res.Success() {
		return fmt.Errorf("systemctl %s: %s (exit %d): %s", strings.Join(args, " "), res.Status, res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return nil
}
