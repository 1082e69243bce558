package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"SvnBackuper/internal/archive"
	"SvnBackuper/internal/backup"
	"SvnBackuper/internal/lock"
)

var runStrict bool

func init() {
	rootCmd.AddCommand(runCmd)
	addRootFlags(runCmd)
	runCmd.Flags().BoolP("compress", "c", false, "Compress each new record into a .zip archive")
	runCmd.Flags().String("compression", "", "Zip method when compressing: deflate or zstd")
	runCmd.Flags().String("timeout", "", "Timeout per tool invocation, e.g. 30m (default: none)")
	runCmd.Flags().BoolVar(&runStrict, "strict", false, "Exit non-zero when any repository fails")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Back up every repository under the repository root",
	Long: "Probe the head revision of each repository, hot copy revisions not backed up yet, " +
		"then prune old records. A failing repository is reported and skipped; use --strict to exit non-zero for it.",
	Args: cobra.NoArgs,
	RunE: runRun,
}

func runBindings() []flagBinding {
	return append(append([]flagBinding{}, rootBindings...),
		flagBinding{"compress", "compress"},
		flagBinding{"compression", "compression"},
		flagBinding{"timeout", "timeout"},
	)
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, _, err := loadSettings(cmd, loadOptions{AllowMissing: true}, runBindings()...)
	if err != nil {
		return err
	}
	logs := newLogContext(cmd.ErrOrStderr(), cfg.LogLevel)
	method, err := archive.ParseMethod(cfg.Compression)
	if err != nil {
		return err
	}

	if cfg.Lock != nil && cfg.Lock.Enabled {
		l := lock.NewLocal(lock.LocalOptions{Dir: cfg.Lock.Dir, Scope: cfg.BackupRoot, TTL: cfg.Lock.TTLDuration()})
		if err := l.Acquire(ctx); err != nil {
			if errors.Is(err, lock.ErrLocked) {
				if pid, ok := lock.Holder(l.Path()); ok {
					return fmt.Errorf("backup root %s is in use by pid %d: %w", cfg.BackupRoot, pid, err)
				}
			}
			return err
		}
		defer func() { _ = l.Release(context.Background()) }()
	}

	options := []backup.Option{
		backup.WithNotifier(NotifierFromConfig(cfg, func(msg string) { cmd.PrintErrln("Warning:", msg) })),
	}
	if cfg.MirrorEnabled() {
		if !cfg.Compress {
			cmd.PrintErrln("Warning: the s3 mirror only receives compressed records; set compress to mirror")
		}
		m, err := newMirror(ctx, cfg, logs)
		if err != nil {
			return err
		}
		options = append(options, backup.WithMirror(m))
	}

	orch := backup.New(backup.Options{
		RepositoryRoot: cfg.RepositoryRoot,
		BackupRoot:     cfg.BackupRoot,
		History:        cfg.History,
		Compress:       cfg.Compress,
		Method:         method,
	}, newTools(cfg, logs), moduleLogger(logs, "backup"), options...)

	cmd.Printf("Run %s: %s -> %s\n", orch.RunID(), cfg.RepositoryRoot, cfg.BackupRoot)
	report, err := orch.Run(ctx)
	if report != nil {
		printReport(cmd, report)
	}
	if err != nil {
		return err
	}

	if runStrict && report.Failed() > 0 {
		return fmt.Errorf("%d of %d repositories failed", report.Failed(), len(report.Outcomes))
	}
	return nil
}

func printReport(cmd *cobra.Command, report *backup.Report) {
	total := len(report.Outcomes)
	for i, o := range report.Outcomes {
		cmd.Printf("[%d/%d] %s: %s\n", i+1, total, o.Repository, describeOutcome(o))
		if len(o.Pruned) > 0 {
			cmd.Printf("  Pruned %s\n", strings.Join(o.Pruned, ", "))
		}
		for _, w := range o.Warnings {
			cmd.Printf("  Warning: %s\n", w)
		}
	}
	cmd.Printf("%s in %s\n", report.Summary(), report.Finished.Sub(report.Started).Round(time.Second))
}

func describeOutcome(o backup.Outcome) string {
	switch o.Kind {
	case backup.BackedUp:
		form := string(backup.RecordDir)
		if o.Compressed {
			form = string(backup.RecordZip)
		}
		s := fmt.Sprintf("backed up %s (%s, %s) in %s", o.Label, form, humanize.Bytes(uint64(o.Size)), o.Duration.Round(time.Millisecond))
		if o.Mirrored {
			s += ", mirrored"
		}
		return s
	case backup.UpToDate:
		return fmt.Sprintf("up to date at %s", o.Label)
	case backup.NotRepository:
		return "not a repository, skipped"
	default:
		if o.Err != nil {
			return fmt.Sprintf("failed: %v", o.Err)
		}
		return "failed"
	}
}
