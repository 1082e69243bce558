package cmd

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"SvnBackuper/internal/backup"
	"SvnBackuper/internal/restore"
)

var (
	restoreRemote bool
	restoreDryRun bool
)

func init() {
	rootCmd.AddCommand(restoreCmd)
	addBackupFlag(restoreCmd)
	restoreCmd.Flags().String("svn", "", "Directory holding svnadmin (default: PATH)")
	restoreCmd.Flags().BoolVar(&restoreRemote, "remote", false, "Fetch the record from the S3 mirror when it is not available locally")
	restoreCmd.Flags().BoolVar(&restoreDryRun, "dry-run", false, "Resolve the record and check the target without writing")
}

var restoreCmd = &cobra.Command{
	Use:   "restore <repository> <label> <target>",
	Short: "Restore a backup record into a new repository directory",
	Long: "Restore the record <label> (for example v0000042) of <repository> into <target>, " +
		"which must not exist or be empty. Archives are extracted; directory records are copied with svnadmin hotcopy.",
	Args: cobra.ExactArgs(3),
	RunE: runRestore,
}

func runRestore(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, _, err := loadSettings(cmd, loadOptions{AllowMissing: true, BackupOnly: true},
		backupBinding, flagBinding{"svn_path", "svn"})
	if err != nil {
		return err
	}
	logs := newLogContext(cmd.ErrOrStderr(), cfg.LogLevel)
	repo, label := args[0], args[1]
	target, err := filepath.Abs(args[2])
	if err != nil {
		return err
	}

	r := &restore.Restorer{
		Tools:      newTools(cfg, logs),
		BackupRoot: cfg.BackupRoot,
		Logger:     moduleLogger(logs, "restore"),
	}
	opts := restore.Options{DryRun: restoreDryRun}
	start := time.Now()
	var rec backup.Record
	if restoreRemote {
		if cfg.MirrorEnabled() {
			m, err := newMirror(ctx, cfg, logs)
			if err != nil {
				return err
			}
			r.Fetcher = m
		}
		rec, err = r.FromMirror(ctx, repo, label, target, opts)
	} else {
		rec, err = r.Restore(ctx, repo, label, target, opts)
	}
	if err != nil {
		return err
	}

	if restoreDryRun {
		cmd.Printf("Would restore %s %s (%s) to %s\n", repo, label, rec.Kind, target)
		return nil
	}
	cmd.Printf("Restored %s %s (%s, %s) to %s in %s\n", repo, label, rec.Kind,
		humanize.Bytes(uint64(rec.Size)), target, time.Since(start).Round(time.Second))
	notif := NotifierFromConfig(cfg, func(msg string) { cmd.PrintErrln("Warning:", msg) })
	if err := notif.NotifyRestore(ctx, repo, label, target); err != nil {
		cmd.PrintErrln("Warning: restore notification failed:", err)
	}
	return nil
}
