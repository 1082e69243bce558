package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"SvnBackuper/internal/backup"
	"SvnBackuper/internal/config"
)

var (
	pruneDryRun bool
	pruneRemote bool
)

func init() {
	rootCmd.AddCommand(pruneCmd)
	addBackupFlag(pruneCmd)
	pruneCmd.Flags().IntP("history", "n", config.DefaultHistory, "Records kept per repository; below 1 disables pruning")
	pruneCmd.Flags().BoolVar(&pruneDryRun, "dry-run", false, "Show what would be removed")
	pruneCmd.Flags().BoolVar(&pruneRemote, "remote", false, "Also prune the S3 mirror")
}

var pruneCmd = &cobra.Command{
	Use:   "prune [repository...]",
	Short: "Apply retention without taking new backups",
	RunE:  runPrune,
}

func runPrune(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadSettings(cmd, loadOptions{AllowMissing: true, BackupOnly: true},
		backupBinding, flagBinding{"history", "history"})
	if err != nil {
		return err
	}
	if cfg.History < 1 {
		cmd.Println("History below 1: pruning is disabled")
		return nil
	}
	logs := newLogContext(cmd.ErrOrStderr(), cfg.LogLevel)

	repos := args
	if len(repos) == 0 {
		if repos, err = backup.Repositories(cfg.BackupRoot); err != nil {
			return err
		}
	}

	var failed []string
	for _, repo := range repos {
		dir := filepath.Join(cfg.BackupRoot, repo)
		var removed []string
		if pruneDryRun {
			removed, err = backup.PruneCandidates(dir, cfg.History)
		} else {
			removed, err = backup.Prune(dir, cfg.History, moduleLogger(logs, "backup"))
		}
		verb := "Removed"
		if pruneDryRun {
			verb = "Would remove"
		}
		for _, p := range removed {
			cmd.Printf("%s %s\n", verb, p)
		}
		if err != nil {
			cmd.PrintErrf("%s: %v\n", repo, err)
			failed = append(failed, repo)
		}
	}

	if pruneRemote && !pruneDryRun {
		if !cfg.MirrorEnabled() {
			return fmt.Errorf("--remote needs s3.enabled")
		}
		m, err := newMirror(cmd.Context(), cfg, logs)
		if err != nil {
			return err
		}
		for _, repo := range repos {
			deleted, err := m.Prune(cmd.Context(), repo)
			for _, label := range deleted {
				cmd.Printf("Removed mirrored %s %s\n", repo, label)
			}
			if err != nil {
				cmd.PrintErrf("%s (mirror): %v\n", repo, err)
				failed = append(failed, repo)
			}
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("prune failed for %s", strings.Join(failed, ", "))
	}
	return nil
}
