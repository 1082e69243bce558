package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/juju/errors"
	"github.com/spf13/cobra"

	"SvnBackuper/internal/backup"
	"SvnBackuper/internal/schedule"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the latest record per repository and the next scheduled run",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, path, err := loadSettings(cmd, loadOptions{BackupOnly: true})
	if err != nil {
		return err
	}
	cmd.Printf("Config:       %s\n", path)
	cmd.Printf("Repositories: %s\n", cfg.RepositoryRoot)
	cmd.Printf("Backups:      %s (history %d)\n", cfg.BackupRoot, cfg.History)
	if cfg.MirrorEnabled() {
		cmd.Printf("Mirror:       s3://%s/%s (history %d)\n", cfg.S3.Bucket, cfg.S3.Prefix, cfg.MirrorHistory())
	}
	if next := schedule.NextRun(cfg.Schedule, time.Now()); !next.IsZero() {
		cmd.Printf("Schedule:     %s, next %s (%s)\n", schedule.Describe(cfg.Schedule),
			next.Format("2006-01-02 15:04"), humanize.Time(next))
	} else {
		cmd.Println("Schedule:     none")
	}

	repos, err := backup.Repositories(cfg.BackupRoot)
	if err != nil && !errors.Is(err, errors.NotFound) {
		return err
	}
	if len(repos) == 0 {
		cmd.Println("No backups yet")
		return nil
	}
	cmd.Println()
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "REPOSITORY\tLATEST\tKIND\tSIZE\tAGE\tRECORDS")
	for _, repo := range repos {
		records, err := backup.Records(cfg.BackupRoot, repo)
		if err != nil {
			return fmt.Errorf("status %s: %w", repo, err)
		}
		if len(records) == 0 {
			fmt.Fprintf(w, "%s\t-\t-\t-\t-\t0\n", repo)
			continue
		}
		last := records[len(records)-1]
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\n", repo, last.Label, last.Kind,
			humanize.Bytes(uint64(last.Size)), humanize.Time(last.ModTime), len(records))
	}
	return w.Flush()
}
