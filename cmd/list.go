package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"SvnBackuper/internal/archive"
	"SvnBackuper/internal/backup"
	"SvnBackuper/internal/config"
)

var listRemote bool

func init() {
	rootCmd.AddCommand(listCmd)
	addBackupFlag(listCmd)
	listCmd.Flags().BoolVar(&listRemote, "remote", false, "List records in the S3 mirror instead of the backup root")
}

var listCmd = &cobra.Command{
	Use:   "list [repository...]",
	Short: "List backup records per repository",
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadSettings(cmd, loadOptions{AllowMissing: true, BackupOnly: true}, backupBinding)
	if err != nil {
		return err
	}
	if listRemote {
		if !cfg.MirrorEnabled() {
			return fmt.Errorf("--remote needs s3.enabled")
		}
		return listMirror(cmd, cfg, args)
	}

	repos := args
	if len(repos) == 0 {
		if repos, err = backup.Repositories(cfg.BackupRoot); err != nil {
			return err
		}
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "REPOSITORY\tLABEL\tKIND\tSIZE\tCREATED")
	for _, repo := range repos {
		records, err := backup.Records(cfg.BackupRoot, repo)
		if err != nil {
			return fmt.Errorf("list %s: %w", repo, err)
		}
		for _, r := range records {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", repo, r.Label, r.Kind, humanize.Bytes(uint64(r.Size)), humanize.Time(r.ModTime))
		}
	}
	return w.Flush()
}

func listMirror(cmd *cobra.Command, cfg *config.Config, args []string) error {
	ctx := cmd.Context()
	m, err := newMirror(ctx, cfg, newLogContext(cmd.ErrOrStderr(), cfg.LogLevel))
	if err != nil {
		return err
	}
	repos := args
	if len(repos) == 0 {
		if repos, err = archive.Repositories(ctx, m.Storage); err != nil {
			return err
		}
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "REPOSITORY\tLABEL\tSIZE\tHOST\tCREATED")
	for _, repo := range repos {
		manifests, err := m.List(ctx, repo)
		if err != nil {
			return fmt.Errorf("list %s: %w", repo, err)
		}
		for _, mf := range manifests {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", repo, mf.Label, humanize.Bytes(uint64(mf.Size)), mf.Host, humanize.Time(mf.Created))
		}
	}
	return w.Flush()
}
