package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"SvnBackuper/internal/config"
)

var (
	initRepository string
	initBackup     string
	initForce      bool
)

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVarP(&initRepository, "repository", "r", "", "Repository root (required)")
	initCmd.Flags().StringVarP(&initBackup, "backup", "b", "", "Backup root (required)")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter configuration file",
	Long:  "Write a configuration with compression, locking and a daily schedule enabled. Edit it, then run 'svnbackuper doctor'.",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	if initRepository == "" || initBackup == "" {
		return fmt.Errorf("--repository and --backup are required")
	}
	path := config.ResolveConfigPath(configFlag)
	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	repos, err := filepath.Abs(initRepository)
	if err != nil {
		return err
	}
	backups, err := filepath.Abs(initBackup)
	if err != nil {
		return err
	}
	cfg := config.Starter(repos, backups)
	if err := config.Validate(cfg); err != nil {
		return err
	}
	if err := config.Write(cfg, path); err != nil {
		return err
	}
	cmd.Printf("Configuration written to %s\n", path)
	cmd.Println("Next: svnbackuper doctor, then svnbackuper install-systemd")
	return nil
}
