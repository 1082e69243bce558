package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"SvnBackuper/internal/doctor"
)

func init() {
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose config, repositories, svn tools, locks and S3 connectivity",
	Args:  cobra.NoArgs,
	RunE:  runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, path, err := loadSettings(cmd, loadOptions{})
	if err != nil {
		cmd.Printf("%-12s %s: %v\n", "config", doctor.Fail, err)
		return err
	}
	logs := newLogContext(cmd.ErrOrStderr(), cfg.LogLevel)

	results := doctor.Run(cmd.Context(), cfg, doctor.Options{
		ConfigPath: path,
		Tools:      newTools(cfg, logs),
	})
	for _, r := range results {
		cmd.Printf("%-12s %s: %s\n", r.Name, r.Status, r.Detail)
	}
	if doctor.Failed(results) {
		return fmt.Errorf("one or more checks failed; see output above")
	}
	return nil
}
