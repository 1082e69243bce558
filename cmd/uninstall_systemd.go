package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"SvnBackuper/internal/config"
	"SvnBackuper/internal/systemd"
)

var uninstallSystemdUnitDir string

func init() {
	rootCmd.AddCommand(uninstallSystemdCmd)
	uninstallSystemdCmd.Flags().StringVar(&uninstallSystemdUnitDir, "unit-dir", systemd.DefaultUnitDir, "Directory for systemd unit files")
}

var uninstallSystemdCmd = &cobra.Command{
	Use:   "uninstall-systemd",
	Short: "Remove systemd service and timer units",
	Args:  cobra.NoArgs,
	RunE:  runUninstallSystemd,
}

func runUninstallSystemd(cmd *cobra.Command, args []string) error {
	if runtime.GOOS != "linux" {
		return fmt.Errorf("uninstall-systemd is only supported on Linux")
	}
	cfg, _, err := loadSettings(cmd, loadOptions{})
	if err != nil {
		return err
	}
	logs := newLogContext(cmd.ErrOrStderr(), cfg.LogLevel)

	schedule := cfg.Schedule
	if schedule == nil || schedule.Times < 1 {
		// Unit names do not depend on the schedule itself.
		schedule = &config.ScheduleConfig{Period: "day", Times: 1}
	}
	units, err := systemd.Generate(schedule, systemd.GeneratorOptions{UnitDir: uninstallSystemdUnitDir})
	if err != nil {
		return err
	}
	svcPath := filepath.Join(uninstallSystemdUnitDir, units.ServiceFile())
	timerPath := filepath.Join(uninstallSystemdUnitDir, units.TimerFile())

	if err := systemctl(cmd.Context(), logs, "disable", "--now", units.TimerFile()); err != nil {
		cmd.PrintErrln("Warning:", err)
	}
	var removed int
	for _, p := range []string{timerPath, svcPath} {
		if err := os.Remove(p); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("remove %s: %w", p, err)
		}
		removed++
		cmd.Printf("Removed %s\n", p)
	}
	if removed == 0 {
		cmd.Println("No units to uninstall")
		return nil
	}
	if err := systemctl(cmd.Context(), logs, "daemon-reload"); err != nil {
		return err
	}
	cmd.Println("Reloaded systemd daemon")
	return nil
}
