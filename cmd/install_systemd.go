package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"SvnBackuper/internal/systemd"
)

var (
	installSystemdUnitDir   string
	installSystemdBinary    string
	installSystemdHardening bool
	installSystemdNoEnable  bool
)

func init() {
	rootCmd.AddCommand(installSystemdCmd)
	installSystemdCmd.Flags().StringVar(&installSystemdUnitDir, "unit-dir", systemd.DefaultUnitDir, "Directory for systemd unit files")
	installSystemdCmd.Flags().StringVar(&installSystemdBinary, "binary", "", "Path of the svnbackuper binary (default: this executable)")
	installSystemdCmd.Flags().BoolVar(&installSystemdHardening, "hardening", true, "Sandbox the service; only the backup root and lock dir stay writable")
	installSystemdCmd.Flags().BoolVar(&installSystemdNoEnable, "no-enable", false, "Write the units without enabling the timer")
}

var installSystemdCmd = &cobra.Command{
	Use:   "install-systemd",
	Short: "Install systemd service and timer units",
	Args:  cobra.NoArgs,
	RunE:  runInstallSystemd,
}

func runInstallSystemd(cmd *cobra.Command, args []string) error {
	if runtime.GOOS != "linux" {
		return fmt.Errorf("install-systemd is only supported on Linux")
	}
	cfg, path, err := loadSettings(cmd, loadOptions{CheckPerms: true})
	if err != nil {
		return err
	}
	logs := newLogContext(cmd.ErrOrStderr(), cfg.LogLevel)

	binary := installSystemdBinary
	if binary == "" {
		if binary, err = os.Executable(); err != nil {
			return err
		}
	}
	configPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	writable := []string{cfg.BackupRoot}
	if cfg.Lock != nil && cfg.Lock.Enabled {
		writable = append(writable, cfg.Lock.Dir)
	}
	units, err := systemd.Generate(cfg.Schedule, systemd.GeneratorOptions{
		Binary:        binary,
		ConfigPath:    configPath,
		UnitDir:       installSystemdUnitDir,
		Hardening:     installSystemdHardening,
		WritablePaths: writable,
	})
	if err != nil {
		return fmt.Errorf("%w: set schedule.period and schedule.times in %s", err, path)
	}

	if err := os.MkdirAll(installSystemdUnitDir, 0755); err != nil {
		return err
	}
	svcPath := filepath.Join(installSystemdUnitDir, units.ServiceFile())
	timerPath := filepath.Join(installSystemdUnitDir, units.TimerFile())
	if err := os.WriteFile(svcPath, []byte(units.Service), 0644); err != nil {
		return fmt.Errorf("write %s: %w", svcPath, err)
	}
	if err := os.WriteFile(timerPath, []byte(units.Timer), 0644); err != nil {
		return fmt.Errorf("write %s: %w", timerPath, err)
	}
	cmd.Printf("Wrote %s and %s\n", svcPath, timerPath)

	if installSystemdNoEnable {
		return nil
	}
	if err := systemctl(cmd.Context(), logs, "daemon-reload"); err != nil {
		return err
	}
	if err := systemctl(cmd.Context(), logs, "enable", "--now", units.TimerFile()); err != nil {
		return err
	}
	cmd.Printf("Enabled %s\n", units.TimerFile())
	return nil
}
