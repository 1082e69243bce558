package cmd

import (
	"github.com/spf13/cobra"
)

var (
	configFlag   string
	logLevelFlag string
)

var rootCmd = &cobra.Command{
	Use:   "svnbackuper",
	Short: "Hot-copy backups of Subversion repositories with retention",
	Long: "svnbackuper takes a hot copy of every Subversion repository under a root directory, once per head revision, " +
		"optionally compresses it, keeps the newest N records per repository and can mirror them to S3-compatible storage.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Config file (default $SVNBACKUPER_CONFIG or /etc/svnbackuper/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: trace, debug, info, warning or error")
}

func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}
