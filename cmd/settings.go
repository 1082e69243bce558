package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"SvnBackuper/internal/config"
)

// flagBinding maps a config key to the name of a command flag.
type flagBinding struct {
	key  string
	flag string
}

type loadOptions struct {
	// AllowMissing accepts a missing file, so a command can be driven by
	// flags and environment alone.
	AllowMissing bool
	CheckPerms   bool
	// BackupOnly drops the repository root requirement.
	BackupOnly bool
}

// loadSettings reads the configuration for cmd and overlays the bound flags.
func loadSettings(cmd *cobra.Command, opts loadOptions, bindings ...flagBinding) (*config.Config, string, error) {
	path := config.ResolveConfigPath(configFlag)
	v, err := config.Load(path, opts.CheckPerms)
	if err != nil {
		if !opts.AllowMissing || !errors.Is(err, config.ErrConfigNotFound) {
			return nil, path, err
		}
	}
	if err := bindFlags(v, cmd.Flags(), bindings); err != nil {
		return nil, path, err
	}
	if logLevelFlag != "" {
		v.Set("log_level", logLevelFlag)
	}
	cfg, err := config.Unmarshal(v)
	if err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}
	validate := config.Validate
	if opts.BackupOnly {
		validate = config.ValidateBackupRoot
	}
	if err := validate(cfg); err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet, bindings []flagBinding) error {
	for _, b := range bindings {
		f := fs.Lookup(b.flag)
		if f == nil {
			return fmt.Errorf("unknown flag %q", b.flag)
		}
		// Only explicit flags override the file; defaults stay with viper.
		if !f.Changed {
			continue
		}
		if err := v.BindPFlag(b.key, f); err != nil {
			return fmt.Errorf("bind --%s: %w", b.flag, err)
		}
	}
	return nil
}

// rootBindings are shared by the commands that accept the root flags.
var rootBindings = []flagBinding{
	{"repository_root", "repository"},
	{"backup_root", "backup"},
	{"history", "history"},
	{"svn_path", "svn"},
}

func addRootFlags(c *cobra.Command) {
	c.Flags().StringP("repository", "r", "", "Repository root: a repository or a directory of repositories")
	addBackupFlag(c)
	c.Flags().IntP("history", "n", config.DefaultHistory, "Records kept per repository; below 1 disables pruning")
	c.Flags().String("svn", "", "Directory holding svnlook/svnadmin/svn (default: PATH)")
}

func addBackupFlag(c *cobra.Command) {
	c.Flags().StringP("backup", "b", "", "Backup root")
}

var backupBinding = flagBinding{"backup_root", "backup"}
