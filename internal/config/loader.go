package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const EnvPrefix = "SVNBACKUPER"

var ErrConfigNotFound = errors.New("config file not found")

// New returns a viper instance with defaults and SVNBACKUPER_* environment
// overrides, but no file.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("repository_root", "")
	v.SetDefault("backup_root", "")
	v.SetDefault("history", DefaultHistory)
	v.SetDefault("compress", false)
	v.SetDefault("compression", DefaultCompression)
	v.SetDefault("svn_path", "")
	v.SetDefault("timeout", "")
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("lock.enabled", false)
	v.SetDefault("lock.dir", DefaultLockDir)
	v.SetDefault("lock.ttl", DefaultLockTTL)
	v.SetDefault("s3.enabled", false)
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.access_key", "")
	v.SetDefault("s3.secret_key", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.part_size_mb", 16)
	v.SetDefault("notifications.enabled", false)
	v.SetDefault("notifications.discord.webhook_url", "")
}

// Load reads path into a viper instance built by New. A missing file is
// reported as ErrConfigNotFound so callers can fall back to flags.
func Load(path string, checkPerms bool) (*viper.Viper, error) {
	v := New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return v, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("stat config: %w", err)
	}

	if checkPerms {
		if err := CheckPermissions(path); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return v, nil
}

// CheckPermissions fails when the file is readable by group or others; it
// may hold S3 credentials and webhook URLs.
func CheckPermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	mode := info.Mode().Perm()

	if mode&0077 != 0 {
		return fmt.Errorf("config file %s has overly permissive mode %s (recommended: 0600)", path, mode)
	}
	return nil
}
