package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

func Write(cfg *Config, path string) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config dir %s: %w", dir, err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// Starter returns the configuration written by "svnbackuper init".
func Starter(repositoryRoot, backupRoot string) *Config {
	return &Config{
		RepositoryRoot: repositoryRoot,
		BackupRoot:     backupRoot,
		History:        DefaultHistory,
		Compress:       true,
		Compression:    DefaultCompression,
		LogLevel:       DefaultLogLevel,
		Lock:           &LockConfig{Enabled: true, Dir: DefaultLockDir, TTL: DefaultLockTTL},
		Schedule:       &ScheduleConfig{Period: "day", Times: 1, JitterMinutes: 15},
	}
}
