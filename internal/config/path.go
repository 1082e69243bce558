package config

import (
	"os"
	"path/filepath"
)

const (
	DefaultConfigDir  = "/etc/svnbackuper"
	DefaultConfigName = "config.yaml"
)

const EnvConfigPath = "SVNBACKUPER_CONFIG"

func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir, DefaultConfigName)
}

// ResolveConfigPath picks the explicit path, then $SVNBACKUPER_CONFIG, then
// the default location.
func ResolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return DefaultConfigPath()
}
