package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingBackupRoot   = errors.New("backup_root is required")
	ErrMissingRoot         = errors.New("repository_root and backup_root are required")
	ErrInvalidCompression  = errors.New("invalid compression: must be 'deflate' or 'zstd'")
	ErrInvalidLogLevel     = errors.New("invalid log_level: must be trace, debug, info, warning or error")
	ErrInvalidSchedule     = errors.New("invalid schedule")
	ErrInvalidS3           = errors.New("invalid s3 settings")
	ErrInvalidDuration     = errors.New("invalid duration")
	ErrInvalidNotification = errors.New("invalid notifications")
)

var logLevels = map[string]bool{"trace": true, "debug": true, "info": true, "warning": true, "warn": true, "error": true}

// Validate checks cfg and normalizes the fields it can, such as the S3
// prefix and the compression name.
func Validate(cfg *Config) error {
	return validate(cfg, true)
}

// ValidateBackupRoot is Validate for commands that only read backups, such
// as list and restore; the repository root may be empty.
func ValidateBackupRoot(cfg *Config) error {
	return validate(cfg, false)
}

func validate(cfg *Config, needRepositories bool) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	cfg.RepositoryRoot = strings.TrimSpace(cfg.RepositoryRoot)
	cfg.BackupRoot = strings.TrimSpace(cfg.BackupRoot)
	if needRepositories && (cfg.RepositoryRoot == "" || cfg.BackupRoot == "") {
		return ErrMissingRoot
	}
	if cfg.BackupRoot == "" {
		return ErrMissingBackupRoot
	}

	cfg.Compression = strings.ToLower(strings.TrimSpace(cfg.Compression))
	switch cfg.Compression {
	case "":
		cfg.Compression = DefaultCompression
	case "deflate", "zstd":
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidCompression, cfg.Compression)
	}

	if cfg.LogLevel != "" && !logLevels[strings.ToLower(cfg.LogLevel)] {
		return fmt.Errorf("%w: got %q", ErrInvalidLogLevel, cfg.LogLevel)
	}

	if d, err := parseDuration(cfg.Timeout); err != nil || d < 0 {
		return fmt.Errorf("%w: timeout %q", ErrInvalidDuration, cfg.Timeout)
	}
	if cfg.Lock != nil {
		if d, err := parseDuration(cfg.Lock.TTL); err != nil || d < 0 {
			return fmt.Errorf("%w: lock.ttl %q", ErrInvalidDuration, cfg.Lock.TTL)
		}
	}

	if s := cfg.Schedule; s != nil {
		switch s.Period {
		case "", "day", "week", "month":
		default:
			return fmt.Errorf("%w: period %q (use day, week or month)", ErrInvalidSchedule, s.Period)
		}
		if s.Times < 0 || s.Times > 5 {
			return fmt.Errorf("%w: times %d outside 0..5", ErrInvalidSchedule, s.Times)
		}
		if s.JitterMinutes < 0 {
			return fmt.Errorf("%w: negative jitter_minutes", ErrInvalidSchedule)
		}
	}

	if s := cfg.S3; s != nil {
		s.Prefix = NormalizePrefix(s.Prefix)
		if s.Enabled && s.Bucket == "" {
			return fmt.Errorf("%w: bucket is required when s3.enabled", ErrInvalidS3)
		}
		if s.PartSizeMB < 0 {
			return fmt.Errorf("%w: negative part_size_mb", ErrInvalidS3)
		}
	}

	if n := cfg.Notifications; n != nil && n.Enabled && n.Discord != nil && n.Discord.Enabled {
		if !strings.HasPrefix(n.Discord.WebhookURL, "https://") && !strings.HasPrefix(n.Discord.WebhookURL, "http://") {
			return fmt.Errorf("%w: discord.webhook_url must be an http(s) URL", ErrInvalidNotification)
		}
	}
	return nil
}
