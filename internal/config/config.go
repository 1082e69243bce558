package config

import (
	"time"

	"github.com/spf13/viper"

	"SvnBackuper/internal/s3"
)

const (
	DefaultHistory     = 10
	DefaultCompression = "deflate"
	DefaultLogLevel    = "info"
	DefaultLockDir     = "/var/run/svnbackuper"
	DefaultLockTTL     = "6h"
)

type Config struct {
	RepositoryRoot string               `mapstructure:"repository_root" yaml:"repository_root"`
	BackupRoot     string               `mapstructure:"backup_root" yaml:"backup_root"`
	History        int                  `mapstructure:"history" yaml:"history"`
	Compress       bool                 `mapstructure:"compress" yaml:"compress"`
	Compression    string               `mapstructure:"compression" yaml:"compression,omitempty"`
	SvnPath        string               `mapstructure:"svn_path" yaml:"svn_path,omitempty"`
	Timeout        string               `mapstructure:"timeout" yaml:"timeout,omitempty"`
	LogLevel       string               `mapstructure:"log_level" yaml:"log_level,omitempty"`
	Lock           *LockConfig          `mapstructure:"lock" yaml:"lock,omitempty"`
	S3             *S3Config            `mapstructure:"s3" yaml:"s3,omitempty"`
	Notifications  *NotificationsConfig `mapstructure:"notifications" yaml:"notifications,omitempty"`
	Schedule       *ScheduleConfig      `mapstructure:"schedule" yaml:"schedule,omitempty"`
}

type LockConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Dir     string `mapstructure:"dir" yaml:"dir,omitempty"`
	TTL     string `mapstructure:"ttl" yaml:"ttl,omitempty"`
}

type S3Config struct {
	Enabled    bool       `mapstructure:"enabled" yaml:"enabled"`
	History    int        `mapstructure:"history" yaml:"history,omitempty"`
	Endpoint   string     `mapstructure:"endpoint" yaml:"endpoint,omitempty"`
	Region     string     `mapstructure:"region" yaml:"region,omitempty"`
	AccessKey  string     `mapstructure:"access_key" yaml:"access_key,omitempty"`
	SecretKey  string     `mapstructure:"secret_key" yaml:"secret_key,omitempty"`
	Bucket     string     `mapstructure:"bucket" yaml:"bucket,omitempty"`
	Prefix     string     `mapstructure:"prefix" yaml:"prefix,omitempty"`
	PathStyle  bool       `mapstructure:"path_style" yaml:"path_style,omitempty"`
	PartSizeMB int        `mapstructure:"part_size_mb" yaml:"part_size_mb,omitempty"`
	TLS        *TLSConfig `mapstructure:"tls" yaml:"tls,omitempty"`
}

type TLSConfig struct {
	InsecureSkipVerify bool `mapstructure:"insecure_skip_verify" yaml:"insecure_skip_verify"`
}

type NotificationsConfig struct {
	Enabled bool           `mapstructure:"enabled" yaml:"enabled"`
	Discord *DiscordConfig `mapstructure:"discord" yaml:"discord,omitempty"`
}

type DiscordConfig struct {
	Enabled        bool             `mapstructure:"enabled" yaml:"enabled"`
	WebhookURL     string           `mapstructure:"webhook_url" yaml:"webhook_url,omitempty"`
	TimeoutSeconds int              `mapstructure:"timeout_seconds" yaml:"timeout_seconds,omitempty"`
	Retry          *DiscordRetry    `mapstructure:"retry" yaml:"retry,omitempty"`
	Mentions       *DiscordMentions `mapstructure:"mentions" yaml:"mentions,omitempty"`
	Events         []string         `mapstructure:"events" yaml:"events,omitempty"`
}

type DiscordRetry struct {
	Attempts  int `mapstructure:"attempts" yaml:"attempts"`
	BackoffMs int `mapstructure:"backoff_ms" yaml:"backoff_ms"`
}

type DiscordMentions struct {
	OnError string `mapstructure:"on_error" yaml:"on_error,omitempty"`
}

type ScheduleConfig struct {
	Period        string `mapstructure:"period" yaml:"period"`
	Times         int    `mapstructure:"times" yaml:"times"`
	JitterMinutes int    `mapstructure:"jitter_minutes" yaml:"jitter_minutes,omitempty"`
}

func Unmarshal(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// TimeoutDuration is the per-tool timeout; zero means none.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := parseDuration(c.Timeout)
	return d
}

func (c *Config) MirrorEnabled() bool {
	return c.S3 != nil && c.S3.Enabled
}

// MirrorHistory is the number of records kept remotely.
func (c *Config) MirrorHistory() int {
	if c.S3 != nil && c.S3.History != 0 {
		return c.S3.History
	}
	return c.History
}

func (c *Config) DiscordEnabled() bool {
	return c.Notifications != nil && c.Notifications.Enabled &&
		c.Notifications.Discord != nil && c.Notifications.Discord.Enabled &&
		c.Notifications.Discord.WebhookURL != ""
}

func (l *LockConfig) TTLDuration() time.Duration {
	if l == nil {
		return 0
	}
	d, _ := parseDuration(l.TTL)
	return d
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" || s == "0" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

// ClientOptions maps the section to the S3 client settings.
func (s *S3Config) ClientOptions() s3.Options {
	return s3.Options{
		Endpoint:           s.Endpoint,
		Region:             s.Region,
		AccessKey:          s.AccessKey,
		SecretKey:          s.SecretKey,
		Bucket:             s.Bucket,
		Prefix:             s.Prefix,
		PathStyle:          s.PathStyle,
		InsecureSkipVerify: s.TLS != nil && s.TLS.InsecureSkipVerify,
	}
}

// PartSizeBytes is the multipart part size, never below the S3 minimum.
func (s *S3Config) PartSizeBytes() int64 {
	n := int64(s.PartSizeMB) * 1024 * 1024
	if n < s3.MinPartSizeBytes {
		n = s3.MinPartSizeBytes
	}
	return n
}
