package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultsAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `repository_root: /srv/svn
backup_root: /backup/svn
compress: true
timeout: 90m
s3:
  enabled: true
  bucket: svn-backups
  prefix: /hosts//a/
`
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatal(err)
	}
	v, err := Load(path, true)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg, err := Unmarshal(v)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.RepositoryRoot != "/srv/svn" || cfg.BackupRoot != "/backup/svn" {
		t.Errorf("roots = %q, %q", cfg.RepositoryRoot, cfg.BackupRoot)
	}
	if cfg.History != DefaultHistory || cfg.Compression != "deflate" || cfg.LogLevel != "info" {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.TimeoutDuration() != 90*time.Minute {
		t.Errorf("timeout = %s", cfg.TimeoutDuration())
	}
	if cfg.Lock == nil || cfg.Lock.Dir != DefaultLockDir || cfg.Lock.TTLDuration() != 6*time.Hour {
		t.Errorf("lock = %+v", cfg.Lock)
	}
	if !cfg.MirrorEnabled() || cfg.S3.Prefix != "hosts/a" || cfg.MirrorHistory() != DefaultHistory {
		t.Errorf("s3 = %+v", cfg.S3)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("repository_root: /srv/svn\nbackup_root: /b\nhistory: 3\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SVNBACKUPER_HISTORY", "7")
	t.Setenv("SVNBACKUPER_LOCK_ENABLED", "true")
	v, err := Load(path, false)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := Unmarshal(v)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.History != 7 {
		t.Errorf("history = %d, want env value 7", cfg.History)
	}
	if cfg.Lock == nil || !cfg.Lock.Enabled {
		t.Errorf("lock.enabled from env not applied: %+v", cfg.Lock)
	}
}

func TestLoad_Missing(t *testing.T) {
	v, err := Load(filepath.Join(t.TempDir(), "none.yaml"), false)
	if !errors.Is(err, ErrConfigNotFound) {
		t.Fatalf("err = %v, want ErrConfigNotFound", err)
	}
	if v == nil || v.GetInt("history") != DefaultHistory {
		t.Error("missing file should still return defaults")
	}
}

func TestLoad_Permissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("history: 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path, true); err == nil {
		t.Error("expected error for 0644 config with permission check")
	}
	if _, err := Load(path, false); err != nil {
		t.Errorf("Load without check = %v", err)
	}
}

func TestResolveConfigPath(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	if got := ResolveConfigPath(""); got != DefaultConfigPath() {
		t.Errorf("default = %q", got)
	}
	t.Setenv(EnvConfigPath, "/tmp/env.yaml")
	if got := ResolveConfigPath(""); got != "/tmp/env.yaml" {
		t.Errorf("env = %q", got)
	}
	if got := ResolveConfigPath("/x.yaml"); got != "/x.yaml" {
		t.Errorf("explicit = %q", got)
	}
}

func TestWrite_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "etc", "config.yaml")
	cfg := Starter("/srv/svn", "/backup/svn")
	cfg.S3 = &S3Config{Enabled: true, Endpoint: "https://127.0.0.1:9000", Bucket: "test", AccessKey: "key", SecretKey: "secret"}
	cfg.Notifications = &NotificationsConfig{
		Enabled: true,
		Discord: &DiscordConfig{
			Enabled:    true,
			WebhookURL: "https://discord.example/api/webhooks/1",
			Retry:      &DiscordRetry{Attempts: 3, BackoffMs: 500},
			Events:     []string{"error", "summary"},
		},
	}
	if err := Write(cfg, path); err != nil {
		t.Fatalf("Write: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("mode = %s, want 0600", info.Mode().Perm())
	}

	v, err := Load(path, true)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	loaded, err := Unmarshal(v)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if loaded.RepositoryRoot != "/srv/svn" || !loaded.Compress || loaded.History != DefaultHistory {
		t.Errorf("loaded = %+v", loaded)
	}
	if loaded.S3 == nil || loaded.S3.Bucket != "test" || !loaded.S3.Enabled {
		t.Errorf("s3 = %+v", loaded.S3)
	}
	if !loaded.DiscordEnabled() || loaded.Notifications.Discord.Retry.Attempts != 3 || len(loaded.Notifications.Discord.Events) != 2 {
		t.Errorf("notifications = %+v", loaded.Notifications)
	}
	if loaded.Schedule == nil || loaded.Schedule.Period != "day" || loaded.Schedule.Times != 1 {
		t.Errorf("schedule = %+v", loaded.Schedule)
	}
}

func TestMirrorHistory(t *testing.T) {
	cfg := &Config{History: 10}
	if cfg.MirrorHistory() != 10 {
		t.Error("no s3 section should follow history")
	}
	cfg.S3 = &S3Config{History: 30}
	if cfg.MirrorHistory() != 30 {
		t.Error("s3.history should win")
	}
}
