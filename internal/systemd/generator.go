// Package systemd renders the service and timer units that run backups on
// a schedule.
package systemd

import (
	"fmt"
	"strings"

	"SvnBackuper/internal/config"
	"SvnBackuper/internal/schedule"
)

const (
	DefaultUnitDir    = "/etc/systemd/system"
	DefaultBinary     = "/usr/local/bin/svnbackuper"
	DefaultConfigPath = "/etc/svnbackuper/config.yaml"
	DefaultUnitName   = "svnbackuper"
)

type GeneratorOptions struct {
	Name       string
	Binary     string
	ConfigPath string
	UnitDir    string
	Hardening  bool
	// WritablePaths are left writable under hardening, normally the backup
	// root and the lock directory.
	WritablePaths []string
}

type GeneratedUnits struct {
	Name    string
	Service string
	Timer   string
}

func (u *GeneratedUnits) ServiceFile() string { return u.Name + ".service" }
func (u *GeneratedUnits) TimerFile() string   { return u.Name + ".timer" }

func Generate(s *config.ScheduleConfig, opts GeneratorOptions) (*GeneratedUnits, error) {
	if s == nil || s.Times < 1 {
		return nil, fmt.Errorf("schedule is required")
	}
	if opts.Binary == "" {
		opts.Binary = DefaultBinary
	}
	if opts.ConfigPath == "" {
		opts.ConfigPath = DefaultConfigPath
	}
	name := DefaultUnitName
	if opts.Name != "" {
		name = DefaultUnitName + "-" + sanitizeUnitName(opts.Name)
	}

	return &GeneratedUnits{
		Name:    name,
		Service: buildService(opts),
		Timer:   buildTimer(name, s),
	}, nil
}

func buildService(opts GeneratorOptions) string {
	var b strings.Builder

	b.WriteString("[Unit]\n")
	b.WriteString("Description=Subversion repository backup\n")
	b.WriteString("After=local-fs.target network-online.target\n")
	b.WriteString("Wants=network-online.target\n\n")

	b.WriteString("[Service]\n")
	b.WriteString("Type=oneshot\n")
	b.WriteString(fmt.Sprintf("ExecStart=%s run\n", opts.Binary))
	b.WriteString("Environment=" + config.EnvConfigPath + "=" + opts.ConfigPath + "\n")
	b.WriteString("Nice=10\n")
	b.WriteString("IOSchedulingClass=best-effort\n")
	b.WriteString("IOSchedulingPriority=7\n")

	if opts.Hardening {
		b.WriteString("ProtectSystem=strict\n")
		for _, p := range opts.WritablePaths {
			if p != "" {
				b.WriteString("ReadWritePaths=" + p + "\n")
			}
		}
		b.WriteString("ProtectHome=read-only\n")
		b.WriteString("PrivateTmp=yes\n")
		b.WriteString("NoNewPrivileges=yes\n")
		b.WriteString("ProtectKernelTunables=yes\n")
		b.WriteString("ProtectKernelModules=yes\n")
		b.WriteString("ProtectControlGroups=yes\n")
		b.WriteString("RestrictRealtime=yes\n")
		b.WriteString("RestrictSUIDSGID=yes\n")
		b.WriteString("LockPersonality=yes\n")
		b.WriteString("ProtectClock=yes\n")
		b.WriteString("ProtectHostname=yes\n")
		b.WriteString("ProtectKernelLogs=yes\n")
		b.WriteString("RestrictNamespaces=yes\n")
		b.WriteString("RestrictAddressFamilies=AF_UNIX AF_INET AF_INET6\n")
	}

	b.WriteString("\n[Install]\n")
	b.WriteString("WantedBy=multi-user.target\n")
	return b.String()
}

func buildTimer(name string, s *config.ScheduleConfig) string {
	var b strings.Builder

	b.WriteString("[Unit]\n")
	b.WriteString(fmt.Sprintf("Description=Subversion repository backup (%s)\n", schedule.Describe(s)))
	b.WriteString("Requires=" + name + ".service\n\n")

	b.WriteString("[Timer]\n")
	for _, c := range schedule.OnCalendar(s) {
		b.WriteString("OnCalendar=" + c + "\n")
	}
	if s.JitterMinutes > 0 {
		b.WriteString(fmt.Sprintf("RandomizedDelaySec=%d\n", s.JitterMinutes*60))
	}
	b.WriteString("Persistent=yes\n\n")

	b.WriteString("[Install]\n")
	b.WriteString("WantedBy=timers.target\n")
	return b.String()
}

func sanitizeUnitName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		} else if r == ' ' || r == '.' {
			b.WriteRune('-')
		}
	}
	s := b.String()
	if s == "" {
		return "default"
	}
	return s
}
