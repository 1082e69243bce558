package cmd

import (
	"SvnBackuper/internal/config"
	"SvnBackuper/internal/notifier"
)

// NotifierFromConfig builds a Notifier from cfg. Disabled or misconfigured
// notifications yield notifier.Nop; a misconfigured Discord section is
// reported through warn.
func NotifierFromConfig(cfg *config.Config, warn func(string)) notifier.Notifier {
	if cfg == nil || cfg.Notifications == nil || !cfg.Notifications.Enabled {
		return notifier.Nop{}
	}
	if cfg.Notifications.Discord == nil || !cfg.Notifications.Discord.Enabled {
		return notifier.Nop{}
	}
	n, err := notifier.NewDiscordNotifier(cfg.Notifications.Discord)
	if err != nil {
		if warn != nil {
			warn("discord notification: " + err.Error())
		}
		return notifier.Nop{}
	}
	return n
}
