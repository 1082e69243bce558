package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"SvnBackuper/internal/config"
)

const envDiscordWebhook = config.EnvPrefix + "_NOTIFICATIONS_DISCORD_WEBHOOK_URL"

var (
	webhookURLFlag       string
	discordEnableFlag    bool
	discordDisableFlag   bool
	notificationsEnable  bool
	notificationsDisable bool
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configWebhooksCmd)
	configWebhooksCmd.Flags().StringVar(&webhookURLFlag, "webhook-url", "", "Discord webhook URL (or set "+envDiscordWebhook+")")
	configWebhooksCmd.Flags().BoolVar(&discordEnableFlag, "discord-enable", false, "Enable Discord notifications")
	configWebhooksCmd.Flags().BoolVar(&discordDisableFlag, "discord-disable", false, "Disable Discord notifications")
	configWebhooksCmd.Flags().BoolVar(&notificationsEnable, "notifications-on", false, "Enable all notifications")
	configWebhooksCmd.Flags().BoolVar(&notificationsDisable, "notifications-off", false, "Disable all notifications")
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
}

var configWebhooksCmd = &cobra.Command{
	Use:   "webhooks",
	Short: "Configure Discord webhook and notifications",
	Long:  "Show current notification settings and optionally set the Discord webhook URL, enable/disable Discord or all notifications. Run without flags for interactive prompts.",
	Args:  cobra.NoArgs,
	RunE:  runConfigWebhooks,
}

func runConfigWebhooks(cmd *cobra.Command, args []string) error {
	cfg, path, err := loadSettings(cmd, loadOptions{})
	if err != nil {
		return err
	}
	if cfg.Notifications == nil {
		cfg.Notifications = &config.NotificationsConfig{}
	}
	if cfg.Notifications.Discord == nil {
		cfg.Notifications.Discord = &config.DiscordConfig{}
	}

	hasFlags := webhookURLFlag != "" || discordEnableFlag || discordDisableFlag || notificationsEnable || notificationsDisable
	if hasFlags {
		return applyWebhookFlags(cmd, cfg, path)
	}
	return runConfigWebhooksInteractive(cmd, cfg, path)
}

func applyWebhookFlags(cmd *cobra.Command, cfg *config.Config, path string) error {
	if discordEnableFlag && discordDisableFlag {
		return fmt.Errorf("cannot use both --discord-enable and --discord-disable")
	}
	if notificationsEnable && notificationsDisable {
		return fmt.Errorf("cannot use both --notifications-on and --notifications-off")
	}

	if webhookURLFlag != "" {
		cfg.Notifications.Discord.WebhookURL = strings.TrimSpace(webhookURLFlag)
	}
	if discordEnableFlag {
		cfg.Notifications.Discord.Enabled = true
	}
	if discordDisableFlag {
		cfg.Notifications.Discord.Enabled = false
	}
	if notificationsEnable {
		cfg.Notifications.Enabled = true
	}
	if notificationsDisable {
		cfg.Notifications.Enabled = false
	}
	return saveWebhooks(cmd, cfg, path)
}

func runConfigWebhooksInteractive(cmd *cobra.Command, cfg *config.Config, path string) error {
	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Println("Current notification settings:")
	printWebhookStatus(cmd, cfg)
	cmd.Println()

	label := "Discord webhook URL"
	if cfg.Notifications.Discord.WebhookURL != "" || os.Getenv(envDiscordWebhook) != "" {
		label += " (Enter to keep current)"
	}
	if u := prompt(cmd.OutOrStdout(), reader, label, ""); u != "" {
		cfg.Notifications.Discord.WebhookURL = u
	}
	cfg.Notifications.Discord.Enabled = confirm(cmd.OutOrStdout(), reader, "Enable Discord notifications?", cfg.Notifications.Discord.Enabled)
	cfg.Notifications.Enabled = confirm(cmd.OutOrStdout(), reader, "Enable all notifications (global switch)?", cfg.Notifications.Enabled)
	return saveWebhooks(cmd, cfg, path)
}

func saveWebhooks(cmd *cobra.Command, cfg *config.Config, path string) error {
	if err := config.Validate(cfg); err != nil {
		return err
	}
	if err := config.Write(cfg, path); err != nil {
		return err
	}
	cmd.Printf("Configuration saved to %s\n", path)
	printWebhookStatus(cmd, cfg)
	return nil
}

func printWebhookStatus(cmd *cobra.Command, cfg *config.Config) {
	cmd.Printf("  Notifications (global): %s\n", onOff(cfg.Notifications != nil && cfg.Notifications.Enabled))
	if cfg.Notifications == nil || cfg.Notifications.Discord == nil {
		cmd.Println("  Discord: not configured")
		return
	}
	d := cfg.Notifications.Discord
	cmd.Printf("  Discord: %s\n", onOff(d.Enabled))
	switch {
	case d.WebhookURL != "":
		cmd.Printf("    Webhook URL: %s\n", maskWebhookURL(d.WebhookURL))
	case os.Getenv(envDiscordWebhook) != "":
		cmd.Println("    Webhook URL: (from env)")
	default:
		cmd.Println("    Webhook URL: (not set)")
	}
}

// maskWebhookURL keeps the token part of a webhook URL off the terminal.
func maskWebhookURL(s string) string {
	const max = 50
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

func onOff(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}

func prompt(w io.Writer, reader *bufio.Reader, label, defaultVal string) string {
	if defaultVal != "" {
		fmt.Fprintf(w, "%s [%s]: ", label, defaultVal)
	} else {
		fmt.Fprintf(w, "%s: ", label)
	}
	line, _ := reader.ReadString('\n')
	s := strings.TrimSpace(line)
	if s == "" {
		return defaultVal
	}
	return s
}

func confirm(w io.Writer, reader *bufio.Reader, question string, current bool) bool {
	def := "y/N"
	if current {
		def = "Y/n"
	}
	fmt.Fprintf(w, "%s [%s]: ", question, def)
	line, _ := reader.ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	case "n", "no":
		return false
	default:
		return current
	}
}
