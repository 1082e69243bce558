package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"SvnBackuper/internal/config"
)

type DiscordNotifier struct {
	webhookURL string
	timeout    time.Duration
	retry      *config.DiscordRetry
	mentions   *config.DiscordMentions
	events     map[string]struct{}
	host       string
	client     *http.Client
	now        func() time.Time
}

type discordEmbed struct {
	Title       string         `json:"title,omitempty"`
	Description string         `json:"description,omitempty"`
	Color       int            `json:"color,omitempty"`
	Timestamp   string         `json:"timestamp,omitempty"`
	Fields      []discordField `json:"fields,omitempty"`
	Footer      *discordFooter `json:"footer,omitempty"`
}

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type discordFooter struct {
	Text string `json:"text,omitempty"`
}

type discordPayload struct {
	Content string         `json:"content,omitempty"`
	Embeds  []discordEmbed `json:"embeds,omitempty"`
}

func NewDiscordNotifier(cfg *config.DiscordConfig) (*DiscordNotifier, error) {
	if cfg == nil || !cfg.Enabled || cfg.WebhookURL == "" {
		return nil, fmt.Errorf("discord notifier disabled or missing webhook_url")
	}
	host, _ := os.Hostname()
	if host == "" {
		host = "unknown"
	}
	timeout := 10 * time.Second
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	events := make(map[string]struct{})
	for _, e := range cfg.Events {
		events[e] = struct{}{}
	}
	return &DiscordNotifier{
		webhookURL: cfg.WebhookURL,
		timeout:    timeout,
		retry:      cfg.Retry,
		mentions:   cfg.Mentions,
		events:     events,
		host:       host,
		client:     &http.Client{Timeout: timeout},
		now:        time.Now,
	}, nil
}

func (d *DiscordNotifier) allowed(event string) bool {
	if len(d.events) == 0 {
		return true
	}
	_, ok := d.events[event]
	return ok
}

func (d *DiscordNotifier) send(ctx context.Context, embed discordEmbed, mention string) error {
	if d.webhookURL == "" {
		return nil
	}
	payload := discordPayload{
		Content: mention,
		Embeds:  []discordEmbed{embed},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	attempts := 1
	delay := 0 * time.Millisecond
	if d.retry != nil && d.retry.Attempts > 1 {
		attempts = d.retry.Attempts
		delay = time.Duration(d.retry.BackoffMs) * time.Millisecond
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := d.client.Do(req)
		if err == nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
			_ = resp.Body.Close()
			return nil
		}
		if err != nil {
			lastErr = err
		} else {
			lastErr = fmt.Errorf("status %s", resp.Status)
			_ = resp.Body.Close()
		}
		if delay > 0 && i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return fmt.Errorf("discord webhook failed after %d attempts: %w", attempts, lastErr)
}

func (d *DiscordNotifier) embed(title string, color int, fields ...discordField) discordEmbed {
	return discordEmbed{
		Title:     title,
		Color:     color,
		Timestamp: d.now().UTC().Format(time.RFC3339),
		Fields:    append([]discordField{{Name: "Host", Value: d.host, Inline: true}}, fields...),
		Footer:    &discordFooter{Text: "svnbackuper"},
	}
}

func (d *DiscordNotifier) errorMention() string {
	if d.mentions != nil {
		return d.mentions.OnError
	}
	return ""
}

func (d *DiscordNotifier) NotifyStart(ctx context.Context, runID string) error {
	if !d.allowed("start") {
		return nil
	}
	return d.send(ctx, d.embed("Backup run started", 0x3498db,
		discordField{Name: "Run", Value: runID, Inline: true},
	), "")
}

func (d *DiscordNotifier) NotifyBackup(ctx context.Context, repo, label string, duration time.Duration, size int64) error {
	if !d.allowed("success") {
		return nil
	}
	return d.send(ctx, d.embed("Repository backed up", 0x2ecc71,
		discordField{Name: "Repository", Value: repo, Inline: true},
		discordField{Name: "Revision", Value: label, Inline: true},
		discordField{Name: "Duration", Value: duration.Round(time.Millisecond).String(), Inline: true},
		discordField{Name: "Size", Value: humanize.Bytes(uint64(size)), Inline: true},
	), "")
}

func (d *DiscordNotifier) NotifyWarning(ctx context.Context, repo, message string) error {
	if !d.allowed("warning") {
		return nil
	}
	e := d.embed("Backup warning", 0xf1c40f, discordField{Name: "Repository", Value: repo, Inline: true})
	e.Description = message
	return d.send(ctx, e, d.errorMention())
}

func (d *DiscordNotifier) NotifyError(ctx context.Context, repo string, err error) error {
	if !d.allowed("error") {
		return nil
	}
	e := d.embed("Backup failed", 0xe74c3c, discordField{Name: "Repository", Value: repo, Inline: true})
	if err != nil {
		e.Description = err.Error()
	}
	return d.send(ctx, e, d.errorMention())
}

func (d *DiscordNotifier) NotifyPrune(ctx context.Context, repo string, deleted int) error {
	if !d.allowed("prune") {
		return nil
	}
	return d.send(ctx, d.embed("Old backups removed", 0x9b59b6,
		discordField{Name: "Repository", Value: repo, Inline: true},
		discordField{Name: "Deleted", Value: fmt.Sprintf("%d", deleted), Inline: true},
	), "")
}

func (d *DiscordNotifier) NotifyRestore(ctx context.Context, repo, label, target string) error {
	if !d.allowed("restore") {
		return nil
	}
	return d.send(ctx, d.embed("Restore completed", 0x1abc9c,
		discordField{Name: "Repository", Value: repo, Inline: true},
		discordField{Name: "Revision", Value: label, Inline: true},
		discordField{Name: "Target", Value: target, Inline: false},
	), "")
}

func (d *DiscordNotifier) NotifySummary(ctx context.Context, runID, summary string, failed int) error {
	if !d.allowed("summary") {
		return nil
	}
	color, mention := 0x2ecc71, ""
	if failed > 0 {
		color, mention = 0xe67e22, d.errorMention()
	}
	e := d.embed("Backup run finished", color, discordField{Name: "Run", Value: runID, Inline: true})
	e.Description = summary
	return d.send(ctx, e, mention)
}
