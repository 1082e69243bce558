package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"SvnBackuper/internal/config"
)

type webhook struct {
	mu       sync.Mutex
	payloads []discordPayload
	fail     int
}

func (w *webhook) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fail > 0 {
		w.fail--
		rw.WriteHeader(http.StatusTooManyRequests)
		return
	}
	var p discordPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		rw.WriteHeader(http.StatusBadRequest)
		return
	}
	w.payloads = append(w.payloads, p)
	rw.WriteHeader(http.StatusNoContent)
}

func newDiscord(t *testing.T, hook *webhook, mutate func(*config.DiscordConfig)) *DiscordNotifier {
	t.Helper()
	srv := httptest.NewServer(hook)
	t.Cleanup(srv.Close)
	cfg := &config.DiscordConfig{Enabled: true, WebhookURL: srv.URL}
	if mutate != nil {
		mutate(cfg)
	}
	d, err := NewDiscordNotifier(cfg)
	if err != nil {
		t.Fatal(err)
	}
	d.host = "backup-host"
	return d
}

func TestNewDiscordNotifier_Disabled(t *testing.T) {
	for _, cfg := range []*config.DiscordConfig{nil, {Enabled: false, WebhookURL: "https://x"}, {Enabled: true}} {
		if _, err := NewDiscordNotifier(cfg); err == nil {
			t.Errorf("NewDiscordNotifier(%+v) should fail", cfg)
		}
	}
}

func TestDiscord_Backup(t *testing.T) {
	hook := &webhook{}
	d := newDiscord(t, hook, nil)
	if err := d.NotifyBackup(context.Background(), "app", "v0000042", 1500*time.Millisecond, 2_500_000); err != nil {
		t.Fatal(err)
	}
	if len(hook.payloads) != 1 {
		t.Fatalf("payloads = %d", len(hook.payloads))
	}
	e := hook.payloads[0].Embeds[0]
	fields := map[string]string{}
	for _, f := range e.Fields {
		fields[f.Name] = f.Value
	}
	if e.Title != "Repository backed up" || fields["Repository"] != "app" || fields["Revision"] != "v0000042" {
		t.Errorf("embed = %+v", e)
	}
	if fields["Host"] != "backup-host" || fields["Size"] != "2.5 MB" || fields["Duration"] != "1.5s" {
		t.Errorf("fields = %v", fields)
	}
}

func TestDiscord_ErrorMentions(t *testing.T) {
	hook := &webhook{}
	d := newDiscord(t, hook, func(c *config.DiscordConfig) {
		c.Mentions = &config.DiscordMentions{OnError: "@ops"}
	})
	if err := d.NotifyError(context.Background(), "app", errors.New("hotcopy failed")); err != nil {
		t.Fatal(err)
	}
	if err := d.NotifySummary(context.Background(), "run-1", "1 repository: 0 backed up", 0); err != nil {
		t.Fatal(err)
	}
	if hook.payloads[0].Content != "@ops" || hook.payloads[0].Embeds[0].Description != "hotcopy failed" {
		t.Errorf("error payload = %+v", hook.payloads[0])
	}
	if hook.payloads[1].Content != "" {
		t.Error("a clean summary should not mention anyone")
	}
}

func TestDiscord_EventFilter(t *testing.T) {
	hook := &webhook{}
	d := newDiscord(t, hook, func(c *config.DiscordConfig) { c.Events = []string{"error"} })
	ctx := context.Background()
	_ = d.NotifyStart(ctx, "run")
	_ = d.NotifyPrune(ctx, "app", 2)
	_ = d.NotifyRestore(ctx, "app", "v0000001", "/tmp/x")
	_ = d.NotifyError(ctx, "app", errors.New("boom"))
	if len(hook.payloads) != 1 || !strings.Contains(hook.payloads[0].Embeds[0].Title, "failed") {
		t.Errorf("payloads = %+v", hook.payloads)
	}
}

func TestDiscord_Retry(t *testing.T) {
	hook := &webhook{fail: 2}
	d := newDiscord(t, hook, func(c *config.DiscordConfig) {
		c.Retry = &config.DiscordRetry{Attempts: 3, BackoffMs: 1}
	})
	if err := d.NotifyStart(context.Background(), "run"); err != nil {
		t.Fatalf("NotifyStart after retries = %v", err)
	}

	hook.fail = 5
	err := d.NotifyWarning(context.Background(), "app", "mirror down")
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Errorf("err = %v, want failure mentioning the status", err)
	}
}

func TestNop(t *testing.T) {
	var n Notifier = Nop{}
	if err := n.NotifyError(context.Background(), "app", errors.New("x")); err != nil {
		t.Error(err)
	}
}
