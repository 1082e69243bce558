package notifier

import (
	"context"
	"time"
)

type Notifier interface {
	NotifyStart(ctx context.Context, runID string) error
	NotifyBackup(ctx context.Context, repo, label string, duration time.Duration, size int64) error
	NotifyWarning(ctx context.Context, repo, message string) error
	NotifyError(ctx context.Context, repo string, err error) error
	NotifyPrune(ctx context.Context, repo string, deleted int) error
	NotifyRestore(ctx context.Context, repo, label, target string) error
	NotifySummary(ctx context.Context, runID, summary string, failed int) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) NotifyStart(context.Context, string) error                                { return nil }
func (Nop) NotifyBackup(context.Context, string, string, time.Duration, int64) error { return nil }
func (Nop) NotifyWarning(context.Context, string, string) error                      { return nil }
func (Nop) NotifyError(context.Context, string, error) error                         { return nil }
func (Nop) NotifyPrune(context.Context, string, int) error                           { return nil }
func (Nop) NotifyRestore(context.Context, string, string, string) error              { return nil }
func (Nop) NotifySummary(context.Context, string, string, int) error                 { return nil }
