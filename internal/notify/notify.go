// Package notify delivers terminal-state notifications for local runs.
// Webhooks are delivered by the launcher itself; email is a scheduler
// facility, so in local mode an email request is only logged.
package notify

import (
	"context"
	"fmt"
	"slices"
	"time"

	"resty.dev/v3"

	"github.com/vk/gridlaunch/internal/config"
	"github.com/vk/gridlaunch/internal/ctxlog"
)

// Event describes how a job ended. It is the webhook payload.
type Event struct {
	Job        string    `json:"job"`
	Trigger    string    `json:"trigger"`
	ExitCode   int       `json:"exit_code"`
	Duration   string    `json:"duration"`
	FinishedAt time.Time `json:"finished_at"`
}

// Notifier dispatches events to the destinations a job's notify block
// names.
type Notifier struct {
	client *resty.Client
}

// New creates a Notifier with a bounded delivery timeout.
func New() *Notifier {
	return &Notifier{
		client: resty.New().SetTimeout(10 * time.Second),
	}
}

// Close releases the underlying HTTP client.
func (n *Notifier) Close() error {
	return n.client.Close()
}

// Dispatch delivers the event if its trigger is subscribed to. A job
// without a notify block, or one not subscribed to this trigger, is a
// no-op. Delivery failures are reported but must not change the run's
// outcome; the caller only logs them.
func (n *Notifier) Dispatch(ctx context.Context, cfg *config.Notify, event *Event) error {
	if cfg == nil || !slices.Contains(cfg.On, event.Trigger) {
		return nil
	}
	logger := ctxlog.FromContext(ctx)

	if cfg.Email != "" {
		// No mailer in local mode. Email directives are honored by the
		// scheduler in sbatch mode via --mail-user.
		logger.Info("📧 Email notification requested; deferring to scheduler mail.", "email", cfg.Email, "trigger", event.Trigger)
	}

	if cfg.Webhook == "" {
		return nil
	}

	resp, err := n.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(event).
		Post(cfg.Webhook)
	if err != nil {
		return fmt.Errorf("webhook delivery to %q failed: %w", cfg.Webhook, err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook %q rejected event: %s", cfg.Webhook, resp.Status())
	}

	logger.Info("🔔 Webhook notified.", "webhook", cfg.Webhook, "trigger", event.Trigger)
	return nil
}
