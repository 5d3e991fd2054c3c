package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/slack-go/slack"
)

const slackTimeout = 10 * time.Second

// Slack posts notifications to an incoming webhook.
type Slack struct {
	webhookURL string
	prefix     string
	timeout    time.Duration
	log        *slog.Logger
}

// NewSlack posts to webhookURL. Each message is prefixed with prefix when
// non-empty (for example the wallet name).
func NewSlack(webhookURL, prefix string, log *slog.Logger) *Slack {
	if log == nil {
		log = slog.Default()
	}
	return &Slack{webhookURL: webhookURL, prefix: prefix, timeout: slackTimeout, log: log}
}

func (s *Slack) NotifySubmit(msg string)  { s.post(KindSubmit, ":hourglass: "+msg) }
func (s *Slack) NotifySuccess(msg string) { s.post(KindSuccess, ":white_check_mark: "+msg) }
func (s *Slack) NotifyError(msg string)   { s.post(KindError, ":x: "+msg) }

func (s *Slack) post(kind Kind, text string) {
	if s.webhookURL == "" {
		return
	}
	if s.prefix != "" {
		text = "[" + s.prefix + "] " + text
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := slack.PostWebhookContext(ctx, s.webhookURL, &slack.WebhookMessage{Text: text}); err != nil {
		s.log.Warn("slack notification failed", "kind", kind.String(), "error", err)
	}
}
