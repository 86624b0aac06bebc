package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"mailwatch/internal/observability"
	"mailwatch/internal/triage"
)

type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Alerter pushes high-urgency results to a single chat, once per mail.
type Alerter struct {
	sender Sender
	chatID int64
	dedup  *Dedup
	log    *observability.Logger
}

func NewAlerter(sender Sender, chatID int64, dedup *Dedup, logger *slog.Logger) *Alerter {
	return &Alerter{
		sender: sender,
		chatID: chatID,
		dedup:  dedup,
		log:    observability.Component(logger, "telegram"),
	}
}

func (a *Alerter) Notify(ctx context.Context, res triage.Result) error {
	key := alertKey(res)
	if a.dedup != nil && a.dedup.IsDuplicate(key) {
		a.log.Debug(ctx, "alert suppressed", "message_id", res.Item.ID)
		return nil
	}
	if err := a.sender.SendMessage(ctx, a.chatID, FormatAlert(res)); err != nil {
		if a.dedup != nil {
			a.dedup.Forget(key)
		}
		return fmt.Errorf("send alert: %w", err)
	}
	a.log.Info(ctx, "alert sent", "message_id", res.Item.ID, "chat_id", a.chatID)
	return nil
}

func alertKey(res triage.Result) string {
	if res.Item.ID != "" {
		return res.Item.ID
	}
	return res.Item.From + "|" + res.Item.Subject + "|" + res.Item.ReceivedAt.Format(time.RFC3339)
}

// FormatAlert renders a result as a Markdown message.
func FormatAlert(res triage.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s *Email urgente* (%s)\n", res.Urgency.Marker(), res.Urgency)
	fmt.Fprintf(&b, "*De:* %s\n", res.Item.From)
	fmt.Fprintf(&b, "*Assunto:* %s\n", res.Item.Subject)
	if !res.Item.ReceivedAt.IsZero() {
		fmt.Fprintf(&b, "*Recebido:* %s\n", res.Item.ReceivedAt.Format("02/01/2006 15:04"))
	}
	if preview := strings.TrimSpace(res.Item.BodyPreview); preview != "" {
		fmt.Fprintf(&b, "\n%s\n", observability.Truncate(preview, 300))
	}
	if res.Suggestion != "" {
		fmt.Fprintf(&b, "\n*Sugestão de resposta:*\n%s\n", res.Suggestion)
	}
	return strings.TrimRight(b.String(), "\n")
}
