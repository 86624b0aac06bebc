// Package report builds the on-demand inbox and directory reports.
package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"mailwatch/internal/graph"
	"mailwatch/internal/observability"
)

// MaxReportItems bounds the messages a single report fetches.
const MaxReportItems = 100

type MailReader interface {
	MessagesSince(ctx context.Context, since time.Time, limit int) ([]graph.MailItem, error)
	ConversationSenders(ctx context.Context, conversationID string) ([]string, error)
}

type Directory interface {
	Users(ctx context.Context) ([]graph.User, error)
	Presence(ctx context.Context, userID string) (graph.Presence, error)
}

type Summary struct {
	Since              time.Time
	Total              int
	WithAttachments    int
	WithoutAttachments int
	Items              []graph.MailItem
}

type UserStatus struct {
	Name        string
	Email       string
	Status      string
	Emoji       string
	Description string
}

type Reporter struct {
	mail MailReader
	dir  Directory
	now  func() time.Time
	log  *observability.Logger
}

// New builds a Reporter. dir may be nil when only mail reports are needed.
func New(mail MailReader, dir Directory, now func() time.Time, logger *slog.Logger) *Reporter {
	if now == nil {
		now = time.Now
	}
	return &Reporter{
		mail: mail,
		dir:  dir,
		now:  now,
		log:  observability.Component(logger, "report"),
	}
}

// StartOfDay is local midnight of t.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// TodaySummary counts messages received since local midnight.
func (r *Reporter) TodaySummary(ctx context.Context) (Summary, error) {
	since := StartOfDay(r.now())
	items, err := r.mail.MessagesSince(ctx, since, MaxReportItems)
	if err != nil {
		return Summary{Since: since}, fmt.Errorf("today summary: %w", err)
	}
	s := Summary{Since: since, Total: len(items), Items: items}
	for _, it := range items {
		if it.HasAttachments {
			s.WithAttachments++
		}
	}
	s.WithoutAttachments = s.Total - s.WithAttachments
	r.log.Info(ctx, "today summary", "total", s.Total, "with_attachments", s.WithAttachments)
	return s, nil
}

// Unanswered lists messages from the last days whose thread holds no message
// from anyone other than the original sender. Threads that cannot be read
// are skipped.
func (r *Reporter) Unanswered(ctx context.Context, days int) ([]graph.MailItem, error) {
	if days <= 0 {
		days = 7
	}
	since := r.now().AddDate(0, 0, -days)
	items, err := r.mail.MessagesSince(ctx, since, MaxReportItems)
	if err != nil {
		return nil, fmt.Errorf("unanswered: %w", err)
	}

	var out []graph.MailItem
	for _, it := range items {
		if it.ConversationID == "" {
			out = append(out, it)
			continue
		}
		senders, err := r.mail.ConversationSenders(ctx, it.ConversationID)
		if errors.Is(err, graph.ErrAuthExpired) {
			return nil, fmt.Errorf("unanswered: %w", err)
		}
		if err != nil {
			r.log.Warn(ctx, "could not read conversation", "message_id", it.ID, "error", err.Error())
			continue
		}
		if !hasReply(it.From, senders) {
			out = append(out, it)
		}
	}
	r.log.Info(ctx, "unanswered messages", "count", len(out), "days", days)
	return out, nil
}

func hasReply(from string, senders []string) bool {
	for _, s := range senders {
		if !strings.EqualFold(s, from) {
			return true
		}
	}
	return false
}

// UsersWithPresence lists up to limit users with their mapped presence.
// A presence lookup that fails reports the user as unknown.
func (r *Reporter) UsersWithPresence(ctx context.Context, limit int) ([]UserStatus, error) {
	if r.dir == nil {
		return nil, errors.New("users with presence: no directory configured")
	}
	if limit <= 0 {
		limit = 50
	}
	users, err := r.dir.Users(ctx)
	if err != nil {
		return nil, fmt.Errorf("users with presence: %w", err)
	}
	if len(users) > limit {
		users = users[:limit]
	}

	out := make([]UserStatus, 0, len(users))
	for _, u := range users {
		p, err := r.dir.Presence(ctx, u.ID)
		if errors.Is(err, graph.ErrAuthExpired) {
			return nil, fmt.Errorf("users with presence: %w", err)
		}
		if err != nil {
			r.log.Warn(ctx, "presence lookup failed", "user_id", u.ID, "error", err.Error())
			p = graph.Presence{Availability: graph.PresenceUnknown, Activity: graph.PresenceUnknown}
		}
		info := LookupPresence(p.Availability)
		out = append(out, UserStatus{
			Name:        u.DisplayName,
			Email:       u.Email,
			Status:      p.Availability,
			Emoji:       info.Emoji,
			Description: info.Description,
		})
	}
	return out, nil
}
