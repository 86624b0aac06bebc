// Package monitor runs the polling loop: unread mail every cycle, upcoming
// calendar events whenever the heartbeat fires.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"mailwatch/internal/graph"
	"mailwatch/internal/observability"
	"mailwatch/internal/triage"
)

type MailSource interface {
	UnreadMessages(ctx context.Context, limit int) ([]graph.MailItem, error)
	MarkAsRead(ctx context.Context, id string) error
}

type CalendarSource interface {
	UpcomingEvents(ctx context.Context, window time.Duration, limit int) ([]graph.CalendarEvent, error)
}

type Processor interface {
	Process(ctx context.Context, item graph.MailItem) triage.Result
}

// Gate decides whether the secondary check runs this cycle.
type Gate interface {
	Check() bool
}

type State int32

const (
	Idle State = iota
	Running
	Stopped
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	}
	return "idle"
}

var ErrAlreadyStopped = errors.New("monitor: already stopped")

type Config struct {
	CheckInterval time.Duration
	MaxItems      int
	EventWindow   time.Duration
	EventLimit    int
	MarkAsRead    bool
}

func (c Config) withDefaults() Config {
	if c.CheckInterval <= 0 {
		c.CheckInterval = 30 * time.Second
	}
	if c.MaxItems <= 0 {
		c.MaxItems = 5
	}
	if c.EventWindow <= 0 {
		c.EventWindow = 24 * time.Hour
	}
	if c.EventLimit <= 0 {
		c.EventLimit = 3
	}
	return c
}

type Monitor struct {
	mail     MailSource
	calendar CalendarSource
	proc     Processor
	gate     Gate
	cfg      Config
	sleep    graph.Sleeper
	onResult func(context.Context, triage.Result)
	onEvents func(context.Context, []graph.CalendarEvent)
	state    atomic.Int32
	log      *observability.Logger
}

type Option func(*Monitor)

func WithSleeper(s graph.Sleeper) Option {
	return func(m *Monitor) { m.sleep = s }
}

// WithResultHandler is called with every triaged item.
func WithResultHandler(fn func(context.Context, triage.Result)) Option {
	return func(m *Monitor) { m.onResult = fn }
}

// WithEventsHandler is called with the events of every secondary check.
func WithEventsHandler(fn func(context.Context, []graph.CalendarEvent)) Option {
	return func(m *Monitor) { m.onEvents = fn }
}

func New(mail MailSource, calendar CalendarSource, proc Processor, gate Gate, cfg Config, logger *slog.Logger, opts ...Option) *Monitor {
	m := &Monitor{
		mail:     mail,
		calendar: calendar,
		proc:     proc,
		gate:     gate,
		cfg:      cfg.withDefaults(),
		sleep:    graph.Sleep,
		log:      observability.Component(logger, "monitor"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Monitor) State() State {
	return State(m.state.Load())
}

// Run loops until ctx is cancelled or a credential error escapes a tick.
// Cancellation returns nil; an expired credential returns an error wrapping
// graph.ErrAuthExpired.
func (m *Monitor) Run(ctx context.Context) error {
	if m.State() == Stopped {
		return ErrAlreadyStopped
	}
	m.state.Store(int32(Running))
	m.log.Info(ctx, "agent started", "check_interval", m.cfg.CheckInterval.String())

	for {
		if ctx.Err() != nil {
			m.stop(ctx, "cancelled")
			return nil
		}
		if err := m.Tick(ctx); err != nil {
			if ctx.Err() != nil {
				m.stop(ctx, "cancelled")
				return nil
			}
			m.log.Error(ctx, "fatal error in main loop", "error", err.Error())
			m.stop(ctx, "fatal")
			return fmt.Errorf("monitor: %w", err)
		}
		if err := m.sleep(ctx, m.cfg.CheckInterval); err != nil {
			m.stop(ctx, "cancelled")
			return nil
		}
	}
}

func (m *Monitor) stop(ctx context.Context, reason string) {
	m.state.Store(int32(Stopped))
	m.log.Info(context.WithoutCancel(ctx), "agent stopped", "reason", reason)
}

// Tick runs one cycle. Both checks are attempted unless ctx is cancelled
// during the first; only errors that a retry cannot fix are returned.
func (m *Monitor) Tick(ctx context.Context) error {
	ctx = observability.WithCycleID(ctx, observability.NewCycleID())
	ctx, span := observability.StartSpan(ctx, "monitor.tick")
	defer span.End()
	start := time.Now()

	var errs []error
	if err := m.isolate(ctx, "check mail", m.checkMail); err != nil {
		errs = append(errs, err)
	}
	if ctx.Err() != nil {
		return errors.Join(errs...)
	}
	if m.gate != nil && m.gate.Check() {
		span.SetAttributes(attribute.Bool("heartbeat", true))
		if err := m.isolate(ctx, "check calendar", m.checkCalendar); err != nil {
			errs = append(errs, err)
		}
	}

	err := errors.Join(errs...)
	observability.RecordCycle(ctx, float64(time.Since(start).Milliseconds()), err)
	return err
}

// isolate swallows everything from a check except credential errors.
func (m *Monitor) isolate(ctx context.Context, what string, check func(context.Context) error) error {
	err := observability.Recover(ctx, m.log, what, func() error { return check(ctx) })
	switch {
	case err == nil:
		return nil
	case errors.Is(err, graph.ErrAuthExpired):
		return err
	case ctx.Err() != nil:
		return nil
	default:
		m.log.Error(ctx, what+" failed", "error", err.Error())
		return nil
	}
}

func (m *Monitor) checkMail(ctx context.Context) error {
	items, err := m.mail.UnreadMessages(ctx, m.cfg.MaxItems)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		m.log.Debug(ctx, "no new email")
		return nil
	}
	m.log.Info(ctx, "unread email found", "count", len(items))

	for i, item := range items {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err := observability.Recover(ctx, m.log, "process email", func() error {
			return m.processItem(ctx, item)
		})
		if err == nil {
			continue
		}
		if errors.Is(err, graph.ErrAuthExpired) {
			return err
		}
		observability.RecordItem(ctx, "unknown", err)
		m.log.Error(ctx, "error processing email", "index", i, "message_id", item.ID, "error", err.Error())
	}
	return nil
}

func (m *Monitor) processItem(ctx context.Context, item graph.MailItem) error {
	m.log.Info(ctx, "new email",
		"from", item.From,
		"subject", item.Subject,
		"received", item.ReceivedAt.Format(time.RFC3339),
	)

	res := m.proc.Process(ctx, item)
	observability.RecordItem(ctx, string(res.Urgency), nil)
	attrs := []any{"message_id", item.ID, "urgency", string(res.Urgency), "marker", res.Urgency.Marker()}
	if res.Suggestion != "" {
		attrs = append(attrs, "suggestion", res.Suggestion)
	}
	m.log.Info(ctx, "email triaged", attrs...)
	if m.onResult != nil {
		m.onResult(ctx, res)
	}

	if m.cfg.MarkAsRead && item.ID != "" {
		if err := m.mail.MarkAsRead(ctx, item.ID); err != nil {
			return err
		}
	}
	return nil
}

func (m *Monitor) checkCalendar(ctx context.Context) error {
	events, err := m.calendar.UpcomingEvents(ctx, m.cfg.EventWindow, m.cfg.EventLimit)
	if err != nil {
		return err
	}
	if m.onEvents != nil {
		m.onEvents(ctx, events)
	}
	if len(events) == 0 {
		m.log.Debug(ctx, "no upcoming events")
		return nil
	}
	m.log.Info(ctx, "upcoming events", "count", len(events), "window", m.cfg.EventWindow.String())
	for _, ev := range events {
		where := ev.Location
		if ev.IsOnlineMeeting {
			where = "online"
		}
		m.log.Info(ctx, "event", "subject", ev.Subject, "start", ev.Start.Format(time.RFC3339), "location", where)
	}
	return nil
}
