// Package heartbeat gates a less frequent secondary action behind a fixed
// interval that is independent of the main poll period.
package heartbeat

import (
	"context"
	"log/slog"
	"time"

	"mailwatch/internal/observability"
)

// Heartbeat fires at most once per interval. It is owned by a single loop
// and is not safe for concurrent use.
type Heartbeat struct {
	interval  time.Duration
	lastFired time.Time
	now       func() time.Time
	log       *observability.Logger
}

// New starts the interval at construction time. A nil clock means time.Now.
func New(interval time.Duration, clock func() time.Time, logger *slog.Logger) *Heartbeat {
	if clock == nil {
		clock = time.Now
	}
	h := &Heartbeat{
		interval:  interval,
		lastFired: clock(),
		now:       clock,
		log:       observability.Component(logger, "heartbeat"),
	}
	h.log.Info(context.Background(), "heartbeat configured", "interval", interval.String())
	return h
}

// Check reports whether a full interval has elapsed since the last fire and,
// if so, records now as the new fire time. A false result changes nothing.
func (h *Heartbeat) Check() bool {
	now := h.now()
	if now.Sub(h.lastFired) < h.interval {
		return false
	}
	elapsed := now.Sub(h.lastFired)
	if now.After(h.lastFired) {
		h.lastFired = now
	}
	h.log.Info(context.Background(), "heartbeat - agent alive", "elapsed", elapsed.Round(time.Second).String())
	observability.RecordHeartbeat(context.Background())
	return true
}

// Reset restarts the interval without firing.
func (h *Heartbeat) Reset() {
	if now := h.now(); now.After(h.lastFired) {
		h.lastFired = now
	}
	h.log.Debug(context.Background(), "heartbeat reset")
}

func (h *Heartbeat) Interval() time.Duration { return h.interval }

func (h *Heartbeat) LastFired() time.Time { return h.lastFired }
