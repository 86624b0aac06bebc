package heartbeat

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
}

func TestCheckBeforeInterval(t *testing.T) {
	clock := newClock()
	h := New(20*time.Minute, clock.Now, nil)
	start := h.LastFired()

	for _, step := range []time.Duration{0, time.Minute, 18 * time.Minute} {
		clock.Advance(step)
		if h.Check() {
			t.Fatalf("Check fired %v after start", clock.t.Sub(start))
		}
	}
	if !h.LastFired().Equal(start) {
		t.Fatal("false Check must not move lastFired")
	}
}

func TestCheckFiresOncePerInterval(t *testing.T) {
	clock := newClock()
	h := New(20*time.Minute, clock.Now, nil)

	clock.Advance(20 * time.Minute)
	if !h.Check() {
		t.Fatal("expected fire exactly at the interval boundary")
	}
	if !h.LastFired().Equal(clock.t) {
		t.Fatalf("lastFired = %v, want %v", h.LastFired(), clock.t)
	}
	if h.Check() {
		t.Fatal("second Check at the same instant must not fire")
	}
	clock.Advance(19*time.Minute + 59*time.Second)
	if h.Check() {
		t.Fatal("fired before the next interval elapsed")
	}
	clock.Advance(time.Second)
	if !h.Check() {
		t.Fatal("expected second fire")
	}
}

func TestCheckAfterLongGapFiresOnce(t *testing.T) {
	clock := newClock()
	h := New(time.Minute, clock.Now, nil)
	clock.Advance(10 * time.Minute)

	fires := 0
	for i := 0; i < 5; i++ {
		if h.Check() {
			fires++
		}
	}
	if fires != 1 {
		t.Fatalf("fires = %d, want 1", fires)
	}
}

func TestResetSuppressesImminentFire(t *testing.T) {
	clock := newClock()
	h := New(20*time.Minute, clock.Now, nil)

	clock.Advance(25 * time.Minute)
	h.Reset()
	if h.Check() {
		t.Fatal("Check right after Reset must not fire")
	}
	clock.Advance(20 * time.Minute)
	if !h.Check() {
		t.Fatal("expected fire one interval after Reset")
	}
}

func TestLastFiredNeverMovesBackwards(t *testing.T) {
	clock := newClock()
	h := New(time.Minute, clock.Now, nil)
	before := h.LastFired()

	clock.Advance(-time.Hour)
	h.Reset()
	if h.Check() {
		t.Fatal("clock going backwards must not fire")
	}
	if h.LastFired().Before(before) {
		t.Fatal("lastFired moved backwards")
	}
}

func TestZeroIntervalFiresEveryCheck(t *testing.T) {
	clock := newClock()
	h := New(0, clock.Now, nil)
	if !h.Check() || !h.Check() {
		t.Fatal("zero interval should fire on every check")
	}
	if h.Interval() != 0 {
		t.Fatalf("interval = %v", h.Interval())
	}
}
