package telegram

import (
	"sync"
	"time"
)

// Dedup remembers keys for a TTL. Expired entries are pruned on access.
type Dedup struct {
	mu   sync.Mutex
	seen map[string]time.Time
	ttl  time.Duration
	now  func() time.Time
}

func NewDedup(ttl time.Duration) *Dedup {
	return NewDedupWithClock(ttl, time.Now)
}

func NewDedupWithClock(ttl time.Duration, now func() time.Time) *Dedup {
	if now == nil {
		now = time.Now
	}
	return &Dedup{
		seen: make(map[string]time.Time),
		ttl:  ttl,
		now:  now,
	}
}

// IsDuplicate returns true if key was seen within the TTL; otherwise it
// records key and returns false.
func (d *Dedup) IsDuplicate(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := d.now()
	d.prune(now)
	if _, ok := d.seen[key]; ok {
		return true
	}
	d.seen[key] = now
	return false
}

// Forget drops key so the next IsDuplicate reports it as new.
func (d *Dedup) Forget(key string) {
	d.mu.Lock()
	delete(d.seen, key)
	d.mu.Unlock()
}

func (d *Dedup) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.prune(d.now())
	return len(d.seen)
}

func (d *Dedup) prune(now time.Time) {
	cutoff := now.Add(-d.ttl)
	for key, t := range d.seen {
		if t.Before(cutoff) {
			delete(d.seen, key)
		}
	}
}
