package reservation

import (
	"sort"
	"sync"
	"time"
)

// Cache is a read-mostly local copy of reservations used for the
// advisory conflict check. It holds the list from the last fetch plus
// optimistic soft-cancel tags that hide entries until the backend
// confirms (Confirm) or refuses (Revert) the cancellation.
//
// Staleness is accepted: the backend re-checks every submission.
type Cache struct {
	mu      sync.RWMutex
	entries []Entry
	pending map[int64]bool
	fetched time.Time
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{pending: make(map[int64]bool)}
}

// Replace installs a freshly fetched list. Soft-cancel tags survive only
// for ids the server still reports as active, since those cancellations
// are still in flight.
func (c *Cache) Replace(entries []Entry, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = append(c.entries[:0:0], entries...)
	active := make(map[int64]bool, len(entries))
	for _, e := range entries {
		if !e.Cancelled {
			active[e.ID] = true
		}
	}
	for id := range c.pending {
		if !active[id] {
			delete(c.pending, id)
		}
	}
	c.fetched = at
}

// Add records a reservation created by this kiosk.
func (c *Cache) Add(e Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, cur := range c.entries {
		if cur.ID == e.ID {
			c.entries[i] = e
			return
		}
	}
	c.entries = append(c.entries, e)
}

// SoftCancel hides ids from conflict checks until confirmed or reverted.
func (c *Cache) SoftCancel(ids ...int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		c.pending[id] = true
	}
}

// Confirm drops a reservation the backend has cancelled.
func (c *Cache) Confirm(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, id)
	for i, e := range c.entries {
		if e.ID == id {
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			return
		}
	}
}

// Revert restores a reservation whose cancellation failed.
func (c *Cache) Revert(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, id)
}

// Pending reports whether id is soft-cancelled.
func (c *Cache) Pending(id int64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pending[id]
}

// Active returns entries that are neither cancelled nor soft-cancelled.
func (c *Cache) Active() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		if e.Cancelled || c.pending[e.ID] {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Upcoming returns active entries ending after now, sorted by date then
// start time.
func (c *Cache) Upcoming(now time.Time) []Entry {
	today := now.Format(DateLayout)
	clock := ClockOf(now)

	var out []Entry
	for _, e := range c.Active() {
		if e.Date < today || (e.Date == today && e.End <= clock) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Start < out[j].Start
	})
	return out
}

// FetchedAt returns when the cache was last replaced.
func (c *Cache) FetchedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fetched
}
