// Package notify holds short-lived success and error notifications.
// Posting never blocks; a notification is dismissed automatically once its
// TTL has passed, whether or not anyone displayed it.
package notify

import (
	"fmt"
	"sync"
	"time"
)

type Kind int

const (
	Success Kind = iota
	Error
)

func (k Kind) String() string {
	if k == Error {
		return "error"
	}
	return "ok"
}

type Notification struct {
	ID        uint64
	Kind      Kind
	Message   string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether n should no longer be shown at now.
func (n Notification) Expired(now time.Time) bool {
	return !now.Before(n.ExpiresAt)
}

// Center stores notifications until they expire.
type Center struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	items  []Notification
	shown  map[uint64]bool
	nextID uint64
}

const DefaultTTL = 5 * time.Second

func NewCenter(ttl time.Duration) *Center {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Center{ttl: ttl, now: time.Now, shown: make(map[uint64]bool)}
}

func (c *Center) Success(format string, args ...any) Notification {
	return c.post(Success, fmt.Sprintf(format, args...))
}

func (c *Center) Error(format string, args ...any) Notification {
	return c.post(Error, fmt.Sprintf(format, args...))
}

func (c *Center) post(kind Kind, msg string) Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pruneLocked()

	c.nextID++
	now := c.now()
	n := Notification{
		ID:        c.nextID,
		Kind:      kind,
		Message:   msg,
		CreatedAt: now,
		ExpiresAt: now.Add(c.ttl),
	}
	c.items = append(c.items, n)
	return n
}

// Active returns the unexpired notifications, oldest first.
func (c *Center) Active() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pruneLocked()
	out := make([]Notification, len(c.items))
	copy(out, c.items)
	return out
}

// Unseen returns unexpired notifications not returned by a previous call
// and marks them as seen.
func (c *Center) Unseen() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pruneLocked()
	var out []Notification
	for _, n := range c.items {
		if c.shown[n.ID] {
			continue
		}
		c.shown[n.ID] = true
		out = append(out, n)
	}
	return out
}

// Dismiss removes a notification before it expires.
func (c *Center) Dismiss(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, n := range c.items {
		if n.ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			delete(c.shown, id)
			return
		}
	}
}

func (c *Center) pruneLocked() {
	now := c.now()
	kept := c.items[:0]
	for _, n := range c.items {
		if n.Expired(now) {
			delete(c.shown, n.ID)
			continue
		}
		kept = append(kept, n)
	}
	c.items = kept
}
