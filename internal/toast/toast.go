// internal/toast/toast.go
// Package toast is the transient notification surface of the admin screen.
// Success toasts are throttled with a fixed minimum interval so fast
// consecutive drags collapse into a single notification; this is a UX
// throttle, not a correctness mechanism. Errors are never suppressed.
package toast

import (
	"sync"
	"time"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// Toast is one pending notification.
type Toast struct {
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

const (
	// Minimum interval between shown success toasts.
	defaultMinInterval = 1200 * time.Millisecond
	// Pending toasts not drained within this window are dropped.
	defaultDismissAfter = 6 * time.Second
)

// Center collects pending toasts until the client drains them.
type Center struct {
	mu           sync.Mutex
	pending      []Toast
	lastSuccess  time.Time
	minInterval  time.Duration
	dismissAfter time.Duration
	dismissTimer *time.Timer
	now          func() time.Time
}

func NewCenter() *Center {
	return &Center{
		minInterval:  defaultMinInterval,
		dismissAfter: defaultDismissAfter,
		now:          time.Now,
	}
}

// Success queues a success toast unless one was shown within the minimum
// interval. Reports whether the toast was queued.
func (c *Center) Success(message string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if !c.lastSuccess.IsZero() && now.Sub(c.lastSuccess) < c.minInterval {
		return false
	}
	c.lastSuccess = now
	c.push(Toast{Level: LevelSuccess, Message: message, At: now})
	return true
}

// Error queues an error toast. Never throttled.
func (c *Center) Error(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.push(Toast{Level: LevelError, Message: message, At: c.now()})
}

// Info queues an informational toast. Never throttled.
func (c *Center) Info(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.push(Toast{Level: LevelInfo, Message: message, At: c.now()})
}

// Drain returns and clears the pending toasts.
func (c *Center) Drain() []Toast {
	c.mu.Lock()
	defer c.mu.Unlock()
	drained := c.pending
	c.pending = nil
	c.stopTimerLocked()
	return drained
}

// Close clears any pending auto-dismiss timer. In-flight work elsewhere is
// never cancelled on teardown; the timer is the only thing torn down.
func (c *Center) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopTimerLocked()
}

func (c *Center) push(t Toast) {
	c.pending = append(c.pending, t)
	if c.dismissTimer == nil {
		c.dismissTimer = time.AfterFunc(c.dismissAfter, c.autoDismiss)
	}
}

func (c *Center) autoDismiss() {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := c.now().Add(-c.dismissAfter)
	kept := c.pending[:0]
	for _, t := range c.pending {
		if t.At.After(cutoff) {
			kept = append(kept, t)
		}
	}
	c.pending = kept
	c.dismissTimer = nil
	if len(c.pending) > 0 {
		c.dismissTimer = time.AfterFunc(c.dismissAfter, c.autoDismiss)
	}
}

func (c *Center) stopTimerLocked() {
	if c.dismissTimer != nil {
		c.dismissTimer.Stop()
		c.dismissTimer = nil
	}
}
