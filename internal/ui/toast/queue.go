// Package toast implements the timed notification queue every view reports
// through. Entries are independent: each Show appends one, and each is removed
// by its own expiry or by manual dismissal.
package toast

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

// Severity classifies an entry.
type Severity int

const (
	Info Severity = iota
	Success
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Success:
		return "success"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "info"
	}
}

// Entry is one visible notification. The pointer returned by Show is the
// handle callers use to remove it early.
type Entry struct {
	ID        string
	Message   string
	Severity  Severity
	TTL       time.Duration
	CreatedAt time.Time
}

// Timer schedules fn to run after d; tea.Tick in production.
type Timer func(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd

type expireMsg struct {
	id string
}

// Queue is the ordered, append-only set of visible entries.
type Queue struct {
	entries []*Entry
	timer   Timer
	now     func() time.Time
}

// Option configures a Queue.
type Option func(*Queue)

// WithTimer replaces tea.Tick, mainly so tests can fire expiry by hand.
func WithTimer(t Timer) Option {
	return func(q *Queue) { q.timer = t }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(q *Queue) { q.now = now }
}

// New creates an empty queue.
func New(opts ...Option) *Queue {
	q := &Queue{
		timer: tea.Tick,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Show appends an entry immediately. When ttl is positive the returned command
// schedules its removal; otherwise the entry stays until dismissed.
func (q *Queue) Show(message string, severity Severity, ttl time.Duration) (*Entry, tea.Cmd) {
	e := &Entry{
		ID:        uuid.NewString(),
		Message:   message,
		Severity:  severity,
		TTL:       ttl,
		CreatedAt: q.now(),
	}
	q.entries = append(q.entries, e)

	if ttl <= 0 {
		return e, nil
	}
	id := e.ID
	return e, q.timer(ttl, func(time.Time) tea.Msg {
		return expireMsg{id: id}
	})
}

// Success shows a success entry.
func (q *Queue) Success(message string, ttl time.Duration) (*Entry, tea.Cmd) {
	return q.Show(message, Success, ttl)
}

// Error shows an error entry.
func (q *Queue) Error(message string, ttl time.Duration) (*Entry, tea.Cmd) {
	return q.Show(message, Error, ttl)
}

// Warning shows a warning entry.
func (q *Queue) Warning(message string, ttl time.Duration) (*Entry, tea.Cmd) {
	return q.Show(message, Warning, ttl)
}

// Info shows an info entry.
func (q *Queue) Info(message string, ttl time.Duration) (*Entry, tea.Cmd) {
	return q.Show(message, Info, ttl)
}

// Remove drops the entry with the given id. It reports whether anything was
// removed, so a close click racing the expiry timer is harmless.
func (q *Queue) Remove(id string) bool {
	for i, e := range q.entries {
		if e.ID == id {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return true
		}
	}
	return false
}

// DismissLatest removes the newest entry.
func (q *Queue) DismissLatest() bool {
	if len(q.entries) == 0 {
		return false
	}
	return q.Remove(q.entries[len(q.entries)-1].ID)
}

// Entries returns the visible entries, oldest first.
func (q *Queue) Entries() []Entry {
	out := make([]Entry, len(q.entries))
	for i, e := range q.entries {
		out[i] = *e
	}
	return out
}

// Len returns the number of visible entries.
func (q *Queue) Len() int { return len(q.entries) }

// Has reports whether the entry is still visible.
func (q *Queue) Has(id string) bool {
	for _, e := range q.entries {
		if e.ID == id {
			return true
		}
	}
	return false
}

// Update handles expiry messages. It returns true when msg belonged to the queue.
func (q *Queue) Update(msg tea.Msg) bool {
	if m, ok := msg.(expireMsg); ok {
		q.Remove(m.id)
		return true
	}
	return false
}
