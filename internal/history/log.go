package history

import (
	"time"

	"github.com/google/uuid"
)

// Capacity is the number of conversions the log retains.
const Capacity = 5

// Log keeps the most recent conversions, newest first.
// Entries beyond Capacity are evicted oldest first and are not kept anywhere else.
// A Log is not safe for concurrent use.
type Log struct {
	ring [Capacity]Entry
	head int // index of the newest entry
	size int
	now  func() time.Time
}

// Option configures a Log.
type Option func(*Log)

// WithClock sets the clock used to timestamp entries.
func WithClock(now func() time.Time) Option {
	return func(l *Log) {
		l.now = now
	}
}

// New creates an empty log.
func New(opts ...Option) *Log {
	l := &Log{now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Record freezes c into a new entry, prepends it and evicts the oldest entry
// once the log holds more than Capacity entries.
func (l *Log) Record(c Conversion) Entry {
	ts := l.now()
	// Creation times never increase from front to back, even if the clock steps back.
	if l.size > 0 && ts.Before(l.ring[l.head].Timestamp) {
		ts = l.ring[l.head].Timestamp
	}

	e := Entry{
		ID:         uuid.New(),
		Timestamp:  ts,
		Conversion: c,
	}

	l.head = (l.head - 1 + Capacity) % Capacity
	l.ring[l.head] = e
	if l.size < Capacity {
		l.size++
	}
	return e
}

// Len returns the number of retained entries.
func (l *Log) Len() int {
	return l.size
}

// Entries returns a copy of the retained entries, newest first.
func (l *Log) Entries() []Entry {
	out := make([]Entry, l.size)
	for i := range out {
		out[i] = l.ring[(l.head+i)%Capacity]
	}
	return out
}

// Rows returns the retained entries formatted for display, newest first.
func (l *Log) Rows() []Row {
	entries := l.Entries()
	rows := make([]Row, len(entries))
	for i, e := range entries {
		rows[i] = e.Row()
	}
	return rows
}
