// Package playback drives the scripted workflow demo: a fixed sequence of
// activity-feed entries replayed with per-step delays, followed by exactly one
// real backend fetch. The engine is a plain state machine; the caller supplies
// the timing, so tests never wait on a wall clock.
package playback

import (
	"sync"
	"time"
)

// Kind classifies a feed entry for rendering.
type Kind string

const (
	KindInfo    Kind = "info"
	KindAction  Kind = "action"
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// MaxEntries bounds the feed. Once full, the oldest entry falls off for each
// new one appended.
const MaxEntries = 50

// Entry is one line of the activity feed.
type Entry struct {
	Time    time.Time
	Agent   string
	Message string
	Kind    Kind
}

// Feed is the bounded, append-only activity log shown in the dashboard.
// Entries keep strict insertion order; eviction is FIFO beyond MaxEntries.
type Feed struct {
	mu      sync.Mutex
	max     int
	entries []Entry
}

// NewFeed returns an empty feed capped at max entries. A max of zero or less
// falls back to MaxEntries.
func NewFeed(max int) *Feed {
	if max <= 0 {
		max = MaxEntries
	}
	return &Feed{max: max}
}

// Append adds one entry, evicting the oldest when the cap is exceeded.
func (f *Feed) Append(e Entry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, e)
	if len(f.entries) > f.max {
		f.entries = f.entries[len(f.entries)-f.max:]
	}
}

// Entries returns a copy of the current feed, oldest first.
func (f *Feed) Entries() []Entry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Entry(nil), f.entries...)
}

// Len reports the number of retained entries.
func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}
