package playback

import (
	"errors"
	"fmt"
	"time"
)

// State enumerates the engine phases.
type State string

const (
	// StateIdle means no playback is running and Start is allowed.
	StateIdle State = "idle"
	// StatePlaying means scripted entries are still being replayed.
	StatePlaying State = "playing"
	// StateFetching means the script finished and the one real backend call
	// is in flight.
	StateFetching State = "fetching"
)

// ErrBusy is returned by Start while a playback is already running. The
// engine rejects re-entry itself; the dashboard additionally disables the
// trigger key, but callers must not rely on that alone.
var ErrBusy = errors.New("playback: demo already running")

// ErrNotPlaying is returned by Advance outside the Playing state.
var ErrNotPlaying = errors.New("playback: no demo in progress")

// Advance reports the outcome of one step transition.
type Advance struct {
	// Entry is the feed entry that was just appended.
	Entry Entry

	// Next is the pause before the following entry. Meaningful only while
	// the engine remains in StatePlaying.
	Next time.Duration

	// Fetch is true once the script is exhausted: the caller must now run
	// the single demo-workflow fetch and call Complete with its outcome.
	Fetch bool
}

// Engine replays a Script into a Feed one step at a time. It owns no timers:
// Start and Advance return the delay the driver should wait before the next
// transition, which keeps the machine deterministic under test clocks.
//
// State flow: Idle -> Playing(step 1..N) -> Fetching -> Idle. There is no
// cancellation; a started playback always runs to completion.
type Engine struct {
	script Script
	feed   *Feed
	clock  func() time.Time

	state   State
	pos     int
	lastErr error
}

// Option customizes engine construction.
type Option func(*Engine)

// WithClock injects the timestamp source for feed entries. Used by tests.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// NewEngine binds a script to the feed it replays into.
func NewEngine(feed *Feed, script Script, opts ...Option) (*Engine, error) {
	if feed == nil {
		return nil, fmt.Errorf("playback: feed is required")
	}
	if len(script) == 0 {
		return nil, fmt.Errorf("playback: script is empty")
	}
	e := &Engine{
		script: append(Script(nil), script...),
		feed:   feed,
		clock:  func() time.Time { return time.Now().UTC() },
		state:  StateIdle,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// State reports the current phase.
func (e *Engine) State() State {
	return e.state
}

// Busy reports whether a playback is running in any phase.
func (e *Engine) Busy() bool {
	return e.state != StateIdle
}

// Steps returns the script length.
func (e *Engine) Steps() int {
	return len(e.script)
}

// Position returns how many scripted entries have been appended so far.
func (e *Engine) Position() int {
	return e.pos
}

// LastError returns the error recorded by the most recent Complete, nil when
// the final fetch succeeded.
func (e *Engine) LastError() error {
	return e.lastErr
}

// Start arms a new playback and returns the pause before the first entry.
// Starting while not Idle is rejected with ErrBusy; no state changes.
func (e *Engine) Start() (time.Duration, error) {
	if e.state != StateIdle {
		return 0, ErrBusy
	}
	e.state = StatePlaying
	e.pos = 0
	e.lastErr = nil
	return e.script[0].Delay, nil
}

// Advance appends the pending scripted entry and reports what comes next:
// either another pause (still Playing) or Fetch=true (now Fetching).
func (e *Engine) Advance() (Advance, error) {
	if e.state != StatePlaying {
		return Advance{}, ErrNotPlaying
	}
	step := e.script[e.pos]
	entry := Entry{
		Time:    e.clock(),
		Agent:   step.Agent,
		Message: step.Message,
		Kind:    step.Kind,
	}
	e.feed.Append(entry)
	e.pos++

	if e.pos >= len(e.script) {
		e.state = StateFetching
		return Advance{Entry: entry, Fetch: true}, nil
	}
	return Advance{Entry: entry, Next: e.script[e.pos].Delay}, nil
}

// Complete closes out the Fetching phase and returns the engine to Idle
// unconditionally, recording the fetch outcome. Calling it outside Fetching
// is a no-op so stray completions cannot corrupt a later run.
func (e *Engine) Complete(err error) {
	if e.state != StateFetching {
		return
	}
	e.lastErr = err
	e.state = StateIdle
}
