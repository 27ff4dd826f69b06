package playback

import (
	"errors"
	"testing"
	"time"
)

func testClock() func() time.Time {
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	n := 0
	return func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
}

// runScript drives a full playback without waiting on wall time and returns
// the delays the engine asked for along the way.
func runScript(t *testing.T, e *Engine) []time.Duration {
	t.Helper()

	first, err := e.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	delays := []time.Duration{first}
	for {
		adv, err := e.Advance()
		if err != nil {
			t.Fatalf("Advance at position %d: %v", e.Position(), err)
		}
		if adv.Fetch {
			break
		}
		delays = append(delays, adv.Next)
	}
	return delays
}

func TestEngineStateTransitions(t *testing.T) {
	feed := NewFeed(MaxEntries)
	e, err := NewEngine(feed, DefaultScript(), WithClock(testClock()))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	if e.State() != StateIdle || e.Busy() {
		t.Fatalf("new engine should be idle, got %s", e.State())
	}

	if _, err := e.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if e.State() != StatePlaying {
		t.Fatalf("expected playing after Start, got %s", e.State())
	}

	steps := e.Steps()
	for i := 0; i < steps; i++ {
		adv, err := e.Advance()
		if err != nil {
			t.Fatalf("Advance %d: %v", i, err)
		}
		last := i == steps-1
		if adv.Fetch != last {
			t.Fatalf("Advance %d: Fetch=%v, want %v", i, adv.Fetch, last)
		}
	}
	if e.State() != StateFetching {
		t.Fatalf("expected fetching after script end, got %s", e.State())
	}
	if _, err := e.Advance(); !errors.Is(err, ErrNotPlaying) {
		t.Fatalf("Advance while fetching: err = %v, want ErrNotPlaying", err)
	}

	e.Complete(nil)
	if e.State() != StateIdle || e.Busy() {
		t.Fatalf("expected idle after Complete, got %s", e.State())
	}
	if e.LastError() != nil {
		t.Fatalf("LastError = %v, want nil", e.LastError())
	}
}

func TestEngineCompleteRecordsFailureAndReturnsIdle(t *testing.T) {
	feed := NewFeed(MaxEntries)
	e, err := NewEngine(feed, Script{{Agent: "orchestrator", Message: "go", Kind: KindInfo, Delay: time.Millisecond}}, WithClock(testClock()))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	runScript(t, e)

	fetchErr := errors.New("backend down")
	e.Complete(fetchErr)
	if e.State() != StateIdle {
		t.Fatalf("Complete with error must still return to idle, got %s", e.State())
	}
	if !errors.Is(e.LastError(), fetchErr) {
		t.Fatalf("LastError = %v, want %v", e.LastError(), fetchErr)
	}

	// A failed run must not block the next one.
	if _, err := e.Start(); err != nil {
		t.Fatalf("Start after failed run: %v", err)
	}
}

func TestEngineRejectsConcurrentStart(t *testing.T) {
	feed := NewFeed(MaxEntries)
	e, err := NewEngine(feed, DefaultScript(), WithClock(testClock()))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	if _, err := e.Start(); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	if _, err := e.Start(); !errors.Is(err, ErrBusy) {
		t.Fatalf("Start while playing: err = %v, want ErrBusy", err)
	}
	if _, err := e.Advance(); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	before := feed.Len()

	// Still busy mid-script and during the trailing fetch.
	if _, err := e.Start(); !errors.Is(err, ErrBusy) {
		t.Fatalf("Start mid-script: err = %v, want ErrBusy", err)
	}
	for {
		adv, err := e.Advance()
		if err != nil {
			t.Fatalf("Advance: %v", err)
		}
		if adv.Fetch {
			break
		}
	}
	if _, err := e.Start(); !errors.Is(err, ErrBusy) {
		t.Fatalf("Start while fetching: err = %v, want ErrBusy", err)
	}
	if feed.Len() != e.Steps() {
		t.Fatalf("rejected starts must not append entries: had %d mid-run, ended with %d, script has %d", before, feed.Len(), e.Steps())
	}
}

func TestEngineReplayIsDeterministic(t *testing.T) {
	type tuple struct {
		agent, message string
		kind           Kind
	}
	capture := func() []tuple {
		feed := NewFeed(MaxEntries)
		e, err := NewEngine(feed, DefaultScript(), WithClock(testClock()))
		if err != nil {
			t.Fatalf("NewEngine: %v", err)
		}
		runScript(t, e)
		e.Complete(nil)

		var out []tuple
		for _, entry := range feed.Entries() {
			out = append(out, tuple{entry.Agent, entry.Message, entry.Kind})
		}
		return out
	}

	first := capture()
	second := capture()
	if len(first) != len(second) {
		t.Fatalf("replay lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("step %d differs between runs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestEngineDelaysFollowScript(t *testing.T) {
	script := Script{
		{Agent: "orchestrator", Message: "a", Kind: KindInfo, Delay: 400 * time.Millisecond},
		{Agent: "sourcer", Message: "b", Kind: KindAction, Delay: 700 * time.Millisecond},
		{Agent: "screener", Message: "c", Kind: KindSuccess, Delay: 250 * time.Millisecond},
	}
	feed := NewFeed(MaxEntries)
	e, err := NewEngine(feed, script, WithClock(testClock()))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	delays := runScript(t, e)
	want := []time.Duration{400 * time.Millisecond, 700 * time.Millisecond, 250 * time.Millisecond}
	if len(delays) != len(want) {
		t.Fatalf("expected %d delays, got %d", len(want), len(delays))
	}
	for i := range want {
		if delays[i] != want[i] {
			t.Errorf("delay %d = %v, want %v", i, delays[i], want[i])
		}
	}
}

func TestEngineEntriesStampedByInjectedClock(t *testing.T) {
	fixed := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	feed := NewFeed(MaxEntries)
	e, err := NewEngine(feed, DefaultScript(), WithClock(func() time.Time { return fixed }))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	runScript(t, e)
	for i, entry := range feed.Entries() {
		if !entry.Time.Equal(fixed) {
			t.Fatalf("entry %d timestamp = %v, want %v", i, entry.Time, fixed)
		}
	}
}

func TestEngineCompleteOutsideFetchingIsNoop(t *testing.T) {
	feed := NewFeed(MaxEntries)
	e, err := NewEngine(feed, DefaultScript(), WithClock(testClock()))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	e.Complete(errors.New("stray"))
	if e.State() != StateIdle || e.LastError() != nil {
		t.Fatalf("Complete while idle must be a no-op: state=%s err=%v", e.State(), e.LastError())
	}

	if _, err := e.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	e.Complete(errors.New("stray"))
	if e.State() != StatePlaying {
		t.Fatalf("Complete while playing must be a no-op, got %s", e.State())
	}
}

func TestDefaultScriptShape(t *testing.T) {
	script := DefaultScript()
	if len(script) == 0 {
		t.Fatal("default script is empty")
	}
	for i, step := range script {
		if step.Agent == "" || step.Message == "" {
			t.Errorf("step %d missing agent or message: %+v", i, step)
		}
		if step.Delay <= 0 {
			t.Errorf("step %d has non-positive delay %v", i, step.Delay)
		}
		switch step.Kind {
		case KindInfo, KindAction, KindSuccess, KindError:
		default:
			t.Errorf("step %d has unknown kind %q", i, step.Kind)
		}
	}
	if script[len(script)-1].Kind != KindSuccess {
		t.Errorf("default script should end on a success entry, got %q", script[len(script)-1].Kind)
	}
}
