package api

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Well-known slot keys. Slots with one of these keys decode into the typed
// Snapshot fields; any other key lands in Snapshot.Raw untouched.
const (
	SlotService    = "service"
	SlotAgents     = "agents"
	SlotStats      = "stats"
	SlotPipeline   = "pipeline"
	SlotFunnel     = "funnel"
	SlotJobs       = "jobs"
	SlotScreening  = "screening"
	SlotSources    = "sources"
	SlotCompliance = "compliance"
)

// Slot names one piece of dashboard state and the GET endpoint that fills it.
type Slot struct {
	Key  string
	Path string
}

// Snapshot is one coherent batch of backend state. A snapshot is immutable
// once built: refreshes produce a new value that replaces the old one
// wholesale, never a field-by-field merge.
type Snapshot struct {
	Service    *ServiceInfo
	Agents     *AgentsIndex
	Stats      *DashboardStats
	Pipeline   *PipelineSummary
	Funnel     *FunnelReport
	Jobs       *JobsList
	Screening  *ScreeningQueue
	Sources    *SourceSummary
	Compliance *ComplianceReport

	// Raw holds slots without a typed model, keyed by slot key. The robotics
	// profile renders these verbatim.
	Raw map[string]RawPayload

	FetchedAt time.Time
}

// QueueLength reports the human-review queue depth, zero when the screening
// slot is absent. It gates the Review tab.
func (s *Snapshot) QueueLength() int {
	if s == nil || s.Screening == nil {
		return 0
	}
	return s.Screening.QueueLength
}

// RawSlot returns the raw payload for a slot key, nil when absent.
func (s *Snapshot) RawSlot(key string) RawPayload {
	if s == nil {
		return nil
	}
	return s.Raw[key]
}

// FetchSnapshot issues one GET per slot concurrently and joins them as a
// single unit: if any request fails, the whole batch fails and no snapshot is
// returned, leaving whatever the caller held before untouched. A snapshot is
// either complete or absent, never mixed-age.
func (c *Client) FetchSnapshot(ctx context.Context, slots []Slot) (*Snapshot, error) {
	if len(slots) == 0 {
		return nil, fmt.Errorf("api: snapshot needs at least one slot")
	}

	bodies := make([]json.RawMessage, len(slots))
	group, ctx := errgroup.WithContext(ctx)
	for i, slot := range slots {
		i, slot := i, slot
		group.Go(func() error {
			raw, err := c.do(ctx, "snapshot."+slot.Key, "GET", slot.Path, nil)
			if err != nil {
				return err
			}
			bodies[i] = raw
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	snap := &Snapshot{FetchedAt: time.Now().UTC()}
	for i, slot := range slots {
		if err := snap.apply(slot.Key, bodies[i]); err != nil {
			return nil, err
		}
	}
	return snap, nil
}

// apply decodes one slot body into its destination. A shape mismatch counts
// as a batch failure, same as a non-JSON body.
func (s *Snapshot) apply(key string, body json.RawMessage) error {
	decode := func(out any) error {
		if err := json.Unmarshal(body, out); err != nil {
			return newAPIError("snapshot."+key, 0, fmt.Errorf("%w: %v", ErrBadPayload, err))
		}
		return nil
	}
	switch key {
	case SlotService:
		s.Service = &ServiceInfo{}
		return decode(s.Service)
	case SlotAgents:
		s.Agents = &AgentsIndex{}
		return decode(s.Agents)
	case SlotStats:
		s.Stats = &DashboardStats{}
		return decode(s.Stats)
	case SlotPipeline:
		s.Pipeline = &PipelineSummary{}
		return decode(s.Pipeline)
	case SlotFunnel:
		s.Funnel = &FunnelReport{}
		return decode(s.Funnel)
	case SlotJobs:
		s.Jobs = &JobsList{}
		return decode(s.Jobs)
	case SlotScreening:
		s.Screening = &ScreeningQueue{}
		return decode(s.Screening)
	case SlotSources:
		s.Sources = &SourceSummary{}
		return decode(s.Sources)
	case SlotCompliance:
		s.Compliance = &ComplianceReport{}
		return decode(s.Compliance)
	default:
		if s.Raw == nil {
			s.Raw = make(map[string]RawPayload)
		}
		s.Raw[key] = RawPayload(body)
		return nil
	}
}

// SnapshotFetcher wraps FetchSnapshot with a fixed slot plan so consumers
// hold one value instead of a (client, plan) pair.
type SnapshotFetcher struct {
	client *Client
	slots  []Slot

	mu      sync.Mutex
	loading bool
}

// NewSnapshotFetcher binds a client to a slot plan.
func NewSnapshotFetcher(client *Client, slots []Slot) *SnapshotFetcher {
	return &SnapshotFetcher{client: client, slots: append([]Slot(nil), slots...)}
}

// Slots returns a copy of the fetch plan.
func (f *SnapshotFetcher) Slots() []Slot {
	return append([]Slot(nil), f.slots...)
}

// Loading reports whether a batch is in flight. There is exactly one loading
// flag per fetcher; it flips false when the batch completes regardless of
// outcome.
func (f *SnapshotFetcher) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

// Fetch runs one batch. Calling it again with identical backend responses
// yields an identical snapshot; each call fully replaces the previous value.
func (f *SnapshotFetcher) Fetch(ctx context.Context) (*Snapshot, error) {
	f.mu.Lock()
	f.loading = true
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.loading = false
		f.mu.Unlock()
	}()
	return f.client.FetchSnapshot(ctx, f.slots)
}
