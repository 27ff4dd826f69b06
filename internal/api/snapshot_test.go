package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync/atomic"
	"testing"
)

func snapshotTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	writeJSON := func(w http.ResponseWriter, body string) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, `{"service":"Talent Command Center","version":"2.0.0","status":"operational"}`)
	})
	mux.HandleFunc("/api/agents", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{
			"orchestrator":{"name":"orchestrator","status":"running","enabled":true},
			"agents":{
				"sourcer":{"name":"sourcer","status":"idle","enabled":true,"handlers":["search_candidates"]},
				"screener":{"name":"screener","status":"idle","enabled":true}
			},
			"workflows":["full_hiring_pipeline"]
		}`)
	})
	mux.HandleFunc("/api/pipeline/funnel", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"funnel":[
			{"stage":"sourced","stage_display":"Sourced","count":100,"percentage":100},
			{"stage":"hired","stage_display":"Hired","count":5,"percentage":5}
		],"total_in_funnel":105}`)
	})
	mux.HandleFunc("/api/screening/queue", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"queue_length":3,"candidates":[],"avg_score":0.72}`)
	})
	return httptest.NewServer(mux)
}

func TestFetchSnapshotPopulatesTypedSlots(t *testing.T) {
	srv := snapshotTestServer(t)
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	slots := []Slot{
		{Key: SlotService, Path: "/"},
		{Key: SlotAgents, Path: "/api/agents"},
		{Key: SlotFunnel, Path: "/api/pipeline/funnel"},
		{Key: SlotScreening, Path: "/api/screening/queue"},
	}
	snap, err := client.FetchSnapshot(context.Background(), slots)
	if err != nil {
		t.Fatalf("FetchSnapshot: %v", err)
	}
	if snap.Service == nil || snap.Service.Service != "Talent Command Center" {
		t.Fatalf("service slot not populated: %+v", snap.Service)
	}
	if snap.Agents == nil || len(snap.Agents.Agents) != 2 {
		t.Fatalf("agents slot not populated: %+v", snap.Agents)
	}
	if snap.Funnel == nil || len(snap.Funnel.Funnel) != 2 {
		t.Fatalf("funnel slot not populated: %+v", snap.Funnel)
	}
	if snap.Funnel.Funnel[0].Stage != "sourced" || snap.Funnel.Funnel[1].Percentage != 5 {
		t.Fatalf("funnel rows out of order or mangled: %+v", snap.Funnel.Funnel)
	}
	if got := snap.QueueLength(); got != 3 {
		t.Fatalf("QueueLength = %d, want 3", got)
	}
	if snap.Jobs != nil {
		t.Fatalf("unfetched slot must stay nil, got %+v", snap.Jobs)
	}
}

func TestFetchSnapshotAllOrNothing(t *testing.T) {
	// One slot answers 500: the whole batch must fail and the caller's
	// previous snapshot must remain whatever it was.
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"service":"ok","version":"1","status":"operational"}`))
	})
	mux.HandleFunc("/api/agents", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"agents":{}}`))
	})
	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend exploded", http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	fetcher := NewSnapshotFetcher(client, []Slot{
		{Key: SlotService, Path: "/"},
		{Key: SlotAgents, Path: "/api/agents"},
		{Key: SlotJobs, Path: "/api/jobs"},
	})

	previous := &Snapshot{Service: &ServiceInfo{Service: "stale"}}
	snap, err := fetcher.Fetch(context.Background())
	if err == nil {
		t.Fatalf("expected batch failure")
	}
	if snap != nil {
		t.Fatalf("failed batch must not return a snapshot, got %+v", snap)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if previous.Service.Service != "stale" {
		t.Fatalf("previous snapshot mutated on failed batch")
	}
	if fetcher.Loading() {
		t.Fatalf("loading flag must clear after a failed batch")
	}
}

func TestFetchSnapshotIdempotent(t *testing.T) {
	srv := snapshotTestServer(t)
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	slots := []Slot{
		{Key: SlotService, Path: "/"},
		{Key: SlotFunnel, Path: "/api/pipeline/funnel"},
	}
	first, err := client.FetchSnapshot(context.Background(), slots)
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	second, err := client.FetchSnapshot(context.Background(), slots)
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if !reflect.DeepEqual(first.Service, second.Service) {
		t.Fatalf("service slot differs between identical fetches")
	}
	if !reflect.DeepEqual(first.Funnel, second.Funnel) {
		t.Fatalf("funnel slot differs between identical fetches")
	}
}

func TestFetchSnapshotRawSlots(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/robot/status", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"motion":{"state":"moving"},"battery":91.5}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	snap, err := client.FetchSnapshot(context.Background(), []Slot{
		{Key: "robot", Path: "/api/robot/status"},
	})
	if err != nil {
		t.Fatalf("FetchSnapshot: %v", err)
	}
	raw := snap.RawSlot("robot")
	if raw == nil {
		t.Fatalf("raw slot missing")
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("raw slot not JSON: %v", err)
	}
	if decoded["battery"] != 91.5 {
		t.Fatalf("raw slot mangled: %v", decoded)
	}
}

func TestSnapshotFetcherLoadingFlag(t *testing.T) {
	var inFlight atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if inFlight.Add(1) == 1 {
			close(started)
		}
		<-release
		_, _ = w.Write([]byte(`{"service":"ok","version":"1","status":"operational"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	fetcher := NewSnapshotFetcher(client, []Slot{{Key: SlotService, Path: "/"}})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = fetcher.Fetch(context.Background())
	}()
	<-started
	if !fetcher.Loading() {
		t.Fatalf("loading flag must be set while a batch is in flight")
	}
	close(release)
	<-done
	if fetcher.Loading() {
		t.Fatalf("loading flag must clear when the batch completes")
	}
}
