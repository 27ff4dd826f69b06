package simserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/crewdeck/crewdeck/internal/api"
)

func startTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	settings := Settings{Host: "127.0.0.1", Port: 0, ReadTimeout: time.Second, WriteTimeout: time.Second, IdleTimeout: time.Second}
	srv := NewServer(settings, opts...)
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("start server: %v", err)
	}
	t.Cleanup(func() {
		_ = srv.Shutdown(context.Background())
	})
	return srv
}

func getJSON(t *testing.T, url string, out any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get %s: expected 200, got %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
}

func postJSON(t *testing.T, url string, payload any) (int, map[string]any) {
	t.Helper()
	buf, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	defer resp.Body.Close()
	var body map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return resp.StatusCode, body
}

func TestServerServesSeededWorld(t *testing.T) {
	t.Parallel()
	srv := startTestServer(t)
	base := srv.BaseURL()

	var svc api.ServiceInfo
	getJSON(t, base+"/", &svc)
	if svc.Service != "Crew Command Center" {
		t.Fatalf("unexpected service name: %s", svc.Service)
	}
	if svc.Status != "operational" {
		t.Fatalf("expected operational status, got %s", svc.Status)
	}

	var queue api.ScreeningQueue
	getJSON(t, base+"/api/screening/queue", &queue)
	if queue.QueueLength != 3 {
		t.Fatalf("expected seeded queue of 3, got %d", queue.QueueLength)
	}

	var funnel api.FunnelReport
	getJSON(t, base+"/api/pipeline/funnel", &funnel)
	if len(funnel.Funnel) == 0 || funnel.Funnel[0].Percentage != 100 {
		t.Fatalf("expected first funnel stage at 100%%, got %+v", funnel.Funnel)
	}

	var agents api.AgentsIndex
	getJSON(t, base+"/api/agents", &agents)
	if agents.Orchestrator.Name != "orchestrator" {
		t.Fatalf("expected orchestrator entry, got %+v", agents.Orchestrator)
	}
	if len(agents.Agents) != 6 {
		t.Fatalf("expected 6 fleet agents, got %d", len(agents.Agents))
	}
}

func TestServerHealth(t *testing.T) {
	t.Parallel()
	srv := startTestServer(t)
	var health map[string]any
	getJSON(t, srv.BaseURL()+"/api/health", &health)
	if health["status"] != "healthy" {
		t.Fatalf("expected healthy, got %v", health["status"])
	}
}

func TestServerDecisionFlow(t *testing.T) {
	t.Parallel()
	srv := startTestServer(t)
	base := srv.BaseURL()

	status, body := postJSON(t, base+"/api/screening/CAND-10291/approve", map[string]string{"reviewer": "sam"})
	if status != http.StatusOK {
		t.Fatalf("expected 200 on approve, got %d (%v)", status, body)
	}
	if body["status"] != "approved" {
		t.Fatalf("expected approved, got %v", body["status"])
	}
	if body["queue_length"].(float64) != 2 {
		t.Fatalf("expected queue_length 2, got %v", body["queue_length"])
	}

	status, _ = postJSON(t, base+"/api/screening/CAND-10291/approve", map[string]string{"reviewer": "sam"})
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 on repeated decision, got %d", status)
	}

	status, body = postJSON(t, base+"/api/screening/CAND-10344/reject", map[string]string{})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 without reviewer, got %d (%v)", status, body)
	}

	var queue api.ScreeningQueue
	getJSON(t, base+"/api/screening/queue", &queue)
	if queue.QueueLength != 2 {
		t.Fatalf("expected queue of 2 after one decision, got %d", queue.QueueLength)
	}
}

func TestServerAgentAction(t *testing.T) {
	t.Parallel()
	srv := startTestServer(t)
	base := srv.BaseURL()

	status, body := postJSON(t, base+"/api/agents/sourcer/action", map[string]any{"action": "search_candidates"})
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d (%v)", status, body)
	}
	if body["agent"] != "sourcer" || body["status"] != "completed" {
		t.Fatalf("unexpected action payload: %v", body)
	}

	status, _ = postJSON(t, base+"/api/agents/ghost/action", map[string]any{"action": "noop"})
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown agent, got %d", status)
	}
}

func TestServerCandidateSearch(t *testing.T) {
	t.Parallel()
	srv := startTestServer(t)

	status, body := postJSON(t, srv.BaseURL()+"/api/candidates/search", api.CandidateSearchRequest{Skills: []string{"SLAM"}, ExperienceMin: 6})
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if body["count"].(float64) != 1 {
		t.Fatalf("expected single match, got %v", body["count"])
	}
}

func TestServerRoboticsEndpoints(t *testing.T) {
	t.Parallel()
	srv := startTestServer(t)
	base := srv.BaseURL()

	var robot map[string]any
	getJSON(t, base+"/api/robot/status", &robot)
	if _, ok := robot["battery"]; !ok {
		t.Fatalf("expected battery in robot status, got %v", robot)
	}

	var vision map[string]any
	getJSON(t, base+"/api/vision/detections", &vision)
	if _, ok := vision["detections"]; !ok {
		t.Fatalf("expected detections in vision payload, got %v", vision)
	}

	var autonomy map[string]any
	getJSON(t, base+"/api/autonomy/level", &autonomy)
	if autonomy["level"].(float64) != 4 {
		t.Fatalf("expected autonomy level 4, got %v", autonomy["level"])
	}
}

func TestServerRejectsDoubleStart(t *testing.T) {
	t.Parallel()
	srv := startTestServer(t)
	if err := srv.Start(context.Background()); err == nil {
		t.Fatalf("expected error on second start")
	}
}

func TestServerLifecycleStatus(t *testing.T) {
	t.Parallel()
	settings := Settings{Host: "127.0.0.1", Port: 0, ReadTimeout: time.Second, WriteTimeout: time.Second, IdleTimeout: time.Second}
	srv := NewServer(settings)
	if srv.Status() != StatusStarting {
		t.Fatalf("expected starting before Start, got %s", srv.Status())
	}
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if srv.Status() != StatusReady {
		t.Fatalf("expected ready after Start, got %s", srv.Status())
	}
	if srv.Addr() == "" {
		t.Fatalf("expected bound address after Start")
	}
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if srv.Status() != StatusDraining {
		t.Fatalf("expected draining after Shutdown, got %s", srv.Status())
	}
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("second shutdown should be a no-op, got %v", err)
	}
}
