package simserver

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/crewdeck/crewdeck/internal/api"
)

// ErrNotFound marks lookups that miss: unknown agents, candidates absent
// from the review queue. Handlers translate it to HTTP 404.
var ErrNotFound = fmt.Errorf("simserver: not found")

// sourceTypes maps sourcing platforms to their category, mirroring the
// sourcer agent's catalog.
var sourceTypes = map[string]string{
	"ArXiv":            "research",
	"Zenodo":           "research",
	"Semantic Scholar": "research",
	"Papers with Code": "research",
	"HuggingFace":      "ml_platform",
	"Kaggle":           "ml_platform",
	"GitHub":           "code",
	"GitLab":           "code",
}

// World holds the demo backend's state: the seeded fixture plus whatever the
// dashboard mutated since start (review decisions, dispatched actions).
type World struct {
	mu      sync.RWMutex
	fixture Fixture
	queue   []api.QueuedCandidate

	approved int
	rejected int
	actions  int

	start time.Time
	now   func() time.Time
}

// WorldOption customizes world construction.
type WorldOption func(*World)

// WithWorldClock injects the timestamp source. Used by tests.
func WithWorldClock(clock func() time.Time) WorldOption {
	return func(w *World) {
		if clock != nil {
			w.now = clock
		}
	}
}

// NewWorld seeds a world from a fixture. Empty fixture sections fall back to
// the built-in seed.
func NewWorld(fixture Fixture, opts ...WorldOption) *World {
	w := &World{
		now: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(w)
	}
	w.start = w.now()
	w.applyFixture(fixture)
	return w
}

// Reset reseeds the world from a new fixture, dropping runtime mutations.
// The fixture watcher calls this on file change.
func (w *World) Reset(fixture Fixture) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.applyFixture(fixture)
	w.approved = 0
	w.rejected = 0
	w.actions = 0
}

func (w *World) applyFixture(fixture Fixture) {
	w.fixture = fixture.withDefaults()
	w.queue = make([]api.QueuedCandidate, 0, len(w.fixture.Queue))
	for _, seed := range w.fixture.Queue {
		w.queue = append(w.queue, api.QueuedCandidate{
			CandidateID: seed.CandidateID,
			Name:        seed.Name,
			Title:       seed.Title,
			Status:      "pending_review",
			Scores: api.CandidateScores{
				Overall:    seed.Overall,
				Technical:  seed.Technical,
				Experience: seed.Experience,
				Education:  seed.Education,
				Cultural:   seed.Cultural,
			},
			Action:   "HUMAN_REVIEW",
			RedFlags: append([]string(nil), seed.RedFlags...),
			AINotes:  seed.Notes,
		})
	}
}

// Service is the root "/" payload.
func (w *World) Service() api.ServiceInfo {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return api.ServiceInfo{
		Service:      "Crew Command Center",
		Company:      w.fixture.Company,
		Version:      "2.0.0",
		Architecture: "multi-agent",
		Status:       "operational",
		Capabilities: []string{
			"Candidate Sourcing",
			"AI Screening",
			"Pipeline Tracking",
			"Compliance Oversight",
		},
		Timestamp: w.now().Format(time.RFC3339),
	}
}

// Agents is the /api/agents payload.
func (w *World) Agents() api.AgentsIndex {
	w.mu.RLock()
	defer w.mu.RUnlock()
	agents := make(map[string]api.AgentInfo, len(w.fixture.Agents))
	for _, seed := range w.fixture.Agents {
		agents[seed.Name] = api.AgentInfo{
			Name:        seed.Name,
			Description: seed.Description,
			Status:      "active",
			Enabled:     true,
			Handlers:    append([]string(nil), seed.Handlers...),
		}
	}
	return api.AgentsIndex{
		Orchestrator: api.AgentInfo{
			Name:        "orchestrator",
			Description: "Routes work across the agent fleet",
			Status:      "active",
			Enabled:     true,
			Handlers:    []string{"route_message", "run_workflow"},
		},
		Agents:    agents,
		Workflows: []string{"full_hiring_pipeline"},
	}
}

// HasAgent reports whether name is the orchestrator or a fleet agent.
func (w *World) HasAgent(name string) bool {
	if name == "orchestrator" {
		return true
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, seed := range w.fixture.Agents {
		if seed.Name == name {
			return true
		}
	}
	return false
}

// Stats is the /api/dashboard/stats payload, computed from the seed and the
// decisions made since start.
func (w *World) Stats() api.DashboardStats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	candidates := w.fixture.Candidates
	var scoreSum float64
	sources := map[string]struct{}{}
	for _, cand := range candidates {
		scoreSum += cand.Score
		if cand.Source != "" {
			sources[cand.Source] = struct{}{}
		}
	}
	avgScore := 0.0
	if len(candidates) > 0 {
		avgScore = round2(scoreSum / float64(len(candidates)))
	}
	hired := 0
	if n := len(w.fixture.Stages); n > 0 {
		hired = w.fixture.Stages[n-1].Count
	}
	return api.DashboardStats{
		Sourcing: api.SourcingStats{
			TotalSourced:  len(candidates),
			SourcesActive: len(sources),
			AvgMatchScore: avgScore,
		},
		Screening: api.ScreeningStats{
			TotalScreened: len(candidates),
			Approved:      w.approved,
			PendingReview: len(w.queue),
			Rejected:      w.rejected,
			AvgScore:      w.queueAvgLocked(),
		},
		Pipeline: api.PipelineStats{
			TotalActive:       w.totalInStagesLocked(),
			TotalHired:        hired,
			AvgTimeToHireDays: 23,
			PipelineVelocity:  1.8,
		},
		Matching: api.MatchingStats{
			TotalMatches:  len(candidates) * len(w.fixture.Jobs),
			AvgMatchScore: avgScore,
		},
	}
}

// Pipeline is the /api/pipeline payload. Candidates are distributed across
// stages round-robin so every bucket shows realistic rows.
func (w *World) Pipeline() api.PipelineSummary {
	w.mu.RLock()
	defer w.mu.RUnlock()
	buckets := make(map[string]api.StageBucket, len(w.fixture.Stages))
	if len(w.fixture.Stages) == 0 {
		return api.PipelineSummary{Pipeline: buckets}
	}
	assigned := make(map[string][]api.PipelineCandidate)
	for i, cand := range w.fixture.Candidates {
		stage := w.fixture.Stages[i%len(w.fixture.Stages)].Stage
		assigned[stage] = append(assigned[stage], api.PipelineCandidate{
			ID:          cand.ID,
			Name:        cand.Name,
			Title:       cand.Title,
			Company:     cand.Company,
			Score:       cand.Score,
			DaysInStage: 1 + i%9,
		})
	}
	total := 0
	for _, stage := range w.fixture.Stages {
		rows := assigned[stage.Stage]
		buckets[stage.Stage] = api.StageBucket{Count: len(rows), Candidates: rows}
		total += len(rows)
	}
	return api.PipelineSummary{Pipeline: buckets, TotalCandidates: total}
}

// Funnel is the /api/pipeline/funnel payload. The first stage anchors at 100
// percent; later stages are relative to it.
func (w *World) Funnel() api.FunnelReport {
	w.mu.RLock()
	defer w.mu.RUnlock()
	stages := w.fixture.Stages
	report := api.FunnelReport{Funnel: make([]api.FunnelStage, 0, len(stages))}
	if len(stages) == 0 {
		return report
	}
	base := float64(stages[0].Count)
	for _, stage := range stages {
		pct := 100.0
		if base > 0 {
			pct = round1(float64(stage.Count) / base * 100)
		}
		report.Funnel = append(report.Funnel, api.FunnelStage{
			Stage:        stage.Stage,
			StageDisplay: stage.Display,
			Count:        stage.Count,
			Percentage:   pct,
		})
		report.TotalInFunnel += stage.Count
	}
	return report
}

// Jobs is the /api/jobs payload.
func (w *World) Jobs() api.JobsList {
	w.mu.RLock()
	defer w.mu.RUnlock()
	jobs := make([]api.Job, 0, len(w.fixture.Jobs))
	share := 0
	if len(w.fixture.Jobs) > 0 {
		share = len(w.fixture.Candidates) / len(w.fixture.Jobs)
	}
	for i, seed := range w.fixture.Jobs {
		count := share
		if i == 0 {
			count += len(w.fixture.Candidates) % max(len(w.fixture.Jobs), 1)
		}
		jobs = append(jobs, api.Job{
			ID:             seed.ID,
			Title:          seed.Title,
			Department:     seed.Department,
			Location:       seed.Location,
			RequiredSkills: append([]string(nil), seed.Skills...),
			ExperienceMin:  seed.ExperienceMin,
			SalaryRange:    seed.SalaryRange,
			Status:         "open",
			Priority:       seed.Priority,
			PipelineCount:  count,
		})
	}
	return api.JobsList{Jobs: jobs, Count: len(jobs)}
}

// ScreeningQueue is the /api/screening/queue payload. Its queue_length gates
// the dashboard's Review tab.
func (w *World) ScreeningQueue() api.ScreeningQueue {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return api.ScreeningQueue{
		QueueLength: len(w.queue),
		Candidates:  append([]api.QueuedCandidate(nil), w.queue...),
		AvgScore:    w.queueAvgLocked(),
	}
}

// Decide resolves one review-queue entry. The entry leaves the queue so the
// next /api/screening/queue poll reports a shorter queue.
func (w *World) Decide(candidateID, decision string, req api.ScreeningDecisionRequest) (map[string]any, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	idx := -1
	for i, entry := range w.queue {
		if entry.CandidateID == candidateID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: candidate %s is not in the review queue", ErrNotFound, candidateID)
	}
	entry := w.queue[idx]
	w.queue = append(w.queue[:idx], w.queue[idx+1:]...)
	switch decision {
	case "approved":
		w.approved++
	case "rejected":
		w.rejected++
	}
	return map[string]any{
		"decision_id":  uuid.NewString(),
		"candidate_id": entry.CandidateID,
		"candidate":    entry.Name,
		"status":       decision,
		"reviewer":     req.Reviewer,
		"reason":       req.Reason,
		"queue_length": len(w.queue),
		"decided_at":   w.now().Format(time.RFC3339),
	}, nil
}

// AgentAction is the POST /api/agents/{name}/action payload.
func (w *World) AgentAction(name string, req api.AgentActionRequest) (map[string]any, error) {
	if !w.HasAgent(name) {
		return nil, fmt.Errorf("%w: agent %s", ErrNotFound, name)
	}
	w.mu.Lock()
	w.actions++
	count := w.actions
	w.mu.Unlock()
	return map[string]any{
		"action_id":     uuid.NewString(),
		"agent":         name,
		"action":        req.Action,
		"status":        "completed",
		"actions_total": count,
		"result": map[string]any{
			"accepted": true,
			"payload":  req.Payload,
		},
		"dispatched_at": w.now().Format(time.RFC3339),
	}, nil
}

// Sources is the /api/sources payload, derived from where the seeded
// candidates came from.
func (w *World) Sources() api.SourceSummary {
	w.mu.RLock()
	defer w.mu.RUnlock()
	sources := make(map[string]api.SourceInfo)
	byType := make(map[string]int)
	for _, cand := range w.fixture.Candidates {
		if cand.Source == "" {
			continue
		}
		kind := sourceTypes[cand.Source]
		if kind == "" {
			kind = "other"
		}
		if _, seen := sources[cand.Source]; !seen {
			sources[cand.Source] = api.SourceInfo{Type: kind}
			byType[kind]++
		}
	}
	return api.SourceSummary{
		TotalSources:  len(sources),
		Sources:       sources,
		SourcesByType: byType,
	}
}

// Compliance is the /api/audit/compliance-report payload.
func (w *World) Compliance() api.ComplianceReport {
	w.mu.RLock()
	defer w.mu.RUnlock()
	human := w.approved + w.rejected
	total := human + len(w.queue)
	rate := 0.0
	if total > 0 {
		rate = round2(float64(human) / float64(total))
	}
	return api.ComplianceReport{
		Summary: map[string]any{
			"total_decisions":    total,
			"human_decisions":    human,
			"pending_review":     len(w.queue),
			"human_review_rate":  rate,
			"oversight_verified": true,
		},
		HumanInLoop: map[string]any{
			"enabled":           true,
			"approved_by_human": w.approved,
			"rejected_by_human": w.rejected,
			"policy": map[string]any{
				"auto_approve_threshold": 0.9,
				"reviewer_required":      true,
			},
		},
		AIOversight: map[string]any{
			"screening_model":  "screener-v2",
			"red_flag_checks":  true,
			"appeals_possible": true,
		},
		DecisionDistribution: map[string]any{
			"approved": w.approved,
			"rejected": w.rejected,
			"pending":  len(w.queue),
		},
		DataProtection: map[string]any{
			"pii_redaction":  true,
			"retention_days": 90,
		},
		GeneratedAt: w.now().Format(time.RFC3339),
	}
}

// SearchCandidates is the POST /api/candidates/search payload: seeded
// candidates filtered by skills and minimum experience, best match first.
func (w *World) SearchCandidates(req api.CandidateSearchRequest) api.CandidateList {
	w.mu.RLock()
	defer w.mu.RUnlock()
	var out []api.Candidate
	for _, seed := range w.fixture.Candidates {
		if seed.Years < req.ExperienceMin {
			continue
		}
		if len(req.Skills) > 0 && !hasAnySkill(seed.Skills, req.Skills) {
			continue
		}
		out = append(out, seedToCandidate(seed))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MatchScore > out[j].MatchScore })
	return api.CandidateList{Candidates: out, Count: len(out)}
}

// DemoWorkflow is the /api/demo/workflow payload: a full pipeline trace with
// the best seeded candidates as its outcome.
func (w *World) DemoWorkflow() api.DemoWorkflow {
	w.mu.RLock()
	defer w.mu.RUnlock()
	top := make([]api.Candidate, 0, 3)
	sorted := append([]CandidateSeed(nil), w.fixture.Candidates...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Score > sorted[j].Score })
	for i := 0; i < len(sorted) && i < 3; i++ {
		top = append(top, seedToCandidate(sorted[i]))
	}
	screened := len(sorted) - len(sorted)/4
	return api.DemoWorkflow{
		Steps: []api.DemoStep{
			{Step: 1, Agent: "sourcer", Action: "search_candidates", Summary: fmt.Sprintf("Sourced %d candidates across elite platforms", len(sorted)), Status: "completed"},
			{Step: 2, Agent: "screener", Action: "screen_candidate", Summary: fmt.Sprintf("Screened %d candidates, %d queued for human review", screened, len(w.queue)), Status: "completed"},
			{Step: 3, Agent: "matcher", Action: "match", Summary: "Matched candidates against open roles", Status: "completed"},
			{Step: 4, Agent: "pipeline", Action: "advance", Summary: "Advanced top matches to phone screen", Status: "completed"},
			{Step: 5, Agent: "audit", Action: "log_decision", Summary: "Compliance trail recorded for every decision", Status: "completed"},
		},
		Summary: api.DemoSummary{
			TotalSourced:  len(sorted),
			TotalScreened: screened,
			TopCandidates: top,
			Message:       "Full hiring pipeline completed",
		},
	}
}

// RobotStatus is the /api/robot/status payload for the robotics deck.
func (w *World) RobotStatus() map[string]any {
	return map[string]any{
		"motion": map[string]any{
			"state":        "idle",
			"position":     map[string]any{"x": 2.4, "y": 1.1, "z": 0.0, "yaw": 90.0},
			"velocity":     0.0,
			"planner":      "rrt_star",
			"last_command": "hold_position",
		},
		"sensors": map[string]any{
			"online":      []string{"lidar_front", "imu_main", "camera_rgb", "camera_depth"},
			"degraded":    []string{},
			"fusion_rate": 50,
		},
		"autonomy": map[string]any{
			"level":           4,
			"safety_ok":       true,
			"human_override":  false,
			"geofence_active": true,
		},
		"battery":   87.5,
		"timestamp": w.now().Format(time.RFC3339),
	}
}

// Sensors is the /api/sensors payload.
func (w *World) Sensors() map[string]any {
	return map[string]any{
		"lidar_front":  map[string]any{"type": "lidar", "range_m": 25.0, "points": 28800, "status": "ok"},
		"imu_main":     map[string]any{"type": "imu", "accel": map[string]any{"x": 0.01, "y": -0.02, "z": 9.81}, "status": "ok"},
		"camera_rgb":   map[string]any{"type": "camera", "fps": 30, "resolution": "1920x1080", "status": "ok"},
		"camera_depth": map[string]any{"type": "depth", "fps": 30, "range_m": 10.0, "status": "ok"},
		"temperature":  24.5,
		"humidity":     48.0,
		"timestamp":    w.now().Format(time.RFC3339),
	}
}

// VisionDetections is the /api/vision/detections payload.
func (w *World) VisionDetections() map[string]any {
	return map[string]any{
		"camera": "camera_rgb",
		"model":  "yolo-warehouse-v3",
		"detections": []map[string]any{
			{"label": "pallet", "confidence": 0.97, "bbox": []int{120, 340, 420, 610}},
			{"label": "forklift", "confidence": 0.91, "bbox": []int{700, 280, 1040, 660}},
			{"label": "person", "confidence": 0.88, "bbox": []int{1380, 310, 1510, 700}},
		},
		"inference_ms": 14,
		"timestamp":    w.now().Format(time.RFC3339),
	}
}

// Mission is the /api/mission payload.
func (w *World) Mission() map[string]any {
	return map[string]any{
		"mission_id": "warehouse_patrol",
		"name":       "Warehouse Patrol",
		"status":     "ready",
		"waypoints":  8,
		"progress":   0.0,
		"eta_s":      nil,
		"timestamp":  w.now().Format(time.RFC3339),
	}
}

// AutonomyLevel is the /api/autonomy/level payload.
func (w *World) AutonomyLevel() map[string]any {
	return map[string]any{
		"level":       4,
		"description": "High autonomy, human supervisory control",
		"max_level":   5,
		"safety": map[string]any{
			"estop_armed":     true,
			"geofence_active": true,
			"last_check":      w.now().Format(time.RFC3339),
		},
	}
}

// UptimeSeconds reports how long the world has been running.
func (w *World) UptimeSeconds() int64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return int64(w.now().Sub(w.start).Seconds())
}

func (w *World) queueAvgLocked() float64 {
	if len(w.queue) == 0 {
		return 0
	}
	var sum float64
	for _, entry := range w.queue {
		sum += entry.Scores.Overall
	}
	return round2(sum / float64(len(w.queue)))
}

func (w *World) totalInStagesLocked() int {
	total := 0
	for _, stage := range w.fixture.Stages {
		total += stage.Count
	}
	return total
}

func seedToCandidate(seed CandidateSeed) api.Candidate {
	kind := sourceTypes[seed.Source]
	if seed.Source != "" && kind == "" {
		kind = "other"
	}
	return api.Candidate{
		ID:              seed.ID,
		Name:            seed.Name,
		Title:           seed.Title,
		CurrentCompany:  seed.Company,
		ExperienceYears: seed.Years,
		Education:       seed.Education,
		Skills:          append([]string(nil), seed.Skills...),
		Location:        seed.Location,
		MatchScore:      seed.Score,
		Availability:    seed.Availability,
		Source:          seed.Source,
		SourceType:      kind,
	}
}

func hasAnySkill(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if strings.EqualFold(strings.TrimSpace(h), strings.TrimSpace(w)) {
				return true
			}
		}
	}
	return false
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
