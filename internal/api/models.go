package api

import "encoding/json"

// ServiceInfo is the root "/" status blob.
type ServiceInfo struct {
	Service      string   `json:"service"`
	Company      string   `json:"company,omitempty"`
	Version      string   `json:"version"`
	Architecture string   `json:"architecture,omitempty"`
	Status       string   `json:"status"`
	Capabilities []string `json:"capabilities,omitempty"`
	Timestamp    string   `json:"timestamp,omitempty"`
}

// AgentInfo describes one backend agent as reported by /api/agents.
type AgentInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Status      string   `json:"status"`
	Enabled     bool     `json:"enabled"`
	Handlers    []string `json:"handlers,omitempty"`
}

// AgentsIndex is the /api/agents payload: the orchestrator plus its fleet.
type AgentsIndex struct {
	Orchestrator AgentInfo            `json:"orchestrator"`
	Agents       map[string]AgentInfo `json:"agents"`
	Workflows    []string             `json:"workflows,omitempty"`
}

// SourcingStats is the sourcing slice of /api/dashboard/stats.
type SourcingStats struct {
	TotalSourced  int     `json:"total_sourced"`
	SourcesActive int     `json:"sources_active"`
	AvgMatchScore float64 `json:"avg_match_score"`
}

// ScreeningStats is the screening slice of /api/dashboard/stats.
type ScreeningStats struct {
	TotalScreened int     `json:"total_screened"`
	Approved      int     `json:"approved"`
	PendingReview int     `json:"pending_review"`
	Rejected      int     `json:"rejected"`
	AvgScore      float64 `json:"avg_score"`
}

// PipelineStats is the pipeline slice of /api/dashboard/stats.
type PipelineStats struct {
	TotalActive       int     `json:"total_active"`
	TotalHired        int     `json:"total_hired"`
	AvgTimeToHireDays int     `json:"avg_time_to_hire_days"`
	PipelineVelocity  float64 `json:"pipeline_velocity"`
}

// MatchingStats is the matching slice of /api/dashboard/stats.
type MatchingStats struct {
	TotalMatches  int     `json:"total_matches"`
	AvgMatchScore float64 `json:"avg_match_score"`
}

// DashboardStats is the /api/dashboard/stats payload.
type DashboardStats struct {
	Sourcing  SourcingStats  `json:"sourcing"`
	Screening ScreeningStats `json:"screening"`
	Pipeline  PipelineStats  `json:"pipeline"`
	Matching  MatchingStats  `json:"matching"`
}

// PipelineCandidate is the compact candidate row inside a pipeline stage.
type PipelineCandidate struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Title       string  `json:"title,omitempty"`
	Company     string  `json:"company,omitempty"`
	Score       float64 `json:"score"`
	DaysInStage int     `json:"days_in_stage"`
}

// StageBucket holds the candidates currently sitting in one pipeline stage.
type StageBucket struct {
	Count      int                 `json:"count"`
	Candidates []PipelineCandidate `json:"candidates,omitempty"`
}

// PipelineSummary is the /api/pipeline payload. Stage keys follow the
// backend's funnel order (sourced, screened, phone_screen, ...); rejected
// candidates are excluded from this view by the backend.
type PipelineSummary struct {
	Pipeline        map[string]StageBucket `json:"pipeline"`
	TotalCandidates int                    `json:"total_candidates"`
}

// FunnelStage is one row of /api/pipeline/funnel. The first row reports 100
// percent; later rows are relative to it.
type FunnelStage struct {
	Stage        string  `json:"stage"`
	StageDisplay string  `json:"stage_display"`
	Count        int     `json:"count"`
	Percentage   float64 `json:"percentage"`
}

// FunnelReport is the /api/pipeline/funnel payload.
type FunnelReport struct {
	Funnel        []FunnelStage `json:"funnel"`
	TotalInFunnel int           `json:"total_in_funnel"`
}

// Job is one opening from /api/jobs.
type Job struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Department      string   `json:"department,omitempty"`
	Location        string   `json:"location,omitempty"`
	RequiredSkills  []string `json:"required_skills,omitempty"`
	PreferredSkills []string `json:"preferred_skills,omitempty"`
	ExperienceMin   int      `json:"experience_min,omitempty"`
	ExperienceMax   int      `json:"experience_max,omitempty"`
	SalaryRange     string   `json:"salary_range,omitempty"`
	Status          string   `json:"status,omitempty"`
	Priority        string   `json:"priority,omitempty"`
	PipelineCount   int      `json:"pipeline_count"`
}

// JobsList is the /api/jobs payload.
type JobsList struct {
	Jobs  []Job `json:"jobs"`
	Count int   `json:"count"`
}

// CandidateScores carries the screening score breakdown for one candidate.
type CandidateScores struct {
	Overall    float64 `json:"overall"`
	Technical  float64 `json:"technical"`
	Experience float64 `json:"experience"`
	Education  float64 `json:"education"`
	Cultural   float64 `json:"cultural"`
}

// QueuedCandidate is one entry of the human-review queue.
type QueuedCandidate struct {
	CandidateID string          `json:"candidate_id"`
	Name        string          `json:"name"`
	Title       string          `json:"title,omitempty"`
	Status      string          `json:"status"`
	Scores      CandidateScores `json:"scores"`
	Action      string          `json:"action,omitempty"`
	RedFlags    []string        `json:"red_flags,omitempty"`
	AINotes     string          `json:"ai_notes,omitempty"`
}

// ScreeningQueue is the /api/screening/queue payload. QueueLength gates the
// Review tab in the dashboard.
type ScreeningQueue struct {
	QueueLength int               `json:"queue_length"`
	Candidates  []QueuedCandidate `json:"candidates"`
	AvgScore    float64           `json:"avg_score"`
}

// SourceInfo describes one sourcing platform.
type SourceInfo struct {
	Type        string  `json:"type"`
	Weight      float64 `json:"weight,omitempty"`
	Description string  `json:"description,omitempty"`
}

// SourceSummary is the /api/sources payload.
type SourceSummary struct {
	TotalSources  int                   `json:"total_sources"`
	Sources       map[string]SourceInfo `json:"sources,omitempty"`
	SourcesByType map[string]int        `json:"sources_by_type,omitempty"`
}

// ComplianceReport is the /api/audit/compliance-report payload. The nested
// sections are rendered and exported as-is; crewdeck never computes them.
type ComplianceReport struct {
	Summary              map[string]any `json:"summary"`
	HumanInLoop          map[string]any `json:"human_in_loop_compliance,omitempty"`
	AIOversight          map[string]any `json:"ai_oversight,omitempty"`
	DecisionDistribution map[string]any `json:"decision_distribution,omitempty"`
	DataProtection       map[string]any `json:"data_protection,omitempty"`
	GeneratedAt          string         `json:"generated_at,omitempty"`
}

// Candidate is a sourced candidate record.
type Candidate struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Title             string   `json:"title,omitempty"`
	CurrentCompany    string   `json:"current_company,omitempty"`
	ExperienceYears   int      `json:"experience_years,omitempty"`
	Education         string   `json:"education,omitempty"`
	Skills            []string `json:"skills,omitempty"`
	Location          string   `json:"location,omitempty"`
	MatchScore        float64  `json:"match_score"`
	Availability      string   `json:"availability,omitempty"`
	SalaryExpectation string   `json:"salary_expectation,omitempty"`
	Source            string   `json:"source,omitempty"`
	SourceType        string   `json:"source_type,omitempty"`
}

// CandidateSearchRequest is the POST body for /api/candidates/search.
type CandidateSearchRequest struct {
	Role          string   `json:"role"`
	Skills        []string `json:"skills"`
	ExperienceMin int      `json:"experience_min"`
}

// CandidateList is the /api/candidates/search payload.
type CandidateList struct {
	Candidates []Candidate `json:"candidates"`
	Count      int         `json:"count"`
}

// DemoStep is one entry of the demo workflow trace.
type DemoStep struct {
	Step    int    `json:"step"`
	Agent   string `json:"agent"`
	Action  string `json:"action"`
	Summary string `json:"summary,omitempty"`
	Status  string `json:"status"`
}

// DemoSummary closes out a demo workflow run.
type DemoSummary struct {
	TotalSourced  int         `json:"total_sourced"`
	TotalScreened int         `json:"total_screened"`
	TopCandidates []Candidate `json:"top_candidates,omitempty"`
	Message       string      `json:"message,omitempty"`
}

// DemoWorkflow is the /api/demo/workflow payload consumed at the end of a
// playback run.
type DemoWorkflow struct {
	Steps   []DemoStep  `json:"steps"`
	Summary DemoSummary `json:"summary"`
}

// Top returns the nested top-candidates list, or nil when the backend did
// not include one.
func (d *DemoWorkflow) Top() []Candidate {
	if d == nil || len(d.Summary.TopCandidates) == 0 {
		return nil
	}
	return d.Summary.TopCandidates
}

// AgentActionRequest is the POST body for /api/agents/{name}/action.
type AgentActionRequest struct {
	Action  string         `json:"action"`
	Payload map[string]any `json:"payload,omitempty"`
}

// ScreeningDecisionRequest is the POST body for screening approve/reject.
type ScreeningDecisionRequest struct {
	Reviewer string `json:"reviewer"`
	Reason   string `json:"reason,omitempty"`
}

// RawPayload keeps an endpoint's body unparsed. Robotics-profile views render
// these verbatim.
type RawPayload = json.RawMessage
