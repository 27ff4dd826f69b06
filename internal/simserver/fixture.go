package simserver

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Fixture is the editable seed for the demo world. The serve command loads
// one from YAML; sections left empty fall back to the built-in seed, so a
// fixture file only needs to list what it wants to change.
type Fixture struct {
	Company    string          `yaml:"company,omitempty"`
	Agents     []AgentSeed     `yaml:"agents,omitempty"`
	Jobs       []JobSeed       `yaml:"jobs,omitempty"`
	Candidates []CandidateSeed `yaml:"candidates,omitempty"`
	Queue      []QueueSeed     `yaml:"queue,omitempty"`
	Stages     []StageSeed     `yaml:"stages,omitempty"`
}

// AgentSeed describes one fleet agent.
type AgentSeed struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	Handlers    []string `yaml:"handlers,omitempty"`
}

// JobSeed describes one open role.
type JobSeed struct {
	ID            string   `yaml:"id"`
	Title         string   `yaml:"title"`
	Department    string   `yaml:"department,omitempty"`
	Location      string   `yaml:"location,omitempty"`
	Skills        []string `yaml:"skills,omitempty"`
	ExperienceMin int      `yaml:"experience_min,omitempty"`
	SalaryRange   string   `yaml:"salary_range,omitempty"`
	Priority      string   `yaml:"priority,omitempty"`
}

// CandidateSeed describes one sourced candidate.
type CandidateSeed struct {
	ID           string   `yaml:"id,omitempty"`
	Name         string   `yaml:"name"`
	Title        string   `yaml:"title,omitempty"`
	Company      string   `yaml:"company,omitempty"`
	Years        int      `yaml:"years,omitempty"`
	Education    string   `yaml:"education,omitempty"`
	Skills       []string `yaml:"skills,omitempty"`
	Location     string   `yaml:"location,omitempty"`
	Score        float64  `yaml:"score,omitempty"`
	Availability string   `yaml:"availability,omitempty"`
	Source       string   `yaml:"source,omitempty"`
}

// QueueSeed describes one entry waiting for human review. Entries are
// self-contained rather than references so a fixture file stays one page.
type QueueSeed struct {
	CandidateID string   `yaml:"candidate_id,omitempty"`
	Name        string   `yaml:"name"`
	Title       string   `yaml:"title,omitempty"`
	Overall     float64  `yaml:"overall"`
	Technical   float64  `yaml:"technical,omitempty"`
	Experience  float64  `yaml:"experience,omitempty"`
	Education   float64  `yaml:"education,omitempty"`
	Cultural    float64  `yaml:"cultural,omitempty"`
	RedFlags    []string `yaml:"red_flags,omitempty"`
	Notes       string   `yaml:"notes,omitempty"`
}

// StageSeed describes one funnel stage with its headcount. Order matters:
// percentages are computed relative to the first stage.
type StageSeed struct {
	Stage   string `yaml:"stage"`
	Display string `yaml:"display"`
	Count   int    `yaml:"count"`
}

// Validate ensures the fixture can seed a coherent world.
func (f Fixture) Validate() error {
	for i, agent := range f.Agents {
		if strings.TrimSpace(agent.Name) == "" {
			return fmt.Errorf("simserver: agents[%d]: name is required", i)
		}
	}
	for i, job := range f.Jobs {
		if strings.TrimSpace(job.Title) == "" {
			return fmt.Errorf("simserver: jobs[%d]: title is required", i)
		}
	}
	for i, cand := range f.Candidates {
		if strings.TrimSpace(cand.Name) == "" {
			return fmt.Errorf("simserver: candidates[%d]: name is required", i)
		}
	}
	for i, entry := range f.Queue {
		if strings.TrimSpace(entry.Name) == "" {
			return fmt.Errorf("simserver: queue[%d]: name is required", i)
		}
	}
	for i, stage := range f.Stages {
		if strings.TrimSpace(stage.Stage) == "" {
			return fmt.Errorf("simserver: stages[%d]: stage is required", i)
		}
		if stage.Count < 0 {
			return fmt.Errorf("simserver: stages[%d]: count must not be negative", i)
		}
	}
	if len(f.Stages) > 0 && f.Stages[0].Count == 0 {
		return fmt.Errorf("simserver: stages[0] needs a non-zero count to anchor percentages")
	}
	return nil
}

// withDefaults fills empty sections from the built-in seed.
func (f Fixture) withDefaults() Fixture {
	def := DefaultFixture()
	if strings.TrimSpace(f.Company) == "" {
		f.Company = def.Company
	}
	if len(f.Agents) == 0 {
		f.Agents = def.Agents
	}
	if len(f.Jobs) == 0 {
		f.Jobs = def.Jobs
	}
	if len(f.Candidates) == 0 {
		f.Candidates = def.Candidates
	}
	if len(f.Queue) == 0 {
		f.Queue = def.Queue
	}
	if len(f.Stages) == 0 {
		f.Stages = def.Stages
	}
	return f
}

// LoadFixture reads and validates a YAML fixture file.
func LoadFixture(path string) (Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("simserver: read fixtures %s: %w", path, err)
	}
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Fixture{}, fmt.Errorf("simserver: parse fixtures %s: %w", path, err)
	}
	if err := f.Validate(); err != nil {
		return Fixture{}, fmt.Errorf("simserver: fixtures %s: %w", path, err)
	}
	return f, nil
}

// DefaultFixture returns the built-in seed: a small but complete recruiting
// world with enough variety to exercise every dashboard pane.
func DefaultFixture() Fixture {
	return Fixture{
		Company: "VanguardLab",
		Agents: []AgentSeed{
			{Name: "gateway", Description: "External API gateway and rate limiting", Handlers: []string{"route", "throttle"}},
			{Name: "sourcer", Description: "Candidate discovery across research and code platforms", Handlers: []string{"search_candidates", "search_researchers"}},
			{Name: "screener", Description: "AI screening with human-review escalation", Handlers: []string{"screen_candidate", "get_queue"}},
			{Name: "matcher", Description: "Candidate-to-role matching and ranking", Handlers: []string{"match", "rank"}},
			{Name: "pipeline", Description: "Hiring pipeline stage tracking", Handlers: []string{"advance", "summary"}},
			{Name: "audit", Description: "Compliance trail and oversight reporting", Handlers: []string{"log_decision", "compliance_report"}},
		},
		Jobs: []JobSeed{
			{
				ID: "JOB-4821", Title: "Senior Robotics Engineer", Department: "Autonomy",
				Location: "Boston, MA", Skills: []string{"ROS/ROS2", "C++", "Motion Planning"},
				ExperienceMin: 5, SalaryRange: "$180K-$240K", Priority: "high",
			},
			{
				ID: "JOB-4822", Title: "ML Engineer - Perception", Department: "Vision",
				Location: "Remote", Skills: []string{"PyTorch", "Computer Vision", "SLAM"},
				ExperienceMin: 3, SalaryRange: "$170K-$220K", Priority: "high",
			},
			{
				ID: "JOB-4830", Title: "Research Scientist", Department: "Foundation Models",
				Location: "San Francisco, CA", Skills: []string{"Python", "Reinforcement Learning", "LLMs for Robotics"},
				ExperienceMin: 2, SalaryRange: "$200K-$300K", Priority: "medium",
			},
		},
		Candidates: []CandidateSeed{
			{ID: "CAND-10284", Name: "Sasha Chen", Title: "Senior Robotics Engineer", Company: "Boston Dynamics", Years: 8, Education: "PhD - MIT", Skills: []string{"ROS/ROS2", "C++", "Motion Planning", "Control Systems"}, Location: "Boston, MA", Score: 0.94, Availability: "Open to Opportunities", Source: "Papers with Code"},
			{ID: "CAND-10291", Name: "Jordan Patel", Title: "Computer Vision Researcher", Company: "Stanford (Postdoc)", Years: 5, Education: "PhD - Stanford", Skills: []string{"Computer Vision", "SLAM", "PyTorch"}, Location: "San Francisco, CA", Score: 0.91, Availability: "Actively Looking", Source: "ArXiv"},
			{ID: "CAND-10307", Name: "Riley Nakamura", Title: "Autonomy Software Engineer", Company: "Waymo", Years: 6, Education: "MS - CMU", Skills: []string{"C++", "Motion Planning", "Sensor Fusion"}, Location: "Mountain View, CA", Score: 0.89, Availability: "Passive", Source: "GitHub"},
			{ID: "CAND-10315", Name: "Morgan Okonkwo", Title: "ML Engineer - Robotics", Company: "Covariant", Years: 4, Education: "PhD - UC Berkeley", Skills: []string{"PyTorch", "Reinforcement Learning", "Isaac Sim"}, Location: "Berkeley, CA", Score: 0.88, Availability: "Open to Opportunities", Source: "HuggingFace"},
			{ID: "CAND-10322", Name: "Quinn Johansson", Title: "Research Scientist", Company: "ETH Zurich", Years: 3, Education: "PhD - ETH Zurich", Skills: []string{"Python", "Foundation Models", "Diffusion Models"}, Location: "Zurich, Switzerland", Score: 0.87, Availability: "Actively Looking", Source: "Semantic Scholar"},
			{ID: "CAND-10338", Name: "Avery Singh", Title: "Staff Software Engineer - Perception", Company: "NVIDIA", Years: 9, Education: "MS - Georgia Tech", Skills: []string{"Computer Vision", "C++", "TensorRT"}, Location: "Austin, TX", Score: 0.85, Availability: "Passive", Source: "GitHub"},
			{ID: "CAND-10344", Name: "Dakota Mueller", Title: "Independent Researcher", Company: "Independent Researcher", Years: 7, Education: "PhD - TUM", Skills: []string{"SLAM", "Sensor Fusion", "Embedded Systems"}, Location: "Munich, Germany", Score: 0.83, Availability: "Actively Looking", Source: "Zenodo"},
			{ID: "CAND-10359", Name: "Kai Rodriguez", Title: "Postdoctoral Researcher", Company: "MIT CSAIL", Years: 2, Education: "PhD - MIT", Skills: []string{"Reinforcement Learning", "JAX", "LLMs for Robotics"}, Location: "Cambridge, MA", Score: 0.82, Availability: "Open to Opportunities", Source: "Papers with Code"},
		},
		Queue: []QueueSeed{
			{
				CandidateID: "CAND-10291", Name: "Jordan Patel", Title: "Computer Vision Researcher",
				Overall: 0.91, Technical: 0.95, Experience: 0.88, Education: 0.97, Cultural: 0.84,
				Notes: "Strong publication record; verify industry pacing fit.",
			},
			{
				CandidateID: "CAND-10344", Name: "Dakota Mueller", Title: "Independent Researcher",
				Overall: 0.83, Technical: 0.9, Experience: 0.81, Education: 0.92, Cultural: 0.69,
				RedFlags: []string{"no_team_experience_recent"},
				Notes:    "Excellent SLAM depth; solo work for the last three years.",
			},
			{
				CandidateID: "CAND-10359", Name: "Kai Rodriguez", Title: "Postdoctoral Researcher",
				Overall: 0.82, Technical: 0.88, Experience: 0.64, Education: 0.98, Cultural: 0.86,
				RedFlags: []string{"below_experience_minimum"},
				Notes:    "Research trajectory outweighs the experience gap.",
			},
		},
		Stages: []StageSeed{
			{Stage: "sourced", Display: "Sourced", Count: 124},
			{Stage: "screened", Display: "Screened", Count: 86},
			{Stage: "phone_screen", Display: "Phone Screen", Count: 41},
			{Stage: "technical", Display: "Technical", Count: 18},
			{Stage: "offer", Display: "Offer", Count: 7},
			{Stage: "hired", Display: "Hired", Count: 4},
		},
	}
}
