package playback

import "time"

// Step is one scripted feed entry plus the pause that precedes it.
type Step struct {
	Agent   string
	Message string
	Kind    Kind
	Delay   time.Duration
}

// Script is an ordered demo sequence. The content and delays are constants:
// replaying a script twice yields identical (agent, message, kind) tuples,
// only the timestamps differ.
type Script []Step

// DefaultScript is the hiring-workflow demo replayed by the recruit profile.
// Agent names match the backend fleet so the feed reads like live traffic.
func DefaultScript() Script {
	return Script{
		{Agent: "orchestrator", Message: "Workflow full_hiring_pipeline started", Kind: KindInfo, Delay: 400 * time.Millisecond},
		{Agent: "gateway", Message: "Request validated, rate limits clear", Kind: KindInfo, Delay: 350 * time.Millisecond},
		{Agent: "sourcer", Message: "Searching 16 elite sources for Robotics Engineer candidates", Kind: KindAction, Delay: 700 * time.Millisecond},
		{Agent: "sourcer", Message: "Sourced 25 candidates, 6 independent researchers flagged", Kind: KindSuccess, Delay: 500 * time.Millisecond},
		{Agent: "screener", Message: "Scoring batch on technical/experience/education/cultural axes", Kind: KindAction, Delay: 650 * time.Millisecond},
		{Agent: "screener", Message: "18 screened: 5 auto-approved, 4 queued for human review", Kind: KindSuccess, Delay: 500 * time.Millisecond},
		{Agent: "matcher", Message: "Matching approved candidates against open requisitions", Kind: KindAction, Delay: 600 * time.Millisecond},
		{Agent: "matcher", Message: "Top match score 0.94, shortlist of 5 prepared", Kind: KindSuccess, Delay: 450 * time.Millisecond},
		{Agent: "pipeline", Message: "5 candidates advanced to phone_screen", Kind: KindInfo, Delay: 400 * time.Millisecond},
		{Agent: "audit", Message: "Decisions recorded to the compliance trail", Kind: KindInfo, Delay: 350 * time.Millisecond},
		{Agent: "orchestrator", Message: "Workflow complete, collecting summary", Kind: KindSuccess, Delay: 300 * time.Millisecond},
	}
}
