package profile

import "github.com/crewdeck/crewdeck/internal/api"

// Robotics raw-slot keys. These have no typed model; their panes render the
// body verbatim.
const (
	SlotRobot    = "robot"
	SlotSensors  = "sensors"
	SlotVision   = "vision"
	SlotMission  = "mission"
	SlotAutonomy = "autonomy"
)

// Recruit returns the built-in talent deck: typed views over the recruiting
// backend, with audit panes reserved for internal mode.
func Recruit() Profile {
	return Profile{
		ID:           "recruit",
		Name:         "Talent Command Center",
		InternalName: "Talent Ops Deck (internal)",
		Tagline:      "agent fleet for sourcing, screening and matching",
		Slots: []Slot{
			{Key: api.SlotService, Path: "/"},
			{Key: api.SlotAgents, Path: "/api/agents"},
			{Key: api.SlotStats, Path: "/api/dashboard/stats"},
			{Key: api.SlotPipeline, Path: "/api/pipeline"},
			{Key: api.SlotFunnel, Path: "/api/pipeline/funnel"},
			{Key: api.SlotJobs, Path: "/api/jobs"},
			{Key: api.SlotScreening, Path: "/api/screening/queue"},
			{Key: api.SlotSources, Path: "/api/sources"},
			{Key: api.SlotCompliance, Path: "/api/audit/compliance-report"},
		},
		Tabs: []Tab{
			{ID: "overview", Title: "Overview", Slot: api.SlotStats},
			{ID: "agents", Title: "Agents", Slot: api.SlotAgents},
			{ID: "funnel", Title: "Funnel", Slot: api.SlotFunnel},
			{ID: "jobs", Title: "Jobs", Slot: api.SlotJobs},
			{ID: "review", Title: "Review", Slot: api.SlotScreening, Review: true},
			{ID: "activity", Title: "Activity"},
			{ID: "sources", Title: "Sources", Slot: api.SlotSources, Internal: true},
			{ID: "compliance", Title: "Compliance", Slot: api.SlotCompliance, Internal: true},
		},
	}
}

// Robotics returns the built-in mission-control deck: raw JSON panes over the
// robotics backend, with autonomy controls reserved for internal mode.
func Robotics() Profile {
	return Profile{
		ID:           "robotics",
		Name:         "PhysicalAI Mission Control",
		InternalName: "PhysicalAI Field Ops (internal)",
		Tagline:      "multi-agent platform for autonomous systems",
		Slots: []Slot{
			{Key: api.SlotService, Path: "/"},
			{Key: api.SlotAgents, Path: "/api/agents"},
			{Key: SlotRobot, Path: "/api/robot/status"},
			{Key: SlotSensors, Path: "/api/sensors"},
			{Key: SlotVision, Path: "/api/vision/detections"},
			{Key: SlotMission, Path: "/api/mission"},
			{Key: SlotAutonomy, Path: "/api/autonomy/level"},
		},
		Tabs: []Tab{
			{ID: "overview", Title: "Overview", Slot: api.SlotService},
			{ID: "agents", Title: "Agents", Slot: api.SlotAgents},
			{ID: "robot", Title: "Robot", Slot: SlotRobot, Raw: true},
			{ID: "sensors", Title: "Sensors", Slot: SlotSensors, Raw: true},
			{ID: "vision", Title: "Vision", Slot: SlotVision, Raw: true},
			{ID: "mission", Title: "Mission", Slot: SlotMission, Raw: true},
			{ID: "activity", Title: "Activity"},
			{ID: "autonomy", Title: "Autonomy", Slot: SlotAutonomy, Raw: true, Internal: true},
		},
	}
}

// NewBuiltinRegistry returns a registry preloaded with the built-in decks.
func NewBuiltinRegistry() *Registry {
	reg := NewRegistry()
	reg.MustRegister(Recruit())
	reg.MustRegister(Robotics())
	return reg
}
