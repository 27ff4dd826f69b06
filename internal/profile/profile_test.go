package profile

import (
	"strings"
	"testing"

	"github.com/crewdeck/crewdeck/internal/api"
)

func validProfile() Profile {
	return Profile{
		ID:   "minimal",
		Name: "Minimal Deck",
		Slots: []Slot{
			{Key: api.SlotService, Path: "/"},
			{Key: api.SlotScreening, Path: "/api/screening/queue"},
		},
		Tabs: []Tab{
			{ID: "overview", Title: "Overview", Slot: api.SlotService},
			{ID: "review", Title: "Review", Slot: api.SlotScreening, Review: true},
		},
	}
}

func TestProfileValidate(t *testing.T) {
	if err := validProfile().Validate(); err != nil {
		t.Fatalf("valid profile rejected: %v", err)
	}

	cases := []struct {
		name    string
		mutate  func(*Profile)
		wantErr string
	}{
		{"missing id", func(p *Profile) { p.ID = "  " }, "id is required"},
		{"missing name", func(p *Profile) { p.Name = "" }, "name is required"},
		{"no slots", func(p *Profile) { p.Slots = nil }, "at least one slot"},
		{"blank slot key", func(p *Profile) { p.Slots[0].Key = "" }, "key is required"},
		{"relative slot path", func(p *Profile) { p.Slots[0].Path = "api/agents" }, "must start with /"},
		{"duplicate slot key", func(p *Profile) { p.Slots[1].Key = p.Slots[0].Key }, "duplicate slot key"},
		{"no tabs", func(p *Profile) { p.Tabs = nil }, "at least one tab"},
		{"blank tab id", func(p *Profile) { p.Tabs[0].ID = "" }, "id is required"},
		{"blank tab title", func(p *Profile) { p.Tabs[0].Title = " " }, "title is required"},
		{"duplicate tab id", func(p *Profile) { p.Tabs[1].ID = p.Tabs[0].ID }, "duplicate tab id"},
		{"undeclared tab slot", func(p *Profile) { p.Tabs[0].Slot = "ghost" }, "not declared"},
		{"review without screening slot", func(p *Profile) {
			p.Slots = p.Slots[:1]
			p.Tabs[1].Slot = p.Slots[0].Key
		}, "review tabs need"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := validProfile()
			tc.mutate(&p)
			err := p.Validate()
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tc.wantErr)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("error %q does not contain %q", err, tc.wantErr)
			}
		})
	}
}

func TestProfileNormalizedTrims(t *testing.T) {
	p := Profile{
		ID:   " deck ",
		Name: " Deck ",
		Slots: []Slot{
			{Key: " service ", Path: " / "},
		},
		Tabs: []Tab{
			{ID: " overview ", Title: " Overview ", Slot: " service "},
		},
	}
	got := p.Normalized()
	if got.ID != "deck" || got.Slots[0].Key != "service" || got.Tabs[0].Slot != "service" {
		t.Fatalf("normalization did not trim: %+v", got)
	}
}

func TestFetchPlanMirrorsSlots(t *testing.T) {
	p := Recruit()
	plan := p.FetchPlan()
	if len(plan) != len(p.Slots) {
		t.Fatalf("plan has %d slots, profile declares %d", len(plan), len(p.Slots))
	}
	for i, slot := range plan {
		if slot.Key != p.Slots[i].Key || slot.Path != p.Slots[i].Path {
			t.Fatalf("plan[%d] = %+v, want %+v", i, slot, p.Slots[i])
		}
	}
}

func TestBranding(t *testing.T) {
	p := Recruit()
	if got := p.Branding(false); got != p.Name {
		t.Fatalf("public branding = %q, want %q", got, p.Name)
	}
	if got := p.Branding(true); got != p.InternalName {
		t.Fatalf("internal branding = %q, want %q", got, p.InternalName)
	}

	p.InternalName = ""
	if got := p.Branding(true); got != p.Name {
		t.Fatalf("internal branding without variant = %q, want fallback %q", got, p.Name)
	}
}

func TestVisibleTabsGating(t *testing.T) {
	p := Recruit()

	contains := func(tabs []Tab, id string) bool {
		for _, tab := range tabs {
			if tab.ID == id {
				return true
			}
		}
		return false
	}

	public := p.VisibleTabs(false, 0)
	if contains(public, "review") {
		t.Fatal("review tab visible with empty queue")
	}
	if contains(public, "compliance") || contains(public, "sources") {
		t.Fatal("internal tabs visible in public mode")
	}

	withQueue := p.VisibleTabs(false, 3)
	if !contains(withQueue, "review") {
		t.Fatal("review tab hidden with non-empty queue")
	}

	internal := p.VisibleTabs(true, 0)
	if !contains(internal, "compliance") || !contains(internal, "sources") {
		t.Fatal("internal tabs hidden in internal mode")
	}

	// Order must follow the declaration, never the gate evaluation.
	var wantOrder []string
	for _, tab := range p.Tabs {
		if tab.Review {
			continue
		}
		wantOrder = append(wantOrder, tab.ID)
	}
	got := p.VisibleTabs(true, 0)
	if len(got) != len(wantOrder) {
		t.Fatalf("visible count = %d, want %d", len(got), len(wantOrder))
	}
	for i, tab := range got {
		if tab.ID != wantOrder[i] {
			t.Fatalf("tab %d = %s, want %s", i, tab.ID, wantOrder[i])
		}
	}
}

func TestBuiltinProfilesAreValid(t *testing.T) {
	for _, p := range []Profile{Recruit(), Robotics()} {
		if err := p.Validate(); err != nil {
			t.Errorf("builtin %s invalid: %v", p.ID, err)
		}
	}
}

func TestRoboticsRawTabs(t *testing.T) {
	p := Robotics()
	rawSlots := map[string]bool{}
	for _, tab := range p.Tabs {
		if tab.Raw {
			rawSlots[tab.Slot] = true
		}
	}
	for _, key := range []string{SlotRobot, SlotSensors, SlotVision, SlotMission, SlotAutonomy} {
		if !rawSlots[key] {
			t.Errorf("expected a raw tab over slot %s", key)
		}
	}
}
