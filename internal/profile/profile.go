// Package profile describes deck arrangements: which snapshot slots a
// dashboard fetches, which tabs it shows, and how it brands itself. Built-in
// decks cover the recruiting and robotics backends; custom decks load from
// YAML under .crewdeck/profiles.
package profile

import (
	"fmt"
	"strings"

	"github.com/crewdeck/crewdeck/internal/api"
)

// Slot pairs a snapshot key with the GET endpoint that fills it.
type Slot struct {
	Key  string `json:"key" yaml:"key"`
	Path string `json:"path" yaml:"path"`
}

// Tab describes one selectable dashboard pane.
type Tab struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`

	// Slot is the snapshot slot the pane renders. Empty for panes that render
	// local state instead (the activity feed).
	Slot string `json:"slot,omitempty" yaml:"slot,omitempty"`

	// Internal tabs are visible only when internal mode is on.
	Internal bool `json:"internal,omitempty" yaml:"internal,omitempty"`

	// Review tabs are visible only while the screening queue has entries;
	// their title carries a count badge.
	Review bool `json:"review,omitempty" yaml:"review,omitempty"`

	// Raw panes render the slot body as indented JSON instead of a typed view.
	Raw bool `json:"raw,omitempty" yaml:"raw,omitempty"`
}

// Profile describes a complete deck: branding, fetch plan and tab set.
type Profile struct {
	ID           string `json:"id" yaml:"id"`
	Name         string `json:"name" yaml:"name"`
	InternalName string `json:"internal_name,omitempty" yaml:"internal_name,omitempty"`
	Tagline      string `json:"tagline,omitempty" yaml:"tagline,omitempty"`
	Slots        []Slot `json:"slots" yaml:"slots"`
	Tabs         []Tab  `json:"tabs" yaml:"tabs"`
}

// Normalized returns a trimmed, copy-on-write variant of the profile.
func (p Profile) Normalized() Profile {
	clone := Profile{
		ID:           strings.TrimSpace(p.ID),
		Name:         strings.TrimSpace(p.Name),
		InternalName: strings.TrimSpace(p.InternalName),
		Tagline:      strings.TrimSpace(p.Tagline),
	}
	if len(p.Slots) > 0 {
		clone.Slots = make([]Slot, len(p.Slots))
		for i, slot := range p.Slots {
			clone.Slots[i] = Slot{
				Key:  strings.TrimSpace(slot.Key),
				Path: strings.TrimSpace(slot.Path),
			}
		}
	}
	if len(p.Tabs) > 0 {
		clone.Tabs = make([]Tab, len(p.Tabs))
		for i, tab := range p.Tabs {
			clone.Tabs[i] = Tab{
				ID:       strings.TrimSpace(tab.ID),
				Title:    strings.TrimSpace(tab.Title),
				Slot:     strings.TrimSpace(tab.Slot),
				Internal: tab.Internal,
				Review:   tab.Review,
				Raw:      tab.Raw,
			}
		}
	}
	return clone
}

// Validate ensures the profile is well-formed and internally consistent:
// every tab that names a slot must name one the fetch plan declares.
func (p Profile) Validate() error {
	normalized := p.Normalized()
	if normalized.ID == "" {
		return fmt.Errorf("profile: id is required")
	}
	if normalized.Name == "" {
		return fmt.Errorf("profile %s: name is required", normalized.ID)
	}
	if len(normalized.Slots) == 0 {
		return fmt.Errorf("profile %s: at least one slot is required", normalized.ID)
	}
	slotKeys := make(map[string]struct{}, len(normalized.Slots))
	for idx, slot := range normalized.Slots {
		if slot.Key == "" {
			return fmt.Errorf("profile %s: slots[%d]: key is required", normalized.ID, idx)
		}
		if !strings.HasPrefix(slot.Path, "/") {
			return fmt.Errorf("profile %s: slots[%d]: path must start with /", normalized.ID, idx)
		}
		if _, exists := slotKeys[slot.Key]; exists {
			return fmt.Errorf("profile %s: duplicate slot key %s", normalized.ID, slot.Key)
		}
		slotKeys[slot.Key] = struct{}{}
	}
	if len(normalized.Tabs) == 0 {
		return fmt.Errorf("profile %s: at least one tab is required", normalized.ID)
	}
	tabIDs := make(map[string]struct{}, len(normalized.Tabs))
	for idx, tab := range normalized.Tabs {
		if tab.ID == "" {
			return fmt.Errorf("profile %s: tabs[%d]: id is required", normalized.ID, idx)
		}
		if tab.Title == "" {
			return fmt.Errorf("profile %s: tab %s: title is required", normalized.ID, tab.ID)
		}
		if _, exists := tabIDs[tab.ID]; exists {
			return fmt.Errorf("profile %s: duplicate tab id %s", normalized.ID, tab.ID)
		}
		tabIDs[tab.ID] = struct{}{}
		if tab.Slot != "" {
			if _, ok := slotKeys[tab.Slot]; !ok {
				return fmt.Errorf("profile %s: tab %s: slot %s is not declared", normalized.ID, tab.ID, tab.Slot)
			}
		}
		if tab.Review {
			if _, ok := slotKeys[api.SlotScreening]; !ok {
				return fmt.Errorf("profile %s: tab %s: review tabs need the %s slot fetched", normalized.ID, tab.ID, api.SlotScreening)
			}
		}
	}
	return nil
}

// FetchPlan converts the declared slots into the batch-fetch plan.
func (p Profile) FetchPlan() []api.Slot {
	plan := make([]api.Slot, len(p.Slots))
	for i, slot := range p.Slots {
		plan[i] = api.Slot{Key: slot.Key, Path: slot.Path}
	}
	return plan
}

// Branding returns the header text for the given mode. Internal mode falls
// back to the public name when no internal variant is set.
func (p Profile) Branding(internal bool) string {
	if internal && p.InternalName != "" {
		return p.InternalName
	}
	return p.Name
}

// VisibleTabs filters the tab set for the current mode and screening queue
// depth. Tab order is preserved; visibility never triggers a fetch.
func (p Profile) VisibleTabs(internal bool, queueLength int) []Tab {
	visible := make([]Tab, 0, len(p.Tabs))
	for _, tab := range p.Tabs {
		if tab.Internal && !internal {
			continue
		}
		if tab.Review && queueLength <= 0 {
			continue
		}
		visible = append(visible, tab)
	}
	return visible
}
