package profile

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maintains known deck profiles.
type Registry struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{profiles: map[string]Profile{}}
}

// Register validates and installs a profile. Returns an error if the ID
// already exists.
func (r *Registry) Register(p Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	normalized := p.Normalized()
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.profiles[normalized.ID]; exists {
		return fmt.Errorf("profile: %s already registered", normalized.ID)
	}
	r.profiles[normalized.ID] = normalized
	return nil
}

// MustRegister panics if registration fails.
func (r *Registry) MustRegister(p Profile) {
	if err := r.Register(p); err != nil {
		panic(err)
	}
}

// Resolve returns the profile registered under id.
func (r *Registry) Resolve(id string) (Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[id]
	if !ok {
		return Profile{}, fmt.Errorf("profile: unknown id %s", id)
	}
	return p, nil
}

// IDs returns a sorted list of registered profile identifiers.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.profiles))
	for id := range r.profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
