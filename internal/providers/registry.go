package providers

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrProviderUnavailable is returned when the configured provider was not
// registered, usually because its credentials are missing
var ErrProviderUnavailable = errors.New("provider not available")

// Registry maps provider IDs to the providers this process can stream from
type Registry struct {
	providers map[string]Provider
	mu        sync.RWMutex
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds or replaces the provider under id
func (r *Registry) Register(id string, provider Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[id] = provider
}

// Get returns the provider registered under id, or nil
func (r *Registry) Get(id string) Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.providers[id]
}

// Select returns the provider that serves chat turns. The error names the
// registered IDs so a misconfiguration is visible at startup.
func (r *Registry) Select(id string) (Provider, error) {
	if p := r.Get(id); p != nil {
		return p, nil
	}
	return nil, fmt.Errorf("%w: %q (registered: %v)", ErrProviderUnavailable, id, r.List())
}

// List returns all registered provider IDs in sorted order
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.providers))
	for id := range r.providers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Names returns the display name of every registered provider, ordered by ID
func (r *Registry) Names() []string {
	ids := r.List()
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, r.Get(id).Name())
	}
	return names
}
