// Package registry manages the set of configured MCP servers.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/mkarren/toolgate/internal/models"
)

// entry pairs a server config with its registration sequence number.
// The sequence number breaks priority ties deterministically.
type entry struct {
	config models.ServerConfig
	seq    int
}

func cloneConfig(c models.ServerConfig) models.ServerConfig {
	out := c
	if c.Tags != nil {
		out.Tags = append([]string(nil), c.Tags...)
	}
	if c.Metadata != nil {
		out.Metadata = make(map[string]string, len(c.Metadata))
		for k, v := range c.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

// Registry holds configured servers. It is purely in-memory; mutating it has
// no effect on any catalog snapshot already built from it.
type Registry struct {
	mu      sync.RWMutex
	servers map[string]*entry
	nextSeq int
}

// New creates an empty server registry.
func New() *Registry {
	return &Registry{servers: make(map[string]*entry)}
}

// Add registers a new server. It fails with ErrDuplicateServer if a server
// with the same name is already present.
func (r *Registry) Add(cfg models.ServerConfig) error {
	if cfg.Name == "" {
		return ErrEmptyName
	}
	if cfg.TimeoutSeconds <= 0 {
		return fmt.Errorf("server %q: timeout_seconds must be positive", cfg.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.servers[cfg.Name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateServer, cfg.Name)
	}

	r.servers[cfg.Name] = &entry{config: cloneConfig(cfg), seq: r.nextSeq}
	r.nextSeq++
	return nil
}

// Remove deletes a server. It fails with ErrUnknownServer if absent.
func (r *Registry) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.servers[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownServer, name)
	}
	delete(r.servers, name)
	return nil
}

// SetEnabled flips the enabled flag of a server.
func (r *Registry) SetEnabled(name string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.servers[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownServer, name)
	}
	e.config.Enabled = enabled
	return nil
}

// SetPriority changes the collision-resolution priority of a server.
// Lower values are preferred.
func (r *Registry) SetPriority(name string, priority int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.servers[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownServer, name)
	}
	e.config.Priority = priority
	return nil
}

// Get retrieves a server config by name. The returned config is a deep copy.
func (r *Registry) Get(name string) (models.ServerConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.servers[name]
	if !ok {
		return models.ServerConfig{}, false
	}
	return cloneConfig(e.config), true
}

// List returns all servers, optionally filtered by tag, ordered by ascending
// priority with ties broken by registration order. Pass an empty tag for no
// filtering. Returned configs are deep copies.
func (r *Registry) List(filterTag string) []models.ServerConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]*entry, 0, len(r.servers))
	for _, e := range r.servers {
		if filterTag != "" && !e.config.HasTag(filterTag) {
			continue
		}
		entries = append(entries, e)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].config.Priority != entries[j].config.Priority {
			return entries[i].config.Priority < entries[j].config.Priority
		}
		return entries[i].seq < entries[j].seq
	})

	out := make([]models.ServerConfig, 0, len(entries))
	for _, e := range entries {
		out = append(out, cloneConfig(e.config))
	}
	return out
}

// Enabled returns only enabled servers, in the same order as List.
func (r *Registry) Enabled() []models.ServerConfig {
	all := r.List("")
	out := all[:0]
	for _, c := range all {
		if c.Enabled {
			out = append(out, c)
		}
	}
	return out
}

// Count returns the number of registered servers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.servers)
}
