// Package catalog aggregates tool descriptors across all enabled servers
// into immutable, atomically replaced snapshots.
package catalog

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mkarren/toolgate/internal/models"
	"github.com/mkarren/toolgate/internal/registry"
	"github.com/mkarren/toolgate/internal/security"
	"github.com/mkarren/toolgate/internal/transport"
)

// Screener admits or rejects a tool during a build pass.
type Screener interface {
	ScreenRegistration(ctx context.Context, tool models.ToolDescriptor) error
}

// Snapshot is a point-in-time aggregated view of tools. It is never mutated
// after construction; a rebuild produces a new snapshot and swaps it in.
type Snapshot struct {
	tools       map[string]models.ToolDescriptor
	unreachable []string
	builtAt     time.Time
}

func emptySnapshot() *Snapshot {
	return &Snapshot{tools: map[string]models.ToolDescriptor{}}
}

// Find returns the winning descriptor for an exact tool name.
func (s *Snapshot) Find(name string) (models.ToolDescriptor, bool) {
	d, ok := s.tools[name]
	return d, ok
}

// Search matches the query case-insensitively against tool names and
// descriptions. Results are ordered by tool name, so the same snapshot
// always produces the same sequence.
func (s *Snapshot) Search(query string) []models.ToolDescriptor {
	q := strings.ToLower(query)
	var out []models.ToolDescriptor
	for _, d := range s.tools {
		if strings.Contains(strings.ToLower(d.Name), q) ||
			strings.Contains(strings.ToLower(d.Description), q) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Tools returns every descriptor in the snapshot, ordered by name.
func (s *Snapshot) Tools() []models.ToolDescriptor {
	out := make([]models.ToolDescriptor, 0, len(s.tools))
	for _, d := range s.tools {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Unreachable lists the servers that failed to respond during the build.
func (s *Snapshot) Unreachable() []string {
	return append([]string(nil), s.unreachable...)
}

// Len returns the number of tools in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.tools)
}

// BuiltAt reports when the snapshot was assembled.
func (s *Snapshot) BuiltAt() time.Time {
	return s.builtAt
}

// Catalog builds and serves snapshots. Readers always see either the
// previous snapshot or the new one in full, never a partial build.
type Catalog struct {
	registry  *registry.Registry
	transport transport.Transport
	screener  Screener

	current atomic.Pointer[Snapshot]
}

// New creates a catalog over the given registry, transport, and screener.
func New(reg *registry.Registry, tr transport.Transport, screener Screener) *Catalog {
	c := &Catalog{registry: reg, transport: tr, screener: screener}
	c.current.Store(emptySnapshot())
	return c
}

// listing is the outcome of one server's list-tools call during a build.
type listing struct {
	server models.ServerConfig
	tools  []models.ToolDescriptor
	err    error
}

// Build lists tools from every enabled server concurrently, screens each
// descriptor, resolves name collisions, and atomically installs the result
// as the current snapshot. Unreachable servers degrade the snapshot; they
// never fail the build. The returned snapshot is the one installed.
func (c *Catalog) Build(ctx context.Context) (*Snapshot, error) {
	servers := c.registry.Enabled()

	// One task per server, each bounded by its own timeout. Results keep
	// the registry's priority-then-insertion order so collision resolution
	// below is a plain first-wins scan.
	listings := make([]listing, len(servers))
	var wg sync.WaitGroup
	for i, server := range servers {
		wg.Add(1)
		go func(i int, server models.ServerConfig) {
			defer wg.Done()
			tools, err := c.transport.ListTools(ctx, server.Address, server.Timeout())
			listings[i] = listing{server: server, tools: tools, err: err}
		}(i, server)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	next := &Snapshot{
		tools:   make(map[string]models.ToolDescriptor),
		builtAt: time.Now().UTC(),
	}

	for _, l := range listings {
		if l.err != nil {
			log.Printf("catalog: server %q unreachable during build: %v", l.server.Name, l.err)
			next.unreachable = append(next.unreachable, l.server.Name)
			continue
		}
		for _, tool := range l.tools {
			if _, taken := next.tools[tool.Name]; taken {
				// A lower-priority-value (or earlier-registered) server
				// already offers this name.
				continue
			}

			tool.ServerName = l.server.Name
			tool.Priority = l.server.Priority

			if err := c.screener.ScreenRegistration(ctx, tool); err != nil {
				if security.IsViolation(err) {
					log.Printf("catalog: tool %q from %q excluded by screening", tool.Name, l.server.Name)
				} else {
					log.Printf("catalog: tool %q from %q excluded, screening failed: %v", tool.Name, l.server.Name, err)
				}
				continue
			}
			next.tools[tool.Name] = tool
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.current.Store(next)
	return next, nil
}

// Snapshot returns the current snapshot. It is safe to call concurrently
// with Build.
func (c *Catalog) Snapshot() *Snapshot {
	return c.current.Load()
}

// Find looks up a tool in the current snapshot.
func (c *Catalog) Find(name string) (models.ToolDescriptor, bool) {
	return c.Snapshot().Find(name)
}

// Search queries the current snapshot.
func (c *Catalog) Search(query string) []models.ToolDescriptor {
	return c.Snapshot().Search(query)
}
