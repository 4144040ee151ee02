// Package client wires the registry, catalog, router, and security manager
// into one multi-server MCP client.
package client

import (
	"context"
	"fmt"

	"github.com/mkarren/toolgate/internal/audit"
	"github.com/mkarren/toolgate/internal/catalog"
	"github.com/mkarren/toolgate/internal/config"
	"github.com/mkarren/toolgate/internal/models"
	"github.com/mkarren/toolgate/internal/registry"
	"github.com/mkarren/toolgate/internal/router"
	"github.com/mkarren/toolgate/internal/security"
	"github.com/mkarren/toolgate/internal/store"
	"github.com/mkarren/toolgate/internal/transport"
)

// Options overrides external collaborators; zero values select the real
// implementations. Tests inject fakes here.
type Options struct {
	Transport  transport.Transport
	Classifier security.Classifier
}

// Stats aggregates counters across all components.
type Stats struct {
	Servers     int                   `json:"servers"`
	Tools       int                   `json:"tools"`
	Unreachable int                   `json:"unreachable"`
	Screening   models.ScreeningStats `json:"screening"`
	Routing     router.Stats          `json:"routing"`
}

// Client is the aggregated multi-server MCP client.
type Client struct {
	registry *registry.Registry
	security *security.Manager
	catalog  *catalog.Catalog
	router   *router.Router
	auditDB  *store.Store
}

// New builds a client from configuration. Servers listed in the config are
// registered; the catalog stays empty until Refresh is called.
func New(cfg *config.Config, opts Options) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	reg := registry.New()
	for _, s := range cfg.Servers {
		if err := reg.Add(s); err != nil {
			return nil, fmt.Errorf("register server %q: %w", s.Name, err)
		}
	}

	policy := cfg.SecurityPolicy()

	classifier := opts.Classifier
	if classifier == nil && policy.Mode != security.ModeDisabled {
		gc, err := security.NewGuardClient(security.GuardOptions{Region: cfg.GuardRegion})
		if err != nil {
			return nil, fmt.Errorf("create classifier: %w", err)
		}
		classifier = gc
	}

	var auditDB *store.Store
	var recorder security.Recorder
	if cfg.AuditDB != "" {
		db, err := store.New(cfg.AuditDB)
		if err != nil {
			return nil, fmt.Errorf("open audit db: %w", err)
		}
		auditDB = db
		recorder = audit.NewRecorder(db)
	}

	manager, err := security.NewManager(classifier, policy, recorder)
	if err != nil {
		if auditDB != nil {
			auditDB.Close()
		}
		return nil, err
	}

	tr := opts.Transport
	if tr == nil {
		tr = transport.NewSDKTransport("toolgate", "0.1.0")
	}

	cat := catalog.New(reg, tr, manager)
	rt := router.New(cat, reg, tr, manager)

	return &Client{
		registry: reg,
		security: manager,
		catalog:  cat,
		router:   rt,
		auditDB:  auditDB,
	}, nil
}

// Refresh rebuilds the tool catalog from all enabled servers.
func (c *Client) Refresh(ctx context.Context) (*catalog.Snapshot, error) {
	return c.catalog.Build(ctx)
}

// CallTool performs one screened tool call.
func (c *Client) CallTool(ctx context.Context, name string, arguments map[string]any) (transport.CallResult, error) {
	return c.router.CallTool(ctx, name, arguments)
}

// Find looks up a tool in the current snapshot.
func (c *Client) Find(name string) (models.ToolDescriptor, bool) {
	return c.catalog.Find(name)
}

// Search queries the current snapshot.
func (c *Client) Search(query string) []models.ToolDescriptor {
	return c.catalog.Search(query)
}

// Tools returns every tool in the current snapshot.
func (c *Client) Tools() []models.ToolDescriptor {
	return c.catalog.Snapshot().Tools()
}

// AddServer registers a server in memory. The catalog is unaffected until
// the next Refresh.
func (c *Client) AddServer(cfg models.ServerConfig) error {
	return c.registry.Add(cfg)
}

// RemoveServer deletes a server from the registry.
func (c *Client) RemoveServer(name string) error {
	return c.registry.Remove(name)
}

// SetServerEnabled flips a server's enabled flag.
func (c *Client) SetServerEnabled(name string, enabled bool) error {
	return c.registry.SetEnabled(name, enabled)
}

// Servers lists registered servers, optionally filtered by tag.
func (c *Client) Servers(filterTag string) []models.ServerConfig {
	return c.registry.List(filterTag)
}

// Registry exposes the underlying registry for administrative commands.
func (c *Client) Registry() *registry.Registry {
	return c.registry
}

// AuditStore returns the audit store, or nil when auditing is disabled.
func (c *Client) AuditStore() *store.Store {
	return c.auditDB
}

// Stats aggregates counters across catalog, security, and routing.
func (c *Client) Stats() Stats {
	snap := c.catalog.Snapshot()
	return Stats{
		Servers:     c.registry.Count(),
		Tools:       snap.Len(),
		Unreachable: len(snap.Unreachable()),
		Screening:   c.security.Stats(),
		Routing:     c.router.Stats(),
	}
}

// Close releases resources held by the client.
func (c *Client) Close() error {
	if c.auditDB != nil {
		return c.auditDB.Close()
	}
	return nil
}
