// Package router resolves tool names against the catalog and performs
// security-screened tool calls.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/mkarren/toolgate/internal/catalog"
	"github.com/mkarren/toolgate/internal/registry"
	"github.com/mkarren/toolgate/internal/security"
	"github.com/mkarren/toolgate/internal/transport"
)

// Sentinel errors for routing operations.
var (
	ErrToolNotFound      = errors.New("tool not found")
	ErrServerUnreachable = errors.New("server unreachable")
)

// InteractionScreener screens one side of a tool call.
type InteractionScreener interface {
	ScreenInteraction(ctx context.Context, direction security.Direction, subject, payload string) error
}

// Stats holds cumulative router counters.
type Stats struct {
	RequestsRouted int64 `json:"requests_routed"`
	RoutingErrors  int64 `json:"routing_errors"`
}

// Router dispatches tool calls to the winning server for each tool name.
// The ordering inside CallTool is load-bearing: arguments are screened
// before any network traffic, results before they reach the caller.
type Router struct {
	catalog   *catalog.Catalog
	registry  *registry.Registry
	transport transport.Transport
	screener  InteractionScreener

	requestsRouted atomic.Int64
	routingErrors  atomic.Int64
}

// New creates a router over the given catalog, registry, transport, and screener.
func New(cat *catalog.Catalog, reg *registry.Registry, tr transport.Transport, screener InteractionScreener) *Router {
	return &Router{catalog: cat, registry: reg, transport: tr, screener: screener}
}

// CallTool resolves name in the current catalog snapshot and performs one
// screened call. Transport failures are not retried here; retry policy
// belongs to the transport.
func (r *Router) CallTool(ctx context.Context, name string, arguments map[string]any) (transport.CallResult, error) {
	snap := r.catalog.Snapshot()
	tool, ok := snap.Find(name)
	if !ok {
		r.routingErrors.Add(1)
		return transport.CallResult{}, fmt.Errorf("%w: %q", ErrToolNotFound, name)
	}

	server, ok := r.registry.Get(tool.ServerName)
	if !ok {
		// The server was removed after the snapshot was built; the stale
		// entry stays until the next rebuild.
		r.routingErrors.Add(1)
		return transport.CallResult{}, fmt.Errorf("%w: server %q for tool %q no longer registered",
			ErrToolNotFound, tool.ServerName, name)
	}

	if err := r.screener.ScreenInteraction(ctx, security.DirectionOutbound, name, renderArguments(name, arguments)); err != nil {
		r.routingErrors.Add(1)
		return transport.CallResult{}, err
	}

	result, err := r.transport.Call(ctx, server.Address, name, arguments, server.Timeout())
	if err != nil {
		r.routingErrors.Add(1)
		return transport.CallResult{}, fmt.Errorf("%w: %v", ErrServerUnreachable, err)
	}

	if err := r.screener.ScreenInteraction(ctx, security.DirectionInbound, name, result.Content); err != nil {
		// A flagged result never reaches the caller, successful network
		// exchange notwithstanding.
		r.routingErrors.Add(1)
		return transport.CallResult{}, err
	}

	r.requestsRouted.Add(1)
	return result, nil
}

// Stats returns cumulative routing counters.
func (r *Router) Stats() Stats {
	return Stats{
		RequestsRouted: r.requestsRouted.Load(),
		RoutingErrors:  r.routingErrors.Load(),
	}
}

// renderArguments builds the text representation of outbound arguments that
// is submitted to the classifier.
func renderArguments(name string, arguments map[string]any) string {
	encoded, err := json.Marshal(arguments)
	if err != nil {
		return fmt.Sprintf("Tool call: %s", name)
	}
	return fmt.Sprintf("Tool call: %s\nArguments: %s", name, encoded)
}
