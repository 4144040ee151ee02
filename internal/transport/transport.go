// Package transport exchanges single request/response pairs with MCP servers.
package transport

import (
	"context"
	"time"

	"github.com/mkarren/toolgate/internal/models"
)

// CallResult is the outcome of one tool call. Content is the concatenated
// text content of the response; IsError marks a tool-level failure reported
// by the server (as opposed to a transport failure, which is a Go error).
type CallResult struct {
	Content string `json:"content"`
	IsError bool   `json:"is_error"`
}

// Transport performs one exchange with a single server. Implementations
// must honor the supplied timeout and context cancellation; an error return
// indicates the server could not be reached or refused the exchange.
type Transport interface {
	ListTools(ctx context.Context, address string, timeout time.Duration) ([]models.ToolDescriptor, error)
	Call(ctx context.Context, address, toolName string, arguments map[string]any, timeout time.Duration) (CallResult, error)
}
