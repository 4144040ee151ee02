package transport

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mkarren/toolgate/internal/models"
)

// SDKTransport talks to MCP servers over streamable HTTP using the official
// go-sdk. Each exchange opens a fresh session bounded by the caller's
// timeout and closes it before returning.
type SDKTransport struct {
	impl *mcp.Implementation
}

// NewSDKTransport creates a transport identifying itself with the given
// client name and version.
func NewSDKTransport(name, version string) *SDKTransport {
	return &SDKTransport{
		impl: &mcp.Implementation{Name: name, Version: version},
	}
}

// connect opens a session to the server at address.
func (t *SDKTransport) connect(ctx context.Context, address string) (*mcp.ClientSession, error) {
	client := mcp.NewClient(t.impl, nil)
	session, err := client.Connect(ctx, &mcp.StreamableClientTransport{Endpoint: address}, nil)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", address, err)
	}
	return session, nil
}

// ListTools retrieves the tool descriptors offered by one server.
func (t *SDKTransport) ListTools(ctx context.Context, address string, timeout time.Duration) ([]models.ToolDescriptor, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	session, err := t.connect(ctx, address)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	result, err := session.ListTools(ctx, &mcp.ListToolsParams{})
	if err != nil {
		return nil, fmt.Errorf("list tools from %s: %w", address, err)
	}

	tools := make([]models.ToolDescriptor, 0, len(result.Tools))
	for _, tool := range result.Tools {
		tools = append(tools, models.ToolDescriptor{
			Name:        tool.Name,
			Description: tool.Description,
			Parameters:  FromToolSchema(tool.InputSchema),
		})
	}
	return tools, nil
}

// Call invokes one tool and returns its text content.
func (t *SDKTransport) Call(ctx context.Context, address, toolName string, arguments map[string]any, timeout time.Duration) (CallResult, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	session, err := t.connect(ctx, address)
	if err != nil {
		return CallResult{}, err
	}
	defer session.Close()

	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      toolName,
		Arguments: arguments,
	})
	if err != nil {
		return CallResult{}, fmt.Errorf("call %s on %s: %w", toolName, address, err)
	}

	return CallResult{
		Content: textContent(result),
		IsError: result.IsError,
	}, nil
}

// textContent concatenates the text parts of a tool call response.
func textContent(result *mcp.CallToolResult) string {
	var parts []string
	for _, content := range result.Content {
		if text, ok := content.(*mcp.TextContent); ok {
			parts = append(parts, text.Text)
		}
	}
	return strings.Join(parts, "\n")
}
