package tools

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Implementation identifies the goeq MCP server.
var Implementation = &mcp.Implementation{Name: "goeq", Version: "v0.1.0"}

// NewMCPServer returns an MCP server with every tool registered against reg.
func NewMCPServer(reg *Registry) *mcp.Server {
	server := mcp.NewServer(Implementation, nil)
	RegisterMCP(server, reg)
	return server
}

// RegisterMCP adds every tool to server. Tool failures are reported as tool
// results with IsError set, not as protocol errors.
func RegisterMCP(server *mcp.Server, reg *Registry) {
	for _, d := range toolDefs {
		tool := &mcp.Tool{
			Name:        d.name,
			Description: d.description,
			InputSchema: d.inputSchema(),
		}
		mcp.AddTool(server, tool, mcpHandler(reg, d.name))
	}
}

func mcpHandler(reg *Registry, name string) mcp.ToolHandlerFor[map[string]any, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in map[string]any) (*mcp.CallToolResult, any, error) {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		resp := HandleToolCall(reg, ToolRequest{Tool: name, Params: in})
		body, err := json.Marshal(resp)
		if err != nil {
			return nil, nil, err
		}
		return &mcp.CallToolResult{
			IsError: resp.Error != "",
			Content: []mcp.Content{&mcp.TextContent{Text: string(body)}},
		}, nil, nil
	}
}
