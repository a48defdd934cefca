// Package mcpserver exposes the tool registry, and optionally the recommendation chain, as an MCP server.
package mcpserver

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"dishadvisor"
	"dishadvisor/tools"
)

const RecommendToolName = "recommend"

type Option func(*options)

type options struct {
	recommender dishadvisor.Recommender
}

// WithRecommender adds a "recommend" tool backed by r.
func WithRecommender(r dishadvisor.Recommender) Option {
	return func(o *options) { o.recommender = r }
}

// New registers every tool of provider on a fresh server.
func New(impl *mcp.Implementation, provider dishadvisor.ToolProvider, opts ...Option) *mcp.Server {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	server := mcp.NewServer(impl, nil)
	for _, t := range provider.GetTools() {
		tool := &mcp.Tool{
			Name:        t.Name(),
			Title:       t.Title(),
			Description: t.Description(),
			InputSchema: t.InputSchema(),
		}
		if out := t.OutputSchema(); out != nil {
			tool.OutputSchema = out
		}
		server.AddTool(tool, toolHandler(t))
		slog.Info("MCP: Registered tool", "name", t.Name())
	}

	if o.recommender != nil {
		mcp.AddTool(server, &mcp.Tool{
			Name:        RecommendToolName,
			Title:       "Recommend dishes for the weather",
			Description: "Suggests three dishes of a cuisine that suit the current weather in a city, each with three restaurants. Pass a free-text message or an explicit cuisine and optional city.",
		}, recommendHandler(o.recommender))
		slog.Info("MCP: Registered tool", "name", RecommendToolName)
	}

	return server
}

// Run serves on stdio until the client disconnects or ctx is done.
func Run(ctx context.Context, server *mcp.Server) error {
	slog.Info("MCP: Serving on stdio")
	return server.Run(ctx, &mcp.StdioTransport{})
}

func toolHandler(t tools.Tool) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		input := map[string]any{}
		if len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &input); err != nil {
				return errorResult(t.Name(), err), nil
			}
			if input == nil {
				input = map[string]any{}
			}
		}

		out, err := t.Run(ctx, input)
		if err != nil {
			return errorResult(t.Name(), err), nil
		}

		b, err := json.Marshal(out)
		if err != nil {
			return nil, err
		}
		return &mcp.CallToolResult{
			Content:           []mcp.Content{&mcp.TextContent{Text: string(b)}},
			StructuredContent: out,
		}, nil
	}
}

// errorResult reports a tool failure to the model instead of failing the protocol call.
func errorResult(name string, err error) *mcp.CallToolResult {
	slog.Warn("MCP: Tool call failed", "name", name, "error", err)
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
	}
}

func recommendHandler(r dishadvisor.Recommender) mcp.ToolHandlerFor[dishadvisor.RecommendRequest, dishadvisor.Recommendation] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, req dishadvisor.RecommendRequest) (*mcp.CallToolResult, dishadvisor.Recommendation, error) {
		rec, err := r.Recommend(ctx, req)
		if err != nil {
			// the SDK turns a handler error into an IsError result
			slog.Warn("MCP: Tool call failed", "name", RecommendToolName, "error", err)
			return nil, dishadvisor.Recommendation{}, err
		}
		return nil, rec, nil
	}
}
