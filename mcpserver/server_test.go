package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dishadvisor"
	"dishadvisor/tools"
	"dishadvisor/tools/upstream"
)

type echoTool struct {
	name string
	err  error
	got  map[string]any
}

func (e *echoTool) Name() string        { return e.name }
func (e *echoTool) Title() string       { return "Echo " + e.name }
func (e *echoTool) Description() string { return "Echoes the dish back" }
func (e *echoTool) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:       "object",
		Properties: map[string]*jsonschema.Schema{"dish": {Type: "string"}},
	}
}
func (e *echoTool) OutputSchema() *jsonschema.Schema { return nil }
func (e *echoTool) Run(_ context.Context, input map[string]any) (map[string]any, error) {
	e.got = input
	if e.err != nil {
		return nil, e.err
	}
	return map[string]any{"dish": input["dish"], "ok": true}, nil
}

type fakeRecommender struct {
	rec dishadvisor.Recommendation
	err error
	got dishadvisor.RecommendRequest
}

func (f *fakeRecommender) Recommend(_ context.Context, req dishadvisor.RecommendRequest) (dishadvisor.Recommendation, error) {
	f.got = req
	return f.rec, f.err
}

func connect(t *testing.T, server *mcp.Server) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	ct, st := mcp.NewInMemoryTransports()
	ss, err := server.Connect(ctx, st, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, ct, nil)
	require.NoError(t, err)
	t.Cleanup(func() { cs.Close() })
	return cs
}

func newRegistry(ts ...tools.Tool) *tools.Registry {
	reg := tools.Registry{}
	for _, t := range ts {
		reg[t.Name()] = t
	}
	return &reg
}

func TestServer_ListTools(t *testing.T) {
	reg := newRegistry(&echoTool{name: "where_to_order"}, &echoTool{name: "compare_options"})
	cs := connect(t, New(&mcp.Implementation{Name: "dish-tools", Version: "test"}, reg, WithRecommender(&fakeRecommender{})))

	res, err := cs.ListTools(context.Background(), &mcp.ListToolsParams{})
	require.NoError(t, err)

	names := make([]string, 0, len(res.Tools))
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"where_to_order", "compare_options", RecommendToolName}, names)
}

func TestServer_CallTool(t *testing.T) {
	echo := &echoTool{name: "where_to_order"}
	cs := connect(t, New(&mcp.Implementation{Name: "dish-tools", Version: "test"}, newRegistry(echo)))

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "where_to_order",
		Arguments: map[string]any{"dish": "Ramen"},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "Ramen", echo.got["dish"])

	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	assert.JSONEq(t, `{"dish":"Ramen","ok":true}`, text.Text)
}

func TestServer_CallToolError(t *testing.T) {
	echo := &echoTool{name: "where_to_order", err: upstream.InvalidInput("where_to_order", "dish is required")}
	cs := connect(t, New(&mcp.Implementation{Name: "dish-tools", Version: "test"}, newRegistry(echo)))

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: "where_to_order", Arguments: map[string]any{}})
	require.NoError(t, err, "tool failures are results, not protocol errors")
	assert.True(t, res.IsError)

	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "dish is required")
}

func TestServer_Recommend(t *testing.T) {
	rec := &fakeRecommender{rec: dishadvisor.Recommendation{
		RunID:   "run-1",
		Cuisine: "Thai",
		City:    "Berlin",
		Weather: map[string]any{"temperature_c": 8.5},
		Suggestions: []dishadvisor.Suggestion{
			{Dish: "Khao Soi", Restaurants: []string{"A", "B", "C"}, Raw: "Khao Soi - A & B & C"},
		},
	}}
	cs := connect(t, New(&mcp.Implementation{Name: "dish-tools", Version: "test"}, newRegistry(), WithRecommender(rec)))

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      RecommendToolName,
		Arguments: map[string]any{"message": "thai in Berlin"},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "thai in Berlin", rec.got.Message)

	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)

	var got dishadvisor.Recommendation
	require.NoError(t, json.Unmarshal([]byte(text.Text), &got))
	assert.Equal(t, "Berlin", got.City)
	assert.Equal(t, "Khao Soi", got.Suggestions[0].Dish)
}

func TestServer_RecommendError(t *testing.T) {
	rec := &fakeRecommender{err: errors.New("model offline")}
	cs := connect(t, New(&mcp.Implementation{Name: "dish-tools", Version: "test"}, newRegistry(), WithRecommender(rec)))

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      RecommendToolName,
		Arguments: map[string]any{"cuisine": "Thai"},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, "Thai", rec.got.Cuisine)
}
