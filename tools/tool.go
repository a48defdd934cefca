package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"dishadvisor/tools/upstream"
)

type Tool interface {
	Name() string
	Title() string
	Description() string
	InputSchema() *jsonschema.Schema
	OutputSchema() *jsonschema.Schema
	Run(ctx context.Context, input map[string]any) (output map[string]any, err error)
}

type Call struct {
	Name  string         `json:"name"`
	Input map[string]any `json:"input"`
}

// toMap marshals v and decodes it back so every tool returns plain JSON-shaped maps.
func toMap(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal output: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("unmarshal output: %w", err)
	}
	return m, nil
}

func stringArg(tool string, input map[string]any, key string) (string, error) {
	raw, ok := input[key]
	if !ok || raw == nil {
		return "", upstream.InvalidInput(tool, "%s is required", key)
	}
	s, ok := raw.(string)
	if !ok {
		return "", upstream.InvalidInput(tool, "%s must be a string, got %T", key, raw)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", upstream.InvalidInput(tool, "%s must not be blank", key)
	}
	return s, nil
}

func stringsArg(tool string, input map[string]any, key string) ([]string, error) {
	switch v := input[key].(type) {
	case nil:
		return nil, upstream.InvalidInput(tool, "%s is required", key)
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, upstream.InvalidInput(tool, "%s[%d] must be a string, got %T", key, i, item)
			}
			out = append(out, s)
		}
		return out, nil
	case string:
		// tolerate "a, b, c" from loosely typed callers
		return strings.Split(v, ","), nil
	default:
		return nil, upstream.InvalidInput(tool, "%s must be an array of strings, got %T", key, v)
	}
}

func numberArg(tool string, input map[string]any, key string) (float64, error) {
	switch v := input[key].(type) {
	case nil:
		return 0, upstream.InvalidInput(tool, "%s is required", key)
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, upstream.InvalidInput(tool, "%s must be a number: %v", key, err)
		}
		return f, nil
	default:
		return 0, upstream.InvalidInput(tool, "%s must be a number, got %T", key, v)
	}
}

func ptrTo[T any](v T) *T { return &v }
