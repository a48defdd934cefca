// Package backend selects the language model behind the recommendation chain.
package backend

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"dishadvisor"
	"dishadvisor/coordinator/bedrock"
	"dishadvisor/coordinator/gemini"
	"dishadvisor/coordinator/mock"
	"dishadvisor/coordinator/ollama"
	"dishadvisor/tools/upstream"
)

const (
	Mock    = "mock"
	Ollama  = "ollama"
	Bedrock = "bedrock"
	Gemini  = "gemini"
)

// Local models answer slower than the REST providers the tools call.
const ollamaTimeout = 2 * time.Minute

// New returns the TextGenerator named by model.Backend and a function that releases it.
func New(ctx context.Context, model dishadvisor.ModelConfig, advisor dishadvisor.AdvisorConfig) (dishadvisor.TextGenerator, func() error, error) {
	noop := func() error { return nil }

	name := strings.ToLower(strings.TrimSpace(model.Backend))
	slog.Info("SETUP: Selecting LLM backend", "backend", name, "model", model.ModelID)

	switch name {
	case "", Mock:
		return mock.NewLLMClient(), noop, nil

	case Ollama:
		c, err := ollama.NewClient(ollama.ClientOpts{
			BaseEndpoint: advisor.BaseOllamaEndpoint,
			ModelID:      model.ModelID,
			HTTPClient:   upstream.NewHTTPClient(ollamaTimeout),
			Temperature:  float64(model.Temperature),
			TopP:         float64(model.TopP),
		})
		if err != nil {
			return nil, noop, err
		}
		return c, noop, nil

	case Bedrock:
		awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRetryMaxAttempts(5))
		if err != nil {
			return nil, noop, fmt.Errorf("failed to load AWS config: %w", err)
		}
		return bedrock.NewLLMClient(bedrockruntime.NewFromConfig(awsCfg), bedrock.LLMOptions{
			ModelID:     model.ModelID,
			MaxTokens:   model.MaxTokens,
			Temperature: model.Temperature,
			TopP:        model.TopP,
		}), noop, nil

	case Gemini:
		c, err := gemini.NewClient(ctx, gemini.ClientOpts{
			APIKey:      advisor.GeminiAPIKey,
			ModelID:     model.ModelID,
			Temperature: model.Temperature,
		})
		if err != nil {
			return nil, noop, err
		}
		return c, c.Close, nil

	default:
		return nil, noop, fmt.Errorf("unknown LLM backend %q (want mock, ollama, bedrock or gemini)", model.Backend)
	}
}

// Label names the backend and model for log file names and span attributes.
func Label(model dishadvisor.ModelConfig) string {
	name := strings.ToLower(strings.TrimSpace(model.Backend))
	if name == "" {
		name = Mock
	}
	if model.ModelID == "" {
		return name
	}
	return name + "-" + model.ModelID
}
