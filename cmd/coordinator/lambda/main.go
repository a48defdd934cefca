package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/joeshaw/envdecode"

	"dishadvisor"
	"dishadvisor/coordinator"
	"dishadvisor/coordinator/backend"
)

// Params is either a tool call ({tool, input}) or a recommendation request.
type Params struct {
	Tool    string         `json:"tool,omitempty"`
	Input   map[string]any `json:"input,omitempty"`
	Message string         `json:"message,omitempty"`
	Cuisine string         `json:"cuisine,omitempty"`
	City    string         `json:"city,omitempty"`
}

type Results struct {
	Output any `json:"output"`
}

func main() {
	fn := func(ctx context.Context, params Params) (Results, error) {
		var modelConfig dishadvisor.ModelConfig
		if err := envdecode.Decode(&modelConfig); err != nil {
			return Results{}, fmt.Errorf("failed to decode model config: %w", err)
		}

		var advisorConfig dishadvisor.AdvisorConfig
		if err := envdecode.Decode(&advisorConfig); err != nil {
			return Results{}, fmt.Errorf("failed to decode advisor config: %w", err)
		}

		tracerProvider, meterProvider, otelShutdown, err := dishadvisor.InitOtel(ctx)
		if err != nil {
			slog.Error("SETUP: Failed to initialize OpenTelemetry", "error", err)
			return Results{}, err
		}
		defer func() {
			if err := otelShutdown(ctx); err != nil {
				slog.Error("SETUP: Failed to shutdown OpenTelemetry", "error", err)
			}
		}()

		registry, closeRegistry, err := dishadvisor.NewRegistryFromConfig(ctx, advisorConfig)
		if err != nil {
			slog.Error("SETUP: Failed to create tool registry", "error", err)
			return Results{}, err
		}
		defer closeRegistry() // nolint: errcheck
		registry = registry.Instrumented(
			tracerProvider.Tracer(dishadvisor.TracerNameTools),
			meterProvider.Meter(dishadvisor.TracerNameTools),
		)

		if params.Tool != "" {
			tool, err := registry.GetTool(params.Tool)
			if err != nil {
				return Results{}, err
			}
			if params.Input == nil {
				params.Input = map[string]any{}
			}
			out, err := tool.Run(ctx, params.Input)
			if err != nil {
				slog.Error("RESULT: Tool failed", "tool", params.Tool, "error", err)
				return Results{}, err
			}
			return Results{Output: out}, nil
		}

		if params.Message == "" && params.Cuisine == "" {
			return Results{}, errors.New("event must carry a tool, a message or a cuisine")
		}

		llm, closeLLM, err := backend.New(ctx, modelConfig, advisorConfig)
		if err != nil {
			slog.Error("SETUP: Failed to create LLM client", "error", err)
			return Results{}, err
		}
		defer closeLLM() // nolint: errcheck

		rec, err := coordinator.NewInstrumentedCoordinator(
			llm,
			registry,
			advisorConfig.MaxIterations,
			dishadvisor.NewStdoutCoordinationLogger(),
			coordinator.DefaultCityFromConfig(advisorConfig),
			tracerProvider.Tracer(dishadvisor.TracerNameCoordinator),
			meterProvider.Meter(dishadvisor.TracerNameCoordinator),
		).Recommend(ctx, dishadvisor.RecommendRequest{
			Message: params.Message,
			Cuisine: params.Cuisine,
			City:    params.City,
		})
		if err != nil {
			slog.Error("RESULT: Error handling request", "error", err)
			return Results{}, err
		}

		return Results{Output: rec}, nil
	}

	lambda.Start(fn)
}
