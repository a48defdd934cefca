package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joeshaw/envdecode"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"dishadvisor"
	"dishadvisor/coordinator"
	"dishadvisor/coordinator/backend"
	"dishadvisor/mcpserver"
)

var version = "dev"

func main() {
	// stdout carries the protocol
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var modelConfig dishadvisor.ModelConfig
	if err := envdecode.Decode(&modelConfig); err != nil {
		log.Fatalf("SETUP: Failed to decode: %s", err)
	}

	var advisorConfig dishadvisor.AdvisorConfig
	if err := envdecode.Decode(&advisorConfig); err != nil {
		log.Fatalf("SETUP: Failed to decode: %s", err)
	}

	tracerProvider, meterProvider, otelShutdown, err := dishadvisor.InitOtel(ctx)
	if err != nil {
		log.Fatalf("SETUP: Failed to initialize OpenTelemetry: %s", err)
	}
	defer func() {
		if err := otelShutdown(context.Background()); err != nil {
			slog.Error("SETUP: Failed to shutdown OpenTelemetry", "error", err)
		}
	}()

	registry, closeRegistry, err := dishadvisor.NewRegistryFromConfig(ctx, advisorConfig)
	if err != nil {
		log.Fatalf("SETUP: Failed to create tool registry: %s", err)
	}
	defer closeRegistry() // nolint: errcheck
	registry = registry.Instrumented(
		tracerProvider.Tracer(dishadvisor.TracerNameTools),
		meterProvider.Meter(dishadvisor.TracerNameTools),
	)

	llm, closeLLM, err := backend.New(ctx, modelConfig, advisorConfig)
	if err != nil {
		log.Fatalf("SETUP: Failed to create LLM client: %s", err)
	}
	defer closeLLM() // nolint: errcheck

	recommender := coordinator.NewInstrumentedCoordinator(
		llm,
		registry,
		advisorConfig.MaxIterations,
		dishadvisor.NewNoOpCoordinationLogger(),
		coordinator.DefaultCityFromConfig(advisorConfig),
		tracerProvider.Tracer(dishadvisor.TracerNameCoordinator),
		meterProvider.Meter(dishadvisor.TracerNameCoordinator),
	)

	server := mcpserver.New(
		&mcp.Implementation{Name: "dish-advisor", Version: version},
		registry,
		mcpserver.WithRecommender(recommender),
	)
	if err := mcpserver.Run(ctx, server); err != nil {
		slog.Error("MCP: Server stopped", "error", err)
	}
}
