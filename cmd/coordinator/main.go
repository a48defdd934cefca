package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joeshaw/envdecode"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"dishadvisor"
	"dishadvisor/coordinator"
	"dishadvisor/coordinator/backend"
	"dishadvisor/slack"
	"dishadvisor/tools"
)

const usage = `usage:
  coordinator "<message>"            recommend dishes, e.g. "spicy indian in Munich"
  coordinator tool <name> '<json>'   run a single tool, e.g. tool where_to_order '{"dish":"Ramen"}'`

func main() {
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

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	tracerProvider, meterProvider, otelShutdown, err := dishadvisor.InitOtel(ctx)
	if err != nil {
		slog.Error("SETUP: Failed to initialize OpenTelemetry", "error", err)
		return
	}
	defer func() {
		if err := otelShutdown(context.Background()); err != nil {
			slog.Error("SETUP: Failed to shutdown OpenTelemetry", "error", err)
		}
	}()

	registry, closeRegistry, err := dishadvisor.NewRegistryFromConfig(ctx, advisorConfig)
	if err != nil {
		slog.Error("SETUP: Failed to create tool registry", "error", err)
		return
	}
	defer closeRegistry() // nolint: errcheck
	registry = registry.Instrumented(
		tracerProvider.Tracer(dishadvisor.TracerNameTools),
		meterProvider.Meter(dishadvisor.TracerNameTools),
	)

	if os.Args[1] == "tool" {
		if err := runTool(ctx, registry, os.Args[2:]); err != nil {
			slog.Error("RESULT: Tool failed", "error", err)
			os.Exit(1)
		}
		return
	}

	llm, closeLLM, err := backend.New(ctx, modelConfig, advisorConfig)
	if err != nil {
		slog.Error("SETUP: Failed to create LLM client", "error", err)
		return
	}
	defer closeLLM() // nolint: errcheck

	logger, cleanup, err := newCoordinationLogger(advisorConfig.CoordinationLogDir, backend.Label(modelConfig))
	if err != nil {
		slog.Error("SETUP: Failed to create coordination logger", "error", err)
		return
	}
	defer func() {
		if err := cleanup(); err != nil {
			slog.Error("SETUP: Failed to flush coordination log", "error", err)
		}
	}()

	tracer := tracerProvider.Tracer(dishadvisor.TracerNameCoordinator)
	ctx, span := tracer.Start(ctx, dishadvisor.TracerNameCoordinator, trace.WithAttributes(
		attribute.String("model.backend", modelConfig.Backend),
		attribute.String("model.id", modelConfig.ModelID),
		attribute.Float64("model.temperature", float64(modelConfig.Temperature)),
	))
	defer span.End()

	c := coordinator.NewInstrumentedCoordinator(
		llm,
		registry,
		advisorConfig.MaxIterations,
		logger,
		coordinator.DefaultCityFromConfig(advisorConfig),
		tracer,
		meterProvider.Meter(dishadvisor.TracerNameCoordinator),
	)

	rec, err := c.Recommend(ctx, dishadvisor.RecommendRequest{Message: os.Args[1]})
	if err != nil {
		slog.Error("RESULT: Error handling request", "error", err)
		return
	}

	if os.Getenv("DEBUG") != "" {
		dishadvisor.Dump(os.Stderr, rec)
	}
	if err := printJSON(rec); err != nil {
		slog.Error("RESULT: Failed to print recommendation", "error", err)
	}

	if advisorConfig.SlackWebhookURL != "" {
		slackClient := slack.NewClient(advisorConfig.SlackWebhookURL, http.DefaultClient)
		if err := slackClient.PostRecommendation(ctx, advisorConfig.SlackChannel, rec); err != nil {
			slog.Error("Failed to post result to Slack", "error", err)
		}
	}
}

func runTool(ctx context.Context, registry *tools.Registry, args []string) error {
	if len(args) == 0 {
		return errors.New(usage)
	}

	tool, err := registry.GetTool(args[0])
	if err != nil {
		return err
	}

	input := map[string]any{}
	if len(args) > 1 {
		if err := json.Unmarshal([]byte(args[1]), &input); err != nil {
			return fmt.Errorf("decode tool input: %w", err)
		}
	}

	out, err := tool.Run(ctx, input)
	if err != nil {
		return err
	}
	if os.Getenv("DEBUG") != "" {
		dishadvisor.Dump(os.Stderr, out)
	}
	return printJSON(out)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func newCoordinationLogger(dir, label string) (dishadvisor.CoordinationLogger, func() error, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, func() error { return err }, fmt.Errorf("failed to create log dir: %w", err)
	}

	logFilePath := dishadvisor.NewCoordinationLogFilePath(dir, label)
	logFile, err := os.OpenFile(filepath.Clean(logFilePath), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, func() error { return err }, fmt.Errorf("failed to open log file: %w", err)
	}

	logger := dishadvisor.NewFileCoordinationLogger(logFile)
	cleanup := func() error {
		return errors.Join(logger.Flush(), logFile.Close())
	}
	return logger, cleanup, nil
}
