package coordinator

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"dishadvisor"
	"dishadvisor/tools/upstream"
)

// InstrumentedCoordinator wraps a Coordinator with run-level spans and metrics.
// Per-tool metrics come from an instrumented registry (tools.Registry.Instrumented).
type InstrumentedCoordinator struct {
	inner  *Coordinator
	tracer trace.Tracer

	runs            metric.Int64Counter
	runsCompleted   metric.Int64Counter
	runsFailed      metric.Int64Counter
	cityDefaulted   metric.Int64Counter
	weatherFallback metric.Int64Counter
	noSuggestions   metric.Int64Counter
	duration        metric.Float64Histogram
	warnings        metric.Int64Gauge
}

// NewInstrumentedCoordinator initializes a new instrumented coordinator.
func NewInstrumentedCoordinator(llm dishadvisor.TextGenerator, tp dishadvisor.ToolProvider, maxIter int, log dishadvisor.CoordinationLogger, defaultCity City, tracer trace.Tracer, meter metric.Meter) *InstrumentedCoordinator {
	runs, _ := meter.Int64Counter("coordinator_runs_total",
		metric.WithDescription("Total number of recommendation runs started"))
	runsCompleted, _ := meter.Int64Counter("coordinator_runs_completed_total",
		metric.WithDescription("Total number of recommendation runs completed successfully"))
	runsFailed, _ := meter.Int64Counter("coordinator_runs_failed_total",
		metric.WithDescription("Total number of recommendation runs that failed"))
	cityDefaulted, _ := meter.Int64Counter("coordinator_city_defaulted_total",
		metric.WithDescription("Total number of runs that fell back to the default city"))
	weatherFallback, _ := meter.Int64Counter("coordinator_weather_fallback_total",
		metric.WithDescription("Total number of runs that used estimated weather"))
	noSuggestions, _ := meter.Int64Counter("coordinator_empty_suggestions_total",
		metric.WithDescription("Total number of runs that ended without usable suggestions"))
	duration, _ := meter.Float64Histogram("coordination_duration_seconds",
		metric.WithDescription("Total duration of a recommendation run in seconds"))
	warnings, _ := meter.Int64Gauge("coordinator_warnings_count",
		metric.WithDescription("Number of warnings attached to the latest run"))

	return &InstrumentedCoordinator{
		inner:           NewCoordinator(llm, tp, maxIter, log, defaultCity),
		tracer:          tracer,
		runs:            runs,
		runsCompleted:   runsCompleted,
		runsFailed:      runsFailed,
		cityDefaulted:   cityDefaulted,
		weatherFallback: weatherFallback,
		noSuggestions:   noSuggestions,
		duration:        duration,
		warnings:        warnings,
	}
}

// Recommend runs the chain inside a span and records the outcome.
func (c *InstrumentedCoordinator) Recommend(ctx context.Context, req dishadvisor.RecommendRequest) (dishadvisor.Recommendation, error) {
	ctx, span := c.tracer.Start(ctx, "InstrumentedCoordinator.Recommend", trace.WithAttributes(
		attribute.Bool("request.has_message", req.Message != ""),
		attribute.String("request.cuisine", req.Cuisine),
		attribute.String("request.city", req.City),
	))
	defer span.End()

	slog.Info("COORDINATOR: Starting instrumented run")
	c.runs.Add(ctx, 1)

	start := time.Now()
	rec, err := c.inner.Recommend(ctx, req)
	elapsed := time.Since(start)
	c.duration.Record(ctx, elapsed.Seconds())

	span.SetAttributes(attribute.String("run.id", rec.RunID))

	if err != nil {
		kind := upstream.KindOf(err).String()
		c.runsFailed.Add(ctx, 1, metric.WithAttributes(attribute.String("error_kind", kind)))
		span.SetStatus(codes.Error, "Recommendation run failed")
		span.RecordError(err)
		return rec, err
	}

	c.runsCompleted.Add(ctx, 1)
	c.warnings.Record(ctx, int64(len(rec.Warnings)))
	if rec.CityDefault {
		c.cityDefaulted.Add(ctx, 1)
	}
	if estimated, _ := rec.Weather["estimated"].(bool); estimated {
		c.weatherFallback.Add(ctx, 1)
	}
	if len(rec.Suggestions) == 0 {
		c.noSuggestions.Add(ctx, 1)
	}

	span.AddEvent("Recommendation completed", trace.WithAttributes(
		attribute.String("cuisine", rec.Cuisine),
		attribute.String("city", rec.City),
		attribute.Int("suggestions", len(rec.Suggestions)),
		attribute.Float64("coordination_duration_seconds", elapsed.Seconds()),
	))
	return rec, nil
}
