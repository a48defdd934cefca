package tools

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"dishadvisor/tools/upstream"
)

// InstrumentedTool wraps a Tool with a span per call plus call, failure and latency metrics.
type InstrumentedTool struct {
	Tool
	tracer   trace.Tracer
	calls    metric.Int64Counter
	failures metric.Int64Counter
	latency  metric.Float64Histogram
}

func Instrument(t Tool, tracer trace.Tracer, meter metric.Meter) *InstrumentedTool {
	calls, _ := meter.Int64Counter("tool_calls_total",
		metric.WithDescription("Total number of tool calls executed"))
	failures, _ := meter.Int64Counter("tool_calls_failed_total",
		metric.WithDescription("Total number of tool calls that failed"))
	latency, _ := meter.Float64Histogram("tool_execution_time_seconds",
		metric.WithDescription("Time taken to execute individual tools in seconds"))

	return &InstrumentedTool{
		Tool:     t,
		tracer:   tracer,
		calls:    calls,
		failures: failures,
		latency:  latency,
	}
}

func (t *InstrumentedTool) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	name := attribute.String("tool_name", t.Name())

	ctx, span := t.tracer.Start(ctx, "Tool.Run", trace.WithAttributes(name))
	defer span.End()

	t.calls.Add(ctx, 1, metric.WithAttributes(name))

	start := time.Now()
	out, err := t.Tool.Run(ctx, input)
	elapsed := time.Since(start)
	t.latency.Record(ctx, elapsed.Seconds(), metric.WithAttributes(name))

	if err != nil {
		kind := upstream.KindOf(err).String()
		t.failures.Add(ctx, 1, metric.WithAttributes(name, attribute.String("error_kind", kind)))
		span.SetStatus(codes.Error, "Tool execution failed")
		span.RecordError(err)
		span.SetAttributes(attribute.String("error_kind", kind))
		return nil, err
	}

	span.AddEvent("Tool executed successfully", trace.WithAttributes(
		attribute.Float64("tool_execution_time_seconds", elapsed.Seconds()),
	))
	return out, nil
}

// Instrumented returns a copy of the registry with every tool wrapped by Instrument.
func (r *Registry) Instrumented(tracer trace.Tracer, meter metric.Meter) *Registry {
	out := make(Registry, len(*r))
	for name, t := range *r {
		out[name] = Instrument(t, tracer, meter)
	}
	return &out
}
