package coordinator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"dishadvisor"
	"dishadvisor/tools/upstream"
)

func counter(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "metric %s is not an int64 sum", name)
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func TestInstrumentedCoordinator_Recommend(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tracer := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)).Tracer("test")

	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")

	f := newFixture()
	f.llm.extract = []reply{{out: `{"cuisine": "Thai", "city": null}`}}
	f.forecast.err = upstream.Unavailable("forecast", errors.New("timeout"))

	c := NewInstrumentedCoordinator(f.llm, &f.registry, 2, f.logger, City{Name: "Munich", Latitude: 48.1351, Longitude: 11.5820}, tracer, meter)
	ctx := context.Background()

	rec, err := c.Recommend(ctx, dishadvisor.RecommendRequest{Message: "thai please"})
	require.NoError(t, err)
	assert.True(t, rec.CityDefault)
	assert.Len(t, rec.Warnings, 2)

	_, err = c.Recommend(ctx, dishadvisor.RecommendRequest{})
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "InstrumentedCoordinator.Recommend", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	assert.Equal(t, int64(2), counter(t, rm, "coordinator_runs_total"))
	assert.Equal(t, int64(1), counter(t, rm, "coordinator_runs_completed_total"))
	assert.Equal(t, int64(1), counter(t, rm, "coordinator_runs_failed_total"))
	assert.Equal(t, int64(1), counter(t, rm, "coordinator_city_defaulted_total"))
	assert.Equal(t, int64(1), counter(t, rm, "coordinator_weather_fallback_total"))
	assert.Equal(t, int64(0), counter(t, rm, "coordinator_empty_suggestions_total"))
}
