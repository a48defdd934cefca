// Package coordinator runs the weather-to-dish recommendation chain: extract cuisine and city from
// a request, resolve the city, fetch the forecast through the tool registry, then ask a model for
// three dishes with restaurants.
package coordinator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"dishadvisor"
	"dishadvisor/tools/openmeteo"
	"dishadvisor/tools/upstream"
)

const (
	toolCityCoordinates = "get_city_coordinates"
	toolForecast        = "get_forecast"
)

// City is a named coordinate pair, used for the default city.
type City struct {
	Name      string
	Latitude  float64
	Longitude float64
}

// DefaultCityFromConfig reads the fallback city from cfg.
func DefaultCityFromConfig(cfg dishadvisor.AdvisorConfig) City {
	return City{Name: cfg.DefaultCity, Latitude: cfg.DefaultLatitude, Longitude: cfg.DefaultLongitude}
}

// Coordinator implements dishadvisor.Recommender.
type Coordinator struct {
	llm           dishadvisor.TextGenerator
	toolProvider  dishadvisor.ToolProvider
	maxIterations int
	logger        dishadvisor.CoordinationLogger
	defaultCity   City
}

// NewCoordinator initializes a new coordinator. maxIter bounds the attempts at each model call.
func NewCoordinator(llm dishadvisor.TextGenerator, tp dishadvisor.ToolProvider, maxIter int, log dishadvisor.CoordinationLogger, defaultCity City) *Coordinator {
	if maxIter < 1 {
		maxIter = 1
	}
	if log == nil {
		log = dishadvisor.NewNoOpCoordinationLogger()
	}
	return &Coordinator{
		llm:           llm,
		toolProvider:  tp,
		maxIterations: maxIter,
		logger:        log,
		defaultCity:   defaultCity,
	}
}

// run carries per-request state through the chain.
type run struct {
	id   string
	step int
	rec  dishadvisor.Recommendation
}

// Recommend executes the chain. City-not-found falls back to the default city and a failed
// forecast falls back to estimated weather; unusable suggestions end with a warning, not an error.
func (c *Coordinator) Recommend(ctx context.Context, req dishadvisor.RecommendRequest) (dishadvisor.Recommendation, error) {
	ctx, span := otel.Tracer(dishadvisor.TracerNameCoordinator).Start(ctx, "Coordinator.Recommend")
	defer span.End()

	r := &run{id: uuid.NewString()}
	r.rec.RunID = r.id
	slog.Info("COORDINATOR: Starting run", "run_id", r.id, "message", req.Message, "cuisine", req.Cuisine, "city", req.City)

	cuisine, city, err := c.fields(ctx, r, req)
	if err != nil {
		return r.rec, err
	}
	r.rec.Cuisine = cuisine

	place, err := c.resolveCity(ctx, r, city)
	if err != nil {
		return r.rec, err
	}
	r.rec.City = place.Name

	weather, summary, err := c.forecast(ctx, r, place)
	if err != nil {
		return r.rec, err
	}
	r.rec.Weather = weather

	suggestions, err := c.suggest(ctx, r, cuisine, place.Name, summary)
	if err != nil {
		return r.rec, err
	}
	r.rec.Suggestions = suggestions

	slog.Info("COORDINATOR: Run finished", "run_id", r.id, "suggestions", len(suggestions), "warnings", len(r.rec.Warnings))
	return r.rec, nil
}

// fields returns the cuisine and city. Explicit request fields skip the model entirely.
func (c *Coordinator) fields(ctx context.Context, r *run, req dishadvisor.RecommendRequest) (string, string, error) {
	if cuisine := strings.TrimSpace(req.Cuisine); cuisine != "" {
		return cuisine, strings.TrimSpace(req.City), nil
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		return "", "", upstream.InvalidInput("recommend", "a message or a cuisine is required")
	}

	user := ExtractionUserPrompt(message)
	var lastErr error
	for attempt := 0; attempt < c.maxIterations; attempt++ {
		stepLog := c.newStep(r, "extract_fields")
		stepLog.LLMInput = user

		out, err := c.llm.Generate(ctx, ExtractionSystemPrompt, user)
		if err != nil {
			stepLog.Error = err.Error()
			c.logStep(stepLog)
			return "", "", fmt.Errorf("failed to invoke LLM: %w", err)
		}
		stepLog.LLMOutput = out

		f, err := ParseFields(out)
		if err != nil {
			lastErr = err
			stepLog.Error = err.Error()
			c.logStep(stepLog)
			slog.Warn("COORDINATOR: Unusable extraction answer; retrying", "run_id", r.id, "attempt", attempt+1, "error", err)
			continue
		}
		c.logStep(stepLog)

		if f.Cuisine == "" {
			return "", "", upstream.InvalidInput("recommend", "no cuisine detected in %q", message)
		}
		city := ""
		if f.City != nil {
			city = *f.City
		}
		slog.Info("COORDINATOR: Extracted fields", "run_id", r.id, "cuisine", f.Cuisine, "city", city)
		return f.Cuisine, city, nil
	}
	return "", "", fmt.Errorf("extract fields after %d attempts: %w", c.maxIterations, lastErr)
}

// resolveCity is lenient: no city or an unknown city means the default city. Other geocoding
// failures are fatal because there is nothing sensible to fall back to silently.
func (c *Coordinator) resolveCity(ctx context.Context, r *run, city string) (City, error) {
	if city == "" {
		c.useDefaultCity(r, "No city detected in the message")
		return c.defaultCity, nil
	}

	out, toolLog, err := c.runTool(ctx, r, "resolve_city", toolCityCoordinates, map[string]any{"city": city})
	if upstream.IsNotFound(err) {
		c.useDefaultCity(r, fmt.Sprintf("City %q not found", city))
		return c.defaultCity, nil
	}
	if err != nil {
		return City{}, fmt.Errorf("failed to run tool %q: %w", toolLog.Name, err)
	}

	place := City{Name: city}
	if name, ok := out["name"].(string); ok && name != "" {
		place.Name = name
	}
	lat, latOK := out["latitude"].(float64)
	lon, lonOK := out["longitude"].(float64)
	if !latOK || !lonOK {
		return City{}, upstream.Malformed(toolCityCoordinates, fmt.Errorf("coordinates missing in %v", out))
	}
	place.Latitude, place.Longitude = lat, lon
	return place, nil
}

func (c *Coordinator) useDefaultCity(r *run, reason string) {
	msg := fmt.Sprintf("%s, defaulting to %s.", reason, c.defaultCity.Name)
	slog.Info("COORDINATOR: "+msg, "run_id", r.id)
	r.rec.CityDefault = true
	r.rec.Warnings = append(r.rec.Warnings, msg)
}

// forecast degrades to the documented fallback reading when the provider is down or answers garbage.
func (c *Coordinator) forecast(ctx context.Context, r *run, place City) (map[string]any, WeatherSummary, error) {
	out, _, err := c.runTool(ctx, r, "get_forecast", toolForecast, map[string]any{
		"latitude":  place.Latitude,
		"longitude": place.Longitude,
	})

	var weather map[string]any
	if err == nil {
		weather, _ = out["weather"].(map[string]any)
		if weather == nil {
			err = upstream.Malformed(toolForecast, fmt.Errorf("weather missing in %v", out))
		}
	}
	if err != nil {
		if !upstream.IsUnavailable(err) && !upstream.IsMalformed(err) {
			return nil, WeatherSummary{}, fmt.Errorf("failed to run tool %q: %w", toolForecast, err)
		}
		slog.Warn("COORDINATOR: Forecast unavailable; using fallback weather", "run_id", r.id, "error", err)
		r.rec.Warnings = append(r.rec.Warnings, "Weather service unavailable, using estimated weather.")
		weather, err = toWeatherMap(openmeteo.Fallback(place.Name, place.Latitude, place.Longitude))
		if err != nil {
			return nil, WeatherSummary{}, err
		}
	}

	weather["city"] = place.Name
	return weather, summarize(weather), nil
}

func toWeatherMap(info openmeteo.WeatherInfo) (map[string]any, error) {
	b, err := json.Marshal(info)
	if err != nil {
		return nil, fmt.Errorf("marshal fallback weather: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("unmarshal fallback weather: %w", err)
	}
	return m, nil
}

// summarize reads the prompt fields from a weather map, filling gaps with the fallback values.
func summarize(weather map[string]any) WeatherSummary {
	s := WeatherSummary{
		TemperatureC:    openmeteo.FallbackTemperatureC,
		Conditions:      "Unknown",
		HumidityPercent: openmeteo.FallbackHumidityPercent,
	}
	if v, ok := weather["temperature_c"].(float64); ok {
		s.TemperatureC = v
	}
	if v, ok := weather["conditions"].(string); ok && v != "" {
		s.Conditions = v
	}
	if v, ok := weather["humidity_percent"].(float64); ok {
		s.HumidityPercent = v
	}
	return s
}

// suggest asks for dishes until the answer parses or attempts run out. A model transport error is
// fatal; an unusable answer is retried with a nudge.
func (c *Coordinator) suggest(ctx context.Context, r *run, cuisine, city string, w WeatherSummary) ([]dishadvisor.Suggestion, error) {
	base := SuggestionUserPrompt(cuisine, city, w)
	user := base

	for attempt := 0; attempt < c.maxIterations; attempt++ {
		stepLog := c.newStep(r, "suggest_dishes")
		stepLog.LLMInput = user

		out, err := c.llm.Generate(ctx, SuggestionSystemPrompt, user)
		if err != nil {
			stepLog.Error = err.Error()
			c.logStep(stepLog)
			return nil, fmt.Errorf("failed to invoke LLM: %w", err)
		}
		stepLog.LLMOutput = out

		suggestions, err := ParseSuggestions(out)
		if err != nil {
			stepLog.Error = err.Error()
			c.logStep(stepLog)
			slog.Warn("COORDINATOR: Unusable suggestions; retrying", "run_id", r.id, "attempt", attempt+1, "error", err)
			user = base + RetrySuggestionPrompt(err.Error())
			continue
		}

		c.logStep(stepLog)
		return suggestions, nil
	}

	r.rec.Warnings = append(r.rec.Warnings, fmt.Sprintf("No usable dish suggestions after %d attempts.", c.maxIterations))
	return []dishadvisor.Suggestion{}, nil
}

// runTool calls one registry tool and logs it as its own step.
func (c *Coordinator) runTool(ctx context.Context, r *run, step, name string, input map[string]any) (map[string]any, dishadvisor.ToolCallLog, error) {
	stepLog := c.newStep(r, step)
	toolLog := dishadvisor.ToolCallLog{Name: name, Input: input}
	defer func() {
		stepLog.ToolCalls = []dishadvisor.ToolCallLog{toolLog}
		c.logStep(stepLog)
	}()

	slog.Info("COORDINATOR: Handling tool call", "run_id", r.id, "name", name)

	tool, err := c.toolProvider.GetTool(name)
	if err != nil {
		toolLog.Error = err.Error()
		stepLog.Error = err.Error()
		return nil, toolLog, fmt.Errorf("failed to get tool %q: %w", name, err)
	}

	out, err := tool.Run(ctx, input)
	if err != nil {
		toolLog.Error = err.Error()
		stepLog.Error = err.Error()
		return nil, toolLog, err
	}
	toolLog.Output = out
	return out, toolLog, nil
}

func (c *Coordinator) newStep(r *run, name string) dishadvisor.StepLog {
	r.step++
	return dishadvisor.StepLog{RunID: r.id, Step: r.step, Name: name, Timestamp: time.Now()}
}

// logStep logs a step using the configured logger, handling errors gracefully
func (c *Coordinator) logStep(step dishadvisor.StepLog) {
	if err := c.logger.LogStep(step); err != nil {
		slog.Error("Failed to log coordination step", "error", err, "step", step.Step)
	}
}
