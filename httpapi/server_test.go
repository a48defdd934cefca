package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dishadvisor"
	"dishadvisor/tools"
	"dishadvisor/tools/upstream"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubTool struct {
	name string
	out  map[string]any
	err  error
	got  map[string]any
}

func (s *stubTool) Name() string                     { return s.name }
func (s *stubTool) Title() string                    { return s.name }
func (s *stubTool) Description() string              { return "stub " + s.name }
func (s *stubTool) InputSchema() *jsonschema.Schema  { return &jsonschema.Schema{Type: "object"} }
func (s *stubTool) OutputSchema() *jsonschema.Schema { return nil }
func (s *stubTool) Run(_ context.Context, input map[string]any) (map[string]any, error) {
	s.got = input
	return s.out, s.err
}

type stubRecommender struct {
	rec dishadvisor.Recommendation
	err error
	got dishadvisor.RecommendRequest
}

func (s *stubRecommender) Recommend(_ context.Context, req dishadvisor.RecommendRequest) (dishadvisor.Recommendation, error) {
	s.got = req
	return s.rec, s.err
}

func newServer(rec dishadvisor.Recommender, ts ...*stubTool) *Server {
	reg := tools.Registry{}
	for _, t := range ts {
		reg[t.name] = t
	}
	return NewServer(&reg, rec, Options{AllowedOrigins: []string{"http://localhost:5173"}})
}

func do(t *testing.T, s *Server, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	var got map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got), w.Body.String())
	}
	return w, got
}

func TestHealthz(t *testing.T) {
	w, body := do(t, newServer(nil), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}

func TestRequestIDIsEchoed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	newServer(nil).Handler().ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))
}

func TestListTools(t *testing.T) {
	s := newServer(nil, &stubTool{name: "where_to_order"}, &stubTool{name: "compare_options"})

	w, body := do(t, s, http.MethodGet, "/tools", "")
	require.Equal(t, http.StatusOK, w.Code)

	list, ok := body["tools"].([]any)
	require.True(t, ok)
	require.Len(t, list, 2)
	first := list[0].(map[string]any)
	assert.Equal(t, "compare_options", first["name"])
	assert.Equal(t, "stub compare_options", first["description"])
	assert.NotNil(t, first["input_schema"])
	assert.Nil(t, first["output_schema"])
}

func TestRunTool(t *testing.T) {
	order := &stubTool{name: "where_to_order", out: map[string]any{"options": []any{}}}
	s := newServer(nil, order)

	w, body := do(t, s, http.MethodPost, "/tools/where_to_order", `{"dish":"Ramen"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ramen", order.got["dish"])
	assert.Contains(t, body, "options")

	w, _ = do(t, s, http.MethodPost, "/tools/where_to_order", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, order.got)
}

func TestRunTool_Errors(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		body       string
		err        error
		wantStatus int
		wantKind   string
	}{
		{name: "unknown tool", target: "/tools/nope", body: `{}`, wantStatus: http.StatusNotFound, wantKind: "unknown tool"},
		{name: "bad body", target: "/tools/where_to_order", body: `[1,2]`, wantStatus: http.StatusBadRequest, wantKind: "invalid input"},
		{name: "invalid input", target: "/tools/where_to_order", body: `{}`, err: upstream.InvalidInput("where_to_order", "dish is required"), wantStatus: http.StatusBadRequest, wantKind: "invalid input"},
		{name: "not found", target: "/tools/where_to_order", body: `{}`, err: upstream.NotFound("geocode", "no city %q", "x"), wantStatus: http.StatusNotFound, wantKind: "not found"},
		{name: "unavailable", target: "/tools/where_to_order", body: `{}`, err: upstream.Unavailable("forecast", errors.New("503")), wantStatus: http.StatusBadGateway, wantKind: "upstream unavailable"},
		{name: "malformed", target: "/tools/where_to_order", body: `{}`, err: upstream.Malformed("forecast", errors.New("bad json")), wantStatus: http.StatusBadGateway, wantKind: "malformed upstream response"},
		{name: "unclassified", target: "/tools/where_to_order", body: `{}`, err: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantKind: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newServer(nil, &stubTool{name: "where_to_order", err: tt.err})

			w, body := do(t, s, http.MethodPost, tt.target, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantKind, body["kind"])
			assert.NotEmpty(t, body["error"])
			assert.Equal(t, w.Header().Get(requestIDHeader), body[requestIDKey])
		})
	}
}

func TestGetWeather(t *testing.T) {
	weather := &stubTool{name: weatherTool, out: map[string]any{"weather": map[string]any{"city": "Berlin"}}}
	s := newServer(nil, weather)

	w, body := do(t, s, http.MethodGet, "/tools/get_weather?city=Berlin", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Berlin", weather.got["city"])
	assert.Equal(t, "Berlin", body["weather"].(map[string]any)["city"])

	w, body = do(t, s, http.MethodGet, "/tools/get_weather", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid input", body["kind"])
}

func TestRecommend(t *testing.T) {
	rec := &stubRecommender{rec: dishadvisor.Recommendation{RunID: "run-1", Cuisine: "Thai", City: "Munich", CityDefault: true}}
	s := newServer(rec)

	w, body := do(t, s, http.MethodPost, "/tools/recommend", `{"cuisine":"Thai"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Thai", rec.got.Cuisine)
	assert.Equal(t, "Munich", body["city"])
	assert.Equal(t, true, body["city_defaulted"])

	rec.err = upstream.InvalidInput("recommend", "a message or a cuisine is required")
	w, body = do(t, s, http.MethodPost, "/tools/recommend", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid input", body["kind"])
}

func TestRecommend_NotRegisteredWithoutRecommender(t *testing.T) {
	w, body := do(t, newServer(nil), http.MethodPost, "/tools/recommend", `{"cuisine":"Thai"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "unknown tool", body["kind"])
}

func TestCORS(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	newServer(nil).Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusFor(upstream.KindInvalidInput))
	assert.Equal(t, http.StatusNotFound, StatusFor(upstream.KindNotFound))
	assert.Equal(t, http.StatusBadGateway, StatusFor(upstream.KindUpstreamUnavailable))
	assert.Equal(t, http.StatusBadGateway, StatusFor(upstream.KindMalformedResponse))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(upstream.KindUnknown))
}
