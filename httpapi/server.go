// Package httpapi serves the tools and the recommendation chain over HTTP.
package httpapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"dishadvisor"
	"dishadvisor/tools/upstream"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"

	weatherTool = "get_weather"
)

type Options struct {
	AllowedOrigins []string
	Tracer         trace.Tracer
}

// Server is the gin facade over a tool provider and an optional recommender.
type Server struct {
	engine      *gin.Engine
	tools       dishadvisor.ToolProvider
	recommender dishadvisor.Recommender
	tracer      trace.Tracer
}

// NewServer wires routes and middleware. A nil recommender leaves /tools/recommend unregistered.
func NewServer(tp dishadvisor.ToolProvider, rec dishadvisor.Recommender, opts Options) *Server {
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer(dishadvisor.TracerNameHTTP)
	}

	s := &Server{
		engine:      gin.New(),
		tools:       tp,
		recommender: rec,
		tracer:      opts.Tracer,
	}

	s.engine.Use(gin.Recovery(), requestID(), requestLogger())
	if len(opts.AllowedOrigins) > 0 {
		config := cors.DefaultConfig()
		config.AllowOrigins = opts.AllowedOrigins
		config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
		config.AllowHeaders = []string{"Origin", "Content-Type", requestIDHeader}
		config.ExposeHeaders = []string{requestIDHeader}
		s.engine.Use(cors.New(config))
	}

	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.engine.Group("/tools")
	{
		api.GET("", s.listTools)
		api.GET("/get_weather", s.getWeather)
		if rec != nil {
			api.POST("/recommend", s.recommend)
		}
		api.POST("/:name", s.runTool)
	}

	return s
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP: Listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	slog.Info("HTTP: Shutting down")
	return srv.Shutdown(shutdownCtx)
}

type toolInfo struct {
	Name         string `json:"name"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	InputSchema  any    `json:"input_schema,omitempty"`
	OutputSchema any    `json:"output_schema,omitempty"`
}

func (s *Server) listTools(c *gin.Context) {
	ts := s.tools.GetTools()
	out := make([]toolInfo, 0, len(ts))
	for _, t := range ts {
		info := toolInfo{Name: t.Name(), Title: t.Title(), Description: t.Description()}
		if in := t.InputSchema(); in != nil {
			info.InputSchema = in
		}
		if o := t.OutputSchema(); o != nil {
			info.OutputSchema = o
		}
		out = append(out, info)
	}
	c.JSON(http.StatusOK, gin.H{"tools": out})
}

func (s *Server) getWeather(c *gin.Context) {
	city := strings.TrimSpace(c.Query("city"))
	if city == "" {
		s.fail(c, upstream.InvalidInput(weatherTool, "city query parameter is required"))
		return
	}
	s.run(c, weatherTool, map[string]any{"city": city})
}

func (s *Server) runTool(c *gin.Context) {
	input := map[string]any{}
	if err := bindOptionalJSON(c, &input); err != nil {
		s.fail(c, upstream.InvalidInput(c.Param("name"), "request body must be a JSON object: %v", err))
		return
	}
	if input == nil {
		input = map[string]any{}
	}
	s.run(c, c.Param("name"), input)
}

func (s *Server) run(c *gin.Context, name string, input map[string]any) {
	ctx, span := s.tracer.Start(c.Request.Context(), "HTTP.RunTool", trace.WithAttributes(
		attribute.String("tool_name", name),
		attribute.String(requestIDKey, c.GetString(requestIDKey)),
	))
	defer span.End()

	tool, err := s.tools.GetTool(name)
	if err != nil {
		span.SetStatus(codes.Error, "unknown tool")
		c.JSON(http.StatusNotFound, errorBody(c, err, "unknown tool"))
		return
	}

	out, err := tool.Run(ctx, input)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) recommend(c *gin.Context) {
	var req dishadvisor.RecommendRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		s.fail(c, upstream.InvalidInput("recommend", "request body must be a JSON object: %v", err))
		return
	}

	ctx, span := s.tracer.Start(c.Request.Context(), "HTTP.Recommend", trace.WithAttributes(
		attribute.String(requestIDKey, c.GetString(requestIDKey)),
	))
	defer span.End()

	rec, err := s.recommender.Recommend(ctx, req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// bindOptionalJSON treats a missing body as an empty object.
func bindOptionalJSON(c *gin.Context, v any) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (s *Server) fail(c *gin.Context, err error) {
	kind := upstream.KindOf(err)
	status := StatusFor(kind)
	slog.Warn("HTTP: Request failed", "path", c.FullPath(), "status", status, "kind", kind.String(), "error", err, requestIDKey, c.GetString(requestIDKey))
	c.JSON(status, errorBody(c, err, kind.String()))
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind upstream.Kind) int {
	switch kind {
	case upstream.KindInvalidInput:
		return http.StatusBadRequest
	case upstream.KindNotFound:
		return http.StatusNotFound
	case upstream.KindUpstreamUnavailable, upstream.KindMalformedResponse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func errorBody(c *gin.Context, err error, kind string) gin.H {
	return gin.H{
		"error":      err.Error(),
		"kind":       kind,
		requestIDKey: c.GetString(requestIDKey),
	}
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Info("HTTP: Request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			requestIDKey, c.GetString(requestIDKey),
		)
	}
}
