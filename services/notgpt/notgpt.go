// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package notgpt provides the core NotGPT chat service.
//
// NotGPT is a deliberately unhelpful chat front end: user messages are
// proxied to an upstream completion API under a sarcastic persona, with
// per-client mood state, hidden slash commands, and simulated streaming.
// This package wires the components (rate limiter, mood store, command
// interpreter, completion pipeline, HTTP surface) into a runnable service.
//
// # Usage
//
//	cfg := notgpt.Config{Port: 5000, GroqAPIKey: key}
//	svc, err := notgpt.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	log.Fatal(svc.Run())
package notgpt

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/AleutianAI/notgpt/services/llm"
	"github.com/AleutianAI/notgpt/services/notgpt/commands"
	"github.com/AleutianAI/notgpt/services/notgpt/handlers"
	"github.com/AleutianAI/notgpt/services/notgpt/middleware"
	"github.com/AleutianAI/notgpt/services/notgpt/mood"
	"github.com/AleutianAI/notgpt/services/notgpt/observability"
	"github.com/AleutianAI/notgpt/services/notgpt/persona"
	"github.com/AleutianAI/notgpt/services/notgpt/ratelimit"
	"github.com/AleutianAI/notgpt/services/notgpt/routes"
	notgptservices "github.com/AleutianAI/notgpt/services/notgpt/services"
)

// =============================================================================
// Interface Definition
// =============================================================================

// Service defines the contract for the NotGPT service lifecycle.
//
// # Thread Safety
//
// Implementations must be safe for concurrent use. Run() blocks and should
// only be called once per instance.
type Service interface {
	// Run starts the HTTP server and blocks until shutdown or error.
	Run() error

	// Router returns the underlying Gin engine for integration testing.
	// Callers must not modify the router.
	Router() *gin.Engine
}

// =============================================================================
// Configuration
// =============================================================================

// Config holds NotGPT service configuration.
//
// # Description
//
// All fields have defaults applied by New() except GroqAPIKey, which is
// required unless Client is provided.
type Config struct {
	// Port is the HTTP server port. Default: 5000
	Port int

	// GroqAPIKey authenticates against the completion API.
	GroqAPIKey string

	// GroqBaseURL overrides the completion API endpoint.
	// Default: llm.DefaultGroqBaseURL
	GroqBaseURL string

	// Model is the completion model. Default: llm.DefaultGroqModel
	Model string

	// Client overrides the completion client entirely. When set,
	// GroqAPIKey/GroqBaseURL/Model are ignored. Tests inject fakes here.
	Client llm.LLMClient

	// OTelEndpoint is the OpenTelemetry collector endpoint.
	// Default: "notgpt-otel-collector:4317"
	OTelEndpoint string

	// EnableMetrics enables Prometheus metric registration.
	// Always on in production; kept as a field for symmetry with tests.
	EnableMetrics bool

	// GinMode sets the Gin framework mode ("debug", "release", "test").
	// Default: uses GIN_MODE env var or "debug".
	GinMode string

	// MaxRequests is the per-client request budget per window.
	// Default: ratelimit.DefaultMaxRequests
	MaxRequests int

	// RateWindow is the sliding rate-limit window.
	// Default: ratelimit.DefaultWindow
	RateWindow time.Duration

	// ChunkDelay paces stream chunk emission. Negative selects the
	// default (30ms); 0 disables pacing (tests).
	ChunkDelay time.Duration

	// StaticDir holds the browser front end. Empty disables UI routes.
	StaticDir string

	// UploadDir is created at startup for client asset uploads.
	// Default: "static/uploads"
	UploadDir string

	// MaxUploadBytes caps accepted request bodies on upload routes.
	// Default: 5 MiB
	MaxUploadBytes int64
}

// =============================================================================
// Implementation
// =============================================================================

// service implements Service for production use.
//
// # Thread Safety
//
// Thread-safe after construction. All fields are read-only after New()
// returns; mutable state lives inside the injected components.
type service struct {
	config        Config
	router        *gin.Engine
	chat          *handlers.ChatHandler
	tracerCleanup func(context.Context)
}

// =============================================================================
// Constructor
// =============================================================================

// New creates a NotGPT Service with the given configuration.
//
// # Description
//
// New initializes all components:
//  1. Applies default configuration for missing values
//  2. Initializes OpenTelemetry tracing
//  3. Initializes Prometheus metrics
//  4. Creates the Groq completion client (unless one is injected)
//  5. Builds the persona pipeline (picker, mood store, limiter, commands)
//  6. Sets up HTTP routes and middleware
//
// # Inputs
//
//   - cfg: Service configuration. Zero values use defaults.
//
// # Outputs
//
//   - Service: Ready-to-run service
//   - error: Non-nil if initialization fails
func New(cfg Config) (Service, error) {
	s := &service{config: applyConfigDefaults(cfg)}

	cleanup, err := s.initTracer()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracer: %w", err)
	}
	s.tracerCleanup = cleanup

	if s.config.EnableMetrics {
		observability.InitMetrics()
		slog.Info("Initialized Prometheus metrics")
	}

	client := s.config.Client
	if client == nil {
		client, err = llm.NewGroqClient(s.config.GroqAPIKey, s.config.GroqBaseURL, s.config.Model)
		if err != nil {
			s.cleanup()
			return nil, fmt.Errorf("failed to initialize completion client: %w", err)
		}
	}

	picker := persona.NewPicker()
	moods := mood.NewStore()
	limiter := ratelimit.NewLimiter(s.config.MaxRequests, s.config.RateWindow)
	interp := commands.NewInterpreter(moods, picker)
	completion := notgptservices.NewCompletionService(client, picker)

	s.chat = handlers.NewChatHandler(limiter, moods, interp, completion, picker, s.config.ChunkDelay)

	if s.config.UploadDir != "" {
		if err := os.MkdirAll(s.config.UploadDir, 0o755); err != nil {
			slog.Warn("Failed to create upload directory", "dir", s.config.UploadDir, "error", err)
		}
	}

	s.initRouter(picker)

	return s, nil
}

// =============================================================================
// Service Interface Methods
// =============================================================================

// Run starts the HTTP server and blocks until shutdown or error.
func (s *service) Run() error {
	defer s.cleanup()

	addr := fmt.Sprintf(":%d", s.config.Port)
	slog.Info("Starting NotGPT server", "port", s.config.Port)

	return s.router.Run(addr)
}

// Router returns the underlying Gin engine for testing.
func (s *service) Router() *gin.Engine {
	return s.router
}

// =============================================================================
// Private Initialization Methods
// =============================================================================

// applyConfigDefaults fills in missing configuration values.
func applyConfigDefaults(cfg Config) Config {
	if cfg.Port == 0 {
		cfg.Port = 5000
	}
	if cfg.OTelEndpoint == "" {
		cfg.OTelEndpoint = "notgpt-otel-collector:4317"
	}
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = ratelimit.DefaultMaxRequests
	}
	if cfg.RateWindow == 0 {
		cfg.RateWindow = ratelimit.DefaultWindow
	}
	if cfg.ChunkDelay < 0 {
		cfg.ChunkDelay = handlers.DefaultChunkDelay
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = "static/uploads"
	}
	if cfg.MaxUploadBytes == 0 {
		cfg.MaxUploadBytes = 5 << 20
	}
	cfg.EnableMetrics = true

	return cfg
}

// initTracer initializes OpenTelemetry distributed tracing.
//
// # Description
//
// Sets up an OTLP trace exporter to the configured collector. The gRPC
// client connects lazily, so an unreachable collector does not block
// startup; spans are dropped until it appears.
//
// # Limitations
//
//   - Uses an insecure gRPC connection (internal networks only).
func (s *service) initTracer() (func(context.Context), error) {
	ctx := context.Background()

	conn, err := grpc.NewClient(s.config.OTelEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection: %w", err)
	}

	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("notgpt-service")))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))

	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))

	cleanup := func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}

	return cleanup, nil
}

// initRouter sets up the Gin HTTP router with middleware and routes.
//
// Recovery runs outermost so even middleware panics stay in character;
// security headers apply to every response including streams.
func (s *service) initRouter(picker *persona.Picker) {
	if s.config.GinMode != "" {
		gin.SetMode(s.config.GinMode)
	}
	s.router = gin.New()
	s.router.Use(gin.Logger())
	s.router.Use(middleware.PersonaRecovery(picker))
	s.router.Use(middleware.SecurityHeaders())
	s.router.Use(otelgin.Middleware("notgpt-service"))

	routes.SetupRoutes(s.router, s.chat, s.config.StaticDir)
}

// cleanup releases resources held by the service.
func (s *service) cleanup() {
	if s.tracerCleanup != nil {
		s.tracerCleanup(context.Background())
	}
}

// =============================================================================
// Compile-time Interface Compliance
// =============================================================================

var _ Service = (*service)(nil)
