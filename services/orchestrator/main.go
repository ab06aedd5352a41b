// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/AleutianAI/campus-compass/pkg/logging"
	"github.com/AleutianAI/campus-compass/services/llm"
	"github.com/AleutianAI/campus-compass/services/orchestrator/audit"
	"github.com/AleutianAI/campus-compass/services/orchestrator/middleware"
	"github.com/AleutianAI/campus-compass/services/orchestrator/observability"
	"github.com/AleutianAI/campus-compass/services/orchestrator/pipeline"
	"github.com/AleutianAI/campus-compass/services/orchestrator/routes"
	"github.com/AleutianAI/campus-compass/services/safety"
)

// initTracer wires the OTLP trace exporter. Only called when
// OTEL_EXPORTER_OTLP_ENDPOINT is set; tracing is optional for this service.
func initTracer(endpoint string) (func(context.Context), error) {
	ctx := context.Background()

	conn, err := grpc.NewClient(endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("campus-compass")))
	if err != nil {
		return nil, err
	}
	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))
	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}, nil
}

// newBackend selects the AI backend from LLM_BACKEND_TYPE. A nil return
// means the service runs without generation: the surface stays up and
// explains itself instead of dying.
func newBackend() llm.Client {
	backendType := os.Getenv("LLM_BACKEND_TYPE")

	var client llm.Client
	var err error
	switch backendType {
	case "openai":
		client, err = llm.NewOpenAIClient()
		slog.Info("Using OpenAI backend")
	case "ollama":
		client, err = llm.NewOllamaClient()
		slog.Info("Using Ollama backend")
	case "gemini":
		client, err = llm.NewGeminiClient()
		slog.Info("Using Gemini backend")
	default:
		slog.Warn("LLM_BACKEND_TYPE not set or invalid, defaulting to gemini")
		client, err = llm.NewGeminiClient()
	}
	if err != nil {
		slog.Error("AI backend unavailable, running without generation", "error", err)
		return nil
	}
	return client
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	// Optional off-box log shipping for the campus ops team.
	var exporter logging.LogExporter
	if bucket := os.Getenv("LOG_GCS_BUCKET"); bucket != "" {
		gcsExporter, err := logging.NewGCSExporter(context.Background(),
			bucket, "orchestrator", os.Getenv("LOG_GCS_SA_KEY"))
		if err != nil {
			log.Printf("GCS log export disabled: %v", err)
		} else {
			exporter = gcsExporter
		}
	}

	logger := logging.New(logging.Config{
		JSON:     true,
		Service:  "orchestrator",
		LogDir:   os.Getenv("LOG_DIR"),
		Exporter: exporter,
	})
	defer logger.Close()
	slog.SetDefault(logger.Slog())

	var tracerCleanup func(context.Context)
	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); endpoint != "" {
		var err error
		tracerCleanup, err = initTracer(endpoint)
		if err != nil {
			log.Fatalf("failed to setup the OTLP tracer: %v", err)
		}
		defer tracerCleanup(context.Background())
	}

	metrics := observability.InitMetrics()

	// Safety rules: embedded by default, hot-reloaded from a file when a
	// path is configured.
	var rules pipeline.Ruleset
	var watcher *safety.Watcher
	if rulesPath := os.Getenv("SAFETY_RULES_PATH"); rulesPath != "" {
		var err error
		watcher, err = safety.NewWatcher(rulesPath, logger.Slog())
		if err != nil {
			log.Fatalf("FATAL: could not load safety rules from %s: %v", rulesPath, err)
		}
		defer watcher.Close()
		rules = watcher
		slog.Info("Safety rules loaded from file with hot reload", "path", rulesPath)
	} else {
		engine, err := safety.NewEngine()
		if err != nil {
			log.Fatalf("FATAL: could not compile embedded safety rules: %v", err)
		}
		rules = engine
	}

	// Audit storage: durable when a path is set, process log otherwise.
	var sink audit.Sink
	var alertStore audit.AlertStore
	var badgerStore *audit.BadgerStore
	if dbPath := os.Getenv("AUDIT_DB_PATH"); dbPath != "" {
		cfg := audit.DefaultConfig()
		cfg.Path = dbPath
		cfg.Logger = logger.Slog()
		var err error
		badgerStore, err = audit.NewBadgerStore(cfg)
		if err != nil {
			log.Fatalf("FATAL: could not open the audit database at %s: %v", dbPath, err)
		}
		defer badgerStore.Close()
		sink = badgerStore
		alertStore = badgerStore
		slog.Info("Audit database opened", "path", dbPath)
	} else {
		slog.Warn("AUDIT_DB_PATH not set, flagged interactions go to the process log only")
		sink = audit.NewLogSink(logger.Slog())
	}

	backend := newBackend()

	p, err := pipeline.New(pipeline.Config{
		Rules:   rules,
		Backend: backend,
		Sink:    sink,
		Logger:  logger.Slog(),
		Metrics: metrics,
	})
	if err != nil {
		log.Fatalf("FATAL: could not assemble the safety pipeline: %v", err)
	}

	router := gin.Default()
	router.Use(otelgin.Middleware("campus-compass"))

	routes.SetupRoutes(router, routes.Deps{
		Pipeline:          p,
		Alerts:            alertStore,
		ChatLimiter:       middleware.NewRateLimiter(5, 10),
		AdminToken:        os.Getenv("ADMIN_TOKEN"),
		BackendConfigured: backend != nil,
	})

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Starting the support surface", "port", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutdown signal received, draining connections")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("server error: %v", err)
	}
	slog.Info("Shutdown complete")
}
