// Package main is the entry point for the travel skill host.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/tripware/travel-skill/internal/config"
	"github.com/tripware/travel-skill/internal/dialog"
	"github.com/tripware/travel-skill/internal/handler"
	"github.com/tripware/travel-skill/internal/middleware"
	natsclient "github.com/tripware/travel-skill/internal/nats"
	"github.com/tripware/travel-skill/internal/recognizer"
	"github.com/tripware/travel-skill/internal/router"
	"github.com/tripware/travel-skill/internal/state"
	"github.com/tripware/travel-skill/internal/telemetry"
	"github.com/tripware/travel-skill/pkg/logger"
	"github.com/tripware/travel-skill/pkg/tracing"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting travel skill host")

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "travel-skill", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Connect to NATS only when a configured feature needs it
	var natsClient *natsclient.Client
	if cfg.NeedsNATS() {
		natsClient, err = natsclient.Connect(ctx, natsclient.Config{
			URL:      cfg.NATSURL,
			CAFile:   cfg.NATSCAFile,
			CertFile: cfg.NATSCertFile,
			KeyFile:  cfg.NATSKeyFile,
			Token:    cfg.NATSToken,
		}, log)
		if err != nil {
			log.Error("failed to connect to NATS", zap.Error(err))
			os.Exit(1)
		}
		defer natsClient.Close()
	}

	// Select the dialog state store
	var store dialog.Store
	if cfg.StateBackend == config.StateBackendNATS {
		natsStore, err := state.NewNATSStore(ctx, natsClient, cfg.StateBucket)
		if err != nil {
			log.Error("failed to open state bucket", zap.Error(err))
			os.Exit(1)
		}
		store = natsStore
	} else {
		store = state.NewMemoryStore()
	}

	// Telemetry sink for completed bookings
	var sink telemetry.Sink = telemetry.Noop{}
	if cfg.TelemetryEnabled {
		natsSink := telemetry.NewNATSSink(natsClient, log)
		if err := natsSink.EnsureStream(ctx); err != nil {
			log.Error("failed to ensure telemetry stream", zap.Error(err))
			os.Exit(1)
		}
		sink = natsSink
	}

	// Intent recognizer; the skill degrades gracefully without one
	var rec recognizer.Recognizer
	if cfg.NLUAPIKey != "" {
		rec, err = recognizer.NewClient(recognizer.Provider(cfg.NLUProvider), cfg.NLUAPIKey)
		if err != nil {
			log.Warn("failed to create recognizer, intent recognition disabled", zap.Error(err))
			rec = nil
		}
	}

	// Assemble the dialog set
	activityRouter := router.New(rec, cfg.BookingIntent, log)
	engine := dialog.NewEngine(store, log)
	engine.Register(activityRouter.Dialog())
	engine.Register(dialog.NewBookingDialog(sink, log))
	engine.Register(dialog.NewDateResolverDialog())
	engine.SetRoot(router.DialogID)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(natsClient)
	messagesHandler := handler.NewMessagesHandler(engine, store, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// Skill endpoint with authentication
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret, cfg.AllowedCallers))
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Post("/messages", messagesHandler.Process)
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
