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

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"bruce/internal/auth"
	"bruce/internal/catalog"
	"bruce/internal/config"
	"bruce/internal/domain"
	"bruce/internal/handler"
	"bruce/internal/metrics"
	"bruce/internal/middleware"
	"bruce/internal/repository"
	serviceLLM "bruce/internal/service/llm"
	"bruce/internal/service/prompts"
	"bruce/internal/service/usage"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"provider", cfg.DefaultProvider,
	)

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	cat, err := catalog.New()
	if err != nil {
		log.Fatalf("Failed to load prompt catalog: %v", err)
	}

	// Headlights store (optional)
	ctx := context.Background()
	store := repository.Open(ctx, cfg, logger)
	defer store.Close()
	if store.Backend == "disabled" {
		logger.Warn("headlights store not configured; prompt overrides and usage tracking disabled")
	} else {
		logger.Info("headlights store configured", "backend", store.Backend, "app_id", cfg.AppID)
	}

	promptSource := prompts.NewSource(store.Prompts, cat, cfg.AppID, cfg.StoreTimeout, m, logger)
	tracker := usage.NewTracker(store.Usage, cfg.AppID, cfg.StoreTimeout, cfg.TrackerMaxInflight, m, logger)

	// Model provider (a missing key fails model calls with 503, not startup)
	provider, err := serviceLLM.NewProviderFactory(cfg).Default()
	if err != nil {
		if !errors.Is(err, domain.ErrNotConfigured) {
			log.Fatalf("Failed to create model provider: %v", err)
		}
		logger.Warn("model provider not configured; model endpoints will answer 503", "error", err)
		provider = nil
	}

	assistant := serviceLLM.NewAssistantService(provider, cat, promptSource, tracker, serviceLLM.AssistantConfig{
		SmartModel: cfg.SmartModel,
		FastModel:  cfg.FastModel,
		Timeout:    cfg.LLMTimeout,
	}, m, logger)

	// Optional bearer-token auth
	var verifier auth.JWTVerifier
	if cfg.SupabaseJWKSURL != "" {
		verifier, err = auth.NewJWTVerifier(cfg.SupabaseJWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWT verifier: %v", err)
		}
		defer verifier.Close()
	}

	var promptsHandler *handler.PromptsHandler
	if cfg.AdminToken != "" {
		promptsHandler = handler.NewPromptsHandler(promptSource, cfg.AdminToken, logger)
	}

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()
	handler.Register(mux,
		handler.NewAssistantHandler(assistant, logger),
		handler.NewTrackingHandler(tracker),
		promptsHandler,
	)
	mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Request logger → Recovery → Auth → Routes
	var h http.Handler = mux
	h = middleware.OptionalAuth(verifier, logger)(h)
	h = middleware.Recovery(logger, m)(h)
	h = middleware.RequestLogger(logger)(h)

	// CORS - outermost so pre-flight requests never reach auth
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.LLMTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop
	logger.Info("shutting down", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
	if err := tracker.Close(shutdownCtx); err != nil {
		logger.Warn("usage updates still in flight at exit", "error", err)
	}

	logger.Info("server stopped")
}
