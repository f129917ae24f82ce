package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/riandyrn/otelchi"

	"github.com/tuneport/ferry/internal/api"
	"github.com/tuneport/ferry/internal/config"
	"github.com/tuneport/ferry/internal/logger"
	"github.com/tuneport/ferry/internal/sentry"
	"github.com/tuneport/ferry/internal/services/converter"
	"github.com/tuneport/ferry/internal/services/extractor"
	"github.com/tuneport/ferry/internal/services/tagging"
	"github.com/tuneport/ferry/internal/telemetry"
)

func main() {
	defer sentry.Recover()

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize telemetry
	if cfg.OtelExporterOTLPEndpoint != "" {
		shutdown, err := telemetry.InitTelemetry(ctx, cfg.ServiceName, cfg.ServiceVersion, cfg.Env, cfg.OtelExporterOTLPEndpoint, nil)
		if err != nil {
			slog.Warn("Failed to init telemetry", "error", err)
		} else {
			defer shutdown(ctx)
		}
	}

	// Initialize Sentry
	if err := sentry.Init(cfg.SentryDSN, cfg.Env, cfg.ServiceName, cfg.ServiceVersion); err != nil {
		slog.Warn("Failed to init Sentry", "error", err)
	}
	if cfg.SentryDSN != "" {
		defer sentry.Flush(2 * time.Second)
	}

	// Initialize logger with OTel support
	appLogger := logger.New(cfg.Env)
	slog.SetDefault(appLogger)

	// Conversion pipeline
	ytdlp := extractor.NewYtDlp(cfg.Extractor, cfg.CookieFile, appLogger)
	embedder := tagging.NewEmbedder(appLogger)
	conv := converter.NewService(ytdlp, embedder, appLogger)

	// API handlers
	apiServer := api.NewServer(cfg, conv, appLogger)

	// Router
	r := chi.NewRouter()

	// Middleware
	r.Use(otelchi.Middleware(cfg.ServiceName,
		otelchi.WithChiRoutes(r),
		otelchi.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/api/health"
		}),
	))

	allowedOrigins := []string{"*"}
	allowCredentials := false
	if cfg.FrontendOrigin != "*" {
		allowedOrigins = []string{cfg.FrontendOrigin}
		allowCredentials = true
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: allowCredentials,
	}))

	r.Get("/api/health", apiServer.HandleHealth)
	r.Post("/api/convert", apiServer.HandleConvert)
	r.Post("/api/convert/stream", apiServer.HandleConvertStream)

	slog.Info("Starting server",
		"port", cfg.Port,
		"cookies", cfg.CookieFileAvailable(),
		"extractor", cfg.Extractor.Binary,
	)

	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
