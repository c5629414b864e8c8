package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/mathieuadams/ukcrimerepository/internal/adapters/http"
	natsadapter "github.com/mathieuadams/ukcrimerepository/internal/adapters/nats"
	"github.com/mathieuadams/ukcrimerepository/internal/adapters/policeuk"
	"github.com/mathieuadams/ukcrimerepository/internal/adapters/valkey"
	"github.com/mathieuadams/ukcrimerepository/internal/core/ports"
	"github.com/mathieuadams/ukcrimerepository/internal/core/usecases"
	"github.com/mathieuadams/ukcrimerepository/internal/pkg/config"
	"github.com/mathieuadams/ukcrimerepository/internal/pkg/logging"
	"github.com/mathieuadams/ukcrimerepository/internal/pkg/telemetry"
)

var version = "dev"

func main() {
	cfg, err := config.Load("crimemap-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format, cfg.Telemetry.ServiceName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.Endpoint)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Upstream
	source := policeuk.New(policeuk.Config{
		BaseURL:       cfg.Upstream.BaseURL,
		UserAgent:     cfg.Upstream.UserAgent,
		DatesTimeout:  cfg.Upstream.DatesTimeout,
		CrimesTimeout: cfg.Upstream.CrimesTimeout,
		ForcesTimeout: cfg.Upstream.ForcesTimeout,
	})

	deps := &http.Dependencies{
		Production: cfg.Server.IsProduction(),
		BaseURL:    cfg.Server.BaseURL,
		Version:    version,
	}

	// Response cache (optional)
	var cache ports.CacheService
	if cfg.Valkey.Enabled {
		vc, err := valkey.New(cfg.Valkey.Addr)
		if err != nil {
			slog.Warn("valkey unavailable, response caching disabled", "error", err)
		} else {
			defer vc.Close()
			cache = vc
			deps.Cache = vc
		}
	}

	// Contact notifications (optional)
	var notifier ports.ContactNotifier
	if cfg.NATS.Enabled {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable, contact notifications disabled", "error", err)
		} else {
			defer pub.Close()
			notifier = pub
			deps.NATS = pub
		}
	}

	// Use cases
	dates := usecases.NewDatesCache(source,
		usecases.WithTTL(cfg.DatesCache.TTL),
		usecases.WithFallback(cfg.DatesCache.Fallback),
	)
	deps.Crimes = usecases.NewCrimeService(source, dates, cache).
		WithCacheTTLs(cfg.Valkey.CrimesTTL, cfg.Valkey.ForcesTTL)
	deps.Cities = usecases.NewCityService(nil)
	deps.Contact = usecases.NewContactService(notifier).WithPublishTimeout(cfg.NATS.PublishTimeout)

	// Warm the latest month so the first crime lookup does not pay for it.
	go func() {
		latest := dates.ResolveLatest(ctx)
		slog.Info("latest reporting month resolved", "date", latest)
	}()

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    64 * 1024, // contact form is the only body we accept
		AppName:      "UK Crime Map",
		ErrorHandler: http.ErrorHandler,
	})
	app.Use(recover.New())
	if !deps.Production {
		app.Use(logger.New())
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.BaseURL,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	if err := http.SetupRoutes(app, deps); err != nil {
		log.Fatalf("routes: %v", err)
	}

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "environment", cfg.Server.Environment, "version", version)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
