// Command warmer prefetches crimes around every city centre into the Valkey
// response cache.
//
//	warmer [slug,slug,...|all] [YYYY-MM]
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mathieuadams/ukcrimerepository/internal/adapters/policeuk"
	"github.com/mathieuadams/ukcrimerepository/internal/adapters/valkey"
	"github.com/mathieuadams/ukcrimerepository/internal/core/domain"
	"github.com/mathieuadams/ukcrimerepository/internal/core/usecases"
	"github.com/mathieuadams/ukcrimerepository/internal/pkg/config"
	"github.com/mathieuadams/ukcrimerepository/internal/pkg/logging"
)

func main() {
	cfg, err := config.Load("crimemap-warmer")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format, cfg.Telemetry.ServiceName)

	if !cfg.Valkey.Enabled {
		log.Fatal("valkey is disabled; nothing to warm (set CRIMEMAP_VALKEY_ENABLED=true)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		log.Fatalf("valkey: %v", err)
	}
	defer cache.Close()

	source := policeuk.New(policeuk.Config{
		BaseURL:       cfg.Upstream.BaseURL,
		UserAgent:     cfg.Upstream.UserAgent,
		DatesTimeout:  cfg.Upstream.DatesTimeout,
		CrimesTimeout: cfg.Upstream.CrimesTimeout,
		ForcesTimeout: cfg.Upstream.ForcesTimeout,
	})
	dates := usecases.NewDatesCache(source,
		usecases.WithTTL(cfg.DatesCache.TTL),
		usecases.WithFallback(cfg.DatesCache.Fallback),
	)
	crimes := usecases.NewCrimeService(source, dates, cache).
		WithCacheTTLs(cfg.Valkey.CrimesTTL, cfg.Valkey.ForcesTTL)

	cities := selectCities(os.Args[1:])
	var date domain.ReportingDate
	if len(os.Args) > 2 {
		date = strings.TrimSpace(os.Args[2])
	}

	slog.Info("warming response cache", "cities", len(cities), "date", date)

	if _, err := crimes.Forces(ctx); err != nil {
		slog.Warn("forces warm failed", "error", err)
	}
	report := usecases.WarmCities(ctx, crimes, cities, date, usecases.DefaultWarmConcurrency)

	slog.Info("warm complete", "date", report.Date, "cities", len(report.Results), "failed", report.Failed())
	if report.Failed() > 0 {
		stop()
		cache.Close()
		os.Exit(1)
	}
}

// selectCities filters the directory by a comma-separated slug list.
func selectCities(args []string) []domain.City {
	if len(args) == 0 || args[0] == "" || args[0] == "all" {
		return domain.Cities
	}

	want := map[string]bool{}
	for _, s := range strings.Split(args[0], ",") {
		want[strings.ToLower(strings.TrimSpace(s))] = true
	}

	var out []domain.City
	for _, c := range domain.Cities {
		if want[c.Slug] {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		log.Fatalf("no known city in %q", args[0])
	}
	return out
}
