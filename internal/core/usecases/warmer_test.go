package usecases_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mathieuadams/ukcrimerepository/internal/core/domain"
	"github.com/mathieuadams/ukcrimerepository/internal/core/usecases"
)

func TestWarmCities_PopulatesCacheInOrder(t *testing.T) {
	var inFlight, peak atomic.Int32
	src := &mockSource{
		datesFn: datesReturning("2025-09"),
		crimesFn: func(ctx context.Context, lat, lng float64, date string) ([]domain.CrimeRecord, error) {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			inFlight.Add(-1)
			if lat == 53.4808 {
				return nil, errUpstreamDown
			}
			return []domain.CrimeRecord{{Category: "burglary"}}, nil
		},
	}
	cache := newMemCache()
	svc := usecases.NewCrimeService(src, usecases.NewDatesCache(src), cache)

	cities := domain.Cities[:6]
	report := usecases.WarmCities(context.Background(), svc, cities, "", 2)

	if report.Date != "2025-09" {
		t.Errorf("expected latest date, got %q", report.Date)
	}
	if len(report.Results) != len(cities) {
		t.Fatalf("expected %d results, got %d", len(cities), len(report.Results))
	}
	for i, res := range report.Results {
		if res.City != cities[i].Slug {
			t.Errorf("result %d: expected %s, got %s", i, cities[i].Slug, res.City)
		}
	}
	if report.Failed() != 1 {
		t.Errorf("expected manchester to fail, got %d failures", report.Failed())
	}
	if p := peak.Load(); p > 2 {
		t.Errorf("concurrency exceeded: peak %d", p)
	}
	if _, err := cache.Get(context.Background(), "crimes:51.5074:-0.1278:2025-09"); err != nil {
		t.Error("expected london crimes to be cached")
	}
}

func TestWarmCities_CancelledContext(t *testing.T) {
	src := &mockSource{}
	svc := usecases.NewCrimeService(src, usecases.NewDatesCache(src), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := usecases.WarmCities(ctx, svc, domain.Cities[:3], "2025-01", 0)
	if report.Failed() != 3 {
		t.Errorf("expected every city to fail, got %d", report.Failed())
	}
	if src.crimesCalls.Load() != 0 {
		t.Errorf("upstream must not be called after cancellation, got %d", src.crimesCalls.Load())
	}
}
