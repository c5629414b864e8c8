package usecases

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mathieuadams/ukcrimerepository/internal/core/domain"
)

// DefaultWarmConcurrency caps simultaneous upstream lookups while warming.
const DefaultWarmConcurrency = 4

// WarmResult is the outcome for one city.
type WarmResult struct {
	City  string
	Count int
	Took  time.Duration
	Err   error
}

// WarmReport summarises a warm run.
type WarmReport struct {
	Date    domain.ReportingDate
	Results []WarmResult
}

// Failed counts cities whose lookup failed.
func (r WarmReport) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res.Err != nil {
			n++
		}
	}
	return n
}

// WarmCities looks up crimes around each city centre for date, or for the
// latest month when date is empty, so the response cache is populated before
// traffic arrives. Results keep the order of cities.
func WarmCities(ctx context.Context, crimes *CrimeService, cities []domain.City, date domain.ReportingDate, concurrency int) WarmReport {
	if concurrency <= 0 {
		concurrency = DefaultWarmConcurrency
	}
	if date == "" {
		date = crimes.Dates().ResolveLatest(ctx)
	}

	report := WarmReport{Date: date, Results: make([]WarmResult, len(cities))}

	var wg sync.WaitGroup
	sem := make(chan struct{}, concurrency)

	for i, city := range cities {
		wg.Add(1)
		go func(i int, city domain.City) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			start := time.Now()
			res := WarmResult{City: city.Slug}
			if err := ctx.Err(); err != nil {
				res.Err = err
			} else {
				lat, lng := formatCoordinate(city.Coordinate())
				out, err := crimes.GetCrimes(ctx, lat, lng, date)
				if err != nil {
					res.Err = err
				} else {
					res.Count = out.Count
				}
			}
			res.Took = time.Since(start)
			report.Results[i] = res

			if res.Err != nil {
				slog.WarnContext(ctx, "warm city failed", "city", city.Slug, "date", date, "error", res.Err)
			} else {
				slog.InfoContext(ctx, "warmed city", "city", city.Slug, "date", date, "crimes", res.Count, "took", res.Took)
			}
		}(i, city)
	}

	wg.Wait()
	return report
}
