package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mathieuadams/ukcrimerepository/internal/core/domain"
	"github.com/mathieuadams/ukcrimerepository/internal/core/ports"
	"github.com/mathieuadams/ukcrimerepository/internal/pkg/metrics"
)

const (
	emptyResultMessage = "No crimes were reported near this location for the selected month."

	defaultCrimesTTL = time.Hour
	defaultForcesTTL = 24 * time.Hour
)

// CrimeService answers crime queries around a point.
type CrimeService struct {
	source ports.CrimeSource
	dates  *DatesCache
	cache  ports.CacheService

	crimesTTL time.Duration
	forcesTTL time.Duration
}

// NewCrimeService creates a new CrimeService. cache may be nil.
func NewCrimeService(source ports.CrimeSource, dates *DatesCache, cache ports.CacheService) *CrimeService {
	return &CrimeService{
		source:    source,
		dates:     dates,
		cache:     cache,
		crimesTTL: defaultCrimesTTL,
		forcesTTL: defaultForcesTTL,
	}
}

// WithCacheTTLs overrides how long crimes and forces responses are cached.
func (s *CrimeService) WithCacheTTLs(crimes, forces time.Duration) *CrimeService {
	if crimes > 0 {
		s.crimesTTL = crimes
	}
	if forces > 0 {
		s.forcesTTL = forces
	}
	return s
}

// Dates exposes the latest-month cache.
func (s *CrimeService) Dates() *DatesCache { return s.dates }

// GetCrimes validates the coordinates, resolves the month and returns the
// crimes near the point with their aggregates. An empty date means "latest".
func (s *CrimeService) GetCrimes(ctx context.Context, latText, lngText, date string) (*domain.CrimeQueryResult, error) {
	loc, err := ValidateCoordinate(latText, lngText)
	if err != nil {
		return nil, domain.BadRequest(err)
	}

	date = strings.TrimSpace(date)
	if date == "" {
		date = s.dates.ResolveLatest(ctx)
	}

	crimes, err := s.crimesAt(ctx, loc, date)
	if err != nil {
		qe := domain.ClassifyUpstream(err)
		slog.ErrorContext(ctx, "crime lookup failed",
			"lat", loc.Lat, "lng", loc.Lng, "date", date, "kind", qe.Kind.String(), "error", err)
		return nil, qe
	}

	return Aggregate(loc, date, crimes), nil
}

// crimesKey names the cached response for exactly the point sent upstream.
func crimesKey(loc domain.Coordinate, date domain.ReportingDate) string {
	lat, lng := formatCoordinate(loc)
	return fmt.Sprintf("crimes:%s:%s:%s", lat, lng, date)
}

// cached decodes the entry at key into out. An entry that no longer decodes
// is evicted and reported as a miss.
func (s *CrimeService) cached(ctx context.Context, key string, out any) bool {
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		slog.WarnContext(ctx, "evicting unreadable cache entry", "key", key, "error", err)
		if err := s.cache.Delete(ctx, key); err != nil {
			slog.WarnContext(ctx, "cache delete failed", "key", key, "error", err)
		}
		return false
	}
	return true
}

func (s *CrimeService) crimesAt(ctx context.Context, loc domain.Coordinate, date domain.ReportingDate) ([]domain.CrimeRecord, error) {
	cacheKey := crimesKey(loc, date)
	if s.cache != nil {
		var crimes []domain.CrimeRecord
		if s.cached(ctx, cacheKey, &crimes) {
			metrics.CacheHits.WithLabelValues("crimes").Inc()
			return crimes, nil
		}
		metrics.CacheMisses.WithLabelValues("crimes").Inc()
	}

	crimes, err := s.source.FetchCrimes(ctx, loc.Lat, loc.Lng, date)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(crimes); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, int(s.crimesTTL.Seconds()))
		}
	}

	return crimes, nil
}

// Aggregate builds the query result for an already fetched crime list.
func Aggregate(loc domain.Coordinate, date domain.ReportingDate, crimes []domain.CrimeRecord) *domain.CrimeQueryResult {
	if crimes == nil {
		crimes = []domain.CrimeRecord{}
	}
	res := &domain.CrimeQueryResult{
		Location:   loc,
		Date:       date,
		Count:      len(crimes),
		Crimes:     crimes,
		Categories: CategoryHistogram(crimes),
		Bounds:     ComputeBounds(crimes),
	}
	if len(crimes) > 0 {
		sample := crimes[0]
		res.Sample = &sample
	} else {
		res.Message = emptyResultMessage
	}
	return res
}

// CategoryHistogram counts records per category; blank categories count as
// domain.UnknownCategory.
func CategoryHistogram(crimes []domain.CrimeRecord) domain.CategoryHistogram {
	h := make(domain.CategoryHistogram)
	for _, c := range crimes {
		h[c.CategoryOrUnknown()]++
	}
	return h
}

// ComputeBounds returns the box around every record with a numeric location,
// or nil when there is none.
func ComputeBounds(crimes []domain.CrimeRecord) *domain.Bounds {
	var b *domain.Bounds
	for _, c := range crimes {
		p, ok := c.Point()
		if !ok {
			continue
		}
		if b == nil {
			b = &domain.Bounds{North: p.Lat, South: p.Lat, East: p.Lng, West: p.Lng}
			continue
		}
		b.North = max(b.North, p.Lat)
		b.South = min(b.South, p.Lat)
		b.East = max(b.East, p.Lng)
		b.West = min(b.West, p.Lng)
	}
	return b
}

// LatestDates returns up to limit reporting months, most recent first, and
// records the newest one in the dates cache.
func (s *CrimeService) LatestDates(ctx context.Context, limit int) ([]domain.AvailableDate, domain.ReportingDate, error) {
	dates, err := s.source.FetchDates(ctx)
	if err != nil {
		return nil, "", domain.ClassifyUpstream(err)
	}
	if len(dates) == 0 {
		return []domain.AvailableDate{}, s.dates.Fallback(), nil
	}

	latest := dates[0].Date
	s.dates.Store(latest)

	if limit > 0 && len(dates) > limit {
		dates = dates[:limit]
	}
	return dates, latest, nil
}

// Forces returns the police force listing.
func (s *CrimeService) Forces(ctx context.Context) ([]domain.ForceRecord, error) {
	const cacheKey = "forces:all"
	if s.cache != nil {
		var forces []domain.ForceRecord
		if s.cached(ctx, cacheKey, &forces) {
			metrics.CacheHits.WithLabelValues("forces").Inc()
			return forces, nil
		}
		metrics.CacheMisses.WithLabelValues("forces").Inc()
	}

	forces, err := s.source.FetchForces(ctx)
	if err != nil {
		return nil, domain.ClassifyUpstream(err)
	}

	if s.cache != nil {
		if data, err := json.Marshal(forces); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, int(s.forcesTTL.Seconds()))
		}
	}
	return forces, nil
}
