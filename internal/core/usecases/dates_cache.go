package usecases

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/mathieuadams/ukcrimerepository/internal/core/domain"
	"github.com/mathieuadams/ukcrimerepository/internal/core/ports"
	"github.com/mathieuadams/ukcrimerepository/internal/pkg/metrics"
)

const (
	// DefaultDatesTTL is how long a resolved latest month is trusted.
	DefaultDatesTTL = time.Hour
	// DefaultFallbackDate is served when the upstream listing cannot be read.
	DefaultFallbackDate domain.ReportingDate = "2025-08"
)

var errNoDates = errors.New("upstream returned no reporting dates")

// datesEntry is immutable once published; refreshes swap in a new one.
type datesEntry struct {
	value     domain.ReportingDate
	fetchedAt time.Time
}

// DatesCache holds the latest reporting month published upstream.
type DatesCache struct {
	source   ports.CrimeSource
	ttl      time.Duration
	fallback domain.ReportingDate
	now      func() time.Time

	entry atomic.Pointer[datesEntry]
	group singleflight.Group
}

// DatesCacheOption customises a DatesCache.
type DatesCacheOption func(*DatesCache)

// WithTTL overrides DefaultDatesTTL.
func WithTTL(ttl time.Duration) DatesCacheOption {
	return func(c *DatesCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithFallback overrides DefaultFallbackDate.
func WithFallback(date domain.ReportingDate) DatesCacheOption {
	return func(c *DatesCache) {
		if date != "" {
			c.fallback = date
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) DatesCacheOption {
	return func(c *DatesCache) { c.now = now }
}

// NewDatesCache creates an empty cache in front of source.
func NewDatesCache(source ports.CrimeSource, opts ...DatesCacheOption) *DatesCache {
	c := &DatesCache{
		source:   source,
		ttl:      DefaultDatesTTL,
		fallback: DefaultFallbackDate,
		now:      time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// TTL returns the configured time-to-live.
func (c *DatesCache) TTL() time.Duration { return c.ttl }

// Fallback returns the month served when refreshing fails.
func (c *DatesCache) Fallback() domain.ReportingDate { return c.fallback }

// ResolveLatest returns the latest reporting month. It never fails: a fresh
// cached value is returned as is, otherwise the cache is refreshed, and if
// that fails the fallback month is returned and the cache is left untouched.
func (c *DatesCache) ResolveLatest(ctx context.Context) domain.ReportingDate {
	if e, ok := c.fresh(); ok {
		metrics.DatesCacheHits.Inc()
		return e.value
	}

	date, err := c.refresh(ctx, false)
	if err != nil {
		slog.WarnContext(ctx, "latest month refresh failed, using fallback",
			"fallback", c.fallback, "error", err)
		metrics.DatesCacheFallbacks.Inc()
		return c.fallback
	}
	return date
}

// Refresh fetches the dates listing and replaces the cached entry with its
// first element. Concurrent Refresh calls share a single upstream request;
// they never join a lazy refresh started by ResolveLatest.
func (c *DatesCache) Refresh(ctx context.Context) (domain.ReportingDate, error) {
	return c.refresh(ctx, true)
}

func (c *DatesCache) fresh() (*datesEntry, bool) {
	e := c.entry.Load()
	return e, e != nil && c.now().Sub(e.fetchedAt) < c.ttl
}

func (c *DatesCache) refresh(ctx context.Context, force bool) (domain.ReportingDate, error) {
	// The shared call must not die with whichever request started it; the
	// client applies its own timeout.
	shared := context.WithoutCancel(ctx)
	key := "latest"
	if force {
		key = "latest:forced"
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		// a caller that saw a stale entry may arrive after another refresh landed
		prev, ok := c.fresh()
		if ok && !force {
			return prev.value, nil
		}
		dates, err := c.source.FetchDates(shared)
		if err != nil {
			metrics.DatesCacheRefreshes.WithLabelValues("error").Inc()
			return "", err
		}
		if len(dates) == 0 || dates[0].Date == "" {
			metrics.DatesCacheRefreshes.WithLabelValues("empty").Inc()
			return "", errNoDates
		}
		metrics.DatesCacheRefreshes.WithLabelValues("ok").Inc()
		next := &datesEntry{value: dates[0].Date, fetchedAt: c.now()}
		if force {
			c.entry.Store(next)
			return next.value, nil
		}
		// a forced refresh or Store landed while we were fetching; keep it
		if !c.entry.CompareAndSwap(prev, next) {
			return c.entry.Load().value, nil
		}
		return next.value, nil
	})
	if err != nil {
		return "", err
	}
	return v.(domain.ReportingDate), nil
}

// Store publishes date as the latest month, stamped with the current time.
func (c *DatesCache) Store(date domain.ReportingDate) {
	if date == "" {
		return
	}
	c.entry.Store(&datesEntry{value: date, fetchedAt: c.now()})
}

// Snapshot returns the cached value and when it was fetched. ok is false
// while the cache is empty.
func (c *DatesCache) Snapshot() (date domain.ReportingDate, fetchedAt time.Time, ok bool) {
	e := c.entry.Load()
	if e == nil {
		return "", time.Time{}, false
	}
	return e.value, e.fetchedAt, true
}
