package usecases_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mathieuadams/ukcrimerepository/internal/core/domain"
)

// --- Mock CrimeSource ---

type mockSource struct {
	datesFn  func(ctx context.Context) ([]domain.AvailableDate, error)
	crimesFn func(ctx context.Context, lat, lng float64, date string) ([]domain.CrimeRecord, error)
	forcesFn func(ctx context.Context) ([]domain.ForceRecord, error)

	datesCalls  atomic.Int32
	crimesCalls atomic.Int32
	forcesCalls atomic.Int32
}

func (m *mockSource) FetchDates(ctx context.Context) ([]domain.AvailableDate, error) {
	m.datesCalls.Add(1)
	if m.datesFn != nil {
		return m.datesFn(ctx)
	}
	return nil, nil
}

func (m *mockSource) FetchCrimes(ctx context.Context, lat, lng float64, date string) ([]domain.CrimeRecord, error) {
	m.crimesCalls.Add(1)
	if m.crimesFn != nil {
		return m.crimesFn(ctx, lat, lng, date)
	}
	return nil, nil
}

func (m *mockSource) FetchForces(ctx context.Context) ([]domain.ForceRecord, error) {
	m.forcesCalls.Add(1)
	if m.forcesFn != nil {
		return m.forcesFn(ctx)
	}
	return nil, nil
}

func datesReturning(dates ...string) func(ctx context.Context) ([]domain.AvailableDate, error) {
	return func(ctx context.Context) ([]domain.AvailableDate, error) {
		out := make([]domain.AvailableDate, len(dates))
		for i, d := range dates {
			out[i] = domain.AvailableDate{Date: d}
		}
		return out, nil
	}
}

var errUpstreamDown = &domain.UpstreamError{Endpoint: "crimes-street-dates", Status: 503, Message: "service unavailable"}

// --- Mock CacheService ---

var errCacheMiss = errors.New("cache miss")

type memCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	ttls    map[string]int
	deleted []string
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}, ttls: map[string]int{}}
}

func (c *memCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, errCacheMiss
	}
	return v, nil
}

func (c *memCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	c.ttls[key] = ttlSeconds
	return nil
}

func (c *memCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	c.deleted = append(c.deleted, key)
	return nil
}

// --- Mock ContactNotifier ---

type mockNotifier struct {
	published []*domain.ContactMessage
	err       error
}

func (m *mockNotifier) PublishContact(ctx context.Context, msg *domain.ContactMessage) error {
	m.published = append(m.published, msg)
	return m.err
}

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
