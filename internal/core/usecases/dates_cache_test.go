package usecases_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/mathieuadams/ukcrimerepository/internal/core/domain"
	"github.com/mathieuadams/ukcrimerepository/internal/core/usecases"
)

func TestDatesCache_MissFetchesAndCaches(t *testing.T) {
	src := &mockSource{datesFn: datesReturning("2025-09", "2025-08")}
	clock := newFakeClock()
	cache := usecases.NewDatesCache(src, usecases.WithClock(clock.Now))

	if got := cache.ResolveLatest(context.Background()); got != "2025-09" {
		t.Fatalf("expected 2025-09, got %s", got)
	}
	if n := src.datesCalls.Load(); n != 1 {
		t.Fatalf("expected 1 upstream call, got %d", n)
	}

	date, fetchedAt, ok := cache.Snapshot()
	if !ok || date != "2025-09" || !fetchedAt.Equal(clock.Now()) {
		t.Errorf("unexpected snapshot: %q %v %v", date, fetchedAt, ok)
	}
}

func TestDatesCache_HitWithinTTL(t *testing.T) {
	src := &mockSource{datesFn: datesReturning("2025-09")}
	clock := newFakeClock()
	cache := usecases.NewDatesCache(src, usecases.WithClock(clock.Now))

	cache.ResolveLatest(context.Background())
	clock.Advance(59 * time.Minute)
	cache.ResolveLatest(context.Background())
	cache.ResolveLatest(context.Background())

	if n := src.datesCalls.Load(); n != 1 {
		t.Errorf("expected cached value to be reused, got %d upstream calls", n)
	}
}

func TestDatesCache_ExpiredTriggersExactlyOneFetch(t *testing.T) {
	src := &mockSource{datesFn: datesReturning("2025-09")}
	clock := newFakeClock()
	cache := usecases.NewDatesCache(src, usecases.WithClock(clock.Now), usecases.WithTTL(time.Hour))

	cache.ResolveLatest(context.Background())
	src.datesFn = datesReturning("2025-10")
	clock.Advance(time.Hour)

	if got := cache.ResolveLatest(context.Background()); got != "2025-10" {
		t.Fatalf("expected refreshed 2025-10, got %s", got)
	}
	if n := src.datesCalls.Load(); n != 2 {
		t.Fatalf("expected exactly 2 upstream calls, got %d", n)
	}

	cache.ResolveLatest(context.Background())
	if n := src.datesCalls.Load(); n != 2 {
		t.Errorf("refreshed value should be cached, got %d calls", n)
	}
}

func TestDatesCache_FallbackWhenEmptyAndUpstreamFails(t *testing.T) {
	src := &mockSource{
		datesFn: func(ctx context.Context) ([]domain.AvailableDate, error) { return nil, errUpstreamDown },
	}
	cache := usecases.NewDatesCache(src)

	if got := cache.ResolveLatest(context.Background()); got != usecases.DefaultFallbackDate {
		t.Fatalf("expected fallback %s, got %s", usecases.DefaultFallbackDate, got)
	}
	if _, _, ok := cache.Snapshot(); ok {
		t.Error("failed refresh must not populate the cache")
	}
}

func TestDatesCache_FailedRefreshKeepsStaleEntry(t *testing.T) {
	src := &mockSource{datesFn: datesReturning("2025-09")}
	clock := newFakeClock()
	cache := usecases.NewDatesCache(src, usecases.WithClock(clock.Now), usecases.WithFallback("2024-01"))

	cache.ResolveLatest(context.Background())
	_, before, _ := cache.Snapshot()

	src.datesFn = func(ctx context.Context) ([]domain.AvailableDate, error) { return nil, errUpstreamDown }
	clock.Advance(2 * time.Hour)

	if got := cache.ResolveLatest(context.Background()); got != "2024-01" {
		t.Fatalf("expected configured fallback, got %s", got)
	}
	date, after, ok := cache.Snapshot()
	if !ok || date != "2025-09" || !after.Equal(before) {
		t.Errorf("entry mutated on failure: %q %v", date, after)
	}
}

func TestDatesCache_EmptyListingFallsBack(t *testing.T) {
	src := &mockSource{datesFn: datesReturning()}
	cache := usecases.NewDatesCache(src)

	if got := cache.ResolveLatest(context.Background()); got != usecases.DefaultFallbackDate {
		t.Errorf("expected fallback, got %s", got)
	}
}

func TestDatesCache_RefreshReturnsError(t *testing.T) {
	src := &mockSource{
		datesFn: func(ctx context.Context) ([]domain.AvailableDate, error) { return nil, errUpstreamDown },
	}
	cache := usecases.NewDatesCache(src)

	if _, err := cache.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh error")
	}
}

func TestDatesCache_ConcurrentMissesShareOneFetch(t *testing.T) {
	release := make(chan struct{})
	src := &mockSource{
		datesFn: func(ctx context.Context) ([]domain.AvailableDate, error) {
			<-release
			return []domain.AvailableDate{{Date: "2025-09"}}, nil
		},
	}
	cache := usecases.NewDatesCache(src)

	const callers = 8
	var wg sync.WaitGroup
	results := make([]string, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = cache.ResolveLatest(context.Background())
		}(i)
	}

	// let the goroutines pile up on the in-flight refresh
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i, r := range results {
		if r != "2025-09" {
			t.Errorf("caller %d got %s", i, r)
		}
	}
	if n := src.datesCalls.Load(); n != 1 {
		t.Errorf("expected 1 upstream call, got %d", n)
	}
}

func TestDatesCache_StoreIgnoresEmpty(t *testing.T) {
	cache := usecases.NewDatesCache(&mockSource{})
	cache.Store("")
	if _, _, ok := cache.Snapshot(); ok {
		t.Error("empty date must not be stored")
	}
}

func TestDatesCache_RefreshDoesNotJoinLazyRefresh(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	src := &mockSource{}
	src.datesFn = func(ctx context.Context) ([]domain.AvailableDate, error) {
		if src.datesCalls.Load() == 1 {
			close(entered)
			<-release
			return []domain.AvailableDate{{Date: "2025-09"}}, nil
		}
		return []domain.AvailableDate{{Date: "2025-10"}}, nil
	}
	cache := usecases.NewDatesCache(src)

	lazy := make(chan string, 1)
	go func() { lazy <- cache.ResolveLatest(context.Background()) }()
	<-entered

	got, err := cache.Refresh(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "2025-10" {
		t.Errorf("forced refresh should fetch on its own, got %s", got)
	}
	if n := src.datesCalls.Load(); n != 2 {
		t.Errorf("expected 2 upstream calls, got %d", n)
	}

	close(release)
	if r := <-lazy; r != "2025-10" {
		t.Errorf("lazy caller should see the newer forced value, got %s", r)
	}
	if date, _, _ := cache.Snapshot(); date != "2025-10" {
		t.Errorf("lazy refresh overwrote the forced value with %s", date)
	}
}
