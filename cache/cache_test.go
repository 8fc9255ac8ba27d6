package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"
)

type fakeClock struct{ t int64 }

func (f *fakeClock) NowUnixNano() int64  { return f.t }
func (f *fakeClock) add(d time.Duration) { f.t += int64(d) }

func constLoader[V any](v V) Loader[V] {
	return func(context.Context) (V, error) { return v, nil }
}

func TestGetOrLoad_MissThenHit(t *testing.T) {
	t.Parallel()
	var calls int64
	c := New[string, string](CacheConfig{TTL: time.Hour, MaxSize: 4}, Options[string, string]{})

	loader := func(context.Context) (string, error) {
		atomic.AddInt64(&calls, 1)
		return "v1", nil
	}

	v, err := c.GetOrLoad(context.Background(), "a", loader)
	if err != nil || v != "v1" {
		t.Fatalf("first load: v=%q err=%v", v, err)
	}
	v, err = c.GetOrLoad(context.Background(), "a", loader)
	if err != nil || v != "v1" {
		t.Fatalf("second load: v=%q err=%v", v, err)
	}
	if got := atomic.LoadInt64(&calls); got != 1 {
		t.Fatalf("loader should run exactly once, got %d", got)
	}

	st := c.Stats()
	if st.Hits != 1 || st.Misses != 1 {
		t.Fatalf("unexpected stats: %+v", st)
	}
	if st.HitRate != 0.5 {
		t.Fatalf("expected hit rate 0.5, got %v", st.HitRate)
	}
}

func TestGetOrLoad_LoaderErrorNotCached(t *testing.T) {
	t.Parallel()
	wantErr := errors.New("boom")
	var calls int64
	c := New[string, string](CacheConfig{TTL: time.Hour, MaxSize: 4}, Options[string, string]{})

	loader := func(context.Context) (string, error) {
		atomic.AddInt64(&calls, 1)
		return "", wantErr
	}

	if _, err := c.GetOrLoad(context.Background(), "a", loader); !errors.Is(err, wantErr) {
		t.Fatalf("expected wantErr, got %v", err)
	}
	if _, err := c.GetOrLoad(context.Background(), "a", loader); !errors.Is(err, wantErr) {
		t.Fatalf("expected wantErr again (not cached), got %v", err)
	}
	if got := atomic.LoadInt64(&calls); got != 2 {
		t.Fatalf("loader should run on every call after a failed load, got %d", got)
	}
	if st := c.Stats(); st.Size != 0 {
		t.Fatalf("failed load must not occupy a slot, size=%d", st.Size)
	}
}

func TestGetOrLoad_TTLExpiry(t *testing.T) {
	t.Parallel()
	clk := &fakeClock{}
	c := New[string, string](CacheConfig{TTL: 1800 * time.Second, MaxSize: 4}, Options[string, string]{Clock: clk})

	if _, err := c.GetOrLoad(context.Background(), "a", constLoader("v1")); err != nil {
		t.Fatal(err)
	}
	clk.add(1900 * time.Second)

	var calls int64
	loader := func(context.Context) (string, error) {
		atomic.AddInt64(&calls, 1)
		return "v2", nil
	}
	v, err := c.GetOrLoad(context.Background(), "a", loader)
	if err != nil || v != "v2" {
		t.Fatalf("expected reload after TTL, got v=%q err=%v", v, err)
	}
	if atomic.LoadInt64(&calls) != 1 {
		t.Fatal("expected loader invoked once after expiry")
	}
	if st := c.Stats(); st.Expired == 0 {
		t.Fatalf("expected expired count >= 1, got %+v", st)
	}
}

func TestGetOrLoad_LRUEviction(t *testing.T) {
	t.Parallel()
	c := New[string, int](CacheConfig{TTL: time.Hour, MaxSize: 3}, Options[string, int]{})

	for _, k := range []string{"A", "B", "C"} {
		if _, err := c.GetOrLoad(context.Background(), k, constLoader(1)); err != nil {
			t.Fatal(err)
		}
	}
	// Promote A to MRU.
	if _, err := c.GetOrLoad(context.Background(), "A", constLoader(1)); err != nil {
		t.Fatal(err)
	}
	// Overflow: D should evict B (the actual LRU entry).
	if _, err := c.GetOrLoad(context.Background(), "D", constLoader(1)); err != nil {
		t.Fatal(err)
	}

	var bMisses int64
	if _, err := c.GetOrLoad(context.Background(), "B", func(context.Context) (int, error) {
		atomic.AddInt64(&bMisses, 1)
		return 1, nil
	}); err != nil {
		t.Fatal(err)
	}
	if bMisses != 1 {
		t.Fatal("B should have been evicted and required a reload")
	}
	st := c.Stats()
	if st.Size > 3 {
		t.Fatalf("size invariant violated: %d > 3", st.Size)
	}
	if st.Evictions < 1 {
		t.Fatalf("expected at least one eviction, got %+v", st)
	}
}

func TestClearAndClearStats(t *testing.T) {
	t.Parallel()
	c := New[string, int](CacheConfig{TTL: time.Hour, MaxSize: 4}, Options[string, int]{})
	_, _ = c.GetOrLoad(context.Background(), "a", constLoader(1))
	_, _ = c.GetOrLoad(context.Background(), "a", constLoader(1))

	c.Clear()
	if st := c.Stats(); st.Size != 0 {
		t.Fatalf("expected size 0 after Clear, got %d", st.Size)
	}

	c.ClearStats()
	st := c.Stats()
	if st.Hits != 0 || st.Misses != 0 || st.Evictions != 0 || st.Expired != 0 {
		t.Fatalf("expected all-zero counters after ClearStats, got %+v", st)
	}
}

func TestGetOrLoad_ConcurrentSingleLoad(t *testing.T) {
	t.Parallel()
	var calls int64
	c := New[string, string](CacheConfig{TTL: time.Hour, MaxSize: 16}, Options[string, string]{})

	loader := func(ctx context.Context) (string, error) {
		atomic.AddInt64(&calls, 1)
		time.Sleep(5 * time.Millisecond)
		return "v", nil
	}

	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < 50; i++ {
		g.Go(func() error {
			v, err := c.GetOrLoad(ctx, "same-key", loader)
			if err != nil {
				return err
			}
			if v != "v" {
				t.Errorf("unexpected value %q", v)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
	if got := atomic.LoadInt64(&calls); got != 1 {
		t.Fatalf("loader should run at most once under contention, got %d", got)
	}
}

func TestNew_PanicsOnInvalidConfig(t *testing.T) {
	t.Parallel()
	mustPanic := func(name string, fn func()) {
		defer func() {
			if recover() == nil {
				t.Errorf("%s: expected panic", name)
			}
		}()
		fn()
	}
	mustPanic("zero MaxSize", func() {
		New[string, int](CacheConfig{TTL: time.Second, MaxSize: 0}, Options[string, int]{})
	})
	mustPanic("zero TTL", func() {
		New[string, int](CacheConfig{TTL: 0, MaxSize: 1}, Options[string, int]{})
	})
}

func TestNew_MaxSizeOneWorks(t *testing.T) {
	t.Parallel()
	c := New[string, int](CacheConfig{TTL: time.Hour, MaxSize: 1}, Options[string, int]{})
	_, _ = c.GetOrLoad(context.Background(), "a", constLoader(1))
	_, _ = c.GetOrLoad(context.Background(), "b", constLoader(2))
	if st := c.Stats(); st.Size != 1 {
		t.Fatalf("expected size 1, got %d", st.Size)
	}
}
