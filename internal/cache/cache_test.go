package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrLoad_MissThenHit(t *testing.T) {
	c := New()
	ctx := context.Background()

	var calls atomic.Int32
	loader := func(ctx context.Context, key string) (any, error) {
		calls.Add(1)
		return "value-for-" + key, nil
	}

	v, err := c.GetOrLoad(ctx, "rules", time.Hour, loader)
	require.NoError(t, err)
	assert.Equal(t, "value-for-rules", v)

	v, err = c.GetOrLoad(ctx, "rules", time.Hour, loader)
	require.NoError(t, err)
	assert.Equal(t, "value-for-rules", v)

	assert.Equal(t, int32(1), calls.Load())
	stats := c.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, uint64(1), stats.Loads)
}

func TestGetOrLoad_SingleFlightUnderConcurrency(t *testing.T) {
	c := New()
	ctx := context.Background()

	const callers = 50
	var calls atomic.Int32
	release := make(chan struct{})
	loader := func(ctx context.Context, key string) (any, error) {
		calls.Add(1)
		// Hold the flight open until every caller is queued behind it.
		<-release
		return "shared-value", nil
	}

	var started sync.WaitGroup
	var done sync.WaitGroup
	values := make([]any, callers)
	errs := make([]error, callers)
	started.Add(callers)
	done.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer done.Done()
			started.Done()
			values[i], errs[i] = c.GetOrLoad(ctx, "rules", time.Hour, loader)
		}(i)
	}

	started.Wait()
	// Give the stragglers time to reach the flight wait before releasing.
	time.Sleep(20 * time.Millisecond)
	close(release)
	done.Wait()

	assert.Equal(t, int32(1), calls.Load(), "loader must run exactly once")
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "shared-value", values[i])
	}
}

func TestGetOrLoad_DistinctKeysDoNotBlockEachOther(t *testing.T) {
	c := New()
	ctx := context.Background()

	slowStarted := make(chan struct{})
	slowRelease := make(chan struct{})
	go func() {
		_, _ = c.GetOrLoad(ctx, "slow", time.Hour, func(ctx context.Context, key string) (any, error) {
			close(slowStarted)
			<-slowRelease
			return "slow", nil
		})
	}()
	<-slowStarted

	fastDone := make(chan struct{})
	go func() {
		v, err := c.GetOrLoad(ctx, "fast", time.Hour, func(ctx context.Context, key string) (any, error) {
			return "fast", nil
		})
		assert.NoError(t, err)
		assert.Equal(t, "fast", v)
		close(fastDone)
	}()

	select {
	case <-fastDone:
	case <-time.After(2 * time.Second):
		t.Fatal("load of an unrelated key blocked behind another key's flight")
	}
	close(slowRelease)
}

func TestGetOrLoad_TTLExpiryReloads(t *testing.T) {
	c := New()
	ctx := context.Background()

	now := time.Unix(1000, 0)
	c.now = func() time.Time { return now }

	var calls atomic.Int32
	loader := func(ctx context.Context, key string) (any, error) {
		calls.Add(1)
		return calls.Load(), nil
	}

	v, err := c.GetOrLoad(ctx, "k", time.Minute, loader)
	require.NoError(t, err)
	assert.Equal(t, int32(1), v)

	// Within the TTL window: no reload.
	now = now.Add(59 * time.Second)
	v, err = c.GetOrLoad(ctx, "k", time.Minute, loader)
	require.NoError(t, err)
	assert.Equal(t, int32(1), v)

	// Past the TTL window: transparently reloaded.
	now = now.Add(2 * time.Second)
	v, err = c.GetOrLoad(ctx, "k", time.Minute, loader)
	require.NoError(t, err)
	assert.Equal(t, int32(2), v)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGetOrLoad_ErrorSharedWithWaitersButNotCached(t *testing.T) {
	c := New()
	ctx := context.Background()

	boom := errors.New("backing store down")
	firstStarted := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	failing := func(ctx context.Context, key string) (any, error) {
		calls.Add(1)
		close(firstStarted)
		<-release
		return nil, boom
	}

	waiterErr := make(chan error, 1)
	go func() {
		_, err := c.GetOrLoad(ctx, "k", time.Hour, failing)
		waiterErr <- err
	}()
	<-firstStarted

	// Second caller joins the in-progress flight.
	secondErr := make(chan error, 1)
	go func() {
		_, err := c.GetOrLoad(ctx, "k", time.Hour, func(ctx context.Context, key string) (any, error) {
			t.Error("waiter must not invoke its own loader while a flight is active")
			return nil, nil
		})
		secondErr <- err
	}()

	time.Sleep(20 * time.Millisecond)
	close(release)

	err1 := <-waiterErr
	err2 := <-secondErr
	require.Error(t, err1)
	require.Error(t, err2)
	assert.True(t, errors.Is(err1, ErrLoad))
	assert.True(t, errors.Is(err2, ErrLoad))
	assert.True(t, errors.Is(err1, boom), "original loader error must stay reachable")
	assert.Equal(t, int32(1), calls.Load())

	// The failure is not cached: the next access retries and succeeds.
	v, err := c.GetOrLoad(ctx, "k", time.Hour, func(ctx context.Context, key string) (any, error) {
		return "recovered", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "recovered", v)
}

func TestGetOrLoad_WaiterHonorsContextCancel(t *testing.T) {
	c := New()

	started := make(chan struct{})
	release := make(chan struct{})
	defer close(release)
	go func() {
		_, _ = c.GetOrLoad(context.Background(), "k", time.Hour, func(ctx context.Context, key string) (any, error) {
			close(started)
			<-release
			return "late", nil
		})
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.GetOrLoad(ctx, "k", time.Hour, func(ctx context.Context, key string) (any, error) {
		return nil, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDefaultIsASingleton(t *testing.T) {
	assert.Same(t, Default(), Default())
}

func TestScopeKey(t *testing.T) {
	assert.Equal(t, "rules", ScopeGlobal.Key("rules", "abc"))
	assert.Equal(t, "rules@abc", ScopePerInput.Key("rules", "abc"))
	assert.Equal(t, "rules", ScopePerInput.Key("rules", ""))
}

func TestParseScope(t *testing.T) {
	tests := []struct {
		in      string
		want    Scope
		wantErr bool
	}{
		{"", ScopeGlobal, false},
		{"global", ScopeGlobal, false},
		{"per_input", ScopePerInput, false},
		{"bogus", ScopeGlobal, true},
	}
	for _, tt := range tests {
		got, err := ParseScope(tt.in)
		if tt.wantErr {
			assert.Error(t, err)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}
