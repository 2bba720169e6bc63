package scope

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

func TestLazyRegistry_ComputesOnce(t *testing.T) {
	t.Parallel()

	r := NewLazyRegistry()

	var calls atomic.Int32
	provider := r.Wrap("a", func(ctx context.Context) (any, error) {
		calls.Add(1)
		return "value", nil
	})

	ctx := context.Background()
	first, err := provider(ctx)
	require.NoError(t, err)
	second, err := provider(ctx)
	require.NoError(t, err)

	assert.Equal(t, "value", first)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load())
	assert.True(t, r.Cached("a"))
}

func TestLazyRegistry_ConcurrentSingleConstruction(t *testing.T) {
	t.Parallel()

	r := NewLazyRegistry()

	var calls atomic.Int32
	provider := r.Wrap("shared", func(ctx context.Context) (any, error) {
		calls.Add(1)
		return new(int), nil
	})

	const goroutines = 32
	results := make([]any, goroutines)

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := provider(context.Background())
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for i := 1; i < goroutines; i++ {
		assert.Same(t, results[0], results[i])
	}
}

func TestLazyRegistry_ErrorNotCached(t *testing.T) {
	t.Parallel()

	r := NewLazyRegistry()

	var calls atomic.Int32
	provider := r.Wrap("flaky", func(ctx context.Context) (any, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("boom")
		}
		return "ok", nil
	})

	ctx := context.Background()
	_, err := provider(ctx)
	require.Error(t, err)
	assert.False(t, r.Cached("flaky"))

	v, err := provider(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.True(t, r.Cached("flaky"))
}

func TestLazyRegistry_NestedConstructionSameRegistry(t *testing.T) {
	t.Parallel()

	r := NewLazyRegistry()

	inner := r.Wrap("inner", func(ctx context.Context) (any, error) {
		return "inner-value", nil
	})
	outer := r.Wrap("outer", func(ctx context.Context) (any, error) {
		v, err := inner(ctx)
		if err != nil {
			return nil, err
		}
		return "outer(" + v.(string) + ")", nil
	})

	v, err := resolveWithin(t, 2*time.Second, outer)
	require.NoError(t, err)
	assert.Equal(t, "outer(inner-value)", v)
	assert.True(t, r.Cached("inner"))
	assert.True(t, r.Cached("outer"))
}

func TestLazyRegistry_NestedChainOfThree(t *testing.T) {
	t.Parallel()

	r := NewLazyRegistry()

	leaf := r.Wrap("leaf", func(ctx context.Context) (any, error) {
		return "leaf", nil
	})
	mid := r.Wrap("mid", func(ctx context.Context) (any, error) {
		v, err := leaf(ctx)
		if err != nil {
			return nil, err
		}
		return "mid>" + v.(string), nil
	})
	root := r.Wrap("root", func(ctx context.Context) (any, error) {
		v, err := mid(ctx)
		if err != nil {
			return nil, err
		}
		return "root>" + v.(string), nil
	})

	v, err := resolveWithin(t, 2*time.Second, root)
	require.NoError(t, err)
	assert.Equal(t, "root>mid>leaf", v)
}

func TestLazyRegistry_NestedConstructionStaysExactlyOnce(t *testing.T) {
	t.Parallel()

	r := NewLazyRegistry()

	var innerCalls, outerCalls atomic.Int32
	inner := r.Wrap("inner", func(ctx context.Context) (any, error) {
		innerCalls.Add(1)
		return new(int), nil
	})
	outer := r.Wrap("outer", func(ctx context.Context) (any, error) {
		outerCalls.Add(1)
		return inner(ctx)
	})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Half race the chain, half race the inner key directly.
			_, err := outer(context.Background())
			assert.NoError(t, err)
			_, err = inner(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), innerCalls.Load())
	assert.Equal(t, int32(1), outerCalls.Load())
}

func TestLazyRegistry_RewrapReturnsFirstProvider(t *testing.T) {
	t.Parallel()

	r := NewLazyRegistry()

	first := r.Wrap("k", func(ctx context.Context) (any, error) {
		return "first", nil
	})
	second := r.Wrap("k", func(ctx context.Context) (any, error) {
		return "second", nil
	})

	v, err := second(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "first", v)

	v, err = first(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "first", v)
}

func TestFineGrainedRegistry_IndependentKeysDoNotBlock(t *testing.T) {
	t.Parallel()

	r := NewFineGrainedRegistry()

	blockA := make(chan struct{})
	started := make(chan struct{})

	slow := r.Wrap("slow", func(ctx context.Context) (any, error) {
		close(started)
		<-blockA
		return "slow", nil
	})
	fast := r.Wrap("fast", func(ctx context.Context) (any, error) {
		return "fast", nil
	})

	done := make(chan any, 1)
	go func() {
		v, _ := slow(context.Background())
		done <- v
	}()

	<-started

	// The slow key holds its lock; an unrelated key still constructs.
	v, err := fast(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fast", v)

	close(blockA)
	assert.Equal(t, "slow", <-done)
}

func TestFineGrainedRegistry_ConcurrentSameKeySerialized(t *testing.T) {
	t.Parallel()

	r := NewFineGrainedRegistry()

	var calls atomic.Int32
	provider := r.Wrap("k", func(ctx context.Context) (any, error) {
		calls.Add(1)
		return calls.Load(), nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := provider(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, int32(1), v)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestFineGrainedRegistry_NestedConstruction(t *testing.T) {
	t.Parallel()

	r := NewFineGrainedRegistry()

	inner := r.Wrap("inner", func(ctx context.Context) (any, error) {
		return "inner-value", nil
	})
	outer := r.Wrap("outer", func(ctx context.Context) (any, error) {
		v, err := inner(ctx)
		if err != nil {
			return nil, err
		}
		return "outer(" + v.(string) + ")", nil
	})

	v, err := resolveWithin(t, 2*time.Second, outer)
	require.NoError(t, err)
	assert.Equal(t, "outer(inner-value)", v)
	assert.True(t, r.Cached("inner"))
}

// resolveWithin runs the provider on its own goroutine and fails the
// test if it does not finish in time, so a self-deadlock surfaces as a
// failure instead of a hung suite.
func resolveWithin(t *testing.T, timeout time.Duration, provider Provider) (any, error) {
	t.Helper()

	type result struct {
		value any
		err   error
	}
	done := make(chan result, 1)
	go func() {
		v, err := provider(context.Background())
		done <- result{value: v, err: err}
	}()

	select {
	case res := <-done:
		return res.value, res.err
	case <-time.After(timeout):
		t.Fatal("nested resolution did not complete")
		return nil, nil
	}
}

func TestProcessRegistries_Stable(t *testing.T) {
	t.Parallel()

	assert.Same(t, Lazy(), Lazy())
	assert.Same(t, FineGrained(), FineGrained())
}

func TestKind_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "unscoped", Unscoped.String())
	assert.Equal(t, "singleton", Singleton.String())
	assert.Equal(t, "lazy-singleton", LazySingleton.String())
	assert.Equal(t, "fine-grained-lazy-singleton", FineGrainedLazySingleton.String())
}
