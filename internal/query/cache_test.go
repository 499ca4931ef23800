package query

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFetch_DeduplicatesConcurrentCallers(t *testing.T) {
	c := New()
	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	fetch := func(context.Context) ([]int64, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		return []int64{7}, nil
	}

	var wg sync.WaitGroup
	results := make([][]int64, 2)
	errs := make([]error, 2)
	run := func(i int) {
		defer wg.Done()
		results[i], errs[i] = Fetch(context.Background(), c, PendingValidationOrders(), fetch)
	}
	wg.Add(2)
	go run(0)
	<-started
	go run(1)
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	require.Equal(t, int32(1), calls.Load())
	require.Equal(t, []int64{7}, results[0])
	require.Equal(t, results[0], results[1])
}

func TestFetch_ServesFreshValueUntilInvalidated(t *testing.T) {
	c := New()
	var calls atomic.Int32
	fetch := func(context.Context) (int32, error) { return calls.Add(1), nil }

	v, err := Fetch(context.Background(), c, ActiveRoutes(), fetch)
	require.NoError(t, err)
	require.Equal(t, int32(1), v)

	v, err = Fetch(context.Background(), c, ActiveRoutes(), fetch)
	require.NoError(t, err)
	require.Equal(t, int32(1), v)

	c.Invalidate(ActiveRoutes())
	v, err = Fetch(context.Background(), c, ActiveRoutes(), fetch)
	require.NoError(t, err)
	require.Equal(t, int32(2), v)
}

func TestFetch_ErrorsAreNotCached(t *testing.T) {
	c := New()
	boom := errors.New("boom")
	_, err := Fetch(context.Background(), c, Zones(), func(context.Context) (string, error) { return "", boom })
	require.ErrorIs(t, err, boom)

	v, err := Fetch(context.Background(), c, Zones(), func(context.Context) (string, error) { return "NORTE", nil })
	require.NoError(t, err)
	require.Equal(t, "NORTE", v)
}

func TestFetch_CallerCancellationDoesNotAbortFetch(t *testing.T) {
	c := New()
	release := make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := Fetch(ctx, c, RecentBatches(), func(fctx context.Context) (string, error) {
			<-release
			return "lotes", fctx.Err()
		})
		done <- err
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	close(release)
	require.Eventually(t, func() bool {
		v, ok := Peek[string](c, RecentBatches())
		return ok && v == "lotes"
	}, time.Second, 5*time.Millisecond)
}

func TestFetch_StaleResultIsNotStored(t *testing.T) {
	c := New()
	started := make(chan struct{})
	release := make(chan struct{})
	first := make(chan string, 1)
	go func() {
		v, _ := Fetch(context.Background(), c, MyActiveRoute(), func(context.Context) (string, error) {
			close(started)
			<-release
			return "old", nil
		})
		first <- v
	}()
	<-started
	c.Invalidate(MyActiveRoute())
	close(release)
	require.Equal(t, "old", <-first)

	_, ok := Peek[string](c, MyActiveRoute())
	require.False(t, ok)

	v, err := Fetch(context.Background(), c, MyActiveRoute(), func(context.Context) (string, error) { return "new", nil })
	require.NoError(t, err)
	require.Equal(t, "new", v)
}

func TestFetch_TypeMismatch(t *testing.T) {
	c := New()
	_, err := Fetch(context.Background(), c, Medications(), func(context.Context) (int, error) { return 1, nil })
	require.NoError(t, err)
	_, err = Fetch(context.Background(), c, Medications(), func(context.Context) (string, error) { return "x", nil })
	require.ErrorIs(t, err, ErrTypeMismatch)
}

func TestMutate_InvalidatesOnlyOnSuccess(t *testing.T) {
	c := New()
	var calls atomic.Int32
	fetch := func(context.Context) (int32, error) { return calls.Add(1), nil }
	_, err := Fetch(context.Background(), c, PendingValidationOrders(), fetch)
	require.NoError(t, err)

	_, err = Mutate(context.Background(), c, func(context.Context) (struct{}, error) {
		return struct{}{}, errors.New("rejected")
	}, PendingValidationOrders())
	require.Error(t, err)
	v, _ := Fetch(context.Background(), c, PendingValidationOrders(), fetch)
	require.Equal(t, int32(1), v)

	_, err = Mutate(context.Background(), c, func(context.Context) (struct{}, error) {
		return struct{}{}, nil
	}, PendingValidationOrders())
	require.NoError(t, err)
	v, _ = Fetch(context.Background(), c, PendingValidationOrders(), fetch)
	require.Equal(t, int32(2), v)
}

func TestInvalidateResource_CoversEveryParameter(t *testing.T) {
	c := New()
	for _, zone := range []string{"NORTE", "SUR"} {
		_, err := Fetch(context.Background(), c, ReadyPackages(zone), func(context.Context) (string, error) { return zone, nil })
		require.NoError(t, err)
	}
	_, err := Fetch(context.Background(), c, ActiveRoutes(), func(context.Context) (int, error) { return 1, nil })
	require.NoError(t, err)

	c.InvalidateResource(ResourceReadyPackages)

	var calls atomic.Int32
	_, err = Fetch(context.Background(), c, ReadyPackages("NORTE"), func(context.Context) (string, error) { calls.Add(1); return "n", nil })
	require.NoError(t, err)
	_, err = Fetch(context.Background(), c, ActiveRoutes(), func(context.Context) (int, error) { calls.Add(1); return 2, nil })
	require.NoError(t, err)
	require.Equal(t, int32(1), calls.Load())
}

func TestKeys(t *testing.T) {
	require.Equal(t, "paquetesListos/NORTE", ReadyPackages(" NORTE ").String())
	require.Equal(t, "detallePaquete/42", PackageDetail(42).String())
	require.Equal(t, ResourceRouteDetail, RouteDetail(3).Resource())
	require.True(t, Key{}.IsZero())
	_, err := Fetch(context.Background(), New(), Key{}, func(context.Context) (int, error) { return 0, nil })
	require.Error(t, err)
}

func TestRun_ReusesValueSettledForSameGeneration(t *testing.T) {
	c := New()
	var calls atomic.Int32
	fetch := func(context.Context) (any, error) {
		calls.Add(1)
		return "ruta", nil
	}
	key := ActiveRoutes()
	_, err := c.load(context.Background(), key, fetch)
	require.NoError(t, err)

	c.mu.Lock()
	gen := c.entries[key].gen
	c.mu.Unlock()

	v, err := c.run(context.Background(), key, gen, fetch)
	require.NoError(t, err)
	require.Equal(t, "ruta", v)
	require.Equal(t, int32(1), calls.Load())

	c.Invalidate(key)
	c.Wait()
	c.mu.Lock()
	gen = c.entries[key].gen
	c.mu.Unlock()
	_, err = c.run(context.Background(), key, gen, fetch)
	require.NoError(t, err)
	require.Equal(t, int32(2), calls.Load())
}
