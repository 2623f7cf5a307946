package async_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wpbr/reviewproxy/pkg/async"
)

func TestGo(t *testing.T) {
	t.Parallel()

	t.Run("returns result", func(t *testing.T) {
		t.Parallel()
		f := async.Go(context.Background(), func(context.Context) (int, error) { return 42, nil })
		v, err := f.Await()
		require.NoError(t, err)
		assert.Equal(t, 42, v)
	})

	t.Run("returns error", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("boom")
		f := async.Go(context.Background(), func(context.Context) (string, error) { return "", boom })
		_, err := f.Await()
		assert.ErrorIs(t, err, boom)
	})

	t.Run("cancelled context skips fn", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		var called atomic.Bool
		f := async.Go(ctx, func(context.Context) (int, error) {
			called.Store(true)
			return 1, nil
		})
		_, err := f.Await()
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, called.Load())
	})
}

func TestResolved(t *testing.T) {
	t.Parallel()
	f := async.Resolved("x", nil)
	v, err := f.Await()
	require.NoError(t, err)
	assert.Equal(t, "x", v)
}

func TestWaitAll(t *testing.T) {
	t.Parallel()

	t.Run("results in argument order", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		slow := async.Go(ctx, func(context.Context) (int, error) {
			time.Sleep(30 * time.Millisecond)
			return 1, nil
		})
		fast := async.Go(ctx, func(context.Context) (int, error) { return 2, nil })

		got, err := async.WaitAll(slow, fast)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2}, got)
	})

	t.Run("first error by position wins", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		errA := errors.New("a")
		errB := errors.New("b")
		a := async.Go(ctx, func(context.Context) (int, error) {
			time.Sleep(30 * time.Millisecond)
			return 0, errA
		})
		b := async.Go(ctx, func(context.Context) (int, error) { return 0, errB })
		c := async.Go(ctx, func(context.Context) (int, error) { return 3, nil })

		got, err := async.WaitAll(a, b, c)
		assert.ErrorIs(t, err, errA)
		assert.NotErrorIs(t, err, errB)
		assert.Equal(t, 3, got[2], "all futures are awaited")
	})

	t.Run("no futures", func(t *testing.T) {
		t.Parallel()
		got, err := async.WaitAll[int]()
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
