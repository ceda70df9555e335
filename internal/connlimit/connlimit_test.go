package connlimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAcquireReleaseBoundsConcurrency(t *testing.T) {
	require := require.New(t)
	l := New(2)
	ctx := context.Background()

	require.NoError(l.Acquire(ctx))
	require.NoError(l.Acquire(ctx))

	blocked, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	err := l.Acquire(blocked)
	require.ErrorIs(err, context.DeadlineExceeded)

	l.Release()
	require.NoError(l.Acquire(ctx))
}

func TestAcquireUnblocksOnContextCancel(t *testing.T) {
	require := require.New(t)
	l := New(1)
	require.NoError(l.Acquire(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- l.Acquire(ctx) }()
	cancel()

	select {
	case err := <-errCh:
		require.ErrorIs(err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Acquire did not unblock on context cancellation")
	}
}

func TestMaxReportsConfiguredCeiling(t *testing.T) {
	require.Equal(t, int64(42), New(42).Max())
}
