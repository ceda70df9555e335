package dict

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRunSweeperRemovesDueEntries(t *testing.T) {
	require := require.New(t)
	clock := NewManualClock(1000)
	d := New(clock)

	d.WithWrite(func(tx *Txn) {
		tx.Insert([]byte("k"), Entry{Value: Str("v"), ExpiresAt: 999}) // already due relative to clock
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	opts := SweeperOptions{MinSleep: time.Millisecond, MaxSleep: 10 * time.Millisecond}
	go RunSweeper(ctx, d, opts, nil)

	require.Eventually(func() bool {
		var exists bool
		d.WithRead(func(v *View) { _, exists = v.Get([]byte("k")) })
		return !exists
	}, time.Second, time.Millisecond)
}

func TestRunSweeperStopsOnContextCancel(t *testing.T) {
	clock := NewManualClock(1000)
	d := New(clock)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		RunSweeper(ctx, d, DefaultSweeperOptions(), nil)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunSweeper did not stop after context cancellation")
	}
}
