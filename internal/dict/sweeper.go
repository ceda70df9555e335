package dict

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// SweeperOptions bounds the sweeper's sleep between passes.
type SweeperOptions struct {
	// MinSleep floors the sleep interval (spec: 1ms floor).
	MinSleep time.Duration
	// MaxSleep ceils the sleep interval when no expiry is pending, so a
	// long-lived idle store still notices clock/config changes periodically.
	MaxSleep time.Duration
}

// DefaultSweeperOptions matches the spec's floor and a conservative ceiling.
func DefaultSweeperOptions() SweeperOptions {
	return SweeperOptions{MinSleep: time.Millisecond, MaxSleep: time.Second}
}

// RunSweeper runs the expiration engine's cooperative sweep loop until ctx is
// canceled. It never holds the dictionary's write lock while sleeping: each
// pass takes the lock only long enough to pop due tuples and delete their
// entries (component C, reusing Txn.Remove's delete semantics via
// Dictionary.SweepOnce), then sleeps until the earliest pending deadline or
// until a write wakes it early via WakeChan.
func RunSweeper(ctx context.Context, d *Dictionary, opts SweeperOptions, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("sweeper")
	log.Info("expiration sweeper started")
	defer log.Info("expiration sweeper stopped")

	for {
		nextEarliest, hasNext := d.SweepOnce()

		sleep := opts.MaxSleep
		if hasNext {
			sleep = time.Duration(nextEarliest-d.clock.NowMillis()) * time.Millisecond
			if sleep < opts.MinSleep {
				sleep = opts.MinSleep
			}
			if sleep > opts.MaxSleep {
				sleep = opts.MaxSleep
			}
		}

		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-d.WakeChan():
			timer.Stop()
			// A write shortened some expiry; loop immediately to re-evaluate.
		case <-timer.C:
			// Deadline reached (or ceiling hit with nothing pending); loop.
		}
	}
}
