// Package fanout implements the write fan-out bus (component G): every
// applied write command is published once to whichever of the persistence
// and replication sinks are currently attached. Records pass through a
// bounded channel: the connection goroutine that produced a record blocks in
// Publish only while that channel is full.
//
// Grounded on the teacher's internal/infrastructure/processmgr/log_buffer.go
// single-writer/multi-reader discipline, generalized from a ring buffer that
// overwrites old entries to a channel that never drops a record.
package fanout

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/edirooss/resp-store/internal/command"
)

// Record is one published write: a monotonic id, the connection slot that
// produced it, and the command's wire-encodable argument form.
type Record struct {
	ID   uint64
	Slot uint32
	Cmd  command.WireCmd
}

// Sink is anything that wants a durable/replicated copy of every write.
type Sink interface {
	Publish(Record) error
}

// Bus is an MPSC channel: many connection goroutines publish, one dispatcher
// goroutine drains and forwards to up to two attached sinks (persistence and
// replication). Publish never blocks on sink I/O; the dispatcher absorbs it.
type Bus struct {
	ch     chan Record
	nextID atomic.Uint64
	log    *zap.Logger
	sinkA  atomic.Pointer[Sink]
	sinkB  atomic.Pointer[Sink]
}

// New returns a Bus with the given channel capacity (records queued between
// a producer and the dispatcher goroutine before Publish blocks the caller).
func New(capacity int, log *zap.Logger) *Bus {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bus{ch: make(chan Record, capacity), log: log}
}

// AttachPersistence installs (or clears, with nil) the persistence sink.
func (b *Bus) AttachPersistence(s Sink) {
	if s == nil {
		b.sinkA.Store(nil)
		return
	}
	b.sinkA.Store(&s)
}

// AttachReplication installs (or clears, with nil) the replication sink.
func (b *Bus) AttachReplication(s Sink) {
	if s == nil {
		b.sinkB.Store(nil)
		return
	}
	b.sinkB.Store(&s)
}

// Publish assigns the next write id and enqueues the record. Blocks only if
// the channel is full, which callers size capacity to make rare.
func (b *Bus) Publish(slot uint32, cmd command.WireCmd) Record {
	r := Record{ID: b.nextID.Add(1), Slot: slot, Cmd: cmd}
	b.ch <- r
	return r
}

// Run drains published records and forwards each to every attached sink
// until ctx is cancelled, then drains whatever remains buffered before
// returning. A sink error is logged, not fatal: one slow or failing
// subscriber must never stall the write path.
func (b *Bus) Run(ctx context.Context) error {
	for {
		select {
		case r := <-b.ch:
			b.dispatch(r)
		case <-ctx.Done():
			b.drain()
			return ctx.Err()
		}
	}
}

func (b *Bus) drain() {
	for {
		select {
		case r := <-b.ch:
			b.dispatch(r)
		default:
			return
		}
	}
}

func (b *Bus) dispatch(r Record) {
	if p := b.sinkA.Load(); p != nil {
		if err := (*p).Publish(r); err != nil {
			b.log.Warn("persistence sink publish failed", zap.Uint64("write_id", r.ID), zap.Error(err))
		}
	}
	if p := b.sinkB.Load(); p != nil {
		if err := (*p).Publish(r); err != nil {
			b.log.Warn("replication sink publish failed", zap.Uint64("write_id", r.ID), zap.Error(err))
		}
	}
}
