// Package replication provides the fan-out bus's second subscriber slot
// (component G): forwarding every applied write to a connected replica over
// a plain TCP connection using the same wire format persistence uses for its
// append-only log. Grounded on
// original_source/component/db/src/forward/mod.rs's replica_sender slot,
// the counterpart to persistence's hdp_sender in the same dual-dispatch.
package replication

import (
	"net"
	"sync"

	"github.com/edirooss/resp-store/internal/fanout"
	"github.com/edirooss/resp-store/internal/wire"
)

// NopSink discards every record; the default when no replica is attached.
type NopSink struct{}

func (NopSink) Publish(fanout.Record) error { return nil }

// ConnSink streams each write record as a length-prefixed wire frame to a
// single connected replica. One ConnSink serves one replica connection;
// replacing the replica means constructing a fresh ConnSink.
type ConnSink struct {
	mu   sync.Mutex
	conn net.Conn
}

// NewConnSink wraps an already-dialed or accepted connection.
func NewConnSink(conn net.Conn) *ConnSink {
	return &ConnSink{conn: conn}
}

// Publish writes one record's wire-encoded command to the replica
// connection, serializing concurrent callers (the bus has one dispatcher
// goroutine, so contention here is theoretical, but Publish may be reused
// directly by tests).
func (s *ConnSink) Publish(r fanout.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	payload := wire.PutFrame(nil, r.Cmd.Encode())
	_, err := s.conn.Write(payload)
	return err
}

// Close closes the underlying connection.
func (s *ConnSink) Close() error {
	return s.conn.Close()
}
