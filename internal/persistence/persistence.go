// Package persistence provides fan-out sinks (component G subscribers) that
// durably record every applied write. Grounded on
// original_source/component/db/src/forward/mod.rs's Forward type, whose
// hdp_sender slot is exactly this write-forward-to-disk concept.
package persistence

import (
	"bufio"
	"os"
	"sync"

	"github.com/edirooss/resp-store/internal/fanout"
	"github.com/edirooss/resp-store/internal/wire"
)

// NopSink discards every record; the default when no persistence is configured.
type NopSink struct{}

func (NopSink) Publish(fanout.Record) error { return nil }

// AOFSink append-only-logs each write record as a length-prefixed wire frame,
// the minimal durable form: replay is DecodeWireCmd over each frame in order.
type AOFSink struct {
	mu sync.Mutex
	f  *os.File
	w  *bufio.Writer
}

// OpenAOFSink opens (creating if absent) path for append.
func OpenAOFSink(path string) (*AOFSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &AOFSink{f: f, w: bufio.NewWriter(f)}, nil
}

// Publish appends one record's wire-encoded command, flushing immediately so
// a crash loses at most the record currently mid-write.
func (s *AOFSink) Publish(r fanout.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	payload := wire.PutFrame(nil, r.Cmd.Encode())
	if _, err := s.w.Write(payload); err != nil {
		return err
	}
	return s.w.Flush()
}

// Close flushes and closes the underlying file.
func (s *AOFSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.w.Flush(); err != nil {
		return err
	}
	return s.f.Close()
}
