// Package server implements the connection loop (component F): accept,
// decode, dispatch, apply, encode, flush at batch boundaries. It wires
// together the dictionary, command registry, RESP codec, fan-out bus, and
// connection limiter.
//
// Grounded on the teacher's cmd/zmux-server/main.go wiring style (one
// zap.Logger built at startup and threaded through every collaborator) and
// internal/infrastructure/processmgr/process_manager.go's
// supervise-goroutine-per-unit-of-work shape, here one goroutine per
// accepted connection instead of per managed process.
package server

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"

	"go.uber.org/zap"

	"github.com/edirooss/resp-store/internal/command"
	"github.com/edirooss/resp-store/internal/connlimit"
	"github.com/edirooss/resp-store/internal/dict"
	"github.com/edirooss/resp-store/internal/fanout"
	"github.com/edirooss/resp-store/internal/resp"
)

// Options configures a Server.
type Options struct {
	Addr        string
	MaxConns    int64
	ReadBufSize int
}

// DefaultOptions returns the options the store binary starts with absent
// any CLI overrides.
func DefaultOptions() Options {
	return Options{Addr: ":6379", MaxConns: 10000, ReadBufSize: 4096}
}

// Server owns the listener and every connection goroutine it spawns.
type Server struct {
	opts    Options
	dict    *dict.Dictionary
	bus     *fanout.Bus
	limiter *connlimit.Limiter
	slots   *slotAllocator
	log     *zap.Logger
}

// New returns a Server ready to Run.
func New(opts Options, d *dict.Dictionary, bus *fanout.Bus, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		opts:    opts,
		dict:    d,
		bus:     bus,
		limiter: connlimit.New(opts.MaxConns),
		slots:   newSlotAllocator(opts.MaxConns),
		log:     log.Named("server"),
	}
}

// Run listens on opts.Addr and serves connections until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", s.opts.Addr)
	if err != nil {
		return err
	}
	s.log.Info("listening", zap.String("addr", s.opts.Addr))

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			return err
		}
		go s.serveConn(ctx, conn)
	}
}

func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	if err := s.limiter.Acquire(ctx); err != nil {
		return
	}
	defer s.limiter.Release()

	slot, err := s.slots.alloc()
	if err != nil {
		s.log.Warn("connection rejected", zap.Error(err))
		return
	}
	defer s.slots.release(slot)

	log := s.log.With(zap.Uint32("slot", slot), zap.String("remote", conn.RemoteAddr().String()))
	log.Debug("connection accepted")

	r := bufio.NewReaderSize(conn, s.opts.ReadBufSize)
	w := bufio.NewWriter(conn)
	var pending []byte

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		frame, err := s.readOneRequest(r, &pending)
		if err != nil {
			if err != io.EOF {
				log.Debug("connection closed", zap.Error(err))
			}
			return
		}

		reply := s.dispatch(slot, frame)
		w.Write(resp.EncodeBytes(reply))
		if r.Buffered() == 0 {
			if err := w.Flush(); err != nil {
				return
			}
		}
	}
}

// readOneRequest pulls bytes from r until a complete array-of-bulk-strings
// frame can be decoded, reusing any bytes left over from the previous read.
func (s *Server) readOneRequest(r *bufio.Reader, pending *[]byte) (resp.Frame, error) {
	for {
		f, consumed, err := resp.Decode(*pending)
		if err == nil {
			*pending = (*pending)[consumed:]
			return f, nil
		}
		if !errors.Is(err, resp.ErrIncomplete) {
			return resp.Frame{}, err
		}
		buf := make([]byte, s.opts.ReadBufSize)
		n, rerr := r.Read(buf)
		if n > 0 {
			*pending = append(*pending, buf[:n]...)
		}
		if rerr != nil {
			if n > 0 {
				continue
			}
			return resp.Frame{}, rerr
		}
	}
}

// dispatch parses a request frame into a Command and applies it, returning
// the reply frame. Write commands are published to the fan-out bus after a
// successful apply.
func (s *Server) dispatch(slot uint32, req resp.Frame) resp.Frame {
	args, name, err := splitRequest(req)
	if err != nil {
		return resp.Err(err.Error())
	}
	parser, ok := command.Lookup(name)
	if !ok {
		return command.UnknownCommandReply(name)
	}
	cmd, err := parser(args)
	if err != nil {
		return resp.Err(err.Error())
	}

	switch c := cmd.(type) {
	case command.ReadCommand:
		var reply resp.Frame
		var applyErr error
		s.dict.WithRead(func(v *dict.View) {
			reply, applyErr = c.ApplyRead(v)
		})
		if applyErr != nil {
			return resp.Err(applyErr.Error())
		}
		return reply
	case command.WriteCommand:
		var reply resp.Frame
		var applyErr error
		s.dict.WithWrite(func(tx *dict.Txn) {
			reply, _, applyErr = c.ApplyWrite(tx)
		})
		if applyErr != nil {
			return resp.Err(applyErr.Error())
		}
		if s.bus != nil {
			s.bus.Publish(slot, c.WireArgs())
		}
		return reply
	default:
		return resp.Err("ERR command not applicable")
	}
}

// splitRequest extracts the command name and argument frames from a client
// request, which must be a non-empty array of bulk strings.
func splitRequest(f resp.Frame) (args [][]byte, name string, err error) {
	if f.Kind != resp.KindArray || len(f.Array) == 0 {
		return nil, "", errors.New("ERR invalid request")
	}
	if f.Array[0].Kind != resp.KindBulk {
		return nil, "", errors.New("ERR invalid request")
	}
	name = string(f.Array[0].Bulk)
	args = make([][]byte, 0, len(f.Array)-1)
	for _, a := range f.Array[1:] {
		if a.Kind != resp.KindBulk {
			return nil, "", errors.New("ERR invalid request")
		}
		args = append(args, a.Bulk)
	}
	return args, name, nil
}
