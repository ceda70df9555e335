// Command pd-server is the placement driver: a tiny RESP listener dispatching
// the four pd_* message types to an in-memory group registry. Kept as a
// genuinely separate binary against internal/pd, matching the original
// Rust implementation's two-binary layout (store server + pd).
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"io"
	"net"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/edirooss/resp-store/internal/pd"
	"github.com/edirooss/resp-store/internal/resp"
)

func main() {
	port := flag.Int("port", 6380, "TCP listen port")
	flag.Parse()
	addr := ":" + strconv.Itoa(*port)

	logConfig := zap.NewDevelopmentConfig()
	logConfig.EncoderConfig.TimeKey = ""
	logConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	logConfig.DisableStacktrace = true
	logConfig.DisableCaller = true
	log := zap.Must(logConfig.Build())
	defer log.Sync()
	log = log.Named("pd")

	svc := pd.NewService()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		log.Fatal("listen failed", zap.Error(err))
	}
	log.Info("placement driver listening", zap.String("addr", addr))

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	var nextSlot atomic.Uint32
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn("accept failed", zap.Error(err))
			continue
		}
		go serveConn(conn, svc, log.With(zap.Uint32("slot", nextSlot.Add(1))))
	}
}

func serveConn(conn net.Conn, svc *pd.Service, log *zap.Logger) {
	defer conn.Close()
	r := bufio.NewReader(conn)
	w := bufio.NewWriter(conn)
	var pending []byte

	for {
		buf := make([]byte, 4096)
		f, consumed, derr := decodeOne(r, &pending, buf)
		if derr != nil {
			if derr != io.EOF {
				log.Debug("connection closed", zap.Error(derr))
			}
			return
		}
		pending = pending[consumed:]

		reply := dispatch(svc, f)
		w.Write(resp.EncodeBytes(reply))
		w.Flush()
	}
}

func decodeOne(r *bufio.Reader, pending *[]byte, scratch []byte) (resp.Frame, int, error) {
	for {
		f, consumed, err := resp.Decode(*pending)
		if err == nil {
			return f, consumed, nil
		}
		if !errors.Is(err, resp.ErrIncomplete) {
			return resp.Frame{}, 0, err
		}
		n, rerr := r.Read(scratch)
		if n > 0 {
			*pending = append(*pending, scratch[:n]...)
		}
		if rerr != nil {
			if n > 0 {
				continue
			}
			return resp.Frame{}, 0, rerr
		}
	}
}

func dispatch(svc *pd.Service, req resp.Frame) resp.Frame {
	if req.Kind != resp.KindArray || len(req.Array) == 0 || req.Array[0].Kind != resp.KindBulk {
		return resp.Err("ERR invalid request")
	}
	cmd := string(req.Array[0].Bulk)
	args := req.Array[1:]

	switch cmd {
	case pd.CmdServerInit:
		if len(args) != 2 {
			return resp.Err("ERR wrong number of arguments")
		}
		groupID, err1 := strconv.ParseUint(string(args[0].Bulk), 10, 64)
		serverID, err2 := strconv.ParseUint(string(args[1].Bulk), 10, 64)
		if err1 != nil || err2 != nil {
			return resp.Err("ERR invalid arguments")
		}
		st := svc.Init(serverID, pd.ServerInit{GroupID: groupID})
		return statusFrame(st)
	case pd.CmdServerHeartbeat:
		if len(args) != 2 {
			return resp.Err("ERR wrong number of arguments")
		}
		groupID, err1 := strconv.ParseUint(string(args[0].Bulk), 10, 64)
		serverID, err2 := strconv.ParseUint(string(args[1].Bulk), 10, 64)
		if err1 != nil || err2 != nil {
			return resp.Err("ERR invalid arguments")
		}
		st := svc.Heartbeat(pd.ServerStatus{ServerID: serverID, GroupID: groupID})
		return statusFrame(st)
	case pd.CmdLatestServerStatus:
		if len(args) != 1 {
			return resp.Err("ERR wrong number of arguments")
		}
		groupID, err := strconv.ParseUint(string(args[0].Bulk), 10, 64)
		if err != nil {
			return resp.Err("ERR invalid arguments")
		}
		return statusFrame(svc.Latest(groupID))
	case pd.CmdCreateGroup:
		if len(args) != 1 {
			return resp.Err("ERR wrong number of arguments")
		}
		groupID, err := strconv.ParseUint(string(args[0].Bulk), 10, 64)
		if err != nil {
			return resp.Err("ERR invalid arguments")
		}
		svc.CreateGroup(groupID)
		return resp.OKFrame
	default:
		return resp.Err("ERR unknown command '" + cmd + "'")
	}
}

func statusFrame(st pd.ServerStatus) resp.Frame {
	leader := int64(-1)
	if st.HasLeader {
		leader = int64(st.CurrentLeaderID)
	}
	return resp.Array([]resp.Frame{
		resp.Integer(int64(st.GroupID)),
		resp.Integer(int64(st.Role)),
		resp.Integer(leader),
	})
}
