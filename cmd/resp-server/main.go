package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/edirooss/resp-store/internal/dict"
	"github.com/edirooss/resp-store/internal/fanout"
	"github.com/edirooss/resp-store/internal/persistence"
	"github.com/edirooss/resp-store/internal/replication"
	"github.com/edirooss/resp-store/internal/server"
)

func main() {
	port := flag.Int("port", 6379, "TCP listen port")
	maxConns := flag.Int64("max-conns", 10000, "maximum concurrent client connections")
	aofPath := flag.String("aof", "", "append-only log path (empty disables persistence)")
	flag.Parse()
	addr := ":" + strconv.Itoa(*port)

	logConfig := zap.NewDevelopmentConfig()
	logConfig.EncoderConfig.TimeKey = ""
	logConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	logConfig.DisableStacktrace = true
	logConfig.DisableCaller = true
	log := zap.Must(logConfig.Build())
	defer log.Sync()
	log = log.Named("main")

	instanceID := uuid.NewString()
	log.Info("starting resp-store", zap.String("instance_id", instanceID), zap.String("addr", addr))

	d := dict.New(dict.SystemClock{})
	bus := fanout.New(1024, log)

	if *aofPath != "" {
		sink, err := persistence.OpenAOFSink(*aofPath)
		if err != nil {
			log.Fatal("failed to open AOF", zap.Error(err))
		}
		defer sink.Close()
		bus.AttachPersistence(sink)
	} else {
		bus.AttachPersistence(persistence.NopSink{})
	}
	bus.AttachReplication(replication.NopSink{})

	opts := server.Options{Addr: addr, MaxConns: *maxConns, ReadBufSize: 4096}
	srv := server.New(opts, d, bus, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})
	g.Go(func() error {
		dict.RunSweeper(gctx, d, dict.DefaultSweeperOptions(), log)
		return nil
	})
	g.Go(func() error {
		return bus.Run(gctx)
	})

	if err := g.Wait(); err != nil && gctx.Err() == nil {
		log.Error("server stopped with error", zap.Error(err))
	}
	log.Info("shutdown complete", zap.Duration("uptime", time.Since(startTime)))
}

var startTime = time.Now()
