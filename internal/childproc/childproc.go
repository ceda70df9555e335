//go:build linux

// Package childproc adapts the teacher's supervised-process machinery
// (internal/infrastructure/processmgr) into the spec's "child-process
// reaper" external collaborator: a minimal process-group supervisor the
// store server can use to run an optional persistence-writer or
// replication-relay subprocess, reusing the teacher's
// SIGTERM-then-SIGKILL supervise loop and process-group isolation.
package childproc

import (
	"fmt"
	"os/exec"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// GraceTimeout is how long Close waits for SIGTERM before escalating.
const GraceTimeout = 3 * time.Second

// Reaper supervises a single external command as its own process group,
// so killing the group also kills anything it spawned.
type Reaper struct {
	log *zap.Logger
	cmd *exec.Cmd

	startOnce atomic.Bool
	closeOnce sync.Once
	done      chan struct{}
	pid       atomic.Int64
}

// New wraps argv as a not-yet-started child process.
func New(log *zap.Logger, argv []string, env []string) (*Reaper, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("childproc: empty argv")
	}
	if log == nil {
		log = zap.NewNop()
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Env = env
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid:   true,
		Pdeathsig: syscall.SIGKILL,
	}
	return &Reaper{log: log.Named("childproc"), cmd: cmd, done: make(chan struct{})}, nil
}

// Start launches the subprocess and begins the reap-on-exit goroutine.
// Idempotent: a second call is a no-op.
func (r *Reaper) Start() error {
	if !r.startOnce.CompareAndSwap(false, true) {
		return nil
	}
	if err := r.cmd.Start(); err != nil {
		return fmt.Errorf("childproc: start: %w", err)
	}
	r.pid.Store(int64(r.cmd.Process.Pid))
	r.log.Info("child started", zap.Int64("pid", r.pid.Load()))
	go r.wait()
	return nil
}

func (r *Reaper) wait() {
	err := r.cmd.Wait()
	if err != nil {
		r.log.Warn("child exited with error", zap.Error(err))
	} else {
		r.log.Info("child exited cleanly")
	}
	close(r.done)
}

// Done reports when the child has been reaped.
func (r *Reaper) Done() <-chan struct{} { return r.done }

// Close sends SIGTERM to the child's process group, escalating to SIGKILL
// if it has not exited within GraceTimeout. Idempotent and safe to call
// before Start (a no-op) or after the child has already exited.
func (r *Reaper) Close() {
	r.closeOnce.Do(func() {
		if !r.startOnce.Load() {
			return
		}
		select {
		case <-r.done:
			return
		default:
		}

		pid := int(r.pid.Load())
		if err := syscall.Kill(-pid, syscall.SIGTERM); err != nil {
			r.log.Warn("SIGTERM failed", zap.Error(err), zap.Int("pid", pid))
		}

		timer := time.NewTimer(GraceTimeout)
		defer timer.Stop()
		select {
		case <-r.done:
			return
		case <-timer.C:
			if err := syscall.Kill(-pid, syscall.SIGKILL); err != nil {
				r.log.Error("SIGKILL failed", zap.Error(err), zap.Int("pid", pid))
			}
		}
	})
}
