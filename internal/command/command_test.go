package command

import (
	"testing"

	"github.com/edirooss/resp-store/internal/dict"
	"github.com/edirooss/resp-store/internal/resp"
)

// newTestDict returns a Dictionary on a manual clock so expiry-sensitive
// command tests can control time explicitly.
func newTestDict(startMillis int64) (*dict.Dictionary, *dict.ManualClock) {
	clock := dict.NewManualClock(startMillis)
	return dict.New(clock), clock
}

func mustParse(t *testing.T, name string, args ...string) Command {
	t.Helper()
	p, ok := Lookup(name)
	if !ok {
		t.Fatalf("no parser registered for %q", name)
	}
	byteArgs := make([][]byte, len(args))
	for i, a := range args {
		byteArgs[i] = []byte(a)
	}
	cmd, err := p(byteArgs)
	if err != nil {
		t.Fatalf("parse %q: %v", name, err)
	}
	return cmd
}

func applyWrite(t *testing.T, d *dict.Dictionary, cmd Command) (reply resp.Frame, status ExpiresStatus) {
	t.Helper()
	wc, ok := cmd.(WriteCommand)
	if !ok {
		t.Fatalf("%T is not a WriteCommand", cmd)
	}
	var err error
	d.WithWrite(func(tx *dict.Txn) {
		reply, status, err = wc.ApplyWrite(tx)
	})
	if err != nil {
		t.Fatalf("apply write %s: %v", cmd.Name(), err)
	}
	return reply, status
}

func applyRead(t *testing.T, d *dict.Dictionary, cmd Command) resp.Frame {
	t.Helper()
	rc, ok := cmd.(ReadCommand)
	if !ok {
		t.Fatalf("%T is not a ReadCommand", cmd)
	}
	var reply resp.Frame
	var err error
	d.WithRead(func(v *dict.View) {
		reply, err = rc.ApplyRead(v)
	})
	if err != nil {
		t.Fatalf("apply read %s: %v", cmd.Name(), err)
	}
	return reply
}
