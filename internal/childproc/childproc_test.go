//go:build linux

package childproc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewRejectsEmptyArgv(t *testing.T) {
	_, err := New(nil, nil, nil)
	require.Error(t, err)
}

func TestReaperStartAndNaturalExit(t *testing.T) {
	require := require.New(t)
	r, err := New(nil, []string{"/bin/true"}, nil)
	require.NoError(err)
	require.NoError(r.Start())

	select {
	case <-r.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("child did not exit")
	}

	r.Close() // no-op after natural exit
}

func TestReaperStartIsIdempotent(t *testing.T) {
	require := require.New(t)
	r, err := New(nil, []string{"/bin/sleep", "5"}, nil)
	require.NoError(err)
	require.NoError(r.Start())
	require.NoError(r.Start()) // second call is a no-op, doesn't relaunch

	r.Close()
	select {
	case <-r.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("child was not reaped after Close")
	}
}

func TestReaperCloseTerminatesRunningChild(t *testing.T) {
	require := require.New(t)
	r, err := New(nil, []string{"/bin/sleep", "30"}, nil)
	require.NoError(err)
	require.NoError(r.Start())

	start := time.Now()
	r.Close()
	require.Less(time.Since(start), GraceTimeout+2*time.Second)

	select {
	case <-r.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("child was not reaped after Close")
	}
}
