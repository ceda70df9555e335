package command

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edirooss/resp-store/internal/dict"
	"github.com/edirooss/resp-store/internal/resp"
)

func TestDumpRestoreRoundTrip(t *testing.T) {
	require := require.New(t)
	d, _ := newTestDict(1000)
	applyWrite(t, d, mustParse(t, "SET", "k", "v"))

	dump := applyRead(t, d, mustParse(t, "DUMP", "k"))
	require.False(dump.BulkNull)

	p, ok := Lookup("restore")
	require.True(ok)
	cmd, err := p([][]byte{[]byte("k2"), []byte("0"), dump.Bulk})
	require.NoError(err)

	reply, _ := applyWrite(t, d, cmd)
	require.Equal(resp.OKFrame, reply)

	reply = applyRead(t, d, mustParse(t, "GET", "k2"))
	require.Equal([]byte("v"), reply.Bulk)
}

func TestRestoreBusyWithoutReplace(t *testing.T) {
	require := require.New(t)
	d, _ := newTestDict(0)
	applyWrite(t, d, mustParse(t, "SET", "k", "v"))
	dump := applyRead(t, d, mustParse(t, "DUMP", "k"))

	p, _ := Lookup("restore")
	cmd, err := p([][]byte{[]byte("k"), []byte("0"), dump.Bulk})
	require.NoError(err)

	wc := cmd.(WriteCommand)
	var applyErr error
	d.WithWrite(func(tx *dict.Txn) {
		_, _, applyErr = wc.ApplyWrite(tx)
	})
	require.ErrorIs(applyErr, ErrBusy)
}

func TestRestoreRejectsIdleAndFreqTogether(t *testing.T) {
	p, ok := Lookup("restore")
	require.True(t, ok)
	_, err := p([][]byte{
		[]byte("k"), []byte("0"), []byte("payload"),
		[]byte("IDLETIME"), []byte("5"),
		[]byte("FREQ"), []byte("3"),
	})
	require.Error(t, err)
}

func TestFlushAll(t *testing.T) {
	require := require.New(t)
	d, _ := newTestDict(0)
	applyWrite(t, d, mustParse(t, "SET", "a", "1"))
	applyWrite(t, d, mustParse(t, "SET", "b", "2"))

	reply, _ := applyWrite(t, d, mustParse(t, "FLUSHALL"))
	require.Equal(resp.OKFrame, reply)

	reply = applyRead(t, d, mustParse(t, "EXISTS", "a", "b"))
	require.Equal(int64(0), reply.Int)
}

func TestObjectIdletimeAndFreq(t *testing.T) {
	require := require.New(t)
	d, _ := newTestDict(1000)
	applyWrite(t, d, mustParse(t, "SET", "k", "v"))

	reply := applyRead(t, d, mustParse(t, "OBJECT", "IDLETIME", "k"))
	require.Equal(int64(0), reply.Int)

	reply = applyRead(t, d, mustParse(t, "OBJECT", "FREQ", "k"))
	require.Equal(int64(0), reply.Int)
}

func TestInfoReturnsFixedPayload(t *testing.T) {
	d, _ := newTestDict(0)
	reply := applyRead(t, d, mustParse(t, "INFO"))
	require.Contains(t, string(reply.Bulk), "redis_version")
}
