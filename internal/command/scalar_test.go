package command

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edirooss/resp-store/internal/dict"
	"github.com/edirooss/resp-store/internal/resp"
)

func TestSetGet(t *testing.T) {
	require := require.New(t)
	d, _ := newTestDict(1000)

	applyWrite(t, d, mustParse(t, "SET", "k", "v1"))
	reply := applyRead(t, d, mustParse(t, "GET", "k"))
	require.Equal(resp.Bulk([]byte("v1")), reply)

	reply = applyRead(t, d, mustParse(t, "GET", "missing"))
	require.True(reply.BulkNull)
}

func TestSetNXXX(t *testing.T) {
	require := require.New(t)
	d, _ := newTestDict(0)

	reply, _ := applyWrite(t, d, mustParse(t, "SET", "k", "v1", "NX"))
	require.Equal(resp.OKFrame, reply)

	reply, _ = applyWrite(t, d, mustParse(t, "SET", "k", "v2", "NX"))
	require.True(reply.BulkNull)

	reply, _ = applyWrite(t, d, mustParse(t, "SET", "other", "v", "XX"))
	require.True(reply.BulkNull)
}

func TestSetWithExpiry(t *testing.T) {
	require := require.New(t)
	d, clock := newTestDict(1000)

	applyWrite(t, d, mustParse(t, "SET", "k", "v", "EX", "10"))
	reply := applyRead(t, d, mustParse(t, "TTL", "k"))
	require.Equal(int64(10), reply.Int)

	clock.Set(1000 + 11*1000)
	reply = applyRead(t, d, mustParse(t, "GET", "k"))
	require.True(reply.BulkNull)
}

func TestGetSetReplacesAndReturnsOld(t *testing.T) {
	require := require.New(t)
	d, _ := newTestDict(0)

	applyWrite(t, d, mustParse(t, "SET", "k", "old"))
	reply, _ := applyWrite(t, d, mustParse(t, "GETSET", "k", "new"))
	require.Equal([]byte("old"), reply.Bulk)

	reply = applyRead(t, d, mustParse(t, "GET", "k"))
	require.Equal([]byte("new"), reply.Bulk)
}

func TestDelAndExists(t *testing.T) {
	require := require.New(t)
	d, _ := newTestDict(0)
	applyWrite(t, d, mustParse(t, "SET", "a", "1"))
	applyWrite(t, d, mustParse(t, "SET", "b", "2"))

	reply := applyRead(t, d, mustParse(t, "EXISTS", "a", "b", "missing"))
	require.Equal(int64(2), reply.Int)

	reply, _ = applyWrite(t, d, mustParse(t, "DEL", "a", "missing"))
	require.Equal(int64(1), reply.Int)

	reply = applyRead(t, d, mustParse(t, "EXISTS", "a"))
	require.Equal(int64(0), reply.Int)
}

func TestIncrDecrFamily(t *testing.T) {
	require := require.New(t)
	d, _ := newTestDict(0)

	reply, _ := applyWrite(t, d, mustParse(t, "INCR", "counter"))
	require.Equal(int64(1), reply.Int)

	reply, _ = applyWrite(t, d, mustParse(t, "INCRBY", "counter", "9"))
	require.Equal(int64(10), reply.Int)

	reply, _ = applyWrite(t, d, mustParse(t, "DECR", "counter"))
	require.Equal(int64(9), reply.Int)

	reply, _ = applyWrite(t, d, mustParse(t, "DECRBY", "counter", "4"))
	require.Equal(int64(5), reply.Int)
}

func TestIncrOnNonIntegerErrors(t *testing.T) {
	require := require.New(t)
	d, _ := newTestDict(0)
	applyWrite(t, d, mustParse(t, "SET", "k", "notanumber"))

	wc := mustParse(t, "INCR", "k").(WriteCommand)
	var applyErr error
	d.WithWrite(func(tx *dict.Txn) {
		_, _, applyErr = wc.ApplyWrite(tx)
	})
	require.ErrorIs(applyErr, dict.ErrNotInteger)
}

func TestTTLAndPTTL(t *testing.T) {
	require := require.New(t)
	d, _ := newTestDict(1000)
	applyWrite(t, d, mustParse(t, "SET", "k", "v", "PX", "5000"))

	reply := applyRead(t, d, mustParse(t, "TTL", "k"))
	require.Equal(int64(5), reply.Int)

	reply = applyRead(t, d, mustParse(t, "PTTL", "k"))
	require.Equal(int64(5000), reply.Int)

	reply = applyRead(t, d, mustParse(t, "TTL", "missing"))
	require.Equal(int64(-2), reply.Int)
}

func TestExpireFamilyNXGTLT(t *testing.T) {
	require := require.New(t)
	d, _ := newTestDict(1000)
	applyWrite(t, d, mustParse(t, "SET", "k", "v"))

	reply, _ := applyWrite(t, d, mustParse(t, "EXPIRE", "k", "100"))
	require.Equal(int64(1), reply.Int)

	reply, _ = applyWrite(t, d, mustParse(t, "EXPIRE", "k", "50", "GT"))
	require.Equal(int64(0), reply.Int)

	reply, _ = applyWrite(t, d, mustParse(t, "EXPIRE", "k", "200", "GT"))
	require.Equal(int64(1), reply.Int)

	ttl := applyRead(t, d, mustParse(t, "TTL", "k"))
	require.Equal(int64(200), ttl.Int)
}
