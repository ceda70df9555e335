package command

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHSetHGetHGetAll(t *testing.T) {
	require := require.New(t)
	d, _ := newTestDict(0)

	reply, _ := applyWrite(t, d, mustParse(t, "HSET", "h", "f1", "v1", "f2", "v2"))
	require.Equal(int64(2), reply.Int)

	reply, _ = applyWrite(t, d, mustParse(t, "HSET", "h", "f1", "v1-new"))
	require.Equal(int64(0), reply.Int) // no new field created

	reply = applyRead(t, d, mustParse(t, "HGET", "h", "f1"))
	require.Equal([]byte("v1-new"), reply.Bulk)

	reply = applyRead(t, d, mustParse(t, "HGETALL", "h"))
	require.Len(reply.Array, 4)
}

func TestHSetNX(t *testing.T) {
	require := require.New(t)
	d, _ := newTestDict(0)

	reply, _ := applyWrite(t, d, mustParse(t, "HSETNX", "h", "f1", "v1"))
	require.Equal(int64(1), reply.Int)

	reply, _ = applyWrite(t, d, mustParse(t, "HSETNX", "h", "f1", "v2"))
	require.Equal(int64(0), reply.Int)

	reply = applyRead(t, d, mustParse(t, "HGET", "h", "f1"))
	require.Equal([]byte("v1"), reply.Bulk)
}

func TestHMGet(t *testing.T) {
	require := require.New(t)
	d, _ := newTestDict(0)
	applyWrite(t, d, mustParse(t, "HSET", "h", "f1", "v1"))

	reply := applyRead(t, d, mustParse(t, "HMGET", "h", "f1", "missing"))
	require.Len(reply.Array, 2)
	require.Equal([]byte("v1"), reply.Array[0].Bulk)
	require.True(reply.Array[1].BulkNull)
}

func TestHDelAndExists(t *testing.T) {
	require := require.New(t)
	d, _ := newTestDict(0)
	applyWrite(t, d, mustParse(t, "HSET", "h", "f1", "v1", "f2", "v2"))

	reply := applyRead(t, d, mustParse(t, "HEXISTS", "h", "f1"))
	require.Equal(int64(1), reply.Int)

	reply, _ = applyWrite(t, d, mustParse(t, "HDEL", "h", "f1", "missing"))
	require.Equal(int64(1), reply.Int)

	reply = applyRead(t, d, mustParse(t, "HEXISTS", "h", "f1"))
	require.Equal(int64(0), reply.Int)
}

func TestHDelRemovesEmptyHash(t *testing.T) {
	require := require.New(t)
	d, _ := newTestDict(0)
	applyWrite(t, d, mustParse(t, "HSET", "h", "f1", "v1"))
	applyWrite(t, d, mustParse(t, "HDEL", "h", "f1"))

	reply := applyRead(t, d, mustParse(t, "EXISTS", "h"))
	require.Equal(int64(0), reply.Int)
}

func TestHIncrBy(t *testing.T) {
	require := require.New(t)
	d, _ := newTestDict(0)

	reply, _ := applyWrite(t, d, mustParse(t, "HINCRBY", "h", "counter", "5"))
	require.Equal(int64(5), reply.Int)

	reply, _ = applyWrite(t, d, mustParse(t, "HINCRBY", "h", "counter", "-2"))
	require.Equal(int64(3), reply.Int)
}
