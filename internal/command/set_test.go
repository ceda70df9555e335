package command

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edirooss/resp-store/internal/resp"
)

func TestSAddSRemSMembers(t *testing.T) {
	require := require.New(t)
	d, _ := newTestDict(0)

	reply, _ := applyWrite(t, d, mustParse(t, "SADD", "s", "a", "b", "a"))
	require.Equal(int64(2), reply.Int)

	reply = applyRead(t, d, mustParse(t, "SMEMBERS", "s"))
	require.Len(reply.Array, 2)

	reply, _ = applyWrite(t, d, mustParse(t, "SREM", "s", "a", "missing"))
	require.Equal(int64(1), reply.Int)
}

func TestSIsMemberAndMulti(t *testing.T) {
	require := require.New(t)
	d, _ := newTestDict(0)
	applyWrite(t, d, mustParse(t, "SADD", "s", "a", "b"))

	reply := applyRead(t, d, mustParse(t, "SISMEMBER", "s", "a"))
	require.Equal(int64(1), reply.Int)

	reply = applyRead(t, d, mustParse(t, "SISMEMBER", "s", "z"))
	require.Equal(int64(0), reply.Int)

	reply = applyRead(t, d, mustParse(t, "SMISMEMBER", "s", "a", "z", "b"))
	require.Equal([]int64{1, 0, 1}, frameInts(reply.Array))
}

func frameInts(fs []resp.Frame) []int64 {
	out := make([]int64, len(fs))
	for i, f := range fs {
		out[i] = f.Int
	}
	return out
}
