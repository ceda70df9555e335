package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	require := require.New(t)

	buf := PutFrame(nil, []byte("hello world"))
	buf = PutFrame(buf, []byte{})

	payload, n, err := ReadFrame(buf)
	require.NoError(err)
	require.Equal([]byte("hello world"), payload)

	payload, n2, err := ReadFrame(buf[n:])
	require.NoError(err)
	require.Empty(payload)
	require.Equal(4, n2)
}

func TestReadFrameIncomplete(t *testing.T) {
	require := require.New(t)
	full := PutFrame(nil, []byte("abcdef"))

	_, _, err := ReadFrame(full[:3])
	require.ErrorIs(err, ErrTruncated)
	_, _, err = ReadFrame(full[:len(full)-1])
	require.ErrorIs(err, ErrTruncated)
}

func TestFixedWidthRoundTrip(t *testing.T) {
	require := require.New(t)

	buf := PutUint64(nil, 0xdeadbeefcafef00d)
	buf = PutInt64(buf, -42)
	buf = PutFloat64(buf, 3.5)

	u, n, err := ReadUint64(buf)
	require.NoError(err)
	require.Equal(uint64(0xdeadbeefcafef00d), u)
	buf = buf[n:]

	i, n, err := ReadInt64(buf)
	require.NoError(err)
	require.Equal(int64(-42), i)
	buf = buf[n:]

	f, _, err := ReadFloat64(buf)
	require.NoError(err)
	require.Equal(3.5, f)
}

func TestBytesRoundTrip(t *testing.T) {
	require := require.New(t)
	buf := PutBytes(nil, []byte("payload"))
	buf = PutBytes(buf, nil)

	b, n, err := ReadBytes(buf)
	require.NoError(err)
	require.Equal([]byte("payload"), b)

	b, _, err = ReadBytes(buf[n:])
	require.NoError(err)
	require.Empty(b)
}

func TestUvarintRoundTrip(t *testing.T) {
	require := require.New(t)
	for _, v := range []uint64{0, 1, 127, 128, 300, 1 << 40} {
		buf := PutUvarint(nil, v)
		got, _, err := ReadUvarint(buf)
		require.NoError(err)
		require.Equal(v, got)
	}
}

func TestReadUvarintBad(t *testing.T) {
	_, _, err := ReadUvarint(nil)
	require.Error(t, err)
}
