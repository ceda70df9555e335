package dict

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edirooss/resp-store/internal/wire"
)

func TestEncodeDecodeValueScalars(t *testing.T) {
	require := require.New(t)
	cases := []Value{
		Null{},
		Str("hello"),
		Bytes("world"),
		Int(-42),
		Float(3.25),
	}
	for _, v := range cases {
		buf := EncodeValue(v)
		got, n, err := DecodeValue(buf)
		require.NoError(err)
		require.Equal(len(buf), n)
		require.Equal(v, got)
	}
}

func TestEncodeDecodeDeque(t *testing.T) {
	require := require.New(t)
	d := NewDeque()
	d.PushRight([]byte("a"), []byte("b"))

	buf := EncodeValue(d)
	got, _, err := DecodeValue(buf)
	require.NoError(err)
	gd, ok := got.(*Deque)
	require.True(ok)
	require.Equal(2, gd.Len())
	require.Equal([][]byte{[]byte("a"), []byte("b")}, gd.Range(0, -1))
}

func TestEncodeDecodeKvp(t *testing.T) {
	require := require.New(t)
	k := NewKvp()
	k.Set(SetAlways, map[string][]byte{"f1": []byte("v1"), "f2": []byte("v2")})

	buf := EncodeValue(k)
	got, _, err := DecodeValue(buf)
	require.NoError(err)
	gk := got.(*Kvp)
	require.Equal(2, gk.Len())
	v, ok := gk.Get("f1")
	require.True(ok)
	require.Equal([]byte("v1"), v)
}

func TestEncodeDecodeSet(t *testing.T) {
	require := require.New(t)
	s := NewSet()
	s.Add("x", "y")

	buf := EncodeValue(s)
	got, _, err := DecodeValue(buf)
	require.NoError(err)
	gs := got.(*Set)
	require.ElementsMatch([]string{"x", "y"}, gs.GetAll())
}

func TestEncodeDecodeSortedSet(t *testing.T) {
	require := require.New(t)
	z := NewSortedSet()
	z.Add(AddMode{}, "a", 1.5)
	z.Add(AddMode{}, "b", 2.5)

	buf := EncodeValue(z)
	got, _, err := DecodeValue(buf)
	require.NoError(err)
	gz := got.(*SortedSet)
	require.Equal(2, gz.Len())
	score, ok := gz.Score("a")
	require.True(ok)
	require.Equal(1.5, score)
}

func TestEncodeDecodeEntryRoundTrip(t *testing.T) {
	require := require.New(t)
	e := Entry{Value: Str("v"), ExpiresAt: 12345, Freq: 7, LastVisitMillis: 999}
	buf := EncodeEntry(e)
	got, err := DecodeEntry(buf)
	require.NoError(err)
	require.Equal(e, got)
}

func TestDecodeValueUnknownTag(t *testing.T) {
	_, _, err := DecodeValue([]byte{0xFF})
	require.ErrorIs(t, err, wire.ErrUnknownTag)
}
