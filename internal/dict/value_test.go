package dict

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDequePushPopRange(t *testing.T) {
	require := require.New(t)
	d := NewDeque()
	d.PushRight([]byte("a"), []byte("b"), []byte("c"))
	d.PushLeft([]byte("z"), []byte("y"))

	require.Equal(5, d.Len())
	require.Equal([][]byte{[]byte("y"), []byte("z"), []byte("a")}, d.Range(0, 2))
	require.Equal([][]byte{[]byte("a"), []byte("b"), []byte("c")}, d.Range(-3, -1))

	got := d.PopLeft(2)
	require.Equal([][]byte{[]byte("y"), []byte("z")}, got)

	got = d.PopRight(2)
	require.Equal([][]byte{[]byte("c"), []byte("b")}, got)
	require.Equal(1, d.Len())
}

func TestDequeRangeOutOfBounds(t *testing.T) {
	d := NewDeque()
	d.PushRight([]byte("a"))
	require.Nil(t, d.Range(5, 10))
	require.Nil(t, NewDeque().Range(0, -1))
}

func TestKvpSetModes(t *testing.T) {
	require := require.New(t)
	k := NewKvp()
	res := k.Set(SetAlways, map[string][]byte{"f1": []byte("v1")})
	require.Equal(0, res.OldLen)
	require.Equal(1, res.NewLen)

	res = k.Set(SetNX, map[string][]byte{"f1": []byte("ignored"), "f2": []byte("v2")})
	require.Equal(2, res.NewLen)
	v, _ := k.Get("f1")
	require.Equal([]byte("v1"), v)

	res = k.Set(SetXX, map[string][]byte{"f3": []byte("nope")})
	require.Equal(2, res.NewLen)
	require.False(k.Exists("f3"))
}

func TestKvpIncrBy(t *testing.T) {
	require := require.New(t)
	k := NewKvp()
	v, err := k.IncrBy("counter", 5)
	require.NoError(err)
	require.Equal(int64(5), v)

	v, err = k.IncrBy("counter", -2)
	require.NoError(err)
	require.Equal(int64(3), v)

	k.Set(SetAlways, map[string][]byte{"text": []byte("abc")})
	_, err = k.IncrBy("text", 1)
	require.ErrorIs(err, ErrNotInteger)
}

func TestSetAddRemoveExists(t *testing.T) {
	require := require.New(t)
	s := NewSet()
	res := s.Add("a", "b", "a")
	require.Equal(0, res.OldLen)
	require.Equal(2, res.NewLen)

	require.Equal([]bool{true, false}, s.Exists("a", "z"))
	require.Equal(1, s.Remove("a", "missing"))
	require.Equal(1, s.Len())
}

func TestSortedSetAddAndRank(t *testing.T) {
	require := require.New(t)
	z := NewSortedSet()
	z.Add(AddMode{}, "one", 1)
	z.Add(AddMode{}, "two", 2)
	z.Add(AddMode{}, "three", 3)

	rank, ok := z.Rank("two", false)
	require.True(ok)
	require.Equal(1, rank)

	rank, ok = z.Rank("two", true)
	require.True(ok)
	require.Equal(1, rank)

	_, ok = z.Rank("missing", false)
	require.False(ok)
}

func TestSortedSetAddModes(t *testing.T) {
	require := require.New(t)
	z := NewSortedSet()
	z.Add(AddMode{}, "m", 5)

	res := z.Add(AddMode{NX: true}, "m", 10)
	require.True(res.IncrSkip)
	score, _ := z.Score("m")
	require.Equal(float64(5), score)

	res = z.Add(AddMode{XX: true, CH: true}, "m", 10)
	require.Equal(1, res.Changed)
	score, _ = z.Score("m")
	require.Equal(float64(10), score)

	res = z.Add(AddMode{GT: true}, "m", 3)
	require.True(res.IncrSkip)
	score, _ = z.Score("m")
	require.Equal(float64(10), score)

	res = z.Add(AddMode{Incr: true}, "m", 5)
	require.Equal(float64(15), res.IncrResult)
}

func TestSortedSetRangeByScore(t *testing.T) {
	require := require.New(t)
	z := NewSortedSet()
	for i, m := range []string{"a", "b", "c", "d"} {
		z.Add(AddMode{}, m, float64(i))
	}
	members := z.RangeByScore(1, 2, false, false, false, Limit{Count: -1})
	require.Len(members, 2)
	require.Equal("b", members[0].Member)
	require.Equal("c", members[1].Member)

	members = z.RangeByScore(1, 2, true, false, false, Limit{Count: -1})
	require.Len(members, 1)
	require.Equal("c", members[0].Member)
}

func TestSortedSetRangeByRank(t *testing.T) {
	require := require.New(t)
	z := NewSortedSet()
	for i, m := range []string{"a", "b", "c"} {
		z.Add(AddMode{}, m, float64(i))
	}
	members := z.RangeByRank(0, -1, false)
	require.Len(members, 3)
	require.Equal("a", members[0].Member)

	members = z.RangeByRank(0, -1, true)
	require.Equal("c", members[0].Member)
}

func TestNewFloatRejectsNaN(t *testing.T) {
	require := require.New(t)
	_, err := NewFloat(math.NaN())
	require.ErrorIs(err, ErrNotFloat)

	v, err := NewFloat(2.5)
	require.NoError(err)
	require.Equal(Float(2.5), v)
}
