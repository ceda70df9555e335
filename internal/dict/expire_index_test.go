package dict

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExpireIndexUpsertAndEarliest(t *testing.T) {
	require := require.New(t)
	ix := newExpireIndex()

	require.True(ix.upsert("a", 500))
	_, hadEarlier := ix.earliest()
	require.True(hadEarlier)

	require.False(ix.upsert("b", 900))
	require.True(ix.upsert("c", 100)) // earlier than current min

	earliest, ok := ix.earliest()
	require.True(ok)
	require.Equal(int64(100), earliest)
}

func TestExpireIndexUpsertZeroRemoves(t *testing.T) {
	require := require.New(t)
	ix := newExpireIndex()
	ix.upsert("a", 500)
	require.Equal(1, ix.len())

	ix.upsert("a", 0)
	require.Equal(0, ix.len())
	_, ok := ix.earliest()
	require.False(ok)
}

func TestExpireIndexPopDue(t *testing.T) {
	require := require.New(t)
	ix := newExpireIndex()
	ix.upsert("a", 100)
	ix.upsert("b", 200)
	ix.upsert("c", 300)

	due := ix.popDue(200)
	require.ElementsMatch([]string{"a", "b"}, due)
	require.Equal(1, ix.len())
}

func TestExpireIndexRemove(t *testing.T) {
	require := require.New(t)
	ix := newExpireIndex()
	ix.upsert("a", 100)
	ix.remove("a")
	require.Equal(0, ix.len())
	// removing an absent key is a no-op
	ix.remove("a")
}

func TestExpireIndexReset(t *testing.T) {
	ix := newExpireIndex()
	ix.upsert("a", 100)
	ix.upsert("b", 200)
	ix.reset()
	require.Equal(t, 0, ix.len())
}
