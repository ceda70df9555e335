package dict

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTxnInsertAndViewGet(t *testing.T) {
	require := require.New(t)
	clock := NewManualClock(1000)
	d := New(clock)

	d.WithWrite(func(tx *Txn) {
		tx.Insert([]byte("k"), Entry{Value: Str("v")})
	})

	d.WithRead(func(v *View) {
		e, ok := v.Get([]byte("k"))
		require.True(ok)
		require.Equal(Str("v"), e.Value)

		_, ok = v.Get([]byte("missing"))
		require.False(ok)
	})
}

func TestTxnGetExpiresOpportunistically(t *testing.T) {
	require := require.New(t)
	clock := NewManualClock(1000)
	d := New(clock)

	d.WithWrite(func(tx *Txn) {
		tx.Insert([]byte("k"), Entry{Value: Str("v"), ExpiresAt: 1500})
	})

	clock.Set(2000)
	d.WithWrite(func(tx *Txn) {
		_, ok := tx.Get([]byte("k"))
		require.False(ok)
	})
	d.WithWrite(func(tx *Txn) {
		require.Equal(0, tx.Len())
	})
}

func TestSetExpiryWakesSweeper(t *testing.T) {
	require := require.New(t)
	clock := NewManualClock(1000)
	d := New(clock)

	d.WithWrite(func(tx *Txn) {
		tx.Insert([]byte("k"), Entry{Value: Str("v"), ExpiresAt: 5000})
	})

	// draining any pending wake from the insert above
	select {
	case <-d.WakeChan():
	default:
	}

	d.WithWrite(func(tx *Txn) {
		_, existed := tx.SetExpiry([]byte("k"), 2000)
		require.True(existed)
	})

	select {
	case <-d.WakeChan():
	default:
		t.Fatal("expected sweeper wake after shortening expiry")
	}
}

func TestFlushAllClears(t *testing.T) {
	require := require.New(t)
	d := New(NewManualClock(0))
	d.WithWrite(func(tx *Txn) {
		tx.Insert([]byte("a"), Entry{Value: Str("1")})
		tx.Insert([]byte("b"), Entry{Value: Str("2"), ExpiresAt: 100})
	})
	d.WithWrite(func(tx *Txn) {
		tx.FlushAll()
		require.Equal(0, tx.Len())
	})
	_, hasNext := d.SweepOnce()
	require.False(hasNext)
}

func TestSweepOnceRemovesDueEntries(t *testing.T) {
	require := require.New(t)
	clock := NewManualClock(1000)
	d := New(clock)
	d.WithWrite(func(tx *Txn) {
		tx.Insert([]byte("soon"), Entry{Value: Str("v"), ExpiresAt: 1500})
		tx.Insert([]byte("later"), Entry{Value: Str("v"), ExpiresAt: 9000})
	})

	clock.Set(2000)
	next, hasNext := d.SweepOnce()
	require.True(hasNext)
	require.Equal(int64(9000), next)

	d.WithRead(func(v *View) {
		_, ok := v.Get([]byte("soon"))
		require.False(ok)
		_, ok = v.Get([]byte("later"))
		require.True(ok)
	})
}

func TestGetOrInsert(t *testing.T) {
	require := require.New(t)
	d := New(NewManualClock(0))
	d.WithWrite(func(tx *Txn) {
		e, created := tx.GetOrInsert([]byte("k"), Int(0))
		require.True(created)
		e.Value = Int(7)

		e2, created2 := tx.GetOrInsert([]byte("k"), Int(0))
		require.False(created2)
		require.Equal(Int(7), e2.Value)
	})
}
