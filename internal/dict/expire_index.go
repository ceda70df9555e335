package dict

import "container/heap"

// expireItem is one (expires_at, key) tuple tracked by the index.
type expireItem struct {
	expiresAt int64
	key       string
	index     int // maintained by heap.Interface for O(log n) removal
}

// expireHeap is a min-heap ordered by expiresAt, the same shape as the
// teacher's scheduler event heap.
type expireHeap []*expireItem

func (h expireHeap) Len() int { return len(h) }

func (h expireHeap) Less(i, j int) bool { return h[i].expiresAt < h[j].expiresAt }

func (h expireHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *expireHeap) Push(x any) {
	item := x.(*expireItem)
	item.index = len(*h)
	*h = append(*h, item)
}

func (h *expireHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*h = old[:n-1]
	return item
}

// expireIndex is the ordered multiset over (expires_at, key) required by the
// spec: for every live entry with expires_at > 0 there is exactly one tuple
// here, splice-updated whenever an entry's expiry changes.
type expireIndex struct {
	h     expireHeap
	byKey map[string]*expireItem
}

func newExpireIndex() *expireIndex {
	return &expireIndex{byKey: make(map[string]*expireItem)}
}

// upsert splices key's tuple to reflect newExpiresAt, removing it from the
// index entirely when newExpiresAt is 0. Returns true if the new value is
// earlier than any previously-earliest tuple (the sweeper should wake).
func (ix *expireIndex) upsert(key string, newExpiresAt int64) (shouldWake bool) {
	prevEarliest, hadAny := ix.earliest()

	if old, ok := ix.byKey[key]; ok {
		heap.Remove(&ix.h, old.index)
		delete(ix.byKey, key)
	}
	if newExpiresAt <= 0 {
		return false
	}

	item := &expireItem{expiresAt: newExpiresAt, key: key}
	ix.byKey[key] = item
	heap.Push(&ix.h, item)

	return !hadAny || newExpiresAt < prevEarliest
}

// remove drops key's tuple if present.
func (ix *expireIndex) remove(key string) {
	if old, ok := ix.byKey[key]; ok {
		heap.Remove(&ix.h, old.index)
		delete(ix.byKey, key)
	}
}

// earliest returns the soonest pending expiry, if any.
func (ix *expireIndex) earliest() (expiresAt int64, ok bool) {
	if len(ix.h) == 0 {
		return 0, false
	}
	return ix.h[0].expiresAt, true
}

// popDue removes and returns every key whose expiry is <= nowMs.
func (ix *expireIndex) popDue(nowMs int64) []string {
	var due []string
	for len(ix.h) > 0 && ix.h[0].expiresAt <= nowMs {
		item := heap.Pop(&ix.h).(*expireItem)
		delete(ix.byKey, item.key)
		due = append(due, item.key)
	}
	return due
}

// reset clears the index entirely (used by FLUSHALL).
func (ix *expireIndex) reset() {
	ix.h = ix.h[:0]
	ix.byKey = make(map[string]*expireItem)
}

// len reports the number of indexed tuples, for tests.
func (ix *expireIndex) len() int { return len(ix.h) }
