package dict

import "sync"

// Dictionary is the keyed mapping from key bytes to Entry, guarded by a
// single reader-writer lock (component B). Writers hold the lock for the
// duration of one command's apply phase; that phase is expected to be O(1)
// or O(log n) and must never suspend on I/O.
type Dictionary struct {
	mu    sync.RWMutex
	data  map[string]*Entry
	index *expireIndex
	clock Clock

	// wakeCh is a non-blocking notification channel: a write that shortens
	// some key's expiry sends (dropping the send if a wake is already
	// pending) so the sweeper never oversleeps past an earlier deadline.
	wakeCh chan struct{}
}

// New returns an empty Dictionary using clock for expiry comparisons.
func New(clock Clock) *Dictionary {
	return &Dictionary{
		data:   make(map[string]*Entry),
		index:  newExpireIndex(),
		clock:  clock,
		wakeCh: make(chan struct{}, 1),
	}
}

// WakeChan exposes the sweeper's wake notification channel.
func (d *Dictionary) WakeChan() <-chan struct{} { return d.wakeCh }

// WithRead runs fn under the shared lock, giving it a consistent snapshot
// view: every entry that existed when the lock was acquired, minus any that
// have expired as of now.
func (d *Dictionary) WithRead(fn func(v *View)) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	fn(&View{d: d, now: d.clock.NowMillis()})
}

// WithWrite runs fn under the exclusive lock. If fn shortens some key's
// expiry to earlier than any previously-known earliest expiry, the
// expiration sweeper is woken so it doesn't oversleep.
func (d *Dictionary) WithWrite(fn func(tx *Txn)) {
	d.mu.Lock()
	tx := &Txn{d: d, now: d.clock.NowMillis()}
	fn(tx)
	wake := tx.wake
	d.mu.Unlock()
	if wake {
		select {
		case d.wakeCh <- struct{}{}:
		default:
		}
	}
}

// SweepOnce deletes every entry whose expiry is due as of the dictionary's
// clock, under the exclusive lock, and reports the next pending deadline (if
// any). It is the only entry point the expiration engine uses; DEL uses the
// same Txn.Remove underneath, so sweep and DEL share delete semantics.
func (d *Dictionary) SweepOnce() (nextEarliest int64, hasNext bool) {
	d.mu.Lock()
	due := d.index.popDue(d.clock.NowMillis())
	for _, k := range due {
		delete(d.data, k)
	}
	nextEarliest, hasNext = d.index.earliest()
	d.mu.Unlock()
	return nextEarliest, hasNext
}

// View is a read-only handle into the Dictionary, valid only for the
// duration of the WithRead callback that produced it.
type View struct {
	d   *Dictionary
	now int64
}

// Now returns the wall-clock time (ms) observed when this view was acquired.
func (v *View) Now() int64 { return v.now }

// Get returns the entry for key iff it exists and has not expired as of
// Now(). Expired entries are treated as absent (opportunistic deletion is
// left to the sweeper since only a read lock is held here).
func (v *View) Get(key []byte) (*Entry, bool) {
	e, ok := v.d.data[string(key)]
	if !ok || e.expired(v.now) {
		return nil, false
	}
	return e, true
}

// Txn is a mutable handle into the Dictionary, valid only for the duration
// of the WithWrite callback that produced it.
type Txn struct {
	d    *Dictionary
	now  int64
	wake bool
}

// Now returns the wall-clock time (ms) observed when this transaction began.
func (t *Txn) Now() int64 { return t.now }

// Get returns the live entry for key, opportunistically deleting it (and
// splicing the expiration index) if it has expired.
func (t *Txn) Get(key []byte) (*Entry, bool) {
	ks := string(key)
	e, ok := t.d.data[ks]
	if !ok {
		return nil, false
	}
	if e.expired(t.now) {
		delete(t.d.data, ks)
		t.d.index.remove(ks)
		return nil, false
	}
	return e, true
}

// GetOrInsert returns the live entry for key, inserting a fresh Entry built
// from def if absent or expired. Returns created=true when a new entry was
// installed. The caller is responsible for a type check before mutating an
// existing entry of a different family.
func (t *Txn) GetOrInsert(key []byte, def Value) (e *Entry, created bool) {
	if e, ok := t.Get(key); ok {
		return e, false
	}
	ks := string(key)
	e = &Entry{Value: def, LastVisitMillis: t.now}
	t.d.data[ks] = e
	return e, true
}

// Insert unconditionally replaces key's entry, returning the prior entry's
// ExpiresAt (0 if absent) so the caller can splice the expiration index via
// SetExpiry if needed. Insert itself keeps the index consistent with e.
func (t *Txn) Insert(key []byte, e Entry) (priorExpiresAt int64, existed bool) {
	ks := string(key)
	if prior, ok := t.d.data[ks]; ok {
		priorExpiresAt = prior.ExpiresAt
		existed = true
	}
	stored := e
	if stored.LastVisitMillis == 0 {
		stored.LastVisitMillis = t.now
	}
	t.d.data[ks] = &stored
	if t.d.index.upsert(ks, e.ExpiresAt) {
		t.wake = true
	}
	return priorExpiresAt, existed
}

// Remove unconditionally deletes key, returning the prior entry if any.
// This is the delete-command semantics the expiration sweeper also uses.
func (t *Txn) Remove(key []byte) (Entry, bool) {
	ks := string(key)
	e, ok := t.d.data[ks]
	if !ok {
		return Entry{}, false
	}
	delete(t.d.data, ks)
	t.d.index.remove(ks)
	return *e, true
}

// SetExpiry updates only key's expiry field, splicing the expiration index.
// Returns the prior ExpiresAt and whether the key exists (live, not expired).
func (t *Txn) SetExpiry(key []byte, newExpiresAt int64) (priorExpiresAt int64, existed bool) {
	e, ok := t.Get(key)
	if !ok {
		return 0, false
	}
	priorExpiresAt = e.ExpiresAt
	e.ExpiresAt = newExpiresAt
	if t.d.index.upsert(string(key), newExpiresAt) {
		t.wake = true
	}
	return priorExpiresAt, true
}

// Touch updates LastVisitMillis to now. No command calls it: read commands
// run under a View, so reading a key leaves its OBJECT IDLETIME unchanged.
func (t *Txn) Touch(key []byte) {
	if e, ok := t.Get(key); ok {
		e.LastVisitMillis = t.now
	}
}

// FlushAll clears every entry and the expiration index in one step.
func (t *Txn) FlushAll() {
	t.d.data = make(map[string]*Entry)
	t.d.index.reset()
}

// Len reports the number of live (possibly-not-yet-swept) entries; exact
// liveness still requires an expiry check per key, so this is an upper bound.
func (t *Txn) Len() int { return len(t.d.data) }
