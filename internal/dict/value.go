// Package dict implements the value taxonomy (component A) and the keyed
// dictionary with its expiration index (components B and C).
package dict

import (
	"errors"
	"math"
	"sort"

	"github.com/google/btree"
)

// Value is a closed tagged-union: the set of implementations below is
// exhaustive on purpose, mirroring the value variants in the storage spec.
// Unexported valueTag keeps external packages from adding new variants.
type Value interface {
	valueTag() valueKind
}

type valueKind uint8

const (
	kindNull valueKind = iota
	kindStr
	kindBytes
	kindInt
	kindFloat
	kindDeque
	kindKvp
	kindSet
	kindSortedSet
)

var (
	// ErrWrongType is returned when a command targets a key whose stored
	// value family does not match the operation's requirement.
	ErrWrongType = errors.New("WRONGTYPE Operation against a key holding the wrong kind of value")
	// ErrNotInteger mirrors Redis's message for non-numeric INCR targets and overflow.
	ErrNotInteger = errors.New("value is not an integer or out of range")
	// ErrNotFloat is returned for non-numeric float targets, including NaN.
	ErrNotFloat = errors.New("value is not a valid float")
)

// Null is the sentinel absence value used in read results. It is never stored.
type Null struct{}

func (Null) valueTag() valueKind { return kindNull }

// Str is a small UTF-8 textual payload.
type Str string

func (Str) valueTag() valueKind { return kindStr }

// Bytes is an arbitrary binary payload.
type Bytes []byte

func (Bytes) valueTag() valueKind { return kindBytes }

// Int is a signed 64-bit integer.
type Int int64

func (Int) valueTag() valueKind { return kindInt }

// Float is an IEEE-754 64-bit float. NaN is never constructed.
type Float float64

func (Float) valueTag() valueKind { return kindFloat }

// AsBytes returns the raw byte payload of a String/Bytes/Int/Float value,
// or (nil, false) for any other kind. Used by INCR-family coercion and GET.
func AsBytes(v Value) ([]byte, bool) {
	switch t := v.(type) {
	case Str:
		return []byte(t), true
	case Bytes:
		return []byte(t), true
	case Int:
		return []byte(itoa(int64(t))), true
	case Float:
		return []byte(formatFloat(float64(t))), true
	default:
		return nil, false
	}
}

// PositiveInfinityScore and NegativeInfinityScore are the score-range bounds
// ZRANGEBYSCORE's "+inf"/"-inf" tokens resolve to.
var (
	PositiveInfinityScore = math.Inf(1)
	NegativeInfinityScore = math.Inf(-1)
)

// NewFloat validates and constructs a Float, rejecting NaN per the spec.
func NewFloat(v float64) (Float, error) {
	if math.IsNaN(v) {
		return 0, ErrNotFloat
	}
	return Float(v), nil
}

// --- Deque --------------------------------------------------------------

// Deque is an ordered sequence backed by a slice: PushRight, PopLeft and
// PopRight are O(1) amortized, while PushLeft copies the whole sequence for
// each pushed value (O(n)). Range is O(k) in the number of elements returned.
type Deque struct {
	items [][]byte
}

func (*Deque) valueTag() valueKind { return kindDeque }

// NewDeque returns an empty deque.
func NewDeque() *Deque { return &Deque{} }

// PushLeft inserts vs at the head one at a time, so the last of vs ends up
// frontmost (LPUSH semantics).
func (d *Deque) PushLeft(vs ...[]byte) int {
	for _, v := range vs {
		d.items = append([][]byte{v}, d.items...)
	}
	return len(d.items)
}

// PushRight appends vs at the tail in order.
func (d *Deque) PushRight(vs ...[]byte) int {
	d.items = append(d.items, vs...)
	return len(d.items)
}

// PopLeft removes and returns up to count elements from the head.
func (d *Deque) PopLeft(count int) [][]byte {
	if count <= 0 || len(d.items) == 0 {
		return nil
	}
	if count > len(d.items) {
		count = len(d.items)
	}
	out := d.items[:count]
	d.items = d.items[count:]
	return out
}

// PopRight removes and returns up to count elements from the tail, nearest-first.
func (d *Deque) PopRight(count int) [][]byte {
	if count <= 0 || len(d.items) == 0 {
		return nil
	}
	if count > len(d.items) {
		count = len(d.items)
	}
	n := len(d.items)
	out := make([][]byte, count)
	for i := 0; i < count; i++ {
		out[i] = d.items[n-1-i]
	}
	d.items = d.items[:n-count]
	return out
}

// Len returns the number of elements.
func (d *Deque) Len() int { return len(d.items) }

// Range returns the elements between start and stop inclusive, Redis-style:
// negative indices count from the tail (-1 = last), and out-of-range indices
// clamp silently rather than erroring.
func (d *Deque) Range(start, stop int) [][]byte {
	n := len(d.items)
	if n == 0 {
		return nil
	}
	start = clampIndex(start, n)
	stop = clampIndex(stop, n)
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop || start >= n {
		return nil
	}
	out := make([][]byte, stop-start+1)
	copy(out, d.items[start:stop+1])
	return out
}

func clampIndex(i, n int) int {
	if i < 0 {
		i += n
	}
	return i
}

// --- Kvp ------------------------------------------------------------------

// Kvp maps field-bytes to value-bytes with O(1) average lookup.
type Kvp struct {
	fields map[string][]byte
}

func (*Kvp) valueTag() valueKind { return kindKvp }

// NewKvp returns an empty hash.
func NewKvp() *Kvp { return &Kvp{fields: make(map[string][]byte)} }

// SetMode controls NX/XX semantics for Kvp.Set.
type SetMode uint8

const (
	SetAlways SetMode = iota
	SetNX
	SetXX
)

// SetResult reports how many fields were present before and after a batch set.
type SetResult struct {
	OldLen int
	NewLen int
}

// Set assigns field->value pairs honoring mode (NX skips existing fields, XX
// skips absent ones, SetAlways always writes). Returns before/after field
// counts actually written; the caller derives "created" as NewLen-OldLen.
func (k *Kvp) Set(mode SetMode, pairs map[string][]byte) SetResult {
	before := len(k.fields)
	for field, val := range pairs {
		_, exists := k.fields[field]
		switch mode {
		case SetNX:
			if exists {
				continue
			}
		case SetXX:
			if !exists {
				continue
			}
		}
		k.fields[field] = val
	}
	return SetResult{OldLen: before, NewLen: len(k.fields)}
}

// Get returns the value for field and whether it exists.
func (k *Kvp) Get(field string) ([]byte, bool) {
	v, ok := k.fields[field]
	return v, ok
}

// GetMulti returns values for each field in order, nil for absent fields.
func (k *Kvp) GetMulti(fieldList []string) [][]byte {
	out := make([][]byte, len(fieldList))
	for i, f := range fieldList {
		if v, ok := k.fields[f]; ok {
			out[i] = v
		}
	}
	return out
}

// Del removes the given fields, returning the number actually deleted.
func (k *Kvp) Del(fieldList []string) int {
	n := 0
	for _, f := range fieldList {
		if _, ok := k.fields[f]; ok {
			delete(k.fields, f)
			n++
		}
	}
	return n
}

// Exists reports whether field is present.
func (k *Kvp) Exists(field string) bool {
	_, ok := k.fields[field]
	return ok
}

// IncrBy adds delta to the integer stored at field (absent = 0), failing if
// the existing value is not a valid integer.
func (k *Kvp) IncrBy(field string, delta int64) (int64, error) {
	cur, ok := k.fields[field]
	var curVal int64
	if ok {
		v, perr := parseInt(cur)
		if perr != nil {
			return 0, ErrNotInteger
		}
		curVal = v
	}
	next, overflow := addOverflow(curVal, delta)
	if overflow {
		return 0, ErrNotInteger
	}
	k.fields[field] = []byte(itoa(next))
	return next, nil
}

// GetAll returns a snapshot copy of all fields.
func (k *Kvp) GetAll() map[string][]byte {
	out := make(map[string][]byte, len(k.fields))
	for f, v := range k.fields {
		out[f] = v
	}
	return out
}

// Len reports the number of fields.
func (k *Kvp) Len() int { return len(k.fields) }

// --- Set --------------------------------------------------------------

// Set is a set of byte-sequence members with O(1) average membership.
type Set struct {
	members map[string]struct{}
}

func (*Set) valueTag() valueKind { return kindSet }

// NewSet returns an empty set.
func NewSet() *Set { return &Set{members: make(map[string]struct{})} }

// Add inserts members, returning before/after cardinality.
func (s *Set) Add(members ...string) SetResult {
	before := len(s.members)
	for _, m := range members {
		s.members[m] = struct{}{}
	}
	return SetResult{OldLen: before, NewLen: len(s.members)}
}

// Remove deletes members, returning the number actually removed.
func (s *Set) Remove(members ...string) int {
	n := 0
	for _, m := range members {
		if _, ok := s.members[m]; ok {
			delete(s.members, m)
			n++
		}
	}
	return n
}

// Exists returns one bool per queried member, in order.
func (s *Set) Exists(members ...string) []bool {
	out := make([]bool, len(members))
	for i, m := range members {
		_, out[i] = s.members[m]
	}
	return out
}

// GetAll returns a snapshot of every member.
func (s *Set) GetAll() []string {
	out := make([]string, 0, len(s.members))
	for m := range s.members {
		out = append(out, m)
	}
	return out
}

// Len reports cardinality.
func (s *Set) Len() int { return len(s.members) }

// --- SortedSet --------------------------------------------------------

// zNode is a (score, member) pair; the btree orders strictly by this tuple.
type zNode struct {
	score  float64
	member string
}

func (n *zNode) Less(than btree.Item) bool {
	o := than.(*zNode)
	if n.score != o.score {
		return n.score < o.score
	}
	return n.member < o.member
}

// SortedSet maintains hash:member->node and ordered:BTree<node> in lock-step.
type SortedSet struct {
	hash    map[string]*zNode
	ordered *btree.BTree
}

func (*SortedSet) valueTag() valueKind { return kindSortedSet }

// NewSortedSet returns an empty sorted set. Degree 32 keeps the btree shallow
// for the range sizes this store expects.
func NewSortedSet() *SortedSet {
	return &SortedSet{hash: make(map[string]*zNode), ordered: btree.New(32)}
}

// AddMode controls ZADD's NX/XX/GT/LT/CH/INCR modifiers.
type AddMode struct {
	NX, XX bool
	GT, LT bool
	CH     bool
	Incr   bool
}

// AddResult reports ZADD's outcome: Added counts brand-new members, Changed
// counts members that were added or whose score actually changed (populated
// regardless of CH; ZADD reports it only under CH), and IncrResult holds the
// post-increment score when Incr is set.
type AddResult struct {
	Added      int
	Changed    int
	IncrResult float64
	IncrSkip   bool // true if NX/XX/GT/LT skipped the update
}

// Add applies one (member, score) pair honoring mode, mutating hash and
// ordered together so they never diverge.
func (z *SortedSet) Add(mode AddMode, member string, score float64) AddResult {
	existing, exists := z.hash[member]

	if mode.NX && exists {
		return AddResult{IncrSkip: true}
	}
	if mode.XX && !exists {
		return AddResult{IncrSkip: true}
	}

	newScore := score
	if mode.Incr {
		base := 0.0
		if exists {
			base = existing.score
		}
		newScore = base + score
	}

	if exists {
		if mode.GT && newScore <= existing.score {
			return AddResult{IncrResult: existing.score, IncrSkip: true}
		}
		if mode.LT && newScore >= existing.score {
			return AddResult{IncrResult: existing.score, IncrSkip: true}
		}
		if newScore == existing.score {
			if mode.Incr {
				return AddResult{IncrResult: newScore}
			}
			return AddResult{}
		}
		z.ordered.Delete(existing)
		node := &zNode{score: newScore, member: member}
		z.hash[member] = node
		z.ordered.ReplaceOrInsert(node)
		return AddResult{Changed: 1, IncrResult: newScore}
	}

	node := &zNode{score: newScore, member: member}
	z.hash[member] = node
	z.ordered.ReplaceOrInsert(node)
	return AddResult{Added: 1, Changed: 1, IncrResult: newScore}
}

// Remove deletes members, returning the number actually removed.
func (z *SortedSet) Remove(members ...string) int {
	n := 0
	for _, m := range members {
		if node, ok := z.hash[m]; ok {
			z.ordered.Delete(node)
			delete(z.hash, m)
			n++
		}
	}
	return n
}

// Score returns the member's score and whether it exists.
func (z *SortedSet) Score(member string) (float64, bool) {
	node, ok := z.hash[member]
	if !ok {
		return 0, false
	}
	return node.score, true
}

// Len reports cardinality.
func (z *SortedSet) Len() int { return len(z.hash) }

// Rank returns member's zero-based ascending rank (or descending when rev is
// true) and whether it exists. Walks the btree in order; O(n) since
// google/btree v1 has no order-statistics support.
func (z *SortedSet) Rank(member string, rev bool) (int, bool) {
	node, ok := z.hash[member]
	if !ok {
		return 0, false
	}
	idx := 0
	found := false
	z.ordered.Ascend(func(i btree.Item) bool {
		if i.(*zNode) == node {
			found = true
			return false
		}
		idx++
		return true
	})
	if !found {
		return 0, false
	}
	if rev {
		return z.ordered.Len() - 1 - idx, true
	}
	return idx, true
}

// Member is one element of a range result.
type Member struct {
	Member string
	Score  float64
}

// RangeByRank returns elements with ascending ranks in [start, stop]
// (inclusive, Redis-style negative indices), reversed when rev is true.
func (z *SortedSet) RangeByRank(start, stop int, rev bool) []Member {
	n := z.ordered.Len()
	if n == 0 {
		return nil
	}
	start = clampIndex(start, n)
	stop = clampIndex(stop, n)
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop || start >= n {
		return nil
	}

	all := make([]Member, 0, n)
	z.ordered.Ascend(func(i btree.Item) bool {
		nd := i.(*zNode)
		all = append(all, Member{Member: nd.member, Score: nd.score})
		return true
	})
	if rev {
		reverseMembers(all)
	}
	return all[start : stop+1]
}

func reverseMembers(m []Member) {
	for i, j := 0, len(m)-1; i < j; i, j = i+1, j-1 {
		m[i], m[j] = m[j], m[i]
	}
}

// Limit bounds a range result by offset/count; Count<0 means "no limit".
type Limit struct {
	Offset int
	Count  int
}

// RangeByScore returns members with score in [min, max] (inclusive unless
// the exclusive flags are set), ascending unless rev, honoring limit.
func (z *SortedSet) RangeByScore(min, max float64, minExcl, maxExcl bool, rev bool, limit Limit) []Member {
	var all []Member
	z.ordered.Ascend(func(i btree.Item) bool {
		nd := i.(*zNode)
		if nd.score > max || (maxExcl && nd.score == max) {
			return false
		}
		if nd.score < min || (minExcl && nd.score == min) {
			return true
		}
		all = append(all, Member{Member: nd.member, Score: nd.score})
		return true
	})
	if rev {
		reverseMembers(all)
	}
	return applyLimit(all, limit)
}

// RangeByLex returns members whose bytes fall within min and max (each bound
// inclusive or exclusive per its own flag), applying the bounds directly to
// member bytes. All members are sorted by member bytes alone, ignoring
// scores, so members need not share one score; the result is ascending
// unless rev, honoring limit.
func (z *SortedSet) RangeByLex(min, max LexBound, rev bool, limit Limit) []Member {
	var all []Member
	z.ordered.Ascend(func(i btree.Item) bool {
		nd := i.(*zNode)
		all = append(all, Member{Member: nd.member, Score: nd.score})
		return true
	})
	sort.SliceStable(all, func(i, j int) bool { return all[i].Member < all[j].Member })

	filtered := make([]Member, 0, len(all))
	for _, m := range all {
		if !min.includes(m.Member, true) {
			continue
		}
		if !max.includes(m.Member, false) {
			continue
		}
		filtered = append(filtered, m)
	}
	if rev {
		reverseMembers(filtered)
	}
	return applyLimit(filtered, limit)
}

// LexBound models ZRANGEBYLEX's -/+/[x/(x bound grammar.
type LexBound struct {
	Unbounded bool
	Inclusive bool
	Value     string
	// PositiveInfinity distinguishes "+" (max unbounded) from "-" (min unbounded)
	// when Unbounded is true.
	PositiveInfinity bool
}

func (b LexBound) includes(member string, isMin bool) bool {
	if b.Unbounded {
		// "-" (not PositiveInfinity) as a min bound, or "+" as a max bound,
		// admits every member; the opposite pairing admits none.
		if isMin {
			return !b.PositiveInfinity
		}
		return b.PositiveInfinity
	}
	if isMin {
		if b.Inclusive {
			return member >= b.Value
		}
		return member > b.Value
	}
	if b.Inclusive {
		return member <= b.Value
	}
	return member < b.Value
}

func applyLimit(members []Member, limit Limit) []Member {
	if limit.Offset <= 0 && limit.Count < 0 {
		return members
	}
	offset := limit.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(members) {
		return nil
	}
	members = members[offset:]
	if limit.Count >= 0 && limit.Count < len(members) {
		members = members[:limit.Count]
	}
	return members
}
