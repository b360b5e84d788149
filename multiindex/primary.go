package multiindex

import "sync"

// primaryStore is the storage capability the container needs from whatever
// backs the primary index: insert, erase, lookup, iteration. Two
// implementations exist, selected by the policy's Invalidates() trait:
// stableMapPrimary (node-stable, map-of-pointer) and relocatingSlicePrimary
// (element-relocating, slice-backed, the Go analogue of a flat/vector-backed
// associative container).
type primaryStore[K comparable, P any] interface {
	insert(mi *MultiIndex[K, P], key K, payload P) (Handle[K, P], bool)
	eraseHandle(mi *MultiIndex[K, P], h Handle[K, P])
	find(key K) (Handle[K, P], bool)
	equalRange(key K) []Handle[K, P]
	forEach(fn func(Handle[K, P]) bool)
	len() int
	clear()
	reserve(mi *MultiIndex[K, P], n int)
	rehash(mi *MultiIndex[K, P], n int)
	loadFactor() float64
}

// --- stableMapPrimary -------------------------------------------------

// stableMapPrimary backs NoInv and KeyLookup: every record is a
// heap-allocated *wrapper reached through a map, so its address never
// changes once inserted. Its map is the "concurrent, node-stable map" the
// conditional concurrent subset requires (spec.md §5): mu guards every
// access so concurrent emplace/find from multiple goroutines never race on
// m itself, the precondition the subset is conditioned on. This buys
// nothing for erase/modify/replace/iteration/swap/clear/compact, which stay
// documented as never concurrent-safe regardless of locking, since they
// touch wrapper payloads and secondary state outside this mutex's reach.
type stableMapPrimary[K comparable, P any] struct {
	mu      sync.RWMutex
	unique  bool
	m       map[K][]*wrapper[K, P]
	n       int
	capHint int
}

func newStableMapPrimary[K comparable, P any](unique bool) *stableMapPrimary[K, P] {
	return &stableMapPrimary[K, P]{unique: unique, m: make(map[K][]*wrapper[K, P])}
}

func (s *stableMapPrimary[K, P]) insert(mi *MultiIndex[K, P], key K, payload P) (Handle[K, P], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing := s.m[key]; len(existing) > 0 && s.unique {
		return Handle[K, P]{p: existing[0]}, false
	}
	w := &wrapper[K, P]{key: key, payload: payload, owner: mi, slot: -1}
	s.m[key] = append(s.m[key], w)
	s.n++
	return Handle[K, P]{p: w}, true
}

func (s *stableMapPrimary[K, P]) eraseHandle(mi *MultiIndex[K, P], h Handle[K, P]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket := s.m[h.p.key]
	for i, w := range bucket {
		if w == h.p {
			bucket = append(bucket[:i], bucket[i+1:]...)
			s.n--
			break
		}
	}
	if len(bucket) == 0 {
		delete(s.m, h.p.key)
	} else {
		s.m[h.p.key] = bucket
	}
}

func (s *stableMapPrimary[K, P]) find(key K) (Handle[K, P], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bucket := s.m[key]
	if len(bucket) == 0 {
		return nilHandle[K, P](), false
	}
	return Handle[K, P]{p: bucket[0]}, true
}

func (s *stableMapPrimary[K, P]) equalRange(key K) []Handle[K, P] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bucket := s.m[key]
	out := make([]Handle[K, P], len(bucket))
	for i, w := range bucket {
		out[i] = Handle[K, P]{p: w}
	}
	return out
}

func (s *stableMapPrimary[K, P]) forEach(fn func(Handle[K, P]) bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, bucket := range s.m {
		for _, w := range bucket {
			if !fn(Handle[K, P]{p: w}) {
				return
			}
		}
	}
}

func (s *stableMapPrimary[K, P]) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.n
}

func (s *stableMapPrimary[K, P]) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m = make(map[K][]*wrapper[K, P])
	s.n = 0
}

// reserve pre-sizes the backing map for n additional entries, the Go
// analogue of a hash map's reserve(): it's purely a capacity hint, taken
// under the same lock as every other mutation so it composes with the
// concurrent subset instead of quietly bypassing it.
func (s *stableMapPrimary[K, P]) reserve(_ *MultiIndex[K, P], n int) {
	if n <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	grown := make(map[K][]*wrapper[K, P], len(s.m)+n)
	for k, v := range s.m {
		grown[k] = v
	}
	s.m = grown
	s.capHint = len(s.m) + n
}

// rehash rebuilds the map around a bucket count sized for n entries.
func (s *stableMapPrimary[K, P]) rehash(_ *MultiIndex[K, P], n int) {
	if n < 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	grown := make(map[K][]*wrapper[K, P], n)
	for k, v := range s.m {
		grown[k] = v
	}
	s.m = grown
	s.capHint = n
}

func (s *stableMapPrimary[K, P]) loadFactor() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.capHint <= 0 {
		return 1.0
	}
	return float64(len(s.m)) / float64(s.capHint)
}

// --- relocatingSlicePrimary --------------------------------------------

// relocatingSlicePrimary backs UpdatePointer and TranslationArray: records
// live by value in a dense slice, so growing past capacity or compacting
// after an erase moves existing records in memory. Every such move is
// reported to the policy via OnRelocate with the old and new addresses,
// exactly like the original's flat/vector-backed primary.
//
// Unlike stableMapPrimary this type is never node-stable, so it falls
// outside the conditional concurrent subset entirely (spec.md §5 requires
// every backing map to be node-stable) — no mutex here is the correct
// translation of that precondition, not an oversight.
type relocatingSlicePrimary[K comparable, P any] struct {
	unique  bool
	items   []wrapper[K, P]
	index   map[K][]int
	capHint int
}

func newRelocatingSlicePrimary[K comparable, P any](unique bool) *relocatingSlicePrimary[K, P] {
	return &relocatingSlicePrimary[K, P]{unique: unique, index: make(map[K][]int)}
}

func (s *relocatingSlicePrimary[K, P]) insert(mi *MultiIndex[K, P], key K, payload P) (Handle[K, P], bool) {
	if ixs := s.index[key]; len(ixs) > 0 && s.unique {
		return Handle[K, P]{p: &s.items[ixs[0]]}, false
	}

	n := len(s.items)
	growing := n+1 > cap(s.items)
	var oldPtrs []*wrapper[K, P]
	if growing && n > 0 {
		oldPtrs = make([]*wrapper[K, P], n)
		for i := range s.items {
			oldPtrs[i] = &s.items[i]
		}
	}

	s.items = append(s.items, wrapper[K, P]{key: key, payload: payload, owner: mi, slot: -1})

	if growing && n > 0 {
		for i := 0; i < n; i++ {
			mi.policy.OnRelocate(mi, oldPtrs[i], &s.items[i])
		}
	}

	idx := len(s.items) - 1
	s.index[key] = append(s.index[key], idx)
	return Handle[K, P]{p: &s.items[idx]}, true
}

func (s *relocatingSlicePrimary[K, P]) indexOf(h Handle[K, P]) int {
	for i := range s.items {
		if &s.items[i] == h.p {
			return i
		}
	}
	return -1
}

// eraseHandle removes h by swapping the last element into its slot (O(1)),
// which relocates at most the one record that used to be last.
func (s *relocatingSlicePrimary[K, P]) eraseHandle(mi *MultiIndex[K, P], h Handle[K, P]) {
	idx := s.indexOf(h)
	if idx < 0 {
		return
	}
	key := s.items[idx].key
	s.removeIndexSlot(key, idx)

	last := len(s.items) - 1
	if idx != last {
		movedKey := s.items[last].key
		oldLastPtr := &s.items[last]
		s.items[idx] = s.items[last]
		newPtr := &s.items[idx]
		s.remapIndexSlot(movedKey, last, idx)
		mi.policy.OnRelocate(mi, oldLastPtr, newPtr)
	}
	s.items = s.items[:last]
}

func (s *relocatingSlicePrimary[K, P]) removeIndexSlot(key K, idx int) {
	ixs := s.index[key]
	for i, v := range ixs {
		if v == idx {
			ixs = append(ixs[:i], ixs[i+1:]...)
			break
		}
	}
	if len(ixs) == 0 {
		delete(s.index, key)
	} else {
		s.index[key] = ixs
	}
}

func (s *relocatingSlicePrimary[K, P]) remapIndexSlot(key K, from, to int) {
	ixs := s.index[key]
	for i, v := range ixs {
		if v == from {
			ixs[i] = to
			break
		}
	}
	s.index[key] = ixs
}

func (s *relocatingSlicePrimary[K, P]) find(key K) (Handle[K, P], bool) {
	ixs := s.index[key]
	if len(ixs) == 0 {
		return nilHandle[K, P](), false
	}
	return Handle[K, P]{p: &s.items[ixs[0]]}, true
}

func (s *relocatingSlicePrimary[K, P]) equalRange(key K) []Handle[K, P] {
	ixs := s.index[key]
	out := make([]Handle[K, P], len(ixs))
	for i, v := range ixs {
		out[i] = Handle[K, P]{p: &s.items[v]}
	}
	return out
}

func (s *relocatingSlicePrimary[K, P]) forEach(fn func(Handle[K, P]) bool) {
	for i := range s.items {
		if !fn(Handle[K, P]{p: &s.items[i]}) {
			return
		}
	}
}

func (s *relocatingSlicePrimary[K, P]) len() int { return len(s.items) }

func (s *relocatingSlicePrimary[K, P]) clear() {
	s.items = nil
	s.index = make(map[K][]int)
}

// reserve grows the backing slice's capacity by n ahead of a batch of
// inserts, the one relocation this type does outside of insert/eraseHandle
// itself. Every live record moves exactly once, so OnRelocate fires once per
// record, same as any other reallocation this primary performs.
func (s *relocatingSlicePrimary[K, P]) reserve(mi *MultiIndex[K, P], n int) {
	if mi == nil {
		return
	}
	if n <= 0 || len(s.items)+n <= cap(s.items) {
		return
	}
	old := s.items
	var oldPtrs []*wrapper[K, P]
	if len(old) > 0 {
		oldPtrs = make([]*wrapper[K, P], len(old))
		for i := range old {
			oldPtrs[i] = &old[i]
		}
	}
	grown := make([]wrapper[K, P], len(old), len(old)+n)
	copy(grown, old)
	s.items = grown
	for i := range oldPtrs {
		mi.policy.OnRelocate(mi, oldPtrs[i], &s.items[i])
	}
	s.capHint = len(old) + n
}

// rehash rebuilds the key->slot index map around a bucket count sized for n
// entries. It never touches the items slice, so no record relocates and no
// OnRelocate fires.
func (s *relocatingSlicePrimary[K, P]) rehash(_ *MultiIndex[K, P], n int) {
	if n < 0 {
		return
	}
	grown := make(map[K][]int, n)
	for k, v := range s.index {
		grown[k] = v
	}
	s.index = grown
	s.capHint = n
}

func (s *relocatingSlicePrimary[K, P]) loadFactor() float64 {
	if s.capHint <= 0 {
		return 1.0
	}
	return float64(len(s.items)) / float64(s.capHint)
}
