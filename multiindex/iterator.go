package multiindex

// Iterator walks a sequence of raw index entries (primary Handles, or a
// secondary's opaque stored values) and yields only live Handles, resolving
// each raw value on demand and skipping dead records as it advances.
//
// The C++ original distinguishes three adaptors — a live-skipping iterator,
// a primary-handle-materializing iterator, and a secondary
// handle-materializing iterator — because each backs a different
// traversal. In Go a single type parameterized by a resolve closure covers
// all three: for the primary, resolve is the identity function over
// already-Handle values; for a secondary, resolve is policy.ToHandle.
type Iterator[K comparable, P any] struct {
	mi      *MultiIndex[K, P]
	items   []any
	resolve func(any) Handle[K, P]
	idx     int
}

// Next advances to the next live record. It returns (nilHandle, false) once
// exhausted, mirroring reaching end().
func (it *Iterator[K, P]) Next() (Handle[K, P], bool) {
	for it.idx < len(it.items) {
		raw := it.items[it.idx]
		it.idx++
		h := it.resolve(raw)
		if h.IsNil() {
			continue
		}
		if it.mi.tombstones && h.Dead() {
			continue
		}
		return h, true
	}
	return nilHandle[K, P](), false
}

func newPrimaryIterator[K comparable, P any](mi *MultiIndex[K, P], handles []Handle[K, P]) *Iterator[K, P] {
	items := make([]any, len(handles))
	for i, h := range handles {
		items[i] = h
	}
	return &Iterator[K, P]{
		mi:    mi,
		items: items,
		resolve: func(v any) Handle[K, P] {
			return v.(Handle[K, P])
		},
	}
}

func newSecondaryIterator[K comparable, P any](mi *MultiIndex[K, P], raw []any) *Iterator[K, P] {
	return &Iterator[K, P]{
		mi:      mi,
		items:   append([]any(nil), raw...),
		resolve: func(v any) Handle[K, P] { return mi.policy.ToHandle(mi, v) },
	}
}

// Begin returns an iterator over every live record in primary order.
func (mi *MultiIndex[K, P]) Begin() *Iterator[K, P] {
	var handles []Handle[K, P]
	mi.primary.forEach(func(h Handle[K, P]) bool {
		handles = append(handles, h)
		return true
	})
	return newPrimaryIterator(mi, handles)
}
