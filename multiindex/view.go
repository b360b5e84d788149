package multiindex

// PrimaryView is a thin, non-owning façade over a MultiIndex's primary
// index: every method forwards straight to the container, the same
// type-alias-style façade the teacher uses for its Collection/Document
// wrappers (pkg/storage/collection.go) generalized to a read/write view.
type PrimaryView[K comparable, P any] struct {
	mi *MultiIndex[K, P]
}

// View returns the façade over mi's primary index.
func (mi *MultiIndex[K, P]) View() PrimaryView[K, P] { return PrimaryView[K, P]{mi: mi} }

func (v PrimaryView[K, P]) Find(key K) (Handle[K, P], bool) { return v.mi.Find(key) }
func (v PrimaryView[K, P]) Contains(key K) bool             { return v.mi.Contains(key) }
func (v PrimaryView[K, P]) Count(key K) int                 { return v.mi.Count(key) }
func (v PrimaryView[K, P]) EqualRange(key K) []Handle[K, P] { return v.mi.EqualRange(key) }
func (v PrimaryView[K, P]) Size() int                       { return v.mi.Size() }
func (v PrimaryView[K, P]) Empty() bool                     { return v.mi.Empty() }
func (v PrimaryView[K, P]) Erase(key K) int                 { return v.mi.EraseKey(key) }
func (v PrimaryView[K, P]) EraseHandle(h Handle[K, P]) bool { return v.mi.EraseHandle(h) }
func (v PrimaryView[K, P]) Modify(h Handle[K, P], fn func(*P)) bool {
	return v.mi.Modify(h, fn)
}
func (v PrimaryView[K, P]) Replace(h Handle[K, P], newPayload P) bool {
	return v.mi.Replace(h, newPayload)
}
func (v PrimaryView[K, P]) Begin() *Iterator[K, P] { return v.mi.Begin() }

// SecondaryView is the façade over one named secondary index.
type SecondaryView[K comparable, P any] struct {
	mi  *MultiIndex[K, P]
	tag string
	sec secondaryHandle[K, P]
}

// ViewByTag returns the façade over the secondary index registered under
// tag, or ok=false if no such secondary exists.
func (mi *MultiIndex[K, P]) ViewByTag(tag string) (SecondaryView[K, P], bool) {
	sec, ok := mi.secondaryByTag(tag)
	if !ok {
		return SecondaryView[K, P]{}, false
	}
	return SecondaryView[K, P]{mi: mi, tag: tag, sec: sec}, true
}

// Find returns the first live record whose sub-key equals subKey.
func (v SecondaryView[K, P]) Find(subKey any) (Handle[K, P], bool) {
	for _, raw := range v.sec.bucket(subKey) {
		h := v.mi.policy.ToHandle(v.mi, raw)
		if h.IsNil() || (v.mi.tombstones && h.Dead()) {
			continue
		}
		return h, true
	}
	return nilHandle[K, P](), false
}

// EqualRange returns every live record whose sub-key equals subKey.
func (v SecondaryView[K, P]) EqualRange(subKey any) []Handle[K, P] {
	raw := v.sec.bucket(subKey)
	var out []Handle[K, P]
	for _, r := range raw {
		h := v.mi.policy.ToHandle(v.mi, r)
		if h.IsNil() || (v.mi.tombstones && h.Dead()) {
			continue
		}
		out = append(out, h)
	}
	return out
}

// Count returns the number of live records whose sub-key equals subKey.
func (v SecondaryView[K, P]) Count(subKey any) int { return len(v.EqualRange(subKey)) }

// Contains reports whether any live record has sub-key subKey.
func (v SecondaryView[K, P]) Contains(subKey any) bool {
	_, ok := v.Find(subKey)
	return ok
}

// Size returns the number of entries currently stored in this secondary.
func (v SecondaryView[K, P]) Size() int { return v.sec.size() }

// Erase removes every live record whose sub-key equals subKey and returns
// how many were removed.
func (v SecondaryView[K, P]) Erase(subKey any) int {
	return v.mi.EraseBySecondary(v.tag, subKey)
}

// Begin returns an iterator over every live record currently registered in
// this secondary, across every bucket.
func (v SecondaryView[K, P]) Begin() *Iterator[K, P] {
	var all []any
	for _, subKey := range v.keys() {
		all = append(all, v.sec.bucket(subKey)...)
	}
	return newSecondaryIterator(v.mi, all)
}

// keys enumerates the sub-keys currently in use. secondaryIndex doesn't
// expose its bucket map directly, so this walks the primary and re-derives
// the projection — O(N) but only ever used by Begin(), which is O(N) anyway.
func (v SecondaryView[K, P]) keys() []any {
	seen := make(map[any]bool)
	var out []any
	v.mi.primary.forEach(func(h Handle[K, P]) bool {
		if v.mi.tombstones && h.Dead() {
			return true
		}
		si, ok := v.sec.(*secondaryIndex[K, P])
		if !ok {
			return true
		}
		pk := si.projectionOf(h)
		if !seen[pk] {
			seen[pk] = true
			out = append(out, pk)
		}
		return true
	})
	return out
}
