package multiindex

// Clone returns an independent copy of mi built from the same policy and
// specs: every live record is re-emplaced into a fresh container, and every
// tombstoned record is inserted into the fresh primary still dead, with no
// secondary entries, so Size() and PhysicalSize() match the original.
//
// The original distinguishes a fast verbatim-map copy for non-invalidating
// policies from an element-wise emplace copy for invalidating ones, because
// copying a std::map is a single allocation-heavy but O(N) library call
// that skips recomputing every projection. Go maps have no such bulk-copy
// primitive — copying one always means iterating it key by key — so that
// distinction buys nothing here; Clone always goes element-wise, for every
// policy.
func (mi *MultiIndex[K, P]) Clone() *MultiIndex[K, P] {
	fresh := New[K, P](mi.policy, mi.specs, mi.opts...)
	mi.primary.forEach(func(h Handle[K, P]) bool {
		if mi.tombstones && h.Dead() {
			if nh, ok := fresh.primary.insert(fresh, h.Key(), h.Payload()); ok {
				fresh.policy.OnEmplaceSuccess(fresh, nh)
				nh.p.dead = true
			}
			return true
		}
		fresh.Emplace(h.Key(), h.Payload())
		return true
	})
	return fresh
}
