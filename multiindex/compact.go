package multiindex

// Compact physically removes every dead record and re-densifies the
// translation array, in O(N): every live record is re-emplaced into a fresh
// container built from the same specs and policy, and that fresh container
// is then swapped in for mi's contents. Required whenever tombstones or a
// translation array are in use; harmless (a no-op beyond a copy) otherwise.
func (mi *MultiIndex[K, P]) Compact() {
	fresh := New[K, P](mi.policy, mi.specs, mi.opts...)
	mi.primary.forEach(func(h Handle[K, P]) bool {
		if !mi.tombstones || !h.Dead() {
			fresh.Emplace(h.Key(), h.Payload())
		}
		return true
	})
	mi.Swap(fresh)
}
