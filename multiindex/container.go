package multiindex

import (
	"container/list"
	"sync/atomic"
)

// MultiIndex is an in-memory container that stores (key, payload) records
// behind one primary index and zero or more secondary indices, kept
// coherent under insert/erase/modify/replace by the active Policy. See
// spec.md for the full contract; this file holds construction, the
// read-only surface, and the lifecycle operations (clear/swap).
type MultiIndex[K comparable, P any] struct {
	policy Policy[K, P]

	primary       primaryStore[K, P]
	primaryUnique bool
	secondaries   []secondaryHandle[K, P]
	secByTag      map[string]int

	tombstones  bool
	atomicCount bool
	liveCount   int64

	translation []*wrapper[K, P]
	freeSlots   *list.List // of int, LIFO reuse of translation-array holes

	specs []IndexSpec[K, P] // retained so Compact can rebuild an identical container
	opts  []Option[K, P]
}

// Option configures a MultiIndex at construction time, the functional-options
// idiom the teacher repo uses for its storage engine (pkg/storage/options.go).
type Option[K comparable, P any] func(*MultiIndex[K, P])

// WithTombstones enables lazy deletion: erase marks a record dead instead of
// removing it, and a matching emplace revives it. Required before Compact is
// meaningful.
func WithTombstones[K comparable, P any](enabled bool) Option[K, P] {
	return func(mi *MultiIndex[K, P]) { mi.tombstones = enabled }
}

// WithAtomicLiveCount selects an atomically-maintained live counter instead
// of a plain int64, the one concession the spec makes to concurrent
// find/contains/emplace readers (see spec.md §5 and §9): every increment,
// decrement, and read of the live counter then goes through sync/atomic
// instead of a bare ++/--/read, so a reader calling Size() concurrently with
// a writer's Emplace/EraseHandle never observes a torn value.
func WithAtomicLiveCount[K comparable, P any](enabled bool) Option[K, P] {
	return func(mi *MultiIndex[K, P]) { mi.atomicCount = enabled }
}

// New builds a MultiIndex over exactly one primary spec and any number of
// secondary specs. It panics on a malformed spec set — these are programmer
// errors, not run-time conditions a caller should need to check for, the
// same way the original rejects a bad instantiation at compile time.
func New[K comparable, P any](policy Policy[K, P], specs []IndexSpec[K, P], opts ...Option[K, P]) *MultiIndex[K, P] {
	if policy == nil {
		panic("multiindex: nil policy")
	}
	var primarySpec IndexSpec[K, P]
	havePrimary := false
	mi := &MultiIndex[K, P]{
		policy:    policy,
		secByTag:  make(map[string]int),
		freeSlots: list.New(),
		specs:     append([]IndexSpec[K, P](nil), specs...),
		opts:      append([]Option[K, P](nil), opts...),
	}
	for _, spec := range specs {
		if spec.Primary {
			if havePrimary {
				panic("multiindex: more than one primary spec")
			}
			havePrimary = true
			primarySpec = spec
			continue
		}
		mi.secByTag[spec.Tag] = len(mi.secondaries)
		mi.secondaries = append(mi.secondaries, newSecondaryIndex[K, P](spec))
	}
	if !havePrimary {
		panic("multiindex: no primary spec")
	}
	if policy.RequiresUniquePrimary() && !primarySpec.Unique {
		panic("multiindex: policy requires a unique primary")
	}
	mi.primaryUnique = primarySpec.Unique

	for _, o := range opts {
		o(mi)
	}

	if policy.Invalidates() {
		mi.primary = newRelocatingSlicePrimary[K, P](primarySpec.Unique)
	} else {
		mi.primary = newStableMapPrimary[K, P](primarySpec.Unique)
	}
	return mi
}

// --- translation array helpers (TranslationArrayPolicy only) -----------

func (mi *MultiIndex[K, P]) allocSlot(w *wrapper[K, P]) int {
	if front := mi.freeSlots.Front(); front != nil {
		mi.freeSlots.Remove(front)
		slot := front.Value.(int)
		mi.translation[slot] = w
		return slot
	}
	mi.translation = append(mi.translation, w)
	return len(mi.translation) - 1
}

func (mi *MultiIndex[K, P]) freeSlot(slot int) {
	if slot < 0 || slot >= len(mi.translation) {
		return
	}
	mi.translation[slot] = nil
	mi.freeSlots.PushFront(slot)
}

// --- liveness bookkeeping -------------------------------------------------

func (mi *MultiIndex[K, P]) incLive() {
	if mi.atomicCount {
		atomic.AddInt64(&mi.liveCount, 1)
		return
	}
	mi.liveCount++
}

func (mi *MultiIndex[K, P]) decLive() {
	if mi.atomicCount {
		atomic.AddInt64(&mi.liveCount, -1)
		return
	}
	mi.liveCount--
}

func (mi *MultiIndex[K, P]) loadLive() int64 {
	if mi.atomicCount {
		return atomic.LoadInt64(&mi.liveCount)
	}
	return mi.liveCount
}

func (mi *MultiIndex[K, P]) resetLive() {
	if mi.atomicCount {
		atomic.StoreInt64(&mi.liveCount, 0)
		return
	}
	mi.liveCount = 0
}

// Size returns the number of live records: the primary's own size when
// tombstones are disabled, the live counter otherwise.
func (mi *MultiIndex[K, P]) Size() int {
	if mi.tombstones {
		return int(mi.loadLive())
	}
	return mi.primary.len()
}

// Empty reports whether Size() == 0.
func (mi *MultiIndex[K, P]) Empty() bool { return mi.Size() == 0 }

// PhysicalSize returns the primary's raw element count, including dead
// tombstoned records.
func (mi *MultiIndex[K, P]) PhysicalSize() int { return mi.primary.len() }

// Find returns the first live record for key, or a nil handle if none
// exists. Under tombstones a dead entry for a unique primary means the key
// is absent; for a multi-key primary the equal-range is scanned forward for
// the first live entry (spec.md §4.4.3).
func (mi *MultiIndex[K, P]) Find(key K) (Handle[K, P], bool) {
	if mi.primaryUnique {
		h, ok := mi.primary.find(key)
		if !ok || (mi.tombstones && h.Dead()) {
			return nilHandle[K, P](), false
		}
		return h, true
	}
	for _, h := range mi.primary.equalRange(key) {
		if !mi.tombstones || !h.Dead() {
			return h, true
		}
	}
	return nilHandle[K, P](), false
}

// Contains reports whether a live record exists for key.
func (mi *MultiIndex[K, P]) Contains(key K) bool {
	_, ok := mi.Find(key)
	return ok
}

// Count returns the number of live records for key.
func (mi *MultiIndex[K, P]) Count(key K) int {
	n := 0
	for _, h := range mi.primary.equalRange(key) {
		if !mi.tombstones || !h.Dead() {
			n++
		}
	}
	return n
}

// EqualRange returns every live record for key, skipping dead entries across
// the whole range (spec.md §9 Open Questions resolves this explicitly).
func (mi *MultiIndex[K, P]) EqualRange(key K) []Handle[K, P] {
	all := mi.primary.equalRange(key)
	if !mi.tombstones {
		return all
	}
	live := make([]Handle[K, P], 0, len(all))
	for _, h := range all {
		if !h.Dead() {
			live = append(live, h)
		}
	}
	return live
}

// Clear removes every record and resets every secondary and the policy's own
// state (e.g. the translation array).
func (mi *MultiIndex[K, P]) Clear() {
	mi.primary.clear()
	for _, s := range mi.secondaries {
		s.clear()
	}
	mi.resetLive()
	mi.policy.reset(mi)
}

// Swap exchanges the entire contents (primary, secondaries, policy state,
// live count) of mi and other, then fixes up every record's owner
// back-pointer to point at its new container.
func (mi *MultiIndex[K, P]) Swap(other *MultiIndex[K, P]) {
	mi.primary, other.primary = other.primary, mi.primary
	mi.secondaries, other.secondaries = other.secondaries, mi.secondaries
	mi.secByTag, other.secByTag = other.secByTag, mi.secByTag
	mi.liveCount, other.liveCount = other.liveCount, mi.liveCount
	mi.translation, other.translation = other.translation, mi.translation
	mi.freeSlots, other.freeSlots = other.freeSlots, mi.freeSlots

	mi.primary.forEach(func(h Handle[K, P]) bool { h.p.owner = mi; return true })
	other.primary.forEach(func(h Handle[K, P]) bool { h.p.owner = other; return true })
}

// Reserve pre-sizes the primary and every secondary for n additional
// entries, the analogue of the original's reserve_all forwarding reserve to
// every index attached to the container (MultiIndex.h's reserve_all), not
// just the primary's own storage.
func (mi *MultiIndex[K, P]) Reserve(n int) {
	mi.primary.reserve(mi, n)
	for _, s := range mi.secondaries {
		s.reserve(n)
	}
}

// Rehash forces the primary's backing map to reorganize around a bucket
// count sized for n entries, mirroring the original's rehash(n) forwarding
// to m_storage alone (unlike reserve, it is never forwarded to secondaries).
func (mi *MultiIndex[K, P]) Rehash(n int) {
	mi.primary.rehash(mi, n)
}

// LoadFactor reports how full the primary's backing map is relative to the
// capacity established by the most recent Reserve/Rehash call, the closest
// Go analogue of the original's load_factor() — Go's runtime gives no way to
// inspect a map's actual bucket count, so this tracks capacity the container
// itself requested rather than the map implementation's internal state.
func (mi *MultiIndex[K, P]) LoadFactor() float64 {
	return mi.primary.loadFactor()
}

func (mi *MultiIndex[K, P]) secondaryByTag(tag string) (secondaryHandle[K, P], bool) {
	idx, ok := mi.secByTag[tag]
	if !ok {
		return nil, false
	}
	return mi.secondaries[idx], true
}
