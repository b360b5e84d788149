package multiindex

import "sync"

// secondaryHandle is the type-erased-by-fixed-K/P surface the container
// drives every secondary index through. The concrete type is secondaryIndex;
// this indirection exists only so the container can hold a
// []secondaryHandle[K,P] of heterogeneous secondary specs in one slice.
type secondaryHandle[K comparable, P any] interface {
	tag() string
	unique() bool
	size() int
	addEntry(mi *MultiIndex[K, P], h Handle[K, P]) bool
	removeExact(mi *MultiIndex[K, P], h Handle[K, P])
	rewriteHandle(mi *MultiIndex[K, P], old, newH Handle[K, P])
	bucket(subKey any) []any
	clear()
	reserve(n int)
}

// secondaryIndex stores, per sub-key, a bucket of opaque values (Handle,
// translation ordinal, or a copy of the primary key depending on the active
// policy) — the Go analogue of a std::unordered_multimap keyed by projection.
// mu guards buckets/n the same way stableMapPrimary's mutex guards its own
// map, so a secondary is as safe under the conditional concurrent subset
// (spec.md §5: "every index's backing map is itself a concurrent,
// node-stable map") as the primary it's attached to.
type secondaryIndex[K comparable, P any] struct {
	mu      sync.RWMutex
	spec    IndexSpec[K, P]
	buckets map[any][]any
	n       int
}

func newSecondaryIndex[K comparable, P any](spec IndexSpec[K, P]) *secondaryIndex[K, P] {
	return &secondaryIndex[K, P]{spec: spec, buckets: make(map[any][]any)}
}

func (s *secondaryIndex[K, P]) tag() string  { return s.spec.Tag }
func (s *secondaryIndex[K, P]) unique() bool { return s.spec.Unique }

func (s *secondaryIndex[K, P]) size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.n
}

func (s *secondaryIndex[K, P]) projectionOf(h Handle[K, P]) any {
	return s.spec.Projection(h.Key(), h.Payload())
}

// addEntry installs h's entry. It fails (without mutating state) when the
// index is unique and already has a live entry for this sub-key.
func (s *secondaryIndex[K, P]) addEntry(mi *MultiIndex[K, P], h Handle[K, P]) bool {
	pk := s.projectionOf(h)
	v := mi.policy.SecondaryValue(mi, h)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.spec.Unique && len(s.buckets[pk]) > 0 {
		return false
	}
	s.buckets[pk] = append(s.buckets[pk], v)
	s.n++
	return true
}

// removeExact deletes the one entry in h's current bucket that resolves to
// h, per the policy's MatchSecondary. No-op, never throws, if none is found
// — callers in dropSecondaries rely on that.
func (s *secondaryIndex[K, P]) removeExact(mi *MultiIndex[K, P], h Handle[K, P]) {
	pk := s.projectionOf(h)
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket := s.buckets[pk]
	for i, v := range bucket {
		if mi.policy.MatchSecondary(mi, v, h) {
			bucket = append(bucket[:i], bucket[i+1:]...)
			s.n--
			break
		}
	}
	if len(bucket) == 0 {
		delete(s.buckets, pk)
	} else {
		s.buckets[pk] = bucket
	}
}

// rewriteHandle is UpdatePointer's on_relocate callback for one secondary:
// recompute the projection under the record's post-move payload, then
// overwrite the one stored value equal to old with new.
func (s *secondaryIndex[K, P]) rewriteHandle(mi *MultiIndex[K, P], old, newH Handle[K, P]) {
	pk := s.spec.Projection(newH.Key(), newH.Payload())
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket := s.buckets[pk]
	for i, v := range bucket {
		if sh, ok := v.(Handle[K, P]); ok && sh.Equal(old) {
			bucket[i] = newH
			return
		}
	}
}

func (s *secondaryIndex[K, P]) bucket(subKey any) []any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src := s.buckets[subKey]
	if len(src) == 0 {
		return nil
	}
	out := make([]any, len(src))
	copy(out, src)
	return out
}

func (s *secondaryIndex[K, P]) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buckets = make(map[any][]any)
	s.n = 0
}

// reserve grows the bucket map by n entries, mirroring the original's
// reserve_all forwarding reserve to every secondary index alongside the
// primary (MultiIndex.h's reserve_all), not just the primary's own storage.
func (s *secondaryIndex[K, P]) reserve(n int) {
	if n <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	grown := make(map[any][]any, len(s.buckets)+n)
	for k, v := range s.buckets {
		grown[k] = v
	}
	s.buckets = grown
}
