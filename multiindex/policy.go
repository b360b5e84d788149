package multiindex

// Policy governs how secondary indices reference primary records and how
// coherence is restored when the primary relocates a record in memory. The
// four built-in policies (NoInv, UpdatePointer, TranslationArray, KeyLookup)
// trade relocation cost against lookup indirection; see spec.md §4.3.
//
// Go has no template-trait dispatch, so policies are an interface with four
// concrete implementations instead of four distinct monomorphized types.
// That costs one virtual call per callback versus the original's zero; the
// container never calls a policy method on a hot, allocation-free path more
// than once per mutation, so the indirection is not worth avoiding at the
// cost of generating four near-duplicate containers.
type Policy[K comparable, P any] interface {
	// Invalidates reports whether the primary may relocate existing records
	// in memory under insert/erase (true selects the slice-backed primary).
	Invalidates() bool
	// NeedsTranslation reports whether the policy maintains a translation
	// array indexed by a per-record slot.
	NeedsTranslation() bool

	// OnRelocate fires whenever a wrapped record moves in memory, after the
	// payload has already moved to its new address.
	OnRelocate(mi *MultiIndex[K, P], old, newW *wrapper[K, P])
	// OnEmplaceSuccess fires after a primary insert succeeds, before any
	// secondary is written. TranslationArray allocates a slot here.
	OnEmplaceSuccess(mi *MultiIndex[K, P], h Handle[K, P])
	// OnEmplaceFail undoes OnEmplaceSuccess when a later secondary insert
	// fails and the whole emplace is rolled back.
	OnEmplaceFail(mi *MultiIndex[K, P], h Handle[K, P])

	// SecondaryValue produces the value a secondary index stores for h.
	SecondaryValue(mi *MultiIndex[K, P], h Handle[K, P]) any
	// ToHandle is the inverse of SecondaryValue, used by handle-materializing
	// iterators and by lookups through a secondary.
	ToHandle(mi *MultiIndex[K, P], stored any) Handle[K, P]
	// MatchSecondary decides whether a stored secondary value refers to h;
	// used when removing h's specific entry from a secondary's bucket.
	MatchSecondary(mi *MultiIndex[K, P], stored any, h Handle[K, P]) bool

	// RequiresUniquePrimary reports a hard precondition some policies
	// impose on the primary (KeyLookup needs unique keys to resolve).
	RequiresUniquePrimary() bool

	// reset clears any policy-owned state (e.g. a translation array) when
	// the container is cleared. Swap does not call it; it exchanges that
	// state between the two containers instead.
	reset(mi *MultiIndex[K, P])
}
