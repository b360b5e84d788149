package main

import (
	"github.com/google/uuid"

	"github.com/mvparakhin/multiindex/multiindex"
)

// catalogItem is the demo payload: a product record with one secondary
// grouping (category) and a price that is stored and returned but not indexed.
type catalogItem struct {
	Name     string  `msgpack:"name"`
	Category string  `msgpack:"category"`
	Price    float64 `msgpack:"price"`
}

// catalogRecord is the flat, key-carrying shape the JSON handlers return and
// a snapshot serializes — unlike catalogItem, it carries the ID, so each
// record can be matched back to its primary entry.
type catalogRecord struct {
	ID       string  `msgpack:"id"`
	Name     string  `msgpack:"name"`
	Category string  `msgpack:"category"`
	Price    float64 `msgpack:"price"`
}

// newCatalog builds the container the demo server runs on: UpdatePointer so
// that the slice-backed primary's growth on insert exercises relocation
// (with tombstones on, an erase only marks a record dead and moves nothing),
// one unique string primary keyed by a generated UUID, and one non-unique
// category secondary.
func newCatalog() *multiindex.MultiIndex[string, catalogItem] {
	return multiindex.New[string, catalogItem](
		multiindex.UpdatePointerPolicy[string, catalogItem]{},
		[]multiindex.IndexSpec[string, catalogItem]{
			multiindex.PrimarySpec[string, catalogItem](true),
			multiindex.SecondarySpec[string, catalogItem]("category", false,
				multiindex.FieldProjection[string, catalogItem](func(p catalogItem) any {
					return p.Category
				})),
		},
		multiindex.WithTombstones[string, catalogItem](true),
	)
}

// newItemID generates a fresh primary key for an inserted item.
func newItemID() string {
	return uuid.NewString()
}
