package multiindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// keyOnlyPayload is the fixture SPEC_FULL.md promises for KeyLookup: a
// payload that carries no denormalized copy of the key, so a passing test
// proves the secondary really does resolve back through the primary rather
// than through a stashed key field on the payload itself.
type keyOnlyPayload struct {
	Category string
}

func newKeyLookupCatalog() *MultiIndex[int, keyOnlyPayload] {
	return New[int, keyOnlyPayload](
		KeyLookupPolicy[int, keyOnlyPayload]{},
		[]IndexSpec[int, keyOnlyPayload]{
			PrimarySpec[int, keyOnlyPayload](true),
			SecondarySpec[int, keyOnlyPayload]("category", false, FieldProjection[int, keyOnlyPayload](func(p keyOnlyPayload) any {
				return p.Category
			})),
		},
	)
}

func TestKeyLookup_SecondaryResolvesThroughPrimary(t *testing.T) {
	mi := newKeyLookupCatalog()
	_, ok := mi.Emplace(1, keyOnlyPayload{Category: "A"})
	require.True(t, ok)
	_, ok = mi.Emplace(2, keyOnlyPayload{Category: "A"})
	require.True(t, ok)

	cat, ok := mi.ViewByTag("category")
	require.True(t, ok)
	assert.Equal(t, 2, cat.Count("A"))

	h, found := cat.Find("A")
	require.True(t, found)
	assert.Contains(t, []int{1, 2}, h.Key())

	require.Equal(t, 1, mi.EraseKey(1))
	assert.Equal(t, 1, cat.Count("A"))
	remaining, found := cat.Find("A")
	require.True(t, found)
	assert.Equal(t, 2, remaining.Key())
}

func TestKeyLookup_RequiresUniquePrimary(t *testing.T) {
	assert.Panics(t, func() {
		New[int, keyOnlyPayload](
			KeyLookupPolicy[int, keyOnlyPayload]{},
			[]IndexSpec[int, keyOnlyPayload]{
				PrimarySpec[int, keyOnlyPayload](false),
			},
		)
	})
}
