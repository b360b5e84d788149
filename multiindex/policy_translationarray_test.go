package multiindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTranslationArray_SlotsSurviveRelocationAndAreReused checks the two
// properties specific to TranslationArrayPolicy: a secondary's stored
// ordinal still resolves correctly after the primary relocates a record
// (scenario 4's invariant, via the O(1) single-slot-patch path instead of
// UpdatePointer's secondary walk), and a freed slot gets handed back out on
// the next emplace instead of growing the array forever.
func TestTranslationArray_SlotsSurviveRelocationAndAreReused(t *testing.T) {
	mi := New[int, item](
		TranslationArrayPolicy[int, item]{},
		[]IndexSpec[int, item]{
			PrimarySpec[int, item](true),
			categorySpec(),
		},
	)

	var firstSlot int
	for i := 0; i < 5; i++ {
		h, ok := mi.Emplace(i, item{Name: "rec", Category: "C", Seq: i})
		require.True(t, ok)
		if i == 0 {
			firstSlot = h.p.slot
		}
	}

	// Erasing record 0 swap-removes the slice's last element (record 4) into
	// its slot, relocating record 4's wrapper and forcing the policy to
	// patch the translation array entry it is reachable through.
	require.Equal(t, 1, mi.EraseKey(0))
	assert.Equal(t, 4, mi.Size())

	cat, ok := mi.ViewByTag("category")
	require.True(t, ok)
	assert.Equal(t, 4, cat.Count("C"))

	seen := make(map[int]bool)
	it := cat.Begin()
	for {
		h, more := it.Next()
		if !more {
			break
		}
		direct, found := mi.Find(h.Key())
		require.True(t, found)
		assert.True(t, h.Equal(direct), "relocated record %d resolved through secondary disagrees with primary", h.Key())
		seen[h.Key()] = true
	}
	assert.Equal(t, map[int]bool{1: true, 2: true, 3: true, 4: true}, seen)

	// The slot record 0 used to occupy must have been freed and handed back
	// out to the next emplace (LIFO reuse via the free list).
	h5, ok := mi.Emplace(5, item{Name: "rec", Category: "C", Seq: 5})
	require.True(t, ok)
	assert.Equal(t, firstSlot, h5.p.slot)
}
