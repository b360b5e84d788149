package multiindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScenario2_TombstoneReviveAndCompact mirrors spec.md §8 scenario 2:
// erasing under tombstones leaves the record physically present but
// invisible to Size/Find, a later emplace of the same key revives it, and
// Compact() reclaims every tombstone still dead at the time it runs.
func TestScenario2_TombstoneReviveAndCompact(t *testing.T) {
	mi := New[int, item](
		NoInvPolicy[int, item]{},
		[]IndexSpec[int, item]{
			PrimarySpec[int, item](true),
			categorySpec(),
		},
		WithTombstones[int, item](true),
	)

	for i := 0; i < 5; i++ {
		_, ok := mi.Emplace(i, item{Name: "rec", Category: "C", Seq: i})
		require.True(t, ok)
	}
	assert.Equal(t, 5, mi.Size())
	assert.Equal(t, 5, mi.PhysicalSize())

	require.Equal(t, 1, mi.EraseKey(2))
	assert.Equal(t, 4, mi.Size())
	assert.Equal(t, 5, mi.PhysicalSize(), "tombstoned record stays physically present")
	assert.False(t, mi.Contains(2))
	cat, _ := mi.ViewByTag("category")
	assert.Equal(t, 4, cat.Count("C"))

	h, ok := mi.Emplace(2, item{Name: "revived", Category: "C", Seq: 99})
	require.True(t, ok)
	assert.Equal(t, "revived", h.Payload().Name)
	assert.Equal(t, 5, mi.Size())
	assert.Equal(t, 5, cat.Count("C"))

	require.Equal(t, 1, mi.EraseKey(3))
	assert.Equal(t, 4, mi.Size())
	assert.Equal(t, 5, mi.PhysicalSize())

	mi.Compact()
	assert.Equal(t, 4, mi.Size())
	assert.Equal(t, 4, mi.PhysicalSize())
	assert.False(t, mi.Contains(3))
	cat, _ = mi.ViewByTag("category")
	assert.Equal(t, 4, cat.Count("C"))
}

func TestCompact_NoTombstonesIsHarmlessCopy(t *testing.T) {
	mi := newCatalog()
	_, ok := mi.Emplace(1, item{Name: "A", Category: "X"})
	require.True(t, ok)

	mi.Compact()
	assert.Equal(t, 1, mi.Size())
	assert.True(t, mi.Contains(1))
}
