package multiindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTombstonedCatalog() *MultiIndex[int, item] {
	return New[int, item](
		NoInvPolicy[int, item]{},
		[]IndexSpec[int, item]{
			PrimarySpec[int, item](true),
			categorySpec(),
		},
		WithTombstones[int, item](true),
	)
}

// TestEditProxy_SeedsFromDeadRecord matches operator[]'s "live or dead"
// lookup in the original: editing a tombstoned key must start from its last
// payload, not a zero value, so a caller touching one field doesn't
// clobber the rest.
func TestEditProxy_SeedsFromDeadRecord(t *testing.T) {
	mi := newTombstonedCatalog()

	_, ok := mi.Emplace(1, item{Name: "widget", Category: "hardware", Price: 9.99, Seq: 1})
	require.True(t, ok)
	require.Equal(t, 1, mi.EraseKey(1))
	require.False(t, mi.Contains(1))

	p := mi.Edit(1)
	assert.Equal(t, "widget", p.Payload().Name)
	assert.Equal(t, "hardware", p.Payload().Category)
	assert.Equal(t, 9.99, p.Payload().Price)

	p.Payload().Price = 12.99
	assert.True(t, p.Commit())

	h, ok := mi.Find(1)
	require.True(t, ok)
	assert.Equal(t, "widget", h.Payload().Name)
	assert.Equal(t, "hardware", h.Payload().Category)
	assert.Equal(t, 12.99, h.Payload().Price)
}

// TestEditProxy_CommitRevivesDeadRecord exercises Commit's existed branch
// directly: committing against a key that went dead between Edit and Commit
// must revive it via Replace rather than reporting failure.
func TestEditProxy_CommitRevivesDeadRecord(t *testing.T) {
	mi := newTombstonedCatalog()

	_, ok := mi.Emplace(1, item{Name: "widget", Category: "hardware", Price: 9.99, Seq: 1})
	require.True(t, ok)

	p := mi.Edit(1)
	p.Payload().Name = "widget-v2"

	require.Equal(t, 1, mi.EraseKey(1))
	require.False(t, mi.Contains(1))

	assert.True(t, p.Commit())
	h, ok := mi.Find(1)
	require.True(t, ok)
	assert.Equal(t, "widget-v2", h.Payload().Name)
}

// TestEditProxy_NewKeyStartsFromZeroValue still starts an unknown key's
// buffer from P's zero value, live-or-dead lookup or not.
func TestEditProxy_NewKeyStartsFromZeroValue(t *testing.T) {
	mi := newTombstonedCatalog()

	p := mi.Edit(42)
	assert.Equal(t, "", p.Payload().Name)
	p.Payload().Name = "brand-new"
	p.Payload().Category = "misc"
	assert.True(t, p.Commit())

	h, ok := mi.Find(42)
	require.True(t, ok)
	assert.Equal(t, "brand-new", h.Payload().Name)
}
