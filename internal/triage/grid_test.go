package triage_test

import (
	"path/filepath"
	"testing"

	"culld/internal/triage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadSet(t *testing.T, names ...string) *triage.ImageSet {
	t.Helper()
	set, err := triage.Load(writeImages(t, names...), nil)
	require.NoError(t, err)
	return set
}

func slotNames(g *triage.GridCursor) [triage.SlotCount]string {
	var out [triage.SlotCount]string
	for i, e := range g.Slots() {
		if e != nil {
			out[i] = filepath.Base(e.Path)
		}
	}
	return out
}

func TestInitializeFillsFourDistinctSlots(t *testing.T) {
	set := loadSet(t, "a.jpg", "b.jpg", "c.jpg", "d.jpg", "e.jpg")
	g := triage.NewGridCursor(set)

	assert.Equal(t, 4, g.OccupiedCount())
	seen := make(map[string]bool)
	for i := 0; i < triage.SlotCount; i++ {
		e, ok := g.Slot(i)
		require.True(t, ok)
		assert.False(t, seen[e.Path], "slot entries must be distinct")
		seen[e.Path] = true
	}
	assert.Equal(t, 1, set.RemainingCount())
}

func TestInitializeShortFolder(t *testing.T) {
	set := loadSet(t, "a.jpg", "b.jpg")
	g := triage.NewGridCursor(set)

	assert.Equal(t, [4]string{"a.jpg", "b.jpg", "", ""}, slotNames(g))
	assert.Zero(t, set.RemainingCount())
}

func TestInitializeEmptyFolder(t *testing.T) {
	set := loadSet(t)
	g := triage.NewGridCursor(set)
	assert.Zero(t, g.OccupiedCount())

	_, _, ok := g.ClearSlot(0)
	assert.False(t, ok)
}

func TestClearSlotBackfills(t *testing.T) {
	set := loadSet(t, "a.jpg", "b.jpg", "c.jpg", "d.jpg", "e.jpg")
	g := triage.NewGridCursor(set)

	cleared, backfilled, ok := g.ClearSlot(0)
	require.True(t, ok)
	assert.Equal(t, "a.jpg", filepath.Base(cleared.Path))
	require.NotNil(t, backfilled)
	assert.Equal(t, "e.jpg", filepath.Base(backfilled.Path))
	assert.Equal(t, [4]string{"e.jpg", "b.jpg", "c.jpg", "d.jpg"}, slotNames(g))
}

func TestClearSlotExhaustedStaysEmpty(t *testing.T) {
	set := loadSet(t, "a.jpg", "b.jpg")
	g := triage.NewGridCursor(set)

	cleared, backfilled, ok := g.ClearSlot(1)
	require.True(t, ok)
	assert.Equal(t, "b.jpg", filepath.Base(cleared.Path))
	assert.Nil(t, backfilled)
	assert.Equal(t, [4]string{"a.jpg", "", "", ""}, slotNames(g))
}

func TestRestoreSlotDisplacesBackfill(t *testing.T) {
	set := loadSet(t, "a.jpg", "b.jpg", "c.jpg", "d.jpg", "e.jpg")
	g := triage.NewGridCursor(set)

	cleared, backfilled, _ := g.ClearSlot(0) // a out, e in
	g.RestoreSlot(cleared, 0, backfilled)

	assert.Equal(t, [4]string{"a.jpg", "b.jpg", "c.jpg", "d.jpg"}, slotNames(g))
	// e is back in the pool, served next
	next := set.Next(1)
	require.Len(t, next, 1)
	assert.Equal(t, "e.jpg", filepath.Base(next[0].Path))
}

func TestRestoreSlotPrefersOriginalThenFirstEmpty(t *testing.T) {
	set := loadSet(t, "a.jpg", "b.jpg")
	g := triage.NewGridCursor(set)

	cleared, backfilled, _ := g.ClearSlot(0) // no backfill available
	require.Nil(t, backfilled)

	g.RestoreSlot(cleared, 0, nil)
	assert.Equal(t, [4]string{"a.jpg", "b.jpg", "", ""}, slotNames(g))

	// Original slot occupied by an unrelated entry: first empty slot wins
	clearedB, _, _ := g.ClearSlot(1)
	g.RestoreSlot(clearedB, 0, nil)
	assert.Equal(t, [4]string{"a.jpg", "b.jpg", "", ""}, slotNames(g))
}

func TestRestoreSlotRequeuesWhenGridFull(t *testing.T) {
	set := loadSet(t, "a.jpg", "b.jpg", "c.jpg", "d.jpg")
	g := triage.NewGridCursor(set)

	// A stray restore with a full grid and no matching backfill
	g.RestoreSlot(triage.ImageEntry{Path: "/x/late.jpg"}, 2, nil)
	assert.Equal(t, 4, g.OccupiedCount())
	assert.Equal(t, 1, set.RemainingCount())

	next := set.Next(1)
	require.Len(t, next, 1)
	assert.Equal(t, "late.jpg", filepath.Base(next[0].Path))
}

func TestFillAfterDiscovery(t *testing.T) {
	set := loadSet(t, "a.jpg")
	g := triage.NewGridCursor(set)
	assert.Equal(t, 1, g.OccupiedCount())

	_, ok := set.Add(filepath.Join(set.Folder(), "b.jpg"))
	require.True(t, ok)

	filled := g.Fill()
	assert.Equal(t, []int{1}, filled)
	assert.Equal(t, [4]string{"a.jpg", "b.jpg", "", ""}, slotNames(g))
}
