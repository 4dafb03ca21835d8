package triage

// SlotCount is the number of grid positions: a 2x2 grid, indexed
// left-to-right, top-to-bottom.
const SlotCount = 4

// GridCursor maintains the four visible slots, backfilling from the
// ImageSet as soon as a slot is cleared. Slots hold references to
// entries owned by the set; nil means empty.
type GridCursor struct {
	slots [SlotCount]*ImageEntry
	set   *ImageSet
}

// NewGridCursor fills all four slots from the set. Slots beyond the
// available images stay empty.
func NewGridCursor(set *ImageSet) *GridCursor {
	g := &GridCursor{set: set}
	g.Fill()
	return g
}

// Fill backfills every empty slot in slot order and returns the indices
// that were filled.
func (g *GridCursor) Fill() []int {
	var filled []int
	for i := range g.slots {
		if g.slots[i] != nil {
			continue
		}
		next := g.set.Next(1)
		if len(next) == 0 {
			break
		}
		e := next[0]
		g.slots[i] = &e
		filled = append(filled, i)
	}
	return filled
}

// Slot returns the entry displayed at index i, or false if empty.
func (g *GridCursor) Slot(i int) (ImageEntry, bool) {
	if i < 0 || i >= SlotCount || g.slots[i] == nil {
		return ImageEntry{}, false
	}
	return *g.slots[i], true
}

// Slots returns a snapshot of all four slots; nil means empty.
func (g *GridCursor) Slots() [SlotCount]*ImageEntry {
	var out [SlotCount]*ImageEntry
	for i, e := range g.slots {
		if e != nil {
			copy := *e
			out[i] = &copy
		}
	}
	return out
}

// OccupiedCount returns how many slots currently display an entry.
func (g *GridCursor) OccupiedCount() int {
	n := 0
	for _, e := range g.slots {
		if e != nil {
			n++
		}
	}
	return n
}

// ClearSlot empties slot i and immediately backfills it from the set.
// It returns the cleared entry and the backfill (nil when the set is
// exhausted). ok is false if the slot was already empty.
func (g *GridCursor) ClearSlot(i int) (cleared ImageEntry, backfilled *ImageEntry, ok bool) {
	if i < 0 || i >= SlotCount || g.slots[i] == nil {
		return ImageEntry{}, nil, false
	}
	cleared = *g.slots[i]
	g.slots[i] = nil

	if next := g.set.Next(1); len(next) > 0 {
		e := next[0]
		g.slots[i] = &e
		backfilled = &e
	}
	return cleared, backfilled, true
}

// RestoreSlot puts an undone entry back on the grid. If its original
// slot still shows the entry that was backfilled when it was cleared,
// that backfill is displaced to the front of the remaining pool and the
// entry takes its original slot. Otherwise the entry goes to its
// original slot if empty, else the first empty slot, else back into the
// remaining pool to be served on a later backfill.
func (g *GridCursor) RestoreSlot(e ImageEntry, slotIndex int, backfilled *ImageEntry) {
	if slotIndex >= 0 && slotIndex < SlotCount {
		occupant := g.slots[slotIndex]
		if occupant != nil && backfilled != nil && occupant.Path == backfilled.Path {
			g.set.Requeue(*occupant)
			entry := e
			g.slots[slotIndex] = &entry
			return
		}
		if occupant == nil {
			entry := e
			g.slots[slotIndex] = &entry
			return
		}
	}
	for i := range g.slots {
		if g.slots[i] == nil {
			entry := e
			g.slots[i] = &entry
			return
		}
	}
	g.set.Requeue(e)
}
