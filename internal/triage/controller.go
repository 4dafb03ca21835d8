package triage

import (
	"culld/internal/errors"
	"culld/internal/log"
)

// TrashGateway is the reversible deletion capability the controller
// delegates to. Delete returns an opaque token that Restore consumes
// exactly once within the same process lifetime.
type TrashGateway interface {
	Delete(path string) (token string, err error)
	Restore(token string) (path string, err error)
}

// Viewer opens a path with the platform's default image viewer.
type Viewer interface {
	Open(path string) error
}

// Controller orchestrates the grid, the undo log, and the external
// gateways in response to input events. It is single-threaded: one
// event completes fully before the next is dispatched.
type Controller struct {
	set    *ImageSet
	grid   *GridCursor
	undo   *UndoLog
	stats  *SessionStats
	trash  TrashGateway
	viewer Viewer
	mode   Mode
}

// NewController wires a loaded image set to the trash and viewer
// gateways and fills the initial grid.
func NewController(set *ImageSet, trash TrashGateway, viewer Viewer, mode Mode, undoDepth int) *Controller {
	return &Controller{
		set:    set,
		grid:   NewGridCursor(set),
		undo:   NewUndoLog(undoDepth),
		stats:  NewSessionStats(),
		trash:  trash,
		viewer: viewer,
		mode:   mode,
	}
}

// Mode returns the current primary-action mode.
func (c *Controller) Mode() Mode {
	return c.mode
}

// ToggleMode flips between delete and keep. Not recorded on the undo
// log; toggling twice is its own undo.
func (c *Controller) ToggleMode() Mode {
	c.mode = c.mode.Toggled()
	return c.mode
}

// Slots returns the current grid contents.
func (c *Controller) Slots() [SlotCount]*ImageEntry {
	return c.grid.Slots()
}

// Slot returns the entry at a grid position, if occupied.
func (c *Controller) Slot(i int) (ImageEntry, bool) {
	return c.grid.Slot(i)
}

// Stats returns the refreshed session counters.
func (c *Controller) Stats() SessionStats {
	c.stats.Refresh(c.set.RemainingCount())
	return *c.stats
}

// Remaining returns how many images have not yet been displayed.
func (c *Controller) Remaining() int {
	return c.set.RemainingCount()
}

// Total returns how many images were enumerated this session.
func (c *Controller) Total() int {
	return c.set.TotalCount()
}

// UndoDepth returns how many actions can currently be undone.
func (c *Controller) UndoDepth() int {
	return c.undo.Depth()
}

// ActOnSlot applies the primary action to slot i: trash the image in
// delete mode, mark it kept in keep mode. An empty slot is a no-op.
// On a trash failure the slot is left untouched and the error returned.
func (c *Controller) ActOnSlot(i int) error {
	action, err := c.actOnSlot(i)
	if err != nil {
		return err
	}
	if action != nil {
		c.undo.Push(*action)
	}
	return nil
}

// actOnSlot performs the single-slot action without recording it, so
// ActOnAll can collect sub-actions into one bulk record.
func (c *Controller) actOnSlot(i int) (*Action, error) {
	entry, ok := c.grid.Slot(i)
	if !ok {
		return nil, nil
	}

	if c.mode == ModeDelete {
		token, err := c.trash.Delete(entry.Path)
		if err != nil {
			return nil, errors.Wrapf(err, "could not trash slot %d", i)
		}
		cleared, backfilled, _ := c.grid.ClearSlot(i)
		c.stats.DeletedCount++
		log.Infof("trashed %s", cleared.Path)
		return &Action{
			Kind:       ActionDelete,
			Entry:      cleared,
			Token:      token,
			SlotIndex:  i,
			Backfilled: backfilled,
		}, nil
	}

	cleared, backfilled, _ := c.grid.ClearSlot(i)
	c.stats.KeptCount++
	log.Debugf("kept %s", cleared.Path)
	return &Action{
		Kind:       ActionKeep,
		Entry:      cleared,
		SlotIndex:  i,
		Backfilled: backfilled,
	}, nil
}

// ActOnAll applies the primary action to every occupied slot in slot
// order, committing the successful sub-actions as one bulk undo unit.
// Slots whose trash call fails are left occupied; their errors are
// returned by slot index. Successful slots are never rolled back.
func (c *Controller) ActOnAll() map[int]error {
	var sub []Action
	failures := make(map[int]error)

	for i := 0; i < SlotCount; i++ {
		action, err := c.actOnSlot(i)
		if err != nil {
			failures[i] = err
			continue
		}
		if action != nil {
			sub = append(sub, *action)
		}
	}

	if len(sub) > 0 {
		c.undo.Push(Action{Kind: ActionBulk, Sub: sub})
	}
	if len(failures) == 0 {
		return nil
	}
	return failures
}

// OpenSlot asks the external viewer to open the image in slot i. A
// launch failure is non-fatal; the caller may surface it as a notice.
func (c *Controller) OpenSlot(i int) error {
	entry, ok := c.grid.Slot(i)
	if !ok {
		return nil
	}
	if err := c.viewer.Open(entry.Path); err != nil {
		log.Warnf("viewer failed for %s: %v", entry.Path, err)
		return errors.NewFileError("could not open viewer", entry.Path, errors.LaunchFailed, err)
	}
	return nil
}

// Undo reverses the most recent action. A bulk action is reversed as a
// whole, sub-actions in reverse order. An empty log is a no-op. If a
// restore fails, the not-yet-reversed remainder is pushed back so the
// user can retry, and the error is returned.
func (c *Controller) Undo() error {
	action, err := c.undo.Pop()
	if err != nil {
		if errors.IsUndoEmpty(err) {
			return nil
		}
		return err
	}

	switch action.Kind {
	case ActionBulk:
		return c.undoBulk(action)
	default:
		if err := c.undoSingle(action); err != nil {
			c.undo.Push(action)
			return err
		}
		return nil
	}
}

func (c *Controller) undoBulk(bulk Action) error {
	for i := len(bulk.Sub) - 1; i >= 0; i-- {
		if err := c.undoSingle(bulk.Sub[i]); err != nil {
			// Keep the unreversed remainder undoable
			remainder := Action{Kind: ActionBulk, Sub: bulk.Sub[:i+1]}
			c.undo.Push(remainder)
			return err
		}
	}
	return nil
}

func (c *Controller) undoSingle(a Action) error {
	switch a.Kind {
	case ActionDelete:
		path, err := c.trash.Restore(a.Token)
		if err != nil {
			return errors.Wrapf(err, "could not restore %s", a.Entry.Path)
		}
		if path != a.Entry.Path {
			log.Warnf("restored %s to unexpected path %s", a.Entry.Path, path)
		}
		c.grid.RestoreSlot(a.Entry, a.SlotIndex, a.Backfilled)
		c.stats.DeletedCount--
		log.Infof("restored %s", a.Entry.Path)
	case ActionKeep:
		c.grid.RestoreSlot(a.Entry, a.SlotIndex, a.Backfilled)
		c.stats.KeptCount--
		log.Debugf("unmarked keep for %s", a.Entry.Path)
	}
	return nil
}

// AddDiscovered admits a file that appeared in the folder mid-session
// and backfills any empty slots. Returns the slot indices that were
// filled as a result.
func (c *Controller) AddDiscovered(path string) []int {
	if _, ok := c.set.Add(path); !ok {
		return nil
	}
	return c.grid.Fill()
}
