package triage

import "culld/internal/errors"

// ActionKind tags the variants of an undoable action.
type ActionKind int

const (
	// ActionDelete is a single image moved to the trash
	ActionDelete ActionKind = iota
	// ActionKeep is a single image marked kept and advanced past
	ActionKeep
	// ActionBulk groups the sub-actions of an act-on-all hotkey
	ActionBulk
)

// Action is one undoable unit. Delete and Keep actions record the slot
// they cleared and the entry that backfilled it; Bulk actions carry
// their successful sub-actions in slot order.
type Action struct {
	Kind       ActionKind
	Entry      ImageEntry
	Token      string
	SlotIndex  int
	Backfilled *ImageEntry
	Sub        []Action
}

// UndoLog is a bounded stack of reversible actions. Pushing beyond
// capacity silently evicts the oldest entry.
type UndoLog struct {
	actions  []Action
	capacity int
}

// NewUndoLog creates a log holding at most capacity actions.
func NewUndoLog(capacity int) *UndoLog {
	if capacity < 1 {
		capacity = 1
	}
	return &UndoLog{capacity: capacity}
}

// Push records an action, evicting the oldest if at capacity.
func (l *UndoLog) Push(a Action) {
	if len(l.actions) == l.capacity {
		l.actions = l.actions[1:]
	}
	l.actions = append(l.actions, a)
}

// Pop removes and returns the most recent action. Returns ErrEmptyUndo
// when there is nothing to undo; callers no-op on it.
func (l *UndoLog) Pop() (Action, error) {
	if len(l.actions) == 0 {
		return Action{}, errors.ErrEmptyUndo
	}
	a := l.actions[len(l.actions)-1]
	l.actions = l.actions[:len(l.actions)-1]
	return a, nil
}

// Depth returns the number of recorded actions.
func (l *UndoLog) Depth() int {
	return len(l.actions)
}
