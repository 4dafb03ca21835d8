// Package triage implements the interaction core of culld: enumerating a
// folder's images, paging them through a four-slot grid, recording
// reversible actions, and orchestrating trash/viewer calls.
package triage

import "fmt"

// ImageEntry is one enumerated image file. Immutable once enumerated;
// owned by the ImageSet it came from.
type ImageEntry struct {
	Path          string
	OriginalIndex int
}

// Mode determines what the primary hotkey action does.
type Mode int

const (
	// ModeDelete sends the slot's image to the trash
	ModeDelete Mode = iota
	// ModeKeep marks the slot's image as kept and advances past it
	ModeKeep
)

// String returns the mode name used in config files and the UI.
func (m Mode) String() string {
	switch m {
	case ModeDelete:
		return "delete"
	case ModeKeep:
		return "keep"
	}
	return "unknown"
}

// Toggled returns the opposite mode.
func (m Mode) Toggled() Mode {
	if m == ModeDelete {
		return ModeKeep
	}
	return ModeDelete
}

// ParseMode parses a mode name from configuration.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "delete":
		return ModeDelete, nil
	case "keep":
		return ModeKeep, nil
	}
	return ModeDelete, fmt.Errorf("unknown mode: %s", s)
}
