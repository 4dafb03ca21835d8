package triage_test

import (
	"fmt"
	"testing"

	"culld/internal/errors"
	"culld/internal/triage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUndoLogPushPop(t *testing.T) {
	l := triage.NewUndoLog(5)
	assert.Zero(t, l.Depth())

	l.Push(triage.Action{Kind: triage.ActionKeep, Entry: triage.ImageEntry{Path: "a"}})
	l.Push(triage.Action{Kind: triage.ActionDelete, Entry: triage.ImageEntry{Path: "b"}})
	assert.Equal(t, 2, l.Depth())

	a, err := l.Pop()
	require.NoError(t, err)
	assert.Equal(t, "b", a.Entry.Path)

	a, err = l.Pop()
	require.NoError(t, err)
	assert.Equal(t, "a", a.Entry.Path)
	assert.Zero(t, l.Depth())
}

func TestUndoLogEmpty(t *testing.T) {
	l := triage.NewUndoLog(3)
	_, err := l.Pop()
	require.Error(t, err)
	assert.True(t, errors.IsUndoEmpty(err))
}

func TestUndoLogEvictsOldestAtCapacity(t *testing.T) {
	l := triage.NewUndoLog(3)
	for i := 0; i < 7; i++ {
		l.Push(triage.Action{Entry: triage.ImageEntry{Path: fmt.Sprintf("img-%d", i)}})
		assert.LessOrEqual(t, l.Depth(), 3)
	}
	assert.Equal(t, 3, l.Depth())

	// Only the newest three survive, newest first
	for _, want := range []string{"img-6", "img-5", "img-4"} {
		a, err := l.Pop()
		require.NoError(t, err)
		assert.Equal(t, want, a.Entry.Path)
	}
	_, err := l.Pop()
	assert.Error(t, err)
}

func TestUndoLogMinimumCapacity(t *testing.T) {
	l := triage.NewUndoLog(0)
	l.Push(triage.Action{Entry: triage.ImageEntry{Path: "only"}})
	l.Push(triage.Action{Entry: triage.ImageEntry{Path: "newer"}})
	assert.Equal(t, 1, l.Depth())

	a, err := l.Pop()
	require.NoError(t, err)
	assert.Equal(t, "newer", a.Entry.Path)
}
