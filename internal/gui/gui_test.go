package gui

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"culld/internal/config"
	"culld/internal/thumbs"
	"culld/internal/triage"

	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTrash struct{ deleted []string }

func (s *stubTrash) Delete(path string) (string, error) {
	s.deleted = append(s.deleted, path)
	return path, nil
}

func (s *stubTrash) Restore(token string) (string, error) { return token, nil }

type stubViewer struct{ opened []string }

func (s *stubViewer) Open(path string) error {
	s.opened = append(s.opened, path)
	return nil
}

func triageFolder(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("x"), 0644))
	}
	return dir
}

// barebones App for logic tests, no Fyne app or window behind it
func testApp(t *testing.T, names ...string) (*App, *stubTrash) {
	t.Helper()
	cfg := config.NewTestConfig()
	a := &App{
		cfg:        cfg,
		thumbCache: thumbs.NewCache(64, 1),
		statsLabel: widget.NewLabel(""),
		modeLabel:  widget.NewLabel(""),
	}
	a.buildKeymap()
	for i := range a.cells {
		a.cells[i] = a.newSlotCell(i)
	}

	tr := &stubTrash{}
	if len(names) > 0 {
		set, err := triage.Load(triageFolder(t, names...), nil)
		require.NoError(t, err)
		a.controller = triage.NewController(set, tr, &stubViewer{}, triage.ModeDelete, cfg.Session.MaxUndoDepth)
	}
	t.Cleanup(a.thumbCache.Close)
	return a, tr
}

func TestKeymapFollowsConfig(t *testing.T) {
	cfg := config.NewTestConfig()
	cfg.Hotkeys[config.ActionSlot0] = "a"
	a := &App{cfg: cfg}
	a.buildKeymap()

	assert.Equal(t, config.ActionSlot0, a.keymap['a'])
	assert.Equal(t, config.ActionSlot1, a.keymap['i'])
	assert.Equal(t, config.ActionUndo, a.keymap['z'])
	_, bound := a.keymap['u']
	assert.False(t, bound, "default slot0 key rebound away")
}

func TestSlotIndexMapping(t *testing.T) {
	i, ok := slotIndex(config.ActionSlot2)
	assert.True(t, ok)
	assert.Equal(t, 2, i)

	_, ok = slotIndex(config.ActionUndo)
	assert.False(t, ok)
}

func TestStatsLineFormat(t *testing.T) {
	a, _ := testApp(t, "a.jpg", "b.jpg", "c.jpg")

	require.NoError(t, a.controller.ActOnSlot(0))
	a.refreshStats()

	assert.Equal(t,
		"Total 3 | Left 0 | Deleted 1 | Kept 0 | Done 33.3% | Deleted 100.0%",
		a.statsLabel.Text)
}

func TestStaleThumbnailResultDropped(t *testing.T) {
	cell := &slotCell{
		picture: canvas.NewImageFromImage(nil),
		name:    widget.NewLabel(""),
	}

	cell.show("/pics/current.jpg")
	stale := image.NewRGBA(image.Rect(0, 0, 1, 1))
	cell.setImage("/pics/previous.jpg", stale)
	assert.Nil(t, cell.picture.Image, "result for a replaced file must be ignored")

	fresh := image.NewRGBA(image.Rect(0, 0, 2, 2))
	cell.setImage("/pics/current.jpg", fresh)
	assert.Equal(t, fresh, cell.picture.Image)
}

func TestArrivalsSerializedAgainstActions(t *testing.T) {
	a, tr := testApp(t, "a.jpg", "b.jpg", "c.jpg")

	const arrivals = 200
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < arrivals; i++ {
			a.handleArrival(fmt.Sprintf("/pics/new-%03d.jpg", i))
		}
	}()

	for i := 0; i < 150; i++ {
		a.actOnSlot(i % 4)
	}
	wg.Wait()

	// Drain whatever is left on the grid and in the pool
	for {
		acted := false
		for i := 0; i < 4; i++ {
			if _, occupied := a.controller.Slot(i); occupied {
				a.actOnSlot(i)
				acted = true
			}
		}
		if !acted {
			break
		}
	}

	stats := a.controller.Stats()
	assert.Equal(t, 3+arrivals, a.controller.Total())
	assert.Equal(t, 3+arrivals, stats.DeletedCount)
	assert.Len(t, tr.deleted, 3+arrivals)
	assert.Equal(t, 0, a.controller.Remaining())
	assert.Equal(t, stats.DeletedCount+stats.KeptCount, stats.TotalSeen)
}

func TestModeLabelTracksToggle(t *testing.T) {
	a, _ := testApp(t, "a.jpg")

	a.refreshMode()
	assert.Equal(t, "Mode: delete", a.modeLabel.Text)

	a.toggleMode()
	assert.Equal(t, "Mode: keep", a.modeLabel.Text)
}
