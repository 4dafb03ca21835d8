package gui

import (
	"image"
	"path/filepath"
	"strings"

	"culld/internal/config"
	"culld/internal/log"
	"culld/internal/triage"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// slotCell is one quadrant of the review grid.
type slotCell struct {
	index   int
	picture *canvas.Image
	name    *widget.Label
	key     *widget.Label
	content fyne.CanvasObject

	// path currently shown, to drop stale async thumbnail results
	shown string
}

func (a *App) newSlotCell(index int) *slotCell {
	cell := &slotCell{
		index:   index,
		picture: canvas.NewImageFromImage(nil),
		name:    widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{}),
		key:     widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Bold: true, Monospace: true}),
	}
	cell.picture.FillMode = canvas.ImageFillContain
	cell.picture.SetMinSize(fyne.NewSize(300, 240))
	cell.name.Truncation = fyne.TextTruncateEllipsis

	cell.content = container.NewBorder(
		nil,
		container.NewVBox(cell.name, cell.key),
		nil,
		nil,
		cell.picture,
	)
	return cell
}

// createGrid builds the 2x2 review grid.
func (a *App) createGrid() fyne.CanvasObject {
	keys := []string{
		a.cfg.Key(config.ActionSlot0),
		a.cfg.Key(config.ActionSlot1),
		a.cfg.Key(config.ActionSlot2),
		a.cfg.Key(config.ActionSlot3),
	}

	cells := make([]fyne.CanvasObject, triage.SlotCount)
	for i := 0; i < triage.SlotCount; i++ {
		cell := a.newSlotCell(i)
		cell.key.SetText("[" + strings.ToUpper(keys[i]) + "]")
		a.cells[i] = cell
		cells[i] = cell.content
	}

	return container.NewGridWithColumns(2, cells...)
}

// refreshGrid redraws every cell from the controller's slot state,
// requesting thumbnails for newly shown images.
func (a *App) refreshGrid() {
	if a.controller == nil {
		return
	}

	slots := a.controller.Slots()
	for i, cell := range a.cells {
		entry := slots[i]
		if entry == nil {
			cell.clear()
			continue
		}
		if cell.shown == entry.Path {
			continue
		}
		cell.show(entry.Path)

		if img, ok := a.thumbCache.Get(entry.Path); ok {
			cell.setImage(entry.Path, img)
			continue
		}
		a.thumbCache.Request(entry.Path, func(path string, img image.Image, err error) {
			if err != nil {
				log.Warnf("thumbnail failed for %s: %v", path, err)
				return
			}
			cell.setImage(path, img)
		})
	}
}

func (c *slotCell) clear() {
	c.shown = ""
	c.picture.Image = nil
	c.picture.Refresh()
	c.name.SetText("")
}

func (c *slotCell) show(path string) {
	c.shown = path
	c.picture.Image = nil
	c.picture.Refresh()
	c.name.SetText(filepath.Base(path))
}

// setImage installs a decoded thumbnail, unless the cell has moved on
// to a different file since the request was queued.
func (c *slotCell) setImage(path string, img image.Image) {
	if c.shown != path {
		return
	}
	c.picture.Image = img
	c.picture.Refresh()
}
