// Package gui is the Fyne desktop frontend: a 2x2 review grid driven
// entirely by hotkeys, with a stats bar and a folder picker.
package gui

import (
	"fmt"
	"image/color"
	"sync"
	"unicode"

	"culld/internal/config"
	"culld/internal/log"
	"culld/internal/thumbs"
	"culld/internal/trash"
	"culld/internal/triage"
	"culld/internal/viewer"
	"culld/internal/watch"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// App is the GUI application
type App struct {
	fyneApp    fyne.App
	mainWindow fyne.Window
	cfg        *config.Config

	// sessionMu serializes controller access: the event callbacks and
	// the watcher goroutine both mutate session state, and the session
	// core expects one event to complete before the next begins
	sessionMu  sync.Mutex
	controller *triage.Controller

	trashGW    *trash.Gateway
	launcher   *viewer.Launcher
	thumbCache *thumbs.Cache
	watcher    *watch.Watcher

	cells      [triage.SlotCount]*slotCell
	statsLabel *widget.Label
	modeLabel  *widget.Label
	pathLabel  *widget.Label

	// key rune -> action name, built from the hotkey config
	keymap map[rune]string

	accentColor color.NRGBA
}

// NewApp creates a new GUI application
func NewApp(cfg *config.Config) *App {
	fyneApp := app.NewWithID("io.github.culld")

	a := &App{
		fyneApp:     fyneApp,
		cfg:         cfg,
		launcher:    viewer.New(),
		thumbCache:  thumbs.NewCache(cfg.Thumbnails.Size, 0),
		accentColor: color.NRGBA{R: 255, G: 165, B: 0, A: 255},
	}
	a.buildKeymap()

	a.mainWindow = a.fyneApp.NewWindow("Culld")
	a.mainWindow.Resize(fyne.NewSize(900, 700))
	return a
}

// GetMainWindow returns the main window instance
func (a *App) GetMainWindow() fyne.Window {
	return a.mainWindow
}

func (a *App) buildKeymap() {
	a.keymap = make(map[rune]string)
	for _, action := range []string{
		config.ActionSlot0, config.ActionSlot1, config.ActionSlot2, config.ActionSlot3,
		config.ActionAll, config.ActionToggleMode, config.ActionUndo,
		config.ActionOpenFolder, config.ActionQuit,
	} {
		key := []rune(a.cfg.Key(action))
		if len(key) == 1 {
			a.keymap[key[0]] = action
		}
	}
}

// Run starts the GUI application. When folder is empty the last used
// folder is reopened, or a picker is shown on first launch.
func (a *App) Run(folder string) {
	a.setupMainWindow()

	if folder == "" {
		folder = a.cfg.Session.LastFolder
	}
	if folder != "" {
		a.openFolder(folder)
	} else {
		a.showFolderDialog()
	}

	a.mainWindow.ShowAndRun()
	a.shutdown()
}

func (a *App) shutdown() {
	if a.watcher != nil {
		a.watcher.Stop()
	}
	a.thumbCache.Close()
	if err := a.cfg.Save(); err != nil {
		log.Warnf("could not save configuration: %v", err)
	}
}

// setupMainWindow sets up the main window content
func (a *App) setupMainWindow() {
	toolbar := widget.NewToolbar(
		widget.NewToolbarAction(theme.FolderOpenIcon(), func() {
			a.showFolderDialog()
		}),
		widget.NewToolbarAction(theme.ContentUndoIcon(), func() {
			a.undo()
		}),
		widget.NewToolbarAction(theme.ViewRefreshIcon(), func() {
			a.toggleMode()
		}),
		widget.NewToolbarSpacer(),
		widget.NewToolbarAction(theme.HelpIcon(), func() {
			a.showHelp()
		}),
	)

	a.pathLabel = widget.NewLabelWithStyle("No folder open", fyne.TextAlignLeading, fyne.TextStyle{Italic: true})
	a.modeLabel = widget.NewLabelWithStyle("", fyne.TextAlignTrailing, fyne.TextStyle{Bold: true})
	a.statsLabel = widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Monospace: true})

	grid := a.createGrid()

	content := container.NewBorder(
		container.NewVBox(
			toolbar,
			container.NewHBox(a.pathLabel, layout.NewSpacer(), a.modeLabel),
			canvas.NewLine(a.accentColor),
		),
		container.NewHBox(a.statsLabel, layout.NewSpacer()),
		nil,
		nil,
		grid,
	)

	a.mainWindow.SetContent(content)
	a.mainWindow.Canvas().SetOnTypedRune(a.handleRune)
	a.refreshMode()
}

// handleRune dispatches hotkeys. The uppercase form of a slot key opens
// that slot in the system viewer instead of acting on it.
func (a *App) handleRune(r rune) {
	if action, ok := a.keymap[r]; ok {
		a.dispatch(action)
		return
	}

	lower := unicode.ToLower(r)
	if lower == r {
		return
	}
	if action, ok := a.keymap[lower]; ok {
		if i, isSlot := slotIndex(action); isSlot {
			a.openSlot(i)
		}
	}
}

func slotIndex(action string) (int, bool) {
	switch action {
	case config.ActionSlot0:
		return 0, true
	case config.ActionSlot1:
		return 1, true
	case config.ActionSlot2:
		return 2, true
	case config.ActionSlot3:
		return 3, true
	}
	return 0, false
}

func (a *App) dispatch(action string) {
	switch action {
	case config.ActionSlot0, config.ActionSlot1, config.ActionSlot2, config.ActionSlot3:
		i, _ := slotIndex(action)
		a.actOnSlot(i)
	case config.ActionAll:
		a.actOnAll()
	case config.ActionToggleMode:
		a.toggleMode()
	case config.ActionUndo:
		a.undo()
	case config.ActionOpenFolder:
		a.showFolderDialog()
	case config.ActionQuit:
		a.fyneApp.Quit()
	}
}

func (a *App) actOnSlot(i int) {
	a.sessionMu.Lock()
	defer a.sessionMu.Unlock()

	if a.controller == nil {
		return
	}
	entry, ok := a.controller.Slot(i)
	if !ok {
		return
	}
	if err := a.controller.ActOnSlot(i); err != nil {
		a.ShowError("Action failed", err)
		return
	}
	a.thumbCache.Evict(entry.Path)
	a.refreshAll()
}

func (a *App) actOnAll() {
	a.sessionMu.Lock()
	if a.controller == nil {
		a.sessionMu.Unlock()
		return
	}
	needConfirm := a.cfg.Settings.ConfirmBulk && a.controller.Mode() == triage.ModeDelete
	count := 0
	for _, e := range a.controller.Slots() {
		if e != nil {
			count++
		}
	}
	a.sessionMu.Unlock()

	if needConfirm {
		if count == 0 {
			return
		}
		dialog.ShowConfirm("Delete all",
			fmt.Sprintf("Move %d images to the trash?", count),
			func(confirmed bool) {
				if confirmed {
					a.runBulk()
				}
			},
			a.mainWindow)
		return
	}
	a.runBulk()
}

func (a *App) runBulk() {
	a.sessionMu.Lock()
	defer a.sessionMu.Unlock()

	slots := a.controller.Slots()
	failures := a.controller.ActOnAll()
	for i, e := range slots {
		if e != nil && failures[i] == nil {
			a.thumbCache.Evict(e.Path)
		}
	}
	a.refreshAll()

	if len(failures) > 0 {
		for i, err := range failures {
			log.Errorf("slot %d failed: %v", i, err)
		}
		a.ShowError("Some images could not be trashed",
			fmt.Errorf("%d of %d slots failed; they remain on the grid", len(failures), len(slots)))
	}
}

func (a *App) toggleMode() {
	a.sessionMu.Lock()
	defer a.sessionMu.Unlock()

	if a.controller == nil {
		return
	}
	a.controller.ToggleMode()
	a.refreshMode()
}

func (a *App) undo() {
	a.sessionMu.Lock()
	defer a.sessionMu.Unlock()

	if a.controller == nil {
		return
	}
	if err := a.controller.Undo(); err != nil {
		a.ShowError("Undo failed", err)
	}
	a.refreshAll()
}

func (a *App) openSlot(i int) {
	a.sessionMu.Lock()
	defer a.sessionMu.Unlock()

	if a.controller == nil {
		return
	}
	if err := a.controller.OpenSlot(i); err != nil {
		a.ShowError("Could not open viewer", err)
	}
}

// showFolderDialog lets the user pick a folder to triage.
func (a *App) showFolderDialog() {
	folderDialog := dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil {
			a.ShowError("Could not open folder", err)
			return
		}
		if uri == nil {
			return // cancelled
		}
		a.openFolder(uri.Path())
	}, a.mainWindow)

	if a.cfg.Session.LastFolder != "" {
		if lister, err := storage.ListerForURI(storage.NewFileURI(a.cfg.Session.LastFolder)); err == nil {
			folderDialog.SetLocation(lister)
		}
	}
	folderDialog.Show()
}

// openFolder starts a fresh triage session on dir.
func (a *App) openFolder(dir string) {
	filter, err := triage.NewFilter(a.cfg.Filters.Include, a.cfg.Filters.Exclude)
	if err != nil {
		a.ShowError("Invalid filename filters", err)
		return
	}

	set, err := triage.Load(dir, filter)
	if err != nil {
		a.ShowError("Could not open folder", err)
		return
	}

	if a.trashGW == nil {
		root, err := trash.DefaultRoot()
		if err != nil {
			a.ShowError("Could not locate trash folder", err)
			return
		}
		a.trashGW, err = trash.NewGateway(root)
		if err != nil {
			a.ShowError("Could not prepare trash folder", err)
			return
		}
	}

	mode, err := triage.ParseMode(a.cfg.Session.DefaultMode)
	if err != nil {
		mode = triage.ModeDelete
	}

	a.sessionMu.Lock()
	a.controller = triage.NewController(set, a.trashGW, a.launcher, mode, a.cfg.Session.MaxUndoDepth)
	a.refreshAll()
	a.refreshMode()
	a.sessionMu.Unlock()

	a.cfg.Session.LastFolder = dir
	if err := a.cfg.Save(); err != nil {
		log.Warnf("could not persist last folder: %v", err)
	}

	a.pathLabel.SetText(dir)
	a.startWatching(dir)

	log.WithFields(log.F("folder", dir), log.F("images", set.TotalCount())).Info("Session started")
}

// startWatching points the folder watcher at the active session folder.
func (a *App) startWatching(dir string) {
	if !a.cfg.Settings.WatchFolder {
		return
	}

	if a.watcher == nil {
		w, err := watch.New()
		if err != nil {
			log.Warnf("folder watching unavailable: %v", err)
			return
		}
		a.watcher = w
		if err := a.watcher.SetFolder(dir); err != nil {
			log.Warnf("could not watch %s: %v", dir, err)
			return
		}
		if err := a.watcher.Start(); err != nil {
			log.Warnf("could not start watcher: %v", err)
			return
		}
		go a.consumeArrivals()
		return
	}

	if err := a.watcher.SetFolder(dir); err != nil {
		log.Warnf("could not watch %s: %v", dir, err)
	}
}

func (a *App) consumeArrivals() {
	for arrival := range a.watcher.Arrivals() {
		a.handleArrival(arrival.Path)
	}
}

// handleArrival admits a newly discovered file under the session lock,
// so it never interleaves with a key event acting on the grid.
func (a *App) handleArrival(path string) {
	a.sessionMu.Lock()
	defer a.sessionMu.Unlock()

	if a.controller == nil {
		return
	}
	if filled := a.controller.AddDiscovered(path); len(filled) > 0 {
		log.Debugf("backfilled slots %v from %s", filled, path)
	}
	a.refreshAll()
}

func (a *App) refreshMode() {
	if a.controller == nil {
		a.modeLabel.SetText("")
		return
	}
	a.modeLabel.SetText("Mode: " + a.controller.Mode().String())
}

// refreshAll redraws the grid and stats. Callers hold sessionMu.
func (a *App) refreshAll() {
	a.refreshGrid()
	a.refreshStats()
}

func (a *App) refreshStats() {
	if a.controller == nil {
		a.statsLabel.SetText("")
		return
	}
	stats := a.controller.Stats()
	total := a.controller.Total()
	a.statsLabel.SetText(fmt.Sprintf(
		"Total %d | Left %d | Deleted %d | Kept %d | Done %.1f%% | Deleted %.1f%%",
		total,
		a.controller.Remaining(),
		stats.DeletedCount,
		stats.KeptCount,
		stats.PercentComplete(total),
		stats.PercentDeleted(),
	))
}

func (a *App) showHelp() {
	msg := fmt.Sprintf(
		"Review four images at a time.\n\n"+
			"%s/%s/%s/%s act on a slot (Shift opens it in your viewer)\n"+
			"%s acts on all four\n"+
			"%s toggles between delete and keep\n"+
			"%s undoes the last action\n"+
			"%s opens a folder, %s quits",
		a.cfg.Key(config.ActionSlot0), a.cfg.Key(config.ActionSlot1),
		a.cfg.Key(config.ActionSlot2), a.cfg.Key(config.ActionSlot3),
		a.cfg.Key(config.ActionAll),
		a.cfg.Key(config.ActionToggleMode),
		a.cfg.Key(config.ActionUndo),
		a.cfg.Key(config.ActionOpenFolder), a.cfg.Key(config.ActionQuit),
	)
	dialog.ShowInformation("Culld", msg, a.mainWindow)
}

// ShowError displays an error dialog
func (a *App) ShowError(title string, err error) {
	if err == nil {
		return
	}
	log.Errorf("%s: %v", title, err)
	dialog.ShowError(err, a.mainWindow)
}

// ShowInfo displays an information dialog
func (a *App) ShowInfo(message string) {
	dialog.ShowInformation("Information", message, a.mainWindow)
}
