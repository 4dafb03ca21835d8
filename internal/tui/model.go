// Package tui is the terminal frontend: the same four-slot review flow
// as the GUI, rendered as filename cards for use over SSH or without a
// display server.
package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"culld/internal/config"
	"culld/internal/triage"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type keyMap struct {
	Slots  [triage.SlotCount]key.Binding
	All    key.Binding
	Toggle key.Binding
	Undo   key.Binding
	Quit   key.Binding
	Help   key.Binding
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Slots[0], k.All, k.Toggle, k.Undo, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Slots[0], k.Slots[1], k.Slots[2], k.Slots[3]},
		{k.All, k.Toggle, k.Undo, k.Quit},
	}
}

func newKeyMap(cfg *config.Config) keyMap {
	slotActions := []string{
		config.ActionSlot0, config.ActionSlot1, config.ActionSlot2, config.ActionSlot3,
	}

	var k keyMap
	for i, action := range slotActions {
		bound := cfg.Key(action)
		k.Slots[i] = key.NewBinding(
			key.WithKeys(bound),
			key.WithHelp(bound, fmt.Sprintf("act on slot %d", i)),
		)
	}
	k.All = key.NewBinding(
		key.WithKeys(cfg.Key(config.ActionAll)),
		key.WithHelp(cfg.Key(config.ActionAll), "act on all slots"),
	)
	k.Toggle = key.NewBinding(
		key.WithKeys(cfg.Key(config.ActionToggleMode)),
		key.WithHelp(cfg.Key(config.ActionToggleMode), "toggle delete/keep"),
	)
	k.Undo = key.NewBinding(
		key.WithKeys(cfg.Key(config.ActionUndo)),
		key.WithHelp(cfg.Key(config.ActionUndo), "undo"),
	)
	k.Quit = key.NewBinding(
		key.WithKeys(cfg.Key(config.ActionQuit), "ctrl+c"),
		key.WithHelp(cfg.Key(config.ActionQuit), "quit"),
	)
	k.Help = key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	)
	return k
}

type Model struct {
	controller *triage.Controller
	keys       keyMap
	help       help.Model
	statusMsg  string
	errMsg     string
	width      int
}

// New builds the terminal model around a running triage session.
func New(cfg *config.Config, controller *triage.Controller) *Model {
	return &Model{
		controller: controller,
		keys:       newKeyMap(cfg),
		help:       help.New(),
	}
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}
	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.statusMsg = ""
	m.errMsg = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.All):
		if failures := m.controller.ActOnAll(); failures != nil {
			m.errMsg = fmt.Sprintf("%d slots failed and remain on the grid", len(failures))
		} else {
			m.statusMsg = fmt.Sprintf("applied %s to all slots", m.controller.Mode())
		}
		return m, nil
	case key.Matches(msg, m.keys.Toggle):
		m.statusMsg = "mode: " + m.controller.ToggleMode().String()
		return m, nil
	case key.Matches(msg, m.keys.Undo):
		if err := m.controller.Undo(); err != nil {
			m.errMsg = err.Error()
		} else {
			m.statusMsg = "undone"
		}
		return m, nil
	}

	for i := range m.keys.Slots {
		if key.Matches(msg, m.keys.Slots[i]) {
			m.actOnSlot(i)
			return m, nil
		}
	}
	return m, nil
}

func (m *Model) actOnSlot(i int) {
	entry, ok := m.controller.Slot(i)
	if !ok {
		return
	}
	if err := m.controller.ActOnSlot(i); err != nil {
		m.errMsg = err.Error()
		return
	}
	verb := "kept"
	if m.controller.Mode() == triage.ModeDelete {
		verb = "trashed"
	}
	m.statusMsg = fmt.Sprintf("%s %s", verb, filepath.Base(entry.Path))
}

// View implements tea.Model
func (m *Model) View() string {
	var b strings.Builder

	header := lipgloss.JoinHorizontal(lipgloss.Top,
		TitleStyle.Render("culld"),
		" ",
		ModeStyle.Render(m.controller.Mode().String()),
	)
	b.WriteString(header)
	b.WriteString("\n\n")
	b.WriteString(m.renderGrid())
	b.WriteString("\n")
	b.WriteString(StatsStyle.Render(m.statsLine()))
	b.WriteString("\n")

	if m.errMsg != "" {
		b.WriteString(ErrorStyle.Render(m.errMsg))
		b.WriteString("\n")
	} else if m.statusMsg != "" {
		b.WriteString(StatusStyle.Render(m.statusMsg))
		b.WriteString("\n")
	}

	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) renderGrid() string {
	slots := m.controller.Slots()

	cells := make([]string, triage.SlotCount)
	for i, entry := range slots {
		hint := KeyStyle.Render("[" + strings.ToUpper(m.keys.Slots[i].Help().Key) + "]")
		if entry == nil {
			cells[i] = EmptyCellStyle.Render(hint + " empty")
			continue
		}
		cells[i] = CellStyle.Render(hint + " " + filepath.Base(entry.Path))
	}

	top := lipgloss.JoinHorizontal(lipgloss.Top, cells[0], cells[1])
	bottom := lipgloss.JoinHorizontal(lipgloss.Top, cells[2], cells[3])
	return lipgloss.JoinVertical(lipgloss.Left, top, bottom)
}

func (m *Model) statsLine() string {
	stats := m.controller.Stats()
	total := m.controller.Total()
	return fmt.Sprintf(
		"Total %d | Left %d | Deleted %d | Kept %d | Done %.1f%% | Deleted %.1f%%",
		total,
		m.controller.Remaining(),
		stats.DeletedCount,
		stats.KeptCount,
		stats.PercentComplete(total),
		stats.PercentDeleted(),
	)
}
