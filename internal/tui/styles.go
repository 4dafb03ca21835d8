package tui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	// Title style for the header bar
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#4F4FB7")).
			Padding(0, 1)

	// Mode badge next to the title
	ModeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#000000")).
			Background(lipgloss.Color("#FFA500")).
			Padding(0, 1)

	// Occupied grid cell
	CellStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#626262")).
			Padding(0, 1).
			Width(34)

	// Empty grid cell
	EmptyCellStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#333333")).
			Foreground(lipgloss.Color("#555555")).
			Padding(0, 1).
			Width(34)

	// Hotkey hint inside a cell
	KeyStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFA500"))

	// Stats line under the grid
	StatsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#959595"))

	// Status style for info messages
	StatusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CCCCCC"))

	// Error style for error messages
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000"))
)
