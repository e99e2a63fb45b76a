package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/saxpy/internal/ui"
)

// Style variables for the progress view.
// Initialized from the ui theme system via initTUIStyles().
var (
	panelStyle     lipgloss.Style
	titleStyle     lipgloss.Style
	labelStyle     lipgloss.Style
	valueStyle     lipgloss.Style
	barFullStyle   lipgloss.Style
	barEmptyStyle  lipgloss.Style
	successStyle   lipgloss.Style
	errorStyle     lipgloss.Style
	pausedStyle    lipgloss.Style
	sparklineStyle lipgloss.Style
	helpStyle      lipgloss.Style
)

func init() {
	initTUIStyles()
}

// initTUIStyles rebuilds all styles from the current ui palette.
// Called at package init and again from Run() after InitTheme has been invoked.
func initTUIStyles() {
	p := ui.CurrentPalette()

	panelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Border).
		Foreground(p.Text).
		Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(p.Accent)
	labelStyle = lipgloss.NewStyle().Foreground(p.Dim)
	valueStyle = lipgloss.NewStyle().Foreground(p.Accent).Bold(true)
	barFullStyle = lipgloss.NewStyle().Foreground(p.Accent)
	barEmptyStyle = lipgloss.NewStyle().Foreground(p.Dim)
	successStyle = lipgloss.NewStyle().Foreground(p.Success).Bold(true)
	errorStyle = lipgloss.NewStyle().Foreground(p.Error).Bold(true)
	pausedStyle = lipgloss.NewStyle().Foreground(p.Warning).Bold(true)
	sparklineStyle = lipgloss.NewStyle().Foreground(p.Info)
	helpStyle = lipgloss.NewStyle().Foreground(p.Dim)
}
