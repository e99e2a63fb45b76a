package ui

import "github.com/charmbracelet/lipgloss"

// Palette defines lipgloss-compatible colors for the summary box and the TUI.
type Palette struct {
	Text    lipgloss.TerminalColor
	Border  lipgloss.TerminalColor
	Accent  lipgloss.TerminalColor
	Success lipgloss.TerminalColor
	Warning lipgloss.TerminalColor
	Error   lipgloss.TerminalColor
	Dim     lipgloss.TerminalColor
	Info    lipgloss.TerminalColor
}

var (
	// DarkPalette is the orange-dominant palette used with DarkTheme.
	DarkPalette = Palette{
		Text:    lipgloss.Color("#E0E0E0"),
		Border:  lipgloss.Color("#FF6600"),
		Accent:  lipgloss.Color("#FF8C00"),
		Success: lipgloss.Color("#9ece6a"),
		Warning: lipgloss.Color("#FFB347"),
		Error:   lipgloss.Color("#FF4444"),
		Dim:     lipgloss.Color("#666666"),
		Info:    lipgloss.Color("#4488FF"),
	}

	// NoColorPalette renders text with the terminal's default colors.
	NoColorPalette = Palette{
		Text:    lipgloss.NoColor{},
		Border:  lipgloss.NoColor{},
		Accent:  lipgloss.NoColor{},
		Success: lipgloss.NoColor{},
		Warning: lipgloss.NoColor{},
		Error:   lipgloss.NoColor{},
		Dim:     lipgloss.NoColor{},
		Info:    lipgloss.NoColor{},
	}
)

// CurrentPalette returns the palette matching the active theme.
func CurrentPalette() Palette {
	if !ColorEnabled() {
		return NoColorPalette
	}
	return DarkPalette
}

// Styles groups the lipgloss styles used by the terminal front-ends.
type Styles struct {
	Box     lipgloss.Style
	Title   lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Dim     lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
}

// CurrentStyles returns styles matching the active theme. With colors
// disabled the box keeps its border but drops every color.
func CurrentStyles() Styles {
	if !ColorEnabled() {
		plain := lipgloss.NewStyle()
		return Styles{
			Box:     plain.Border(lipgloss.NormalBorder()).Padding(0, 1),
			Title:   plain.Bold(true),
			Label:   plain,
			Value:   plain,
			Dim:     plain,
			Success: plain,
			Error:   plain,
		}
	}
	p := DarkPalette
	return Styles{
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Border).
			Padding(0, 1),
		Title:   lipgloss.NewStyle().Bold(true).Foreground(p.Accent),
		Label:   lipgloss.NewStyle().Foreground(p.Dim),
		Value:   lipgloss.NewStyle().Foreground(p.Text),
		Dim:     lipgloss.NewStyle().Foreground(p.Dim),
		Success: lipgloss.NewStyle().Foreground(p.Success),
		Error:   lipgloss.NewStyle().Foreground(p.Error),
	}
}

// SummaryBox renders a titled box of label/value rows with aligned labels.
func SummaryBox(title string, rows [][2]string) string {
	s := CurrentStyles()
	width := 0
	for _, r := range rows {
		width = max(width, lipgloss.Width(r[0]))
	}
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, s.Title.Render(title))
	for _, r := range rows {
		label := s.Label.Width(width + 2).Render(r[0] + ":")
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, label, s.Value.Render(r[1])))
	}
	return s.Box.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
