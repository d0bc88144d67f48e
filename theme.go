package datagrid

import "github.com/charmbracelet/lipgloss"

// Theme provides the styles used by the default containers and the grid
// chrome. Pass a theme into the container factory explicitly; the engine
// never reads styling from ambient state.
type Theme struct {
	Header      lipgloss.Style // column header line
	Row         lipgloss.Style // default data row
	SelectedRow lipgloss.Style // the selected data row
	GroupHeader lipgloss.Style // group header rows, any level
	Scrollbar   lipgloss.Style // scrollbar track
	ScrollThumb lipgloss.Style // scrollbar thumb
}

// DefaultTheme returns a muted dark theme.
func DefaultTheme() Theme {
	var (
		fg     = lipgloss.Color("#E5E7EB")
		muted  = lipgloss.Color("#6B7280")
		accent = lipgloss.Color("#06B6D4")
		selBg  = lipgloss.Color("#374151")
	)
	return Theme{
		Header:      lipgloss.NewStyle().Foreground(fg).Bold(true).Underline(true),
		Row:         lipgloss.NewStyle().Foreground(fg),
		SelectedRow: lipgloss.NewStyle().Foreground(fg).Background(selBg).Bold(true),
		GroupHeader: lipgloss.NewStyle().Foreground(accent).Bold(true),
		Scrollbar:   lipgloss.NewStyle().Foreground(muted),
		ScrollThumb: lipgloss.NewStyle().Foreground(fg),
	}
}

// MonochromeTheme uses only attributes, for terminals without color.
func MonochromeTheme() Theme {
	return Theme{
		Header:      lipgloss.NewStyle().Bold(true).Underline(true),
		Row:         lipgloss.NewStyle(),
		SelectedRow: lipgloss.NewStyle().Reverse(true),
		GroupHeader: lipgloss.NewStyle().Bold(true),
		Scrollbar:   lipgloss.NewStyle().Faint(true),
		ScrollThumb: lipgloss.NewStyle(),
	}
}
