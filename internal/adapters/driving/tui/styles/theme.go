// Package styles provides the colour palette and lipgloss styles of the
// geosearch TUI.
package styles

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Theme is the colour palette.
type Theme struct {
	Accent lipgloss.Color // titles and the selection bar
	Kind   lipgloss.Color // result kind tags such as poi or address
	Record lipgloss.Color // favorites, history and other local layers
	Text   lipgloss.Color
	Dim    lipgloss.Color // details, hints, coordinates
	Bar    lipgloss.Color // status bar background
	Frame  lipgloss.Color // input and detail borders

	Saved   lipgloss.Color
	Confirm lipgloss.Color
	Failure lipgloss.Color
}

// DefaultTheme returns the default palette.
func DefaultTheme() *Theme {
	return &Theme{
		Accent:  lipgloss.Color("#14B8A6"),
		Kind:    lipgloss.Color("#60A5FA"),
		Record:  lipgloss.Color("#FAB387"),
		Text:    lipgloss.Color("#CDD6F4"),
		Dim:     lipgloss.Color("#6C7086"),
		Bar:     lipgloss.Color("#181825"),
		Frame:   lipgloss.Color("#45475A"),
		Saved:   lipgloss.Color("#A6E3A1"),
		Confirm: lipgloss.Color("#F9E2AF"),
		Failure: lipgloss.Color("#F38BA8"),
	}
}

// Styles holds the rendered styles of a theme.
type Styles struct {
	theme *Theme

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Help     lipgloss.Style

	Error   lipgloss.Style
	Success lipgloss.Style
	// Warning asks the user to confirm a destructive action.
	Warning lipgloss.Style

	InputField lipgloss.Style
	StatusBar  lipgloss.Style
	Border     lipgloss.Style

	// Badge tags a remote suggestion with its kind.
	Badge lipgloss.Style
	// RecordBadge tags a suggestion with the local layer it came from.
	RecordBadge lipgloss.Style
	Coordinate  lipgloss.Style
}

// NewStyles creates styles from a theme. A nil theme means the default.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	fg := func(c lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c)
	}
	framed := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Frame)

	return &Styles{
		theme: theme,

		Title:    fg(theme.Accent).Bold(true),
		Subtitle: fg(theme.Kind).Bold(true),
		Normal:   fg(theme.Text),
		Muted:    fg(theme.Dim),
		Selected: fg(theme.Text).Background(theme.Accent).Bold(true),
		Help:     fg(theme.Dim),

		Error:   fg(theme.Failure),
		Success: fg(theme.Saved),
		Warning: fg(theme.Confirm).Bold(true),

		InputField: framed.Padding(0, 1),
		StatusBar:  fg(theme.Dim).Background(theme.Bar).Padding(0, 1),
		Border:     framed,

		Badge:       fg(theme.Kind),
		RecordBadge: fg(theme.Record).Bold(true),
		Coordinate:  fg(theme.Dim).Italic(true),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// Tag renders a bracketed label, in the record colour when local is set.
// An empty label renders as nothing.
func (s *Styles) Tag(label string, local bool) string {
	if label == "" {
		return ""
	}
	if local {
		return s.RecordBadge.Render("[" + label + "]")
	}
	return s.Badge.Render("[" + label + "]")
}

// LonLat renders a coordinate pair, longitude first.
func (s *Styles) LonLat(lon, lat float64) string {
	return s.Coordinate.Render(fmt.Sprintf("%.6f, %.6f", lon, lat))
}
