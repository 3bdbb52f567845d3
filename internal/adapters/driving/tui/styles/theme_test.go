package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTheme(t *testing.T) {
	theme := DefaultTheme()

	require.NotNil(t, theme)
	for name, c := range map[string]lipgloss.Color{
		"Accent": theme.Accent, "Kind": theme.Kind, "Record": theme.Record,
		"Text": theme.Text, "Dim": theme.Dim, "Bar": theme.Bar, "Frame": theme.Frame,
		"Saved": theme.Saved, "Confirm": theme.Confirm, "Failure": theme.Failure,
	} {
		assert.NotEmpty(t, string(c), name)
	}
}

func TestDefaultTheme_TagColoursDiffer(t *testing.T) {
	theme := DefaultTheme()

	// Local and remote suggestions must be told apart at a glance.
	assert.NotEqual(t, theme.Kind, theme.Record)
	assert.NotEqual(t, theme.Accent, theme.Record)
}

func TestNewStyles(t *testing.T) {
	theme := DefaultTheme()
	styles := NewStyles(theme)

	require.NotNil(t, styles)
	assert.Equal(t, theme, styles.Theme())
}

func TestNewStyles_NilTheme(t *testing.T) {
	styles := NewStyles(nil)

	require.NotNil(t, styles)
	assert.Equal(t, DefaultTheme(), styles.Theme())
}

func TestStyles_AllInitialised(t *testing.T) {
	styles := DefaultStyles()

	for name, st := range map[string]lipgloss.Style{
		"Title": styles.Title, "Subtitle": styles.Subtitle, "Normal": styles.Normal,
		"Muted": styles.Muted, "Selected": styles.Selected, "Help": styles.Help,
		"Error": styles.Error, "Success": styles.Success, "Warning": styles.Warning,
		"InputField": styles.InputField, "StatusBar": styles.StatusBar, "Border": styles.Border,
		"Badge": styles.Badge, "RecordBadge": styles.RecordBadge, "Coordinate": styles.Coordinate,
	} {
		assert.NotEqual(t, lipgloss.Style{}, st, name)
		assert.Contains(t, st.Render("text"), "text", name)
	}
}

func TestStyles_Tag(t *testing.T) {
	styles := DefaultStyles()

	assert.Empty(t, styles.Tag("", true))
	assert.Contains(t, styles.Tag("poi", false), "[poi]")
	assert.Contains(t, styles.Tag("favorites", true), "[favorites]")
}

func TestStyles_LonLat(t *testing.T) {
	styles := DefaultStyles()

	assert.Contains(t, styles.LonLat(13.4050, 52.52), "13.405000, 52.520000")
}
