// Package settings provides the settings configuration view for the TUI.
package settings

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/geosearch/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/geosearch/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/geosearch/internal/core/domain"
	"github.com/custodia-labs/geosearch/internal/core/ports/driving"
)

// tokenKey is edited with the input masked.
//
//nolint:gosec // G101: config key name, not a credential.
const tokenKey = "api.access_token"

// Key constants for key handling.
const (
	keyDown  = "down"
	keyEnter = "enter"
	keyEsc   = "esc"
)

// errNoSettings is reported when the view has no settings service.
var errNoSettings = errors.New("settings service not available")

// View lists every setting key with its value and edits one at a time.
type View struct {
	styles          *styles.Styles
	settingsService driving.SettingsService

	settings *domain.AppSettings
	keys     []string
	err      error
	notice   string

	selected int
	editing  bool
	editor   textinput.Model

	width  int
	height int
	ready  bool
}

// NewView creates a new settings view.
func NewView(s *styles.Styles, settingsService driving.SettingsService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	editor := textinput.New()
	editor.CharLimit = 512

	return &View{
		styles:          s,
		settingsService: settingsService,
		editor:          editor,
	}
}

// Init initialises the view and loads settings.
func (v *View) Init() tea.Cmd {
	return v.loadSettings()
}

// loadSettings returns a command that loads current settings.
func (v *View) loadSettings() tea.Cmd {
	service := v.settingsService
	return func() tea.Msg {
		if service == nil {
			return messages.SettingsLoaded{Err: errNoSettings}
		}
		settings, err := service.Get()
		return messages.SettingsLoaded{Settings: settings, Keys: service.Keys(), Err: err}
	}
}

// saveSetting returns a command that stores one value.
func (v *View) saveSetting(key, value string) tea.Cmd {
	service := v.settingsService
	return func() tea.Msg {
		if service == nil {
			return messages.SettingsSaved{Key: key, Err: errNoSettings}
		}
		return messages.SettingsSaved{Key: key, Err: service.Set(key, value)}
	}
}

// Update handles messages for the settings view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.SettingsLoaded:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.settings = msg.Settings
		v.keys = msg.Keys
		v.err = nil
		if v.selected >= len(v.keys) {
			v.selected = 0
		}
		return v, nil

	case messages.SettingsSaved:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.notice = "Saved " + msg.Key
		return v, v.loadSettings()

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.editing {
		switch msg.String() {
		case keyEsc:
			v.stopEditing()
			return v, nil
		case keyEnter:
			key := v.keys[v.selected]
			value := v.editor.Value()
			v.stopEditing()
			return v, v.saveSetting(key, value)
		}
		var cmd tea.Cmd
		v.editor, cmd = v.editor.Update(msg)
		return v, cmd
	}

	switch msg.String() {
	case keyEsc:
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case keyDown, "j":
		if v.selected < len(v.keys)-1 {
			v.selected++
		}
	case keyEnter:
		if v.selected < len(v.keys) {
			return v, v.startEditing(v.keys[v.selected])
		}
	}
	return v, nil
}

func (v *View) startEditing(key string) tea.Cmd {
	v.editing = true
	v.notice = ""
	v.editor.Reset()
	v.editor.Placeholder = key
	if key == tokenKey {
		v.editor.EchoMode = textinput.EchoPassword
	} else {
		v.editor.EchoMode = textinput.EchoNormal
		v.editor.SetValue(DisplayValue(v.settings, key))
	}
	return v.editor.Focus()
}

func (v *View) stopEditing() {
	v.editing = false
	v.editor.Blur()
	v.editor.Reset()
}

// View renders the settings view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Settings"))
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n\n")
	}
	if v.settings == nil {
		b.WriteString(v.styles.Muted.Render("Loading settings..."))
		b.WriteString("\n\n")
		b.WriteString(v.styles.Help.Render("[esc] back"))
		return b.String()
	}

	width := 0
	for _, k := range v.keys {
		width = max(width, len(k))
	}
	for i, k := range v.keys {
		line := fmt.Sprintf("%-*s  %s", width, k, maskedValue(v.settings, k))
		if i == v.selected {
			b.WriteString(v.styles.Selected.Render("> " + line))
		} else {
			b.WriteString(v.styles.Normal.Render("  " + line))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if v.editing {
		b.WriteString(v.styles.Subtitle.Render("New value for " + v.keys[v.selected] + ":"))
		b.WriteString("\n")
		b.WriteString(v.editor.View())
		b.WriteString("\n\n")
		b.WriteString(v.styles.Help.Render("[enter] save  [esc] cancel"))
		return b.String()
	}

	if v.notice != "" {
		b.WriteString(v.styles.Success.Render(v.notice))
		b.WriteString("\n\n")
	}
	b.WriteString(v.styles.Help.Render("[j/k] navigate  [enter] edit  [esc] back"))
	return b.String()
}

// DisplayValue formats the value behind a config key. Lists are comma
// separated, durations in the unit of their key.
func DisplayValue(s *domain.AppSettings, key string) string {
	if s == nil {
		return ""
	}
	switch key {
	case "api.base_url":
		return s.API.BaseURL
	case tokenKey:
		return s.API.AccessToken
	case "api.timeout_seconds":
		return strconv.Itoa(int(s.API.Timeout.Seconds()))
	case "api.rate_limit":
		return strconv.FormatFloat(s.API.RateLimit, 'g', -1, 64)
	case "api.burst":
		return strconv.Itoa(s.API.Burst)
	case "search.request_debounce_ms":
		return strconv.FormatInt(s.Search.RequestDebounce.Milliseconds(), 10)
	case "search.limit":
		return strconv.Itoa(s.Search.Limit)
	case "search.distance_threshold_m":
		return strconv.FormatFloat(s.Search.DistanceThreshold, 'g', -1, 64)
	case "search.languages":
		return strings.Join(s.Search.Languages, ",")
	case "search.countries":
		return strings.Join(s.Search.Countries, ",")
	case "history.max_size":
		return strconv.Itoa(s.History.MaxSize)
	case "storage.data_dir":
		return s.Storage.DataDir
	case "offline.tiles_dir":
		return s.Offline.TilesDir
	case "log.verbose":
		return strconv.FormatBool(s.Log.Verbose)
	default:
		return ""
	}
}

func maskedValue(s *domain.AppSettings, key string) string {
	value := DisplayValue(s, key)
	switch {
	case value == "":
		return "(not set)"
	case key != tokenKey:
		return value
	case len(value) <= 8:
		return "****"
	default:
		return value[:4] + "..." + value[len(value)-4:]
	}
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.editor.Width = max(width-10, 20)
}

// Reset returns to the list, keeping loaded settings.
func (v *View) Reset() {
	v.stopEditing()
	v.selected = 0
	v.err = nil
	v.notice = ""
}

// Settings returns the loaded settings.
func (v *View) Settings() *domain.AppSettings {
	return v.settings
}

// Selected returns the index of the highlighted key.
func (v *View) Selected() int {
	return v.selected
}

// Editing reports whether a value is being edited.
func (v *View) Editing() bool {
	return v.editing
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
