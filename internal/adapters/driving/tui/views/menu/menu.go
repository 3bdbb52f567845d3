// Package menu is the start screen of the TUI.
package menu

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/geosearch/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/geosearch/internal/adapters/driving/tui/styles"
)

// Item is one menu entry. Selecting it switches to View, or quits when
// Quit is set.
type Item struct {
	Label string
	Hint  string
	View  messages.ViewType
	Quit  bool
}

// View lists the screens of the app.
type View struct {
	styles   *styles.Styles
	items    []Item
	selected int
	width    int
	height   int
	ready    bool
}

// NewView creates the menu with every screen listed.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles: s,
		items: []Item{
			{Label: "Search", View: messages.ViewSearch, Hint: "Suggestions as you type, favorites first"},
			{Label: "Offline search", View: messages.ViewOffline, Hint: "Search the local tilesets without network"},
			{Label: "Favorites", View: messages.ViewFavorites, Hint: "Saved places"},
			{Label: "History", View: messages.ViewHistory, Hint: "Places you selected recently"},
			{Label: "Settings", View: messages.ViewSettings, Hint: "API access, search defaults, tiles directory"},
			{Label: "Help", View: messages.ViewHelp, Hint: "Key bindings"},
			{Label: "Quit", Quit: true},
		},
		width:  80,
		height: 24,
	}
}

// WithoutView removes the item leading to vt, for features that are not
// configured.
func (v *View) WithoutView(vt messages.ViewType) *View {
	items := v.items[:0]
	for _, item := range v.items {
		if item.Quit || item.View != vt {
			items = append(items, item)
		}
	}
	v.items = items
	v.selected = 0
	return v
}

// Items returns the menu items.
func (v *View) Items() []Item {
	return v.items
}

// Init implements the view lifecycle; the menu loads nothing.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update moves the cursor and opens the chosen item. Digits open an item
// directly.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		switch k := msg.String(); k {
		case "up", "k":
			v.selected = max(v.selected-1, 0)
		case "down", "j":
			v.selected = min(v.selected+1, len(v.items)-1)
		case "enter":
			return v, v.open(v.selected)
		case "q":
			return v, tea.Quit
		default:
			if len(k) == 1 && k[0] >= '1' && int(k[0]-'1') < len(v.items) {
				v.selected = int(k[0] - '1')
				return v, v.open(v.selected)
			}
		}
	}
	return v, nil
}

func (v *View) open(i int) tea.Cmd {
	item := v.items[i]
	if item.Quit {
		return tea.Quit
	}
	return func() tea.Msg { return messages.ViewChanged{View: item.View} }
}

// View renders the menu.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("geosearch"))
	b.WriteString("\n\n")
	b.WriteString(v.styles.Muted.Render("Places, addresses and points of interest"))
	b.WriteString("\n\n")

	for i, item := range v.items {
		label := fmt.Sprintf("%d  %s", i+1, item.Label)
		if i == v.selected {
			b.WriteString(v.styles.Selected.Render("> " + label))
		} else {
			b.WriteString(v.styles.Normal.Render("  " + label))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if hint := v.items[v.selected].Hint; hint != "" {
		b.WriteString(v.styles.Muted.Render(hint))
		b.WriteString("\n")
	}
	b.WriteString(v.styles.Help.Render("[j/k] navigate  [enter/1-9] open  [q] quit"))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Selected returns the index under the cursor.
func (v *View) Selected() int {
	return v.selected
}
