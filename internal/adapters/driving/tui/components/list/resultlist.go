// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/geosearch/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/geosearch/internal/core/domain"
)

// Item is one row of a ResultList.
type Item struct {
	Title  string
	Badge  string
	Detail string

	// Local marks rows from favorites, history or a tileset.
	Local bool
}

// FromSuggestion builds a row for a suggestion.
func FromSuggestion(s *domain.SearchSuggestion) Item {
	item := Item{Title: s.Name, Detail: s.FullAddress}
	switch {
	case s.Type == domain.SuggestionTypeIndexableRecord:
		item.Badge = s.RecordLayer
		item.Local = true
	case len(s.ResultTypes) > 0:
		item.Badge = string(s.ResultTypes[0])
	default:
		item.Badge = string(s.Type)
	}
	if item.Detail == "" {
		item.Detail = s.Description
	}
	if s.Distance != nil {
		item.Detail = joinDetail(item.Detail, formatDistance(*s.Distance))
	}
	return item
}

// FromResult builds a row for a resolved result.
func FromResult(r *domain.SearchResult) Item {
	item := Item{Title: r.Name, Detail: r.FullAddress}
	if r.RecordLayer != "" {
		item.Badge = r.RecordLayer
		item.Local = true
	} else if len(r.Types) > 0 {
		item.Badge = string(r.Types[0])
	}
	if r.Distance != nil {
		item.Detail = joinDetail(item.Detail, formatDistance(*r.Distance))
	}
	return item
}

// FromRecord builds a row for a stored record.
func FromRecord(r *domain.IndexableRecord) Item {
	detail := r.Address.Formatted()
	if detail == "" {
		detail = fmt.Sprintf("%.5f, %.5f", r.Coordinate.Longitude, r.Coordinate.Latitude)
	}
	return Item{Title: r.Name, Badge: string(r.Type), Detail: detail, Local: true}
}

func joinDetail(a, b string) string {
	if a == "" {
		return b
	}
	return a + " · " + b
}

func formatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%.0f m", meters)
	}
	return fmt.Sprintf("%.1f km", meters/1000)
}

// ResultList displays suggestions, results or records in a navigable list.
type ResultList struct {
	items    []Item
	title    string
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewResultList creates a new result list component.
func NewResultList(s *styles.Styles) *ResultList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &ResultList{
		title:  "Results",
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the result list.
func (r *ResultList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (r *ResultList) Update(msg tea.Msg) (*ResultList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			r.MoveUp()
		case "down", "j":
			r.MoveDown()
		}
	}
	return r, nil
}

// View renders the result list.
func (r *ResultList) View() string {
	if len(r.items) == 0 {
		return r.styles.Muted.Render("No results")
	}

	lines := make([]string, 0, len(r.items)*2+2)
	header := r.styles.Subtitle.Render(fmt.Sprintf("%s (%d)", r.title, len(r.items)))
	lines = append(lines, header, "")

	// Each item takes two lines.
	visibleCount := (r.height - 4) / 2
	if visibleCount < 1 {
		visibleCount = 1
	}

	start := 0
	if r.selected >= visibleCount {
		start = r.selected - visibleCount + 1
	}
	end := min(start+visibleCount, len(r.items))

	for i := start; i < end; i++ {
		lines = append(lines, r.renderItem(i, &r.items[i]))
	}

	return strings.Join(lines, "\n")
}

func (r *ResultList) renderItem(index int, item *Item) string {
	indicator := "  "
	if index == r.selected {
		indicator = "> "
	}

	title := item.Title
	if title == "" {
		title = "(Unnamed)"
	}
	maxTitleLen := max(r.width-20, 10)
	title = truncate(title, maxTitleLen)

	badge := r.styles.Tag(item.Badge, item.Local)

	var titleLine string
	if index == r.selected {
		titleLine = r.styles.Selected.Render(indicator+title) + " " + badge
	} else {
		titleLine = r.styles.Normal.Render(indicator+title) + " " + badge
	}

	detail := truncate(item.Detail, max(r.width-6, 20))
	return titleLine + "\n" + r.styles.Muted.Render("    "+detail)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// SetItems replaces the rows and resets the selection.
func (r *ResultList) SetItems(title string, items []Item) {
	r.title = title
	r.items = items
	r.selected = 0
}

// Items returns the current rows.
func (r *ResultList) Items() []Item {
	return r.items
}

// Title returns the list header.
func (r *ResultList) Title() string {
	return r.title
}

// Selected returns the index of the selected row.
func (r *ResultList) Selected() int {
	return r.selected
}

// SetSelected sets the selected index.
func (r *ResultList) SetSelected(index int) {
	if index >= 0 && index < len(r.items) {
		r.selected = index
	}
}

// MoveUp moves selection up.
func (r *ResultList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves selection down.
func (r *ResultList) MoveDown() {
	if r.selected < len(r.items)-1 {
		r.selected++
	}
}

// SetDimensions sets the component dimensions.
func (r *ResultList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Width returns the current width.
func (r *ResultList) Width() int {
	return r.width
}

// Height returns the current height.
func (r *ResultList) Height() int {
	return r.height
}

// Count returns the number of rows.
func (r *ResultList) Count() int {
	return len(r.items)
}

// IsEmpty returns whether the list is empty.
func (r *ResultList) IsEmpty() bool {
	return len(r.items) == 0
}
