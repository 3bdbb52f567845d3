// Package records provides the favorites and history views for the TUI.
package records

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/geosearch/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/geosearch/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/geosearch/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/geosearch/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/geosearch/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/geosearch/internal/core/domain"
	"github.com/custodia-labs/geosearch/internal/core/ports/driving"
)

// ErrNoService indicates the collection is not configured.
var ErrNoService = errors.New("record collection not available")

// View lists the records of one collection.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	list      *list.ResultList
	statusbar *status.Bar

	service driving.RecordService
	title   string
	ctx     context.Context

	records      []domain.IndexableRecord
	confirmClear bool
	err          error

	width  int
	height int
	ready  bool
}

// NewView creates a view over service, titled e.g. "Favorites".
func NewView(s *styles.Styles, km *keymap.KeyMap, title string, service driving.RecordService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	v := &View{
		styles:    s,
		keymap:    km,
		list:      list.NewResultList(s),
		statusbar: status.NewBar(s, km),
		service:   service,
		title:     title,
		ctx:       context.Background(),
		width:     80,
		height:    24,
	}
	v.statusbar.SetState(status.StateRecords)
	v.statusbar.SetNoun("entries")
	return v
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

func (v *View) collection() string {
	if v.service == nil {
		return strings.ToLower(v.title)
	}
	return v.service.Name()
}

// Init loads the records.
func (v *View) Init() tea.Cmd {
	return v.load()
}

func (v *View) load() tea.Cmd {
	service, ctx, name := v.service, v.ctx, v.collection()
	return func() tea.Msg {
		if service == nil {
			return messages.RecordsLoaded{Collection: name, Err: ErrNoService}
		}
		records, err := service.List(ctx)
		return messages.RecordsLoaded{Collection: name, Records: records, Err: err}
	}
}

// Update handles messages for the view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.RecordsLoaded:
		if msg.Collection != v.collection() {
			return v, nil
		}
		if msg.Err != nil {
			v.setError(msg.Err)
			return v, nil
		}
		v.err = nil
		v.setRecords(msg.Records)
		return v, nil

	case messages.RecordRemoved:
		if msg.Collection != v.collection() {
			return v, nil
		}
		if msg.Err != nil {
			v.setError(msg.Err)
			return v, nil
		}
		v.statusbar.SetMessage("Removed " + msg.ID)
		return v, v.load()

	case messages.RecordsCleared:
		if msg.Collection != v.collection() {
			return v, nil
		}
		if msg.Err != nil {
			v.setError(msg.Err)
			return v, nil
		}
		v.setRecords(nil)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}
	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()
	confirm := v.confirmClear
	v.confirmClear = false

	switch {
	case keymap.Matches(key, v.keymap.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case keymap.Matches(key, v.keymap.Up):
		v.list.MoveUp()
	case keymap.Matches(key, v.keymap.Down):
		v.list.MoveDown()
	case keymap.Matches(key, v.keymap.Delete):
		return v, v.removeSelected()
	case keymap.Matches(key, v.keymap.Clear):
		if len(v.records) == 0 {
			return v, nil
		}
		if !confirm {
			v.confirmClear = true
			return v, nil
		}
		return v, v.clear()
	}
	return v, nil
}

func (v *View) removeSelected() tea.Cmd {
	idx := v.list.Selected()
	if idx >= len(v.records) {
		return nil
	}
	id := v.records[idx].ID
	service, ctx, name := v.service, v.ctx, v.collection()
	return func() tea.Msg {
		if service == nil {
			return messages.RecordRemoved{Collection: name, ID: id, Err: ErrNoService}
		}
		return messages.RecordRemoved{Collection: name, ID: id, Err: service.Remove(ctx, id)}
	}
}

func (v *View) clear() tea.Cmd {
	service, ctx, name := v.service, v.ctx, v.collection()
	return func() tea.Msg {
		if service == nil {
			return messages.RecordsCleared{Collection: name, Err: ErrNoService}
		}
		return messages.RecordsCleared{Collection: name, Err: service.Clear(ctx)}
	}
}

func (v *View) setRecords(records []domain.IndexableRecord) {
	v.records = records
	items := make([]list.Item, len(records))
	for i := range records {
		items[i] = list.FromRecord(&records[i])
	}
	v.list.SetItems(v.title, items)
	v.statusbar.SetState(status.StateRecords)
	v.statusbar.SetResultCount(len(items))
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// View renders the records view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := []string{v.styles.Title.Render(v.title), ""}
	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}
	if len(v.records) == 0 {
		sections = append(sections, v.styles.Muted.Render(fmt.Sprintf("No %s yet", strings.ToLower(v.title))))
	} else {
		sections = append(sections, v.list.View())
	}
	if v.confirmClear {
		sections = append(sections, "", v.styles.Warning.Render("Press c again to remove every entry"))
	}
	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.list.SetDimensions(width, height-6)
	v.statusbar.SetWidth(width)
}

// Records returns the loaded records.
func (v *View) Records() []domain.IndexableRecord {
	return v.records
}

// Selected returns the highlighted index.
func (v *View) Selected() int {
	return v.list.Selected()
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
