// Package search provides the search-as-you-type view for the TUI.
package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/geosearch/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/geosearch/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/geosearch/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/geosearch/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/geosearch/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/geosearch/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/geosearch/internal/core/domain"
	"github.com/custodia-labs/geosearch/internal/core/ports/driving"
)

// debounceElapsed fires when the input has been idle for the debounce
// interval after edit Seq.
type debounceElapsed struct {
	Seq int
}

// mode is what the list currently shows.
type mode int

const (
	modeSuggestions mode = iota
	modeResults
)

// View represents the search view with input, list, detail pane and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.SearchInput
	list      *list.ResultList
	statusbar *status.Bar

	searcher  Searcher
	favorites driving.RecordService
	ctx       context.Context
	source    messages.ViewType
	title     string
	debounce  time.Duration

	// seq counts edits; outcomes of older edits are dropped.
	seq int

	mode        mode
	suggestions []domain.SearchSuggestion
	results     []domain.SearchResult
	detail      *domain.SearchResult

	width      int
	height     int
	ready      bool
	err        error
	focusInput bool
}

// NewView creates a new search view.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	searcher Searcher,
	favorites driving.RecordService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:     s,
		keymap:     km,
		input:      input.NewSearchInput(s),
		list:       list.NewResultList(s),
		statusbar:  status.NewBar(s, km),
		searcher:   searcher,
		favorites:  favorites,
		ctx:        context.Background(),
		source:     messages.ViewSearch,
		title:      "geosearch",
		width:      80,
		height:     24,
		focusInput: true,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// WithTitle sets the header.
func (v *View) WithTitle(title string) *View {
	v.title = title
	return v
}

// WithSource sets the view type stamped on outcomes, so that several
// search views can share one program.
func (v *View) WithSource(vt messages.ViewType) *View {
	v.source = vt
	return v
}

// WithDebounce waits d after the last edit before searching. Zero searches
// on every edit.
func (v *View) WithDebounce(d time.Duration) *View {
	v.debounce = d
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the search view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case debounceElapsed:
		if msg.Seq != v.seq {
			return v, nil
		}
		return v, v.performSearch(msg.Seq, v.input.Value())

	case messages.SuggestionsLoaded:
		if msg.Source == v.source {
			v.handleSuggestionsLoaded(msg)
		}
		return v, nil

	case messages.SelectionCompleted:
		if msg.Source == v.source {
			v.handleSelectionCompleted(msg)
		}
		return v, nil

	case messages.FavoriteAdded:
		if msg.Err != nil {
			v.setError(msg.Err)
			return v, nil
		}
		v.statusbar.SetMessage(fmt.Sprintf("Saved %q to favorites", msg.Record.Name))
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd, _ = v.input.Update(msg)
	return v, cmd
}

// handleKeyMsg processes keyboard input.
//
//nolint:gocyclo // key dispatch
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		return v.back()
	}

	if msg.Type == tea.KeyTab {
		v.toggleFocus()
		return v, nil
	}

	if v.focusInput {
		if msg.Type == tea.KeyEnter {
			if !v.list.IsEmpty() {
				v.toggleFocus()
			}
			return v, nil
		}
		var cmd tea.Cmd
		var changed bool
		v.input, cmd, changed = v.input.Update(msg)
		if changed {
			return v, tea.Batch(cmd, v.queryChanged())
		}
		return v, cmd
	}

	switch {
	case keymap.Matches(msg.String(), v.keymap.Select):
		return v, v.activate()
	case keymap.Matches(msg.String(), v.keymap.NewSearch):
		v.Reset()
		return v, nil
	case keymap.Matches(msg.String(), v.keymap.Favorite):
		return v, v.addFavorite()
	case keymap.Matches(msg.String(), v.keymap.Up):
		v.list.MoveUp()
	case keymap.Matches(msg.String(), v.keymap.Down):
		v.list.MoveDown()
	}
	return v, nil
}

// back closes the detail pane, then the result list, then the view.
func (v *View) back() (*View, tea.Cmd) {
	switch {
	case v.detail != nil:
		v.detail = nil
		return v, nil
	case v.mode == modeResults:
		v.showSuggestions(v.suggestions)
		return v, nil
	default:
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}
}

func (v *View) toggleFocus() {
	if v.focusInput && v.list.IsEmpty() {
		return
	}
	v.focusInput = !v.focusInput
	if v.focusInput {
		v.input.Focus()
	} else {
		v.input.Blur()
	}
}

// queryChanged starts a search for the current input, debounced when
// configured. Clearing the input clears the list.
func (v *View) queryChanged() tea.Cmd {
	v.seq++
	v.detail = nil
	query := v.input.Value()
	if strings.TrimSpace(query) == "" {
		v.showSuggestions(nil)
		v.statusbar.Clear()
		return nil
	}

	v.statusbar.SetState(status.StateSearching)
	if v.debounce <= 0 {
		return v.performSearch(v.seq, query)
	}
	seq := v.seq
	return tea.Tick(v.debounce, func(time.Time) tea.Msg {
		return debounceElapsed{Seq: seq}
	})
}

// performSearch runs the suggest step for query.
func (v *View) performSearch(seq int, query string) tea.Cmd {
	searcher, ctx, source := v.searcher, v.ctx, v.source
	return func() tea.Msg {
		if searcher == nil {
			return messages.ErrorOccurred{Err: ErrNoSearcher}
		}
		out, err := searcher.Search(ctx, query)
		return messages.SuggestionsLoaded{
			Source:      source,
			Seq:         seq,
			Query:       query,
			Suggestions: out.Suggestions,
			Err:         err,
		}
	}
}

func (v *View) handleSuggestionsLoaded(msg messages.SuggestionsLoaded) {
	if msg.Seq != v.seq {
		return
	}
	if msg.Err != nil {
		// Superseded by a newer request.
		if domain.IsCancelled(msg.Err) {
			return
		}
		v.setError(msg.Err)
		return
	}
	v.err = nil
	v.statusbar.SetMessage("")
	v.showSuggestions(msg.Suggestions)
}

// activate selects the highlighted row.
func (v *View) activate() tea.Cmd {
	idx := v.list.Selected()
	if v.mode == modeResults {
		if idx < len(v.results) {
			r := v.results[idx]
			v.detail = &r
		}
		return nil
	}
	if idx >= len(v.suggestions) {
		return nil
	}

	suggestion := v.suggestions[idx]
	searcher, ctx, source := v.searcher, v.ctx, v.source
	v.statusbar.SetState(status.StateSearching)
	return func() tea.Msg {
		if searcher == nil {
			return messages.ErrorOccurred{Err: ErrNoSearcher}
		}
		out, err := searcher.Select(ctx, suggestion)
		return messages.SelectionCompleted{
			Source:      source,
			Suggestion:  suggestion,
			Result:      out.Result,
			Results:     out.Results,
			Suggestions: out.Suggestions,
			Err:         err,
		}
	}
}

func (v *View) handleSelectionCompleted(msg messages.SelectionCompleted) {
	if msg.Err != nil {
		if domain.IsCancelled(msg.Err) {
			return
		}
		v.setError(msg.Err)
		return
	}
	v.err = nil
	v.statusbar.SetMessage("")

	switch {
	case msg.Result != nil:
		v.detail = msg.Result
		v.statusbar.SetState(status.StateResults)
	case msg.Results != nil:
		v.showResults(msg.Suggestion.Name, msg.Results)
	default:
		// A query suggestion: the refined query replaces the input.
		v.seq++
		if msg.Suggestion.QueryText != "" {
			v.input.SetValue(msg.Suggestion.QueryText)
		}
		v.showSuggestions(msg.Suggestions)
	}
}

// addFavorite saves the shown or highlighted result.
func (v *View) addFavorite() tea.Cmd {
	res := v.detail
	if res == nil && v.mode == modeResults && v.list.Selected() < len(v.results) {
		res = &v.results[v.list.Selected()]
	}
	if res == nil {
		v.statusbar.SetMessage("Select a place first")
		return nil
	}

	record := domain.RecordFromResult(*res, time.Now())
	favorites, ctx := v.favorites, v.ctx
	return func() tea.Msg {
		if favorites == nil {
			return messages.FavoriteAdded{Record: record, Err: ErrNoFavorites}
		}
		return messages.FavoriteAdded{Record: record, Err: favorites.Upsert(ctx, record)}
	}
}

func (v *View) showSuggestions(suggestions []domain.SearchSuggestion) {
	v.mode = modeSuggestions
	v.suggestions = suggestions
	v.results = nil
	items := make([]list.Item, len(suggestions))
	for i := range suggestions {
		items[i] = list.FromSuggestion(&suggestions[i])
	}
	v.list.SetItems("Suggestions", items)
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetNoun("suggestions")
	v.statusbar.SetResultCount(len(items))
	if len(items) == 0 && !v.focusInput {
		v.toggleFocus()
	}
}

func (v *View) showResults(title string, results []domain.SearchResult) {
	v.mode = modeResults
	v.results = results
	items := make([]list.Item, len(results))
	for i := range results {
		items[i] = list.FromResult(&results[i])
	}
	v.list.SetItems(title, items)
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetNoun("results")
	v.statusbar.SetResultCount(len(items))
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// View renders the search view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 10)
	sections = append(sections, v.styles.Title.Render(v.title), "", v.input.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	if v.detail != nil {
		sections = append(sections, v.renderDetail(v.detail))
	} else {
		sections = append(sections, v.list.View())
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderDetail renders a resolved place.
func (v *View) renderDetail(r *domain.SearchResult) string {
	lines := []string{v.styles.Subtitle.Render(r.Name)}
	if r.FullAddress != "" {
		lines = append(lines, v.styles.Normal.Render(r.FullAddress))
	} else if addr := r.Address.Formatted(); addr != "" {
		lines = append(lines, v.styles.Normal.Render(addr))
	}
	if r.Description != "" {
		lines = append(lines, v.styles.Muted.Render(r.Description))
	}
	lines = append(lines, "", v.styles.LonLat(r.Coordinate.Longitude, r.Coordinate.Latitude))

	if len(r.Types) > 0 {
		types := make([]string, len(r.Types))
		for i, t := range r.Types {
			types[i] = string(t)
		}
		lines = append(lines, v.styles.Muted.Render("Type: "+strings.Join(types, ", ")))
	}
	if len(r.Categories) > 0 {
		lines = append(lines, v.styles.Muted.Render("Categories: "+strings.Join(r.Categories, ", ")))
	}
	if r.Distance != nil {
		lines = append(lines, v.styles.Muted.Render(fmt.Sprintf("Distance: %.0f m", *r.Distance)))
	}
	if r.RecordLayer != "" {
		lines = append(lines, v.styles.Tag(r.RecordLayer, true))
	}
	lines = append(lines, "", v.styles.Help.Render("[f] favorite  [esc] back"))

	return v.styles.Border.Padding(0, 1).Render(strings.Join(lines, "\n"))
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.list.SetDimensions(width, height-10)
	v.statusbar.SetWidth(width)
}

// Width returns the current width.
func (v *View) Width() int {
	return v.width
}

// Height returns the current height.
func (v *View) Height() int {
	return v.height
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Query returns the current search query.
func (v *View) Query() string {
	return v.input.Value()
}

// Suggestions returns the suggestions from the latest search.
func (v *View) Suggestions() []domain.SearchSuggestion {
	return v.suggestions
}

// Results returns the results of a selected category, if shown.
func (v *View) Results() []domain.SearchResult {
	return v.results
}

// Detail returns the resolved place being shown, if any.
func (v *View) Detail() *domain.SearchResult {
	return v.detail
}

// SelectedIndex returns the index of the highlighted row.
func (v *View) SelectedIndex() int {
	return v.list.Selected()
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// Reset clears the view and focuses the input.
func (v *View) Reset() {
	v.seq++
	v.focusInput = true
	v.input.Focus()
	v.input.SetValue("")
	v.mode = modeSuggestions
	v.suggestions = nil
	v.results = nil
	v.detail = nil
	v.list.SetItems("Suggestions", nil)
	v.err = nil
	v.statusbar.Clear()
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}
