// Package status provides the status line shown under every list view.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/geosearch/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/geosearch/internal/adapters/driving/tui/styles"
)

// State selects what the left side says and which key hints are shown.
type State string

const (
	StateReady     State = "ready"
	StateSearching State = "searching"
	StateError     State = "error"
	StateResults   State = "results"
	StateRecords   State = "records"
)

const defaultNoun = "results"

// Bar is a passive status line. Views drive it through its setters.
type Bar struct {
	styles *styles.Styles
	keymap *keymap.KeyMap

	state   State
	message string
	count   int
	noun    string
	width   int
}

// NewBar creates a status bar. Nil styles or keymap mean the defaults.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &Bar{styles: s, keymap: km, state: StateReady, noun: defaultNoun, width: 80}
}

// View renders the bar: status on the left, key hints on the right.
func (s *Bar) View() string {
	left := s.status()
	right := s.hints()
	gap := max(s.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return s.styles.StatusBar.Width(s.width).Render(left + strings.Repeat(" ", gap) + right)
}

// status renders the state. A message, such as a save notice, follows the
// count so the user sees both.
func (s *Bar) status() string {
	switch s.state {
	case StateSearching:
		return s.styles.Muted.Render("Searching...")
	case StateError:
		if s.message == "" {
			return s.styles.Error.Render("Error")
		}
		return s.styles.Error.Render("Error: " + s.message)
	}

	var parts []string
	if s.count > 0 {
		parts = append(parts, s.styles.Normal.Render(fmt.Sprintf("%d %s", s.count, s.noun)))
	}
	if s.message != "" {
		parts = append(parts, s.styles.Success.Render(s.message))
	}
	if len(parts) == 0 {
		return s.styles.Muted.Render("Ready")
	}
	return strings.Join(parts, s.styles.Muted.Render(" · "))
}

func (s *Bar) hints() string {
	var bindings []key.Binding
	switch {
	case s.state == StateRecords:
		bindings = s.keymap.RecordsHelp()
	case s.state == StateResults && s.count > 0:
		bindings = s.keymap.ResultsHelp()
	default:
		bindings = s.keymap.ShortHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, h.Key+": "+h.Desc)
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetState sets the current state.
func (s *Bar) SetState(state State) { s.state = state }

// State returns the current state.
func (s *Bar) State() State { return s.state }

// SetMessage sets a notice, or the error text in StateError.
func (s *Bar) SetMessage(message string) { s.message = message }

// Message returns the current message.
func (s *Bar) Message() string { return s.message }

// SetResultCount sets how many items the view lists.
func (s *Bar) SetResultCount(count int) { s.count = count }

// ResultCount returns the item count.
func (s *Bar) ResultCount() int { return s.count }

// SetNoun sets what the count refers to, e.g. "suggestions".
func (s *Bar) SetNoun(noun string) { s.noun = noun }

// SetWidth sets the bar width.
func (s *Bar) SetWidth(width int) { s.width = width }

// Width returns the bar width.
func (s *Bar) Width() int { return s.width }

// Clear resets the bar to its initial state.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
	s.count = 0
	s.noun = defaultNoun
}
