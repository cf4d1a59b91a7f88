// ABOUTME: Completion popover for @-mentions and slash commands
// ABOUTME: Arrow keys move the selection; Tab/Enter accept; Esc closes

package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ternchat/tern/internal/complete"
	"github.com/ternchat/tern/internal/textwidth"
)

const popoverMaxRows = 10

// PopoverModel shows completion candidates beneath the editor.
type PopoverModel struct {
	open       bool
	trigger    complete.Trigger
	candidates []complete.Candidate
	selected   int
	width      int
}

// NewPopoverModel creates a closed popover.
func NewPopoverModel() PopoverModel {
	return PopoverModel{width: 80}
}

// Open shows the popover for a trigger and its candidates. An empty
// candidate list keeps the popover closed.
func (m PopoverModel) Open(t complete.Trigger, candidates []complete.Candidate) PopoverModel {
	if len(candidates) == 0 {
		return m.Close()
	}
	m.open = true
	m.trigger = t
	m.candidates = candidates
	m.selected = 0
	return m
}

// Close hides the popover.
func (m PopoverModel) Close() PopoverModel {
	m.open = false
	m.candidates = nil
	m.selected = 0
	return m
}

// IsOpen reports whether the popover is visible.
func (m PopoverModel) IsOpen() bool { return m.open }

// Trigger returns the trigger the popover was opened for.
func (m PopoverModel) Trigger() complete.Trigger { return m.trigger }

// Selected returns the highlighted candidate.
func (m PopoverModel) Selected() (complete.Candidate, bool) {
	if !m.open || m.selected >= len(m.candidates) {
		return complete.Candidate{}, false
	}
	return m.candidates[m.selected], true
}

// Update handles navigation keys while open. Accept and dismiss are
// routed by the app.
func (m PopoverModel) Update(msg tea.Msg) (PopoverModel, tea.Cmd) {
	if !m.open {
		return m, nil
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		if size, isSize := msg.(tea.WindowSizeMsg); isSize {
			m.width = size.Width
		}
		return m, nil
	}

	switch key.Type {
	case tea.KeyUp:
		if m.selected > 0 {
			m.selected--
		} else {
			m.selected = len(m.candidates) - 1
		}
	case tea.KeyDown:
		m.selected = (m.selected + 1) % len(m.candidates)
	}
	return m, nil
}

// View renders the candidate rows with the selection highlighted.
func (m PopoverModel) View() string {
	if !m.open {
		return ""
	}
	s := Styles()

	rows := m.candidates
	if len(rows) > popoverMaxRows {
		rows = rows[:popoverMaxRows]
	}

	var b strings.Builder
	for i, c := range rows {
		line := fmt.Sprintf(" %s %s", candidateSigil(c), c.Value)
		if c.Description != "" {
			line += s.Dim.Render("  " + c.Description)
		}
		line = textwidth.Truncate(line, max(m.width-2, 10))

		if i == m.selected {
			b.WriteString(s.Selection.Render(line))
		} else {
			b.WriteString(line)
		}
		if i < len(rows)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func candidateSigil(c complete.Candidate) string {
	switch c.Kind {
	case complete.CandidateAgent:
		return "@"
	case complete.CandidateCommand:
		return "/"
	default:
		return "·"
	}
}
