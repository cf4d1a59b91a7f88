// ABOUTME: Tests popover open/close behavior and selection navigation
// ABOUTME: Selection wraps at both ends; rows cap at popoverMaxRows

package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ternchat/tern/internal/complete"
	"github.com/ternchat/tern/internal/textwidth"
)

func testCandidates() []complete.Candidate {
	return []complete.Candidate{
		{Kind: complete.CandidateAgent, Value: "plan", Description: "agent"},
		{Kind: complete.CandidateFile, Value: "main.go"},
		{Kind: complete.CandidateFile, Value: "parse.go"},
	}
}

func TestPopoverOpenWithNoCandidatesStaysClosed(t *testing.T) {
	m := NewPopoverModel().Open(complete.Trigger{Kind: complete.KindMention}, nil)
	if m.IsOpen() {
		t.Error("IsOpen = true; want false for empty candidates")
	}
}

func TestPopoverSelectionNavigation(t *testing.T) {
	m := NewPopoverModel().Open(complete.Trigger{Kind: complete.KindMention}, testCandidates())

	sel, ok := m.Selected()
	if !ok || sel.Value != "plan" {
		t.Fatalf("initial Selected = %+v, %v; want plan", sel, ok)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if sel, _ = m.Selected(); sel.Value != "main.go" {
		t.Errorf("after down = %q; want main.go", sel.Value)
	}

	// Up from the first entry wraps to the last.
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if sel, _ = m.Selected(); sel.Value != "parse.go" {
		t.Errorf("after wrap = %q; want parse.go", sel.Value)
	}

	// Down from the last wraps to the first.
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if sel, _ = m.Selected(); sel.Value != "plan" {
		t.Errorf("after down-wrap = %q; want plan", sel.Value)
	}
}

func TestPopoverCloseClearsState(t *testing.T) {
	m := NewPopoverModel().Open(complete.Trigger{Kind: complete.KindCommand}, testCandidates())
	m = m.Close()
	if m.IsOpen() {
		t.Error("IsOpen after Close = true")
	}
	if _, ok := m.Selected(); ok {
		t.Error("Selected after Close = ok")
	}
	if m.View() != "" {
		t.Errorf("View after Close = %q; want empty", m.View())
	}
}

func TestPopoverViewMarksKinds(t *testing.T) {
	m := NewPopoverModel().Open(complete.Trigger{Kind: complete.KindMention}, testCandidates())
	view := textwidth.StripANSI(m.View())

	lines := strings.Split(view, "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d; want 3", len(lines))
	}
	if !strings.Contains(lines[0], "@ plan") {
		t.Errorf("agent row = %q; want @ sigil", lines[0])
	}
	if !strings.Contains(lines[1], "· main.go") {
		t.Errorf("file row = %q; want · sigil", lines[1])
	}
}

func TestPopoverViewCapsRows(t *testing.T) {
	var many []complete.Candidate
	for i := 0; i < popoverMaxRows+5; i++ {
		many = append(many, complete.Candidate{Kind: complete.CandidateFile, Value: "f.go"})
	}
	m := NewPopoverModel().Open(complete.Trigger{Kind: complete.KindMention}, many)
	view := m.View()
	if got := strings.Count(view, "\n") + 1; got != popoverMaxRows {
		t.Errorf("rows = %d; want %d", got, popoverMaxRows)
	}
}
