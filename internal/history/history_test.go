// ABOUTME: Tests for the history store (bound, dedup, persistence) and navigator
// ABOUTME: Navigation symmetry: one Up then one Down restores the draft exactly

package history

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/ternchat/tern/internal/editor"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := Load(filepath.Join(t.TempDir(), "history.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return s
}

func TestAddPrependsMostRecentFirst(t *testing.T) {
	s := newStore(t)
	s.Add(ModeNormal, editor.FromText("first"))
	s.Add(ModeNormal, editor.FromText("second"))

	entries := s.Entries(ModeNormal)
	if len(entries) != 2 {
		t.Fatalf("len(Entries) = %d; want 2", len(entries))
	}
	if got := entries[0].Text(); got != "second" {
		t.Errorf("Entries[0] = %q; want %q", got, "second")
	}
}

func TestAddIgnoresEmptyAndConsecutiveDuplicates(t *testing.T) {
	s := newStore(t)

	if s.Add(ModeNormal, editor.Empty()) {
		t.Error("Add(empty) = true; want false")
	}
	if !s.Add(ModeNormal, editor.FromText("same")) {
		t.Error("first Add = false; want true")
	}
	if s.Add(ModeNormal, editor.FromText("same")) {
		t.Error("duplicate Add = true; want false")
	}
	s.Add(ModeNormal, editor.FromText("other"))
	if !s.Add(ModeNormal, editor.FromText("same")) {
		t.Error("non-consecutive duplicate rejected")
	}
}

func TestAddEnforcesBound(t *testing.T) {
	s := newStore(t)
	for i := 0; i < MaxEntries+20; i++ {
		s.Add(ModeNormal, editor.FromText(fmt.Sprintf("entry %d", i)))
	}

	if got := s.Len(ModeNormal); got != MaxEntries {
		t.Errorf("Len = %d; want %d", got, MaxEntries)
	}
	newest := fmt.Sprintf("entry %d", MaxEntries+19)
	if got := s.Entries(ModeNormal)[0].Text(); got != newest {
		t.Errorf("Entries[0] = %q; want %q", got, newest)
	}
}

func TestModesAreIndependent(t *testing.T) {
	s := newStore(t)
	s.Add(ModeNormal, editor.FromText("ask something"))
	s.Add(ModeShell, editor.FromText("ls -la"))

	if got := s.Len(ModeNormal); got != 1 {
		t.Errorf("normal Len = %d; want 1", got)
	}
	if got := s.Entries(ModeShell)[0].Text(); got != "ls -la" {
		t.Errorf("shell entry = %q; want %q", got, "ls -la")
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	s.Add(ModeNormal, editor.FromText("persisted"))
	s.Add(ModeShell, editor.FromText("echo hi"))

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := reloaded.Entries(ModeNormal)[0].Text(); got != "persisted" {
		t.Errorf("reloaded normal entry = %q; want %q", got, "persisted")
	}
	if got := reloaded.Entries(ModeShell)[0].Text(); got != "echo hi" {
		t.Errorf("reloaded shell entry = %q; want %q", got, "echo hi")
	}
}

func TestNavigatorUpSavesDraftAndWalksOlder(t *testing.T) {
	s := newStore(t)
	s.Add(ModeNormal, editor.FromText("old"))
	s.Add(ModeNormal, editor.FromText("new"))
	n := NewNavigator(s, ModeNormal)

	p, cursor, ok := n.Up(editor.FromText("draft"))
	if !ok || p.Text() != "new" || cursor != 0 {
		t.Fatalf("first Up = (%q,%d,%v); want (new,0,true)", p.Text(), cursor, ok)
	}
	p, _, ok = n.Up(p)
	if !ok || p.Text() != "old" {
		t.Fatalf("second Up = (%q,%v); want (old,true)", p.Text(), ok)
	}
	if _, _, ok = n.Up(p); ok {
		t.Error("Up at oldest = true; want false")
	}
}

func TestNavigatorDownSymmetry(t *testing.T) {
	s := newStore(t)
	s.Add(ModeNormal, editor.FromText("entry"))
	n := NewNavigator(s, ModeNormal)

	draft := editor.FromText("work in progress")
	n.Up(draft)

	p, cursor, ok := n.Down()
	if !ok || !p.Equal(draft) {
		t.Fatalf("Down = (%q,%v); want restored draft", p.Text(), ok)
	}
	if cursor != p.Len() {
		t.Errorf("cursor = %d; want %d (end)", cursor, p.Len())
	}

	// One more Down resets to the canonical empty prompt.
	p, cursor, ok = n.Down()
	if !ok || !p.IsEmpty() || cursor != 0 {
		t.Errorf("second Down = (%q,%d,%v); want empty prompt", p.Text(), cursor, ok)
	}

	// Fully at rest: further Down is a no-op.
	if _, _, ok = n.Down(); ok {
		t.Error("third Down = true; want false")
	}
}

func TestNavigatorDownWalksNewerBeforeDraft(t *testing.T) {
	s := newStore(t)
	s.Add(ModeNormal, editor.FromText("older"))
	s.Add(ModeNormal, editor.FromText("newer"))
	n := NewNavigator(s, ModeNormal)

	draft := editor.FromText("draft")
	n.Up(draft)
	n.Up(draft)

	p, _, ok := n.Down()
	if !ok || p.Text() != "newer" {
		t.Fatalf("Down = (%q,%v); want (newer,true)", p.Text(), ok)
	}
	p, _, _ = n.Down()
	if !p.Equal(draft) {
		t.Errorf("Down = %q; want draft", p.Text())
	}
}

func TestNavigatorUpWithEmptyHistory(t *testing.T) {
	n := NewNavigator(newStore(t), ModeNormal)
	if _, _, ok := n.Up(editor.Empty()); ok {
		t.Error("Up with no entries = true; want false")
	}
}

func TestNavigatorModeSwitchResets(t *testing.T) {
	s := newStore(t)
	s.Add(ModeNormal, editor.FromText("entry"))
	n := NewNavigator(s, ModeNormal)
	n.Up(editor.FromText("draft"))

	n.SetMode(ModeShell)
	if n.InHistory() {
		t.Error("InHistory after mode switch = true; want false")
	}
}
