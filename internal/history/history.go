// ABOUTME: Bounded, persisted prompt history with dual normal/shell lists
// ABOUTME: Navigator walks entries with draft save/restore; Store handles the JSON file

package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ternchat/tern/internal/editor"
	"github.com/ternchat/tern/internal/log"
)

// MaxEntries bounds each history list.
const MaxEntries = 100

// Mode selects which history list a prompt belongs to.
type Mode string

const (
	// ModeNormal is the default prompt history.
	ModeNormal Mode = "normal"
	// ModeShell is the history for shell-mode submissions.
	ModeShell Mode = "shell"
)

// Store holds both history lists, most-recent-first, persisted as JSON.
type Store struct {
	mu    sync.Mutex
	path  string
	lists map[Mode][]editor.Prompt
}

// Load reads the history file at path. A missing file is a fresh start.
func Load(path string) (*Store, error) {
	s := &Store{
		path:  path,
		lists: map[Mode][]editor.Prompt{},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("reading history file: %w", err)
	}
	if err := json.Unmarshal(data, &s.lists); err != nil {
		return nil, fmt.Errorf("decoding history file: %w", err)
	}
	for mode, list := range s.lists {
		if len(list) > MaxEntries {
			s.lists[mode] = list[:MaxEntries]
		}
	}
	return s, nil
}

// Add prepends a snapshot of p to the mode's list. Empty prompts and
// consecutive duplicates are ignored. Reports whether an entry was added.
func (s *Store) Add(mode Mode, p editor.Prompt) bool {
	if p.IsEmpty() {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.lists[mode]
	if len(list) > 0 && list[0].Equal(p) {
		return false
	}
	list = append([]editor.Prompt{p.Clone()}, list...)
	if len(list) > MaxEntries {
		list = list[:MaxEntries]
	}
	s.lists[mode] = list

	if err := s.save(); err != nil {
		log.Warn("saving history", "err", err)
	}
	return true
}

// Entries returns a copy of the mode's list, most-recent-first.
func (s *Store) Entries(mode Mode) []editor.Prompt {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]editor.Prompt, len(s.lists[mode]))
	copy(out, s.lists[mode])
	return out
}

// Len returns the number of entries in the mode's list.
func (s *Store) Len(mode Mode) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lists[mode])
}

// save writes the lists to disk. Must be called with s.mu held.
func (s *Store) save() error {
	if s.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating history directory: %w", err)
	}
	data, err := json.Marshal(s.lists)
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("writing history file: %w", err)
	}
	return nil
}

// Navigator walks a history list with draft save/restore semantics.
// Index -1 means "at the input line"; 0 is the most recent entry.
type Navigator struct {
	store    *Store
	mode     Mode
	idx      int
	draft    editor.Prompt
	hasDraft bool
	restored bool
}

// NewNavigator creates a navigator over the store's given mode.
func NewNavigator(store *Store, mode Mode) *Navigator {
	return &Navigator{store: store, mode: mode, idx: -1}
}

// SetMode switches lists and resets the navigation position.
func (n *Navigator) SetMode(mode Mode) {
	if n.mode != mode {
		n.mode = mode
		n.Reset()
	}
}

// Mode returns the active history mode.
func (n *Navigator) Mode() Mode { return n.mode }

// InHistory reports whether the navigator currently points at an entry.
func (n *Navigator) InHistory() bool { return n.idx >= 0 }

// Up moves to an older entry. On the first call it saves the current draft
// and returns the most recent entry with the cursor at the start. Returns
// false at the oldest entry (or with an empty list).
func (n *Navigator) Up(current editor.Prompt) (editor.Prompt, int, bool) {
	entries := n.store.Entries(n.mode)
	if len(entries) == 0 {
		return editor.Prompt{}, 0, false
	}

	if n.idx < 0 {
		n.draft = current.Clone()
		n.hasDraft = true
		n.restored = false
		n.idx = 0
	} else if n.idx+1 < len(entries) {
		n.idx++
	} else {
		return editor.Prompt{}, 0, false
	}

	return entries[n.idx].Clone(), 0, true
}

// Down moves back toward the input line: newer entries first, then the
// saved draft, then (one step further) the canonical empty prompt. The
// cursor lands at the end on every transition.
func (n *Navigator) Down() (editor.Prompt, int, bool) {
	if n.idx > 0 {
		n.idx--
		p := n.store.Entries(n.mode)[n.idx].Clone()
		return p, p.Len(), true
	}
	if n.idx == 0 {
		n.idx = -1
		n.restored = true
		if n.hasDraft {
			d := n.draft.Clone()
			return d, d.Len(), true
		}
		p := editor.Empty()
		return p, 0, true
	}
	if n.restored {
		n.restored = false
		n.hasDraft = false
		p := editor.Empty()
		return p, 0, true
	}
	return editor.Prompt{}, 0, false
}

// Reset returns the navigator to the input line, dropping any saved draft.
func (n *Navigator) Reset() {
	n.idx = -1
	n.hasDraft = false
	n.restored = false
}
