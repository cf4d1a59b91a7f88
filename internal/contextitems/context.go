// ABOUTME: Sticky context items attached to a session: files, comments, URLs
// ABOUTME: Items render into a synthetic note prepended to outgoing prompts

package contextitems

import (
	"fmt"
	"strings"
	"sync"
)

// Kind classifies a context item.
type Kind string

const (
	KindFile    Kind = "file"
	KindComment Kind = "comment"
	KindURL     Kind = "url"
)

// Item is one piece of sticky context.
type Item struct {
	Kind Kind
	// Value is the path, comment text, or URL.
	Value string
	// Detail carries fetched page text for URL items.
	Detail string
}

// Set holds a session's context items in insertion order.
type Set struct {
	mu    sync.Mutex
	items []Item
}

// NewSet creates an empty context set.
func NewSet() *Set {
	return &Set{}
}

// Add appends an item, ignoring exact duplicates.
func (s *Set) Add(item Item) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.items {
		if existing.Kind == item.Kind && existing.Value == item.Value {
			return false
		}
	}
	s.items = append(s.items, item)
	return true
}

// Remove deletes the item at index i.
func (s *Set) Remove(i int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i < 0 || i >= len(s.items) {
		return false
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return true
}

// Items returns a copy of the current items.
func (s *Set) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Clear drops all items.
func (s *Set) Clear() {
	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()
}

// Note renders the set as a synthetic context block for prompt payloads.
// Returns "" when the set is empty.
func (s *Set) Note() string {
	items := s.Items()
	if len(items) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Context:\n")
	for _, item := range items {
		switch item.Kind {
		case KindFile:
			fmt.Fprintf(&b, "- file: %s\n", item.Value)
		case KindComment:
			fmt.Fprintf(&b, "- note: %s\n", item.Value)
		case KindURL:
			fmt.Fprintf(&b, "- url: %s\n", item.Value)
			if item.Detail != "" {
				fmt.Fprintf(&b, "%s\n", indent(item.Detail, "  "))
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}
