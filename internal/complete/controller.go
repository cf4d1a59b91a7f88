// ABOUTME: Produces ranked completion candidates for an active trigger
// ABOUTME: Agents and recent files rank above fuzzy filesystem matches

package complete

import (
	"context"
	"strings"

	"github.com/ternchat/tern/internal/fuzzy"
)

// CandidateKind classifies a completion candidate.
type CandidateKind int

const (
	// CandidateFile is a path in the workspace.
	CandidateFile CandidateKind = iota
	// CandidateAgent is a named agent.
	CandidateAgent
	// CandidateCommand is a slash command.
	CandidateCommand
)

// Candidate is one selectable completion entry.
type Candidate struct {
	Kind        CandidateKind
	Value       string
	Description string
}

// Searcher finds workspace files matching a query.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]string, error)
}

// CommandEntry is the command metadata the controller ranks against.
type CommandEntry struct {
	Name        string
	Title       string
	Description string
}

// MaxCandidates caps the list handed to the popover.
const MaxCandidates = 10

// Controller turns triggers into candidate lists.
type Controller struct {
	agents   []string
	recents  func() []string
	searcher Searcher
	commands func() []CommandEntry
}

// New creates a controller. recents and commands may be nil; searcher may
// be nil when filesystem completion is unavailable.
func New(agents []string, recents func() []string, searcher Searcher, commands func() []CommandEntry) *Controller {
	return &Controller{
		agents:   agents,
		recents:  recents,
		searcher: searcher,
		commands: commands,
	}
}

// Candidates resolves the trigger into a ranked candidate list.
func (c *Controller) Candidates(ctx context.Context, t Trigger) ([]Candidate, error) {
	switch t.Kind {
	case KindMention:
		return c.mentionCandidates(ctx, t.Query)
	case KindCommand:
		return c.commandCandidates(t.Query), nil
	default:
		return nil, nil
	}
}

func (c *Controller) mentionCandidates(ctx context.Context, query string) ([]Candidate, error) {
	var out []Candidate
	seen := map[string]bool{}

	for _, name := range rank(query, c.agents) {
		out = append(out, Candidate{Kind: CandidateAgent, Value: name, Description: "agent"})
	}

	if c.recents != nil {
		for _, path := range rank(query, c.recents()) {
			if seen[path] {
				continue
			}
			seen[path] = true
			out = append(out, Candidate{Kind: CandidateFile, Value: path, Description: "recent"})
		}
	}

	if c.searcher != nil && len(out) < MaxCandidates {
		paths, err := c.searcher.Search(ctx, query, MaxCandidates)
		if err != nil {
			return nil, err
		}
		for _, path := range paths {
			if seen[path] {
				continue
			}
			seen[path] = true
			out = append(out, Candidate{Kind: CandidateFile, Value: path})
		}
	}

	if len(out) > MaxCandidates {
		out = out[:MaxCandidates]
	}
	return out, nil
}

func (c *Controller) commandCandidates(query string) []Candidate {
	if c.commands == nil {
		return nil
	}
	entries := c.commands()

	if query == "" {
		out := make([]Candidate, 0, len(entries))
		for _, e := range entries {
			out = append(out, commandCandidate(e))
		}
		return capCandidates(out)
	}

	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = strings.Join([]string{e.Name, e.Title, e.Description}, " ")
	}
	var out []Candidate
	for _, m := range fuzzy.Find(query, keys) {
		out = append(out, commandCandidate(entries[m.Index]))
	}
	return capCandidates(out)
}

func commandCandidate(e CommandEntry) Candidate {
	desc := e.Title
	if desc == "" {
		desc = e.Description
	}
	return Candidate{Kind: CandidateCommand, Value: e.Name, Description: desc}
}

// rank filters items against query with fuzzy matching, preserving the
// given order when the query is empty.
func rank(query string, items []string) []string {
	if query == "" {
		return items
	}
	matches := fuzzy.Find(query, items)
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = items[m.Index]
	}
	return out
}

func capCandidates(out []Candidate) []Candidate {
	if len(out) > MaxCandidates {
		return out[:MaxCandidates]
	}
	return out
}
