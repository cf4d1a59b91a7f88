// ABOUTME: Tests for candidate resolution and ranking
// ABOUTME: Agents rank before recents, recents before filesystem matches

package complete

import (
	"context"
	"errors"
	"testing"
)

type stubSearcher struct {
	paths []string
	err   error
}

func (s stubSearcher) Search(_ context.Context, _ string, limit int) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(s.paths) > limit {
		return s.paths[:limit], nil
	}
	return s.paths, nil
}

func TestMentionCandidateOrdering(t *testing.T) {
	c := New(
		[]string{"planner"},
		func() []string { return []string{"lib/plans.go"} },
		stubSearcher{paths: []string{"cmd/plain.go"}},
		nil,
	)

	got, err := c.Candidates(context.Background(), Trigger{Kind: KindMention, Query: "pla"})
	if err != nil {
		t.Fatalf("Candidates: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d; want 3", len(got))
	}
	if got[0].Kind != CandidateAgent || got[0].Value != "planner" {
		t.Errorf("got[0] = %+v; want agent planner", got[0])
	}
	if got[1].Kind != CandidateFile || got[1].Value != "lib/plans.go" {
		t.Errorf("got[1] = %+v; want recent file", got[1])
	}
	if got[2].Value != "cmd/plain.go" {
		t.Errorf("got[2] = %+v; want searched file", got[2])
	}
}

func TestMentionDeduplicatesRecents(t *testing.T) {
	c := New(nil,
		func() []string { return []string{"a.go"} },
		stubSearcher{paths: []string{"a.go", "b.go"}},
		nil,
	)

	got, err := c.Candidates(context.Background(), Trigger{Kind: KindMention, Query: ""})
	if err != nil {
		t.Fatalf("Candidates: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("len = %d; want 2 (a.go deduplicated)", len(got))
	}
}

func TestMentionSearchErrorPropagates(t *testing.T) {
	wantErr := errors.New("scan failed")
	c := New(nil, nil, stubSearcher{err: wantErr}, nil)

	_, err := c.Candidates(context.Background(), Trigger{Kind: KindMention, Query: "x"})
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v; want %v", err, wantErr)
	}
}

func TestCommandCandidates(t *testing.T) {
	c := New(nil, nil, nil, func() []CommandEntry {
		return []CommandEntry{
			{Name: "model", Title: "Show or change the model"},
			{Name: "clear", Title: "Clear the conversation"},
		}
	})

	got, err := c.Candidates(context.Background(), Trigger{Kind: KindCommand, Query: ""})
	if err != nil {
		t.Fatalf("Candidates: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d; want 2", len(got))
	}

	got, err = c.Candidates(context.Background(), Trigger{Kind: KindCommand, Query: "mod"})
	if err != nil {
		t.Fatalf("Candidates: %v", err)
	}
	if len(got) != 1 || got[0].Value != "model" {
		t.Errorf("filtered = %+v; want only model", got)
	}
}

func TestNoTriggerYieldsNothing(t *testing.T) {
	c := New([]string{"x"}, nil, nil, nil)
	got, err := c.Candidates(context.Background(), Trigger{Kind: KindNone})
	if err != nil || got != nil {
		t.Errorf("Candidates(none) = (%v, %v); want (nil, nil)", got, err)
	}
}
