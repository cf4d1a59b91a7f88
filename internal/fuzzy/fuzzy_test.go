// ABOUTME: Tests the fuzzy matching wrapper: ranking, indexes, and empty input
// ABOUTME: An empty pattern matches nothing by contract

package fuzzy

import "testing"

func TestFindRanksMatches(t *testing.T) {
	items := []string{"internal/editor/sync.go", "cmd/tern/main.go", "README.md"}
	matches := Find("main", items)
	if len(matches) == 0 {
		t.Fatal("Find = no matches; want at least one")
	}
	if matches[0].Str != "cmd/tern/main.go" {
		t.Errorf("best match = %q; want cmd/tern/main.go", matches[0].Str)
	}
	if matches[0].Index != 1 {
		t.Errorf("Index = %d; want 1", matches[0].Index)
	}
	if len(matches[0].MatchedIndexes) != 4 {
		t.Errorf("MatchedIndexes = %v; want 4 positions", matches[0].MatchedIndexes)
	}
}

func TestFindNoMatch(t *testing.T) {
	if got := Find("zzz", []string{"abc", "def"}); len(got) != 0 {
		t.Errorf("Find = %v; want none", got)
	}
}

func TestFindEmptyPattern(t *testing.T) {
	if got := Find("", []string{"abc"}); len(got) != 0 {
		t.Errorf("Find(\"\") = %v; want none", got)
	}
}
