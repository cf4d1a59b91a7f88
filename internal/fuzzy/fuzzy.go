// ABOUTME: Thin wrapper over sahilm/fuzzy for filtering and ranking candidates
// ABOUTME: Keeps the external type out of caller signatures

package fuzzy

import "github.com/sahilm/fuzzy"

// Match is a single ranked match result.
type Match struct {
	Str            string
	Index          int
	MatchedIndexes []int
	Score          int
}

// Find fuzzy-matches pattern against items and returns matches best-first.
// An empty pattern matches nothing; callers handle that case themselves.
func Find(pattern string, items []string) []Match {
	results := fuzzy.Find(pattern, items)
	matches := make([]Match, len(results))
	for i, r := range results {
		matches[i] = Match{
			Str:            r.Str,
			Index:          r.Index,
			MatchedIndexes: r.MatchedIndexes,
			Score:          r.Score,
		}
	}
	return matches
}
