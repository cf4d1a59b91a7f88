// ABOUTME: Detects @-mention and /-command completion triggers in prompt text
// ABOUTME: Pure text analysis over the rune offsets used by the editor

package complete

import "strings"

// Kind identifies the grammar that produced a trigger.
type Kind int

const (
	// KindNone means no trigger is active at the cursor.
	KindNone Kind = iota
	// KindMention is an @-reference to a file or agent.
	KindMention
	// KindCommand is a /-command at the start of the prompt.
	KindCommand
)

// Trigger describes an active completion context. Start and End are rune
// offsets into the prompt text; Start points at the sigil itself.
type Trigger struct {
	Kind  Kind
	Query string
	Start int
	End   int
}

// Detect inspects the text before cursor and reports any active trigger.
//
// A mention is a terminal "@" followed by zero or more non-space runes,
// scanning back from the cursor. A command requires the whole prompt to be
// a single "/word": slashes mid-text (paths, URLs) never trigger.
func Detect(text string, cursor int) Trigger {
	runes := []rune(text)
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(runes) {
		cursor = len(runes)
	}

	if t, ok := detectCommand(runes, cursor); ok {
		return t
	}
	if t, ok := detectMention(runes, cursor); ok {
		return t
	}
	return Trigger{Kind: KindNone}
}

func detectMention(runes []rune, cursor int) (Trigger, bool) {
	for i := cursor - 1; i >= 0; i-- {
		r := runes[i]
		if r == '@' {
			// A mention must begin a word: start of text or after a space.
			if i > 0 && !isSpace(runes[i-1]) {
				return Trigger{}, false
			}
			return Trigger{
				Kind:  KindMention,
				Query: string(runes[i+1 : cursor]),
				Start: i,
				End:   cursor,
			}, true
		}
		if isSpace(r) {
			return Trigger{}, false
		}
	}
	return Trigger{}, false
}

func detectCommand(runes []rune, cursor int) (Trigger, bool) {
	if len(runes) == 0 || runes[0] != '/' {
		return Trigger{}, false
	}
	if strings.ContainsFunc(string(runes), isSpace) {
		return Trigger{}, false
	}
	if cursor < 1 {
		return Trigger{}, false
	}
	return Trigger{
		Kind:  KindCommand,
		Query: string(runes[1:cursor]),
		Start: 0,
		End:   len(runes),
	}, true
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n'
}
