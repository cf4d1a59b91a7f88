// ABOUTME: Surface-to-Prompt parser: text runs accumulate, chips flush, breaks add newlines
// ABOUTME: Idempotent against Render; empty traversal yields the canonical empty prompt

package editor

import "strings"

// Parse reconstructs a Prompt from the surface node list.
// Carriage returns normalize to newlines and zero-width markers are
// stripped. A surface with no content parses to the canonical empty prompt,
// never an empty sequence.
func Parse(nodes []Node) Prompt {
	var parts []Part
	var buf strings.Builder

	flush := func() {
		if buf.Len() > 0 {
			parts = append(parts, TextPart(buf.String()))
			buf.Reset()
		}
	}

	for _, n := range nodes {
		switch n.Kind {
		case NodeText:
			for _, r := range n.Runes {
				if r == zwsp {
					continue
				}
				buf.WriteRune(r)
			}
		case NodeBreak:
			buf.WriteRune('\n')
		case NodeChip:
			flush()
			switch n.Chip {
			case ChipFile:
				parts = append(parts, FilePart(n.Path, n.Range))
			case ChipAgent:
				parts = append(parts, AgentPart(n.Agent))
			}
		}
	}
	flush()

	if len(parts) == 0 {
		return Empty()
	}
	return Prompt{Parts: parts}.Normalize()
}
