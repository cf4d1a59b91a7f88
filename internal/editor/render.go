// ABOUTME: Prompt-to-surface renderer: newlines become break nodes, references become chips
// ABOUTME: Zero-width-space placeholders keep empty lines selectable

package editor

import "strings"

// Render rebuilds the surface node list from a Prompt. Image parts do not
// appear on the surface. The caller restores the cursor afterwards through
// OffsetToPosition.
func Render(p Prompt) []Node {
	var nodes []Node
	for _, part := range p.Parts {
		switch part.Kind {
		case PartText:
			nodes = appendTextNodes(nodes, part.Text)
		case PartFile:
			nodes = append(nodes, FileChip(part.Path, part.Range))
		case PartAgent:
			nodes = append(nodes, AgentChip(part.Agent))
		}
	}
	return nodes
}

// appendTextNodes splits text on newlines into text nodes separated by
// break nodes. Empty lines get a zero-width-space placeholder so the cursor
// can land on them.
func appendTextNodes(nodes []Node, text string) []Node {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if i > 0 {
			nodes = append(nodes, BreakNode())
		}
		if line != "" {
			nodes = append(nodes, TextNode(line))
			continue
		}
		// Placeholder only where the empty run would otherwise leave the
		// line with no node to select: between breaks or at the edges.
		if i > 0 && i < len(lines)-1 {
			nodes = append(nodes, TextNode(string(zwsp)))
		}
	}
	return nodes
}
