// ABOUTME: Surface node model: text runs, atomic reference chips, line breaks
// ABOUTME: Atoms are the exploded editing view; implode coalesces runes back into nodes

package editor

import "unicode/utf8"

// NodeKind discriminates surface nodes.
type NodeKind int

const (
	// NodeText is an editable text run. It may contain zero-width-space
	// placeholders that keep empty lines selectable; those count zero width.
	NodeText NodeKind = iota
	// NodeChip is an atomic, non-editable reference (file or agent).
	// The cursor can sit before or after a chip, never inside it.
	NodeChip
	// NodeBreak is an explicit line break, logical length 1.
	NodeBreak
)

// ChipKind discriminates chip nodes.
type ChipKind int

const (
	// ChipFile references a project file.
	ChipFile ChipKind = iota
	// ChipAgent references a named agent.
	ChipAgent
)

// Node is one element of the editing surface.
type Node struct {
	Kind NodeKind

	// NodeText
	Runes []rune

	// NodeChip
	Chip  ChipKind
	Path  string
	Range *LineRange
	Agent string
}

// TextNode builds a text run node.
func TextNode(s string) Node {
	return Node{Kind: NodeText, Runes: []rune(s)}
}

// BreakNode builds a line-break node.
func BreakNode() Node {
	return Node{Kind: NodeBreak}
}

// FileChip builds an atomic file-reference node.
func FileChip(path string, r *LineRange) Node {
	return Node{Kind: NodeChip, Chip: ChipFile, Path: path, Range: r}
}

// AgentChip builds an atomic agent-reference node.
func AgentChip(name string) Node {
	return Node{Kind: NodeChip, Chip: ChipAgent, Agent: name}
}

// Label returns the rendered label of a chip node ("@path" or "@name").
func (n Node) Label() string {
	switch n.Chip {
	case ChipAgent:
		return "@" + n.Agent
	default:
		return "@" + n.Path
	}
}

// Width returns the node's contribution to the logical offset space.
// Zero-width-space markers in text runs are excluded from the count.
func (n Node) Width() int {
	switch n.Kind {
	case NodeText:
		w := 0
		for _, r := range n.Runes {
			if r != zwsp {
				w++
			}
		}
		return w
	case NodeChip:
		return utf8.RuneCountInString(n.Label())
	case NodeBreak:
		return 1
	}
	return 0
}

// SurfaceWidth sums the logical widths of all nodes.
func SurfaceWidth(nodes []Node) int {
	w := 0
	for _, n := range nodes {
		w += n.Width()
	}
	return w
}

// atom is the exploded editing view of a surface: one visible rune, one
// whole chip, or one break per element. Editing operations splice atoms and
// implode the result back into nodes.
type atom struct {
	kind NodeKind
	r    rune // NodeText
	chip Node // NodeChip, carried whole
}

// width returns the atom's logical width.
func (a atom) width() int {
	switch a.kind {
	case NodeText:
		return 1
	case NodeChip:
		return a.chip.Width()
	case NodeBreak:
		return 1
	}
	return 0
}

// explode flattens nodes into atoms, dropping zero-width placeholders.
func explode(nodes []Node) []atom {
	var atoms []atom
	for _, n := range nodes {
		switch n.Kind {
		case NodeText:
			for _, r := range n.Runes {
				if r == zwsp {
					continue
				}
				atoms = append(atoms, atom{kind: NodeText, r: r})
			}
		case NodeChip:
			atoms = append(atoms, atom{kind: NodeChip, chip: n})
		case NodeBreak:
			atoms = append(atoms, atom{kind: NodeBreak})
		}
	}
	return atoms
}

// implode coalesces consecutive rune atoms into text nodes.
func implode(atoms []atom) []Node {
	var nodes []Node
	var run []rune
	flush := func() {
		if len(run) > 0 {
			nodes = append(nodes, Node{Kind: NodeText, Runes: run})
			run = nil
		}
	}
	for _, a := range atoms {
		switch a.kind {
		case NodeText:
			run = append(run, a.r)
		case NodeChip:
			flush()
			nodes = append(nodes, a.chip)
		case NodeBreak:
			flush()
			nodes = append(nodes, BreakNode())
		}
	}
	flush()
	return nodes
}

// atomBoundary returns the atom index whose start boundary matches the
// logical offset. Offsets falling strictly inside a chip snap past it.
// The second return is the snapped logical offset of that boundary.
func atomBoundary(atoms []atom, off int) (int, int) {
	pos := 0
	for i, a := range atoms {
		if pos >= off {
			return i, pos
		}
		w := a.width()
		if off < pos+w {
			// Inside this atom. Text atoms have width 1, so this only
			// happens for chips: snap to the boundary after the chip.
			return i + 1, pos + w
		}
		pos += w
	}
	return len(atoms), pos
}
