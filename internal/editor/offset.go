// ABOUTME: Bidirectional translation between logical offsets and surface positions
// ABOUTME: Chips and breaks are unit obstacles; zero-width markers never count

package editor

// Position locates a cursor inside a surface node list.
// For text nodes Offset is a raw rune index into the node (which may land
// after zero-width markers). For chip and break nodes Offset is 0 (before
// the node) or 1 (after it).
type Position struct {
	Node   int
	Offset int
}

// OffsetToPosition maps a logical offset to a surface position.
// If no node accommodates the offset the position falls back to end of
// content.
func OffsetToPosition(nodes []Node, off int) Position {
	if off < 0 {
		off = 0
	}
	remaining := off
	for i, n := range nodes {
		w := n.Width()
		switch n.Kind {
		case NodeText:
			if remaining <= w {
				return Position{Node: i, Offset: rawIndexFor(n.Runes, remaining)}
			}
		case NodeChip, NodeBreak:
			if remaining == 0 {
				return Position{Node: i, Offset: 0}
			}
			if remaining <= w {
				return Position{Node: i, Offset: 1}
			}
		}
		remaining -= w
	}
	return endPosition(nodes)
}

// PositionToOffset maps a surface position back to a logical offset.
// Positions inside an atomic node snap to its trailing boundary.
func PositionToOffset(nodes []Node, pos Position) int {
	if pos.Node < 0 || len(nodes) == 0 {
		return 0
	}
	if pos.Node >= len(nodes) {
		return SurfaceWidth(nodes)
	}
	off := 0
	for i := 0; i < pos.Node; i++ {
		off += nodes[i].Width()
	}
	n := nodes[pos.Node]
	switch n.Kind {
	case NodeText:
		off += visibleCount(n.Runes, pos.Offset)
	case NodeChip, NodeBreak:
		if pos.Offset > 0 {
			off += n.Width()
		}
	}
	return off
}

// endPosition returns the position at the very end of the surface.
func endPosition(nodes []Node) Position {
	if len(nodes) == 0 {
		return Position{}
	}
	last := nodes[len(nodes)-1]
	switch last.Kind {
	case NodeText:
		return Position{Node: len(nodes) - 1, Offset: len(last.Runes)}
	default:
		return Position{Node: len(nodes) - 1, Offset: 1}
	}
}

// rawIndexFor returns the rune index in runes where the visible count
// (excluding zero-width markers) reaches want.
func rawIndexFor(runes []rune, want int) int {
	if want <= 0 {
		return 0
	}
	seen := 0
	for i, r := range runes {
		if r == zwsp {
			continue
		}
		seen++
		if seen == want {
			return i + 1
		}
	}
	return len(runes)
}

// visibleCount counts visible runes in runes[:rawIdx].
func visibleCount(runes []rune, rawIdx int) int {
	if rawIdx > len(runes) {
		rawIdx = len(runes)
	}
	n := 0
	for _, r := range runes[:rawIdx] {
		if r != zwsp {
			n++
		}
	}
	return n
}
