// ABOUTME: Engine keeps the Prompt model and editing surface in lockstep
// ABOUTME: Local edits flow surface->model with a one-shot mirror flag; programmatic edits render model->surface

package editor

import "strings"

// State names the synchronization loop's phase.
type State int

const (
	// StateIdle means model and surface agree.
	StateIdle State = iota
	// StateLocalEdit means the surface was mutated and is ahead of the model.
	StateLocalEdit
	// StateProgrammatic means the model was mutated and the surface must catch up.
	StateProgrammatic
)

// Engine owns a Prompt and the surface derived from it. Keystrokes mutate
// the surface and parse back into the model; out-of-band mutations (history,
// autocomplete, paste) update the model and re-render the surface. The
// mirror flag guarantees a surface-originated commit never rebuilds the
// surface that produced it.
type Engine struct {
	prompt Prompt
	nodes  []Node
	cursor int
	mirror bool
	state  State
}

// New creates an engine holding the canonical empty prompt.
func New() *Engine {
	p := Empty()
	return &Engine{prompt: p, nodes: Render(p)}
}

// Prompt returns the current model.
func (e *Engine) Prompt() Prompt { return e.prompt }

// Nodes returns the current surface node list.
func (e *Engine) Nodes() []Node { return e.nodes }

// Text returns the logical text of the model.
func (e *Engine) Text() string { return e.prompt.Text() }

// Cursor returns the logical cursor offset.
func (e *Engine) Cursor() int { return e.cursor }

// State returns the current synchronization phase.
func (e *Engine) State() State { return e.state }

// IsEmpty reports whether the prompt has no text and no images.
func (e *Engine) IsEmpty() bool { return e.prompt.IsEmpty() }

// SetCursor clamps and sets the logical cursor offset, snapping positions
// that fall inside an atomic reference to its trailing boundary.
func (e *Engine) SetCursor(off int) {
	_, snapped := atomBoundary(explode(e.nodes), clampOffset(off, e.prompt.Len()))
	e.cursor = snapped
}

// SyncSurface rebuilds the surface from the model and restores the cursor.
// It is a no-op when the pending change originated from the surface itself;
// the mirror flag is consumed either way. Returns whether a rebuild happened.
func (e *Engine) SyncSurface() bool {
	if e.mirror {
		e.mirror = false
		return false
	}
	e.state = StateProgrammatic
	e.nodes = Render(e.prompt)
	e.cursor = clampOffset(e.cursor, e.prompt.Len())
	e.state = StateIdle
	return true
}

// Apply commits an out-of-band model mutation and re-renders the surface.
func (e *Engine) Apply(p Prompt, cursor int) {
	e.state = StateProgrammatic
	e.prompt = p.Normalize()
	e.mirror = false
	e.nodes = Render(e.prompt)
	e.cursor = clampOffset(cursor, e.prompt.Len())
	e.state = StateIdle
}

// Reset restores the canonical empty prompt.
func (e *Engine) Reset() {
	e.Apply(Empty(), 0)
}

// InsertReference replaces logical span [start,end) with an atomic reference
// part and places the cursor immediately after it.
func (e *Engine) InsertReference(part Part, start, end int) {
	p := e.prompt.ReplaceSpan(start, end, part)
	e.Apply(p, start+part.width())
}

// AttachImage appends an image attachment to the model. The surface is
// unaffected; images live outside the offset space.
func (e *Engine) AttachImage(img Part) {
	e.Apply(e.prompt.AppendImage(img), e.cursor)
}

// RemoveImage drops the image attachment with the given ID.
func (e *Engine) RemoveImage(id string) {
	e.Apply(e.prompt.RemoveImage(id), e.cursor)
}

// --- Local (surface-originated) editing operations ---

// InsertRune inserts a single rune at the cursor.
func (e *Engine) InsertRune(r rune) {
	e.InsertText(string(r))
}

// InsertNewline inserts a line break at the cursor.
func (e *Engine) InsertNewline() {
	e.InsertText("\n")
}

// InsertText splices text (possibly multi-line) into the surface at the
// cursor and commits the result to the model.
func (e *Engine) InsertText(s string) {
	if s == "" {
		return
	}
	s = normalizeText(s)
	e.editSurface(func(atoms []atom) ([]atom, int) {
		idx, snapped := atomBoundary(atoms, e.cursor)
		var ins []atom
		for _, r := range s {
			if r == '\n' {
				ins = append(ins, atom{kind: NodeBreak})
				continue
			}
			ins = append(ins, atom{kind: NodeText, r: r})
		}
		out := make([]atom, 0, len(atoms)+len(ins))
		out = append(out, atoms[:idx]...)
		out = append(out, ins...)
		out = append(out, atoms[idx:]...)
		return out, snapped + len(ins)
	})
}

// Backspace deletes the element before the cursor: one rune, one break, or
// one whole chip. Reports whether anything was deleted.
func (e *Engine) Backspace() bool {
	deleted := false
	e.editSurface(func(atoms []atom) ([]atom, int) {
		idx, snapped := atomBoundary(atoms, e.cursor)
		if idx == 0 {
			return atoms, snapped
		}
		removed := atoms[idx-1].width()
		deleted = true
		out := append(atoms[:idx-1:idx-1], atoms[idx:]...)
		return out, snapped - removed
	})
	return deleted
}

// DeleteForward deletes the element after the cursor.
func (e *Engine) DeleteForward() {
	e.editSurface(func(atoms []atom) ([]atom, int) {
		idx, snapped := atomBoundary(atoms, e.cursor)
		if idx >= len(atoms) {
			return atoms, snapped
		}
		out := append(atoms[:idx:idx], atoms[idx+1:]...)
		return out, snapped
	})
}

// MoveLeft moves the cursor one element left, skipping chips whole.
func (e *Engine) MoveLeft() {
	atoms := explode(e.nodes)
	idx, snapped := atomBoundary(atoms, e.cursor)
	if idx == 0 {
		return
	}
	e.cursor = snapped - atoms[idx-1].width()
}

// MoveRight moves the cursor one element right, skipping chips whole.
func (e *Engine) MoveRight() {
	atoms := explode(e.nodes)
	idx, snapped := atomBoundary(atoms, e.cursor)
	if idx >= len(atoms) {
		return
	}
	e.cursor = snapped + atoms[idx].width()
}

// MoveHome moves the cursor to the start of the current line.
func (e *Engine) MoveHome() {
	start, _ := e.lineBounds()
	e.SetCursor(start)
}

// MoveEnd moves the cursor to the end of the current line.
func (e *Engine) MoveEnd() {
	_, end := e.lineBounds()
	e.SetCursor(end)
}

// MoveUp moves the cursor to the previous line, preserving the column where
// possible. Reports whether the cursor moved.
func (e *Engine) MoveUp() bool {
	line, col := e.CursorLine()
	if line == 0 {
		return false
	}
	e.moveToLineCol(line-1, col)
	return true
}

// MoveDown moves the cursor to the next line. Reports whether it moved.
func (e *Engine) MoveDown() bool {
	line, col := e.CursorLine()
	if line >= e.LineCount()-1 {
		return false
	}
	e.moveToLineCol(line+1, col)
	return true
}

// LineCount returns the number of logical lines.
func (e *Engine) LineCount() int {
	return strings.Count(e.Text(), "\n") + 1
}

// CursorLine returns the zero-based line and column of the cursor.
func (e *Engine) CursorLine() (line, col int) {
	runes := []rune(e.Text())
	for i := 0; i < e.cursor && i < len(runes); i++ {
		if runes[i] == '\n' {
			line++
			col = 0
			continue
		}
		col++
	}
	return line, col
}

// editSurface runs a splice against the exploded surface and commits the
// result: implode, reparse, and flag the surface as already consistent so
// the next SyncSurface pass does not rebuild it.
func (e *Engine) editSurface(f func([]atom) ([]atom, int)) {
	e.state = StateLocalEdit
	atoms, cursor := f(explode(e.nodes))
	e.nodes = implode(atoms)
	e.cursor = clampOffset(cursor, SurfaceWidth(e.nodes))

	p := Parse(e.nodes)
	if !p.Equal(e.surfaceModel()) {
		// Images never appear on the surface; carry them across the commit.
		p.Parts = append(p.Parts, e.prompt.Images()...)
		e.prompt = p.Normalize()
		e.mirror = true
	}
	e.state = StateIdle
}

// surfaceModel returns the model minus image parts, the portion the surface
// actually represents.
func (e *Engine) surfaceModel() Prompt {
	var parts []Part
	for _, part := range e.prompt.Parts {
		if part.Kind != PartImage {
			parts = append(parts, part)
		}
	}
	return Prompt{Parts: parts}
}

// lineBounds returns the logical offsets of the current line's start and end.
func (e *Engine) lineBounds() (int, int) {
	runes := []rune(e.Text())
	start := 0
	for i := 0; i < e.cursor && i < len(runes); i++ {
		if runes[i] == '\n' {
			start = i + 1
		}
	}
	end := len(runes)
	for i := clampOffset(e.cursor, len(runes)); i < len(runes); i++ {
		if runes[i] == '\n' {
			end = i
			break
		}
	}
	return start, end
}

func (e *Engine) moveToLineCol(line, col int) {
	lines := strings.Split(e.Text(), "\n")
	off := 0
	for i := 0; i < line; i++ {
		off += len([]rune(lines[i])) + 1
	}
	width := len([]rune(lines[line]))
	if col > width {
		col = width
	}
	e.SetCursor(off + col)
}

func clampOffset(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}
