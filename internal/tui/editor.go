// ABOUTME: EditorModel renders the prompt engine's surface with styled chips
// ABOUTME: Value semantics; the engine pointer is shared across copies like bubbles/textarea

package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ternchat/tern/internal/editor"
)

// CursorMarker is the visible block cursor character.
const CursorMarker = "█"

// EditorModel is the prompt input line backed by an editor.Engine.
// The engine is a shared pointer; only one model copy is live at a time.
type EditorModel struct {
	engine      *editor.Engine
	focused     bool
	prompt      string
	placeholder string
	width       int
}

// NewEditorModel creates an empty focused editor.
func NewEditorModel() EditorModel {
	return EditorModel{
		engine:  editor.New(),
		focused: true,
		prompt:  "> ",
	}
}

// Engine exposes the underlying engine for app-level operations.
func (m EditorModel) Engine() *editor.Engine { return m.engine }

// Init returns nil; no startup commands.
func (m EditorModel) Init() tea.Cmd { return nil }

// Update handles editing keys. Navigation and submission keys are
// routed by the app before reaching here.
func (m EditorModel) Update(msg tea.Msg) (EditorModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || !m.focused {
		if size, ok := msg.(tea.WindowSizeMsg); ok {
			m.width = size.Width
		}
		return m, nil
	}

	switch key.Type {
	case tea.KeyRunes:
		for _, r := range key.Runes {
			m.engine.InsertRune(r)
		}
	case tea.KeySpace:
		m.engine.InsertRune(' ')
	case tea.KeyBackspace:
		m.engine.Backspace()
	case tea.KeyDelete:
		m.engine.DeleteForward()
	case tea.KeyLeft:
		m.engine.MoveLeft()
	case tea.KeyRight:
		m.engine.MoveRight()
	case tea.KeyHome, tea.KeyCtrlA:
		m.engine.MoveHome()
	case tea.KeyEnd, tea.KeyCtrlE:
		m.engine.MoveEnd()
	}
	return m, nil
}

// SetFocused sets focus. Returns a new model.
func (m EditorModel) SetFocused(focused bool) EditorModel {
	m.focused = focused
	return m
}

// SetPrompt sets the line prefix. Returns a new model.
func (m EditorModel) SetPrompt(p string) EditorModel {
	m.prompt = p
	return m
}

// SetPlaceholder sets the dim hint shown when empty. Returns a new model.
func (m EditorModel) SetPlaceholder(p string) EditorModel {
	m.placeholder = p
	return m
}

// View renders the surface nodes with chips styled and the cursor
// marker inserted at the engine's cursor offset.
func (m EditorModel) View() string {
	s := Styles()

	if m.focused && m.engine.IsEmpty() && m.placeholder != "" {
		return s.Prompt.Render(m.prompt) + CursorMarker + s.Dim.Render(m.placeholder)
	}

	indent := strings.Repeat(" ", len([]rune(m.prompt)))
	var b strings.Builder
	b.WriteString(s.Prompt.Render(m.prompt))

	cursor := m.engine.Cursor()
	placed := !m.focused
	off := 0

	for _, node := range m.engine.Nodes() {
		w := node.Width()
		switch node.Kind {
		case editor.NodeText:
			text := strings.ReplaceAll(string(node.Runes), "​", "")
			if !placed && cursor >= off && cursor <= off+w {
				runes := []rune(text)
				at := cursor - off
				b.WriteString(string(runes[:at]))
				b.WriteString(CursorMarker)
				b.WriteString(string(runes[at:]))
				placed = true
			} else {
				b.WriteString(text)
			}
		case editor.NodeChip:
			if !placed && cursor == off {
				b.WriteString(CursorMarker)
				placed = true
			}
			b.WriteString(m.chipView(node))
		case editor.NodeBreak:
			if !placed && cursor == off {
				b.WriteString(CursorMarker)
				placed = true
			}
			b.WriteString("\n")
			b.WriteString(indent)
		}
		off += w
	}

	if !placed {
		b.WriteString(CursorMarker)
	}
	return b.String()
}

func (m EditorModel) chipView(node editor.Node) string {
	s := Styles()
	label := " " + node.Label() + " "
	if node.Chip == editor.ChipAgent {
		return s.ChipAgent.Render(label)
	}
	return s.ChipFile.Render(label)
}
