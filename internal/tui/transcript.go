// ABOUTME: Scrollable conversation transcript backed by bubbles/viewport
// ABOUTME: Assistant messages render through glamour; pending messages show dimmed

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/ternchat/tern/internal/session"
)

// TranscriptModel renders the active session's messages.
type TranscriptModel struct {
	viewport viewport.Model
	renderer *glamour.TermRenderer
	messages []session.Message
	width    int
}

// NewTranscriptModel creates a transcript sized to a default terminal.
func NewTranscriptModel() TranscriptModel {
	vp := viewport.New(80, 20)
	renderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(78),
	)
	return TranscriptModel{viewport: vp, renderer: renderer, width: 80}
}

// SetMessages replaces the transcript contents and scrolls to the end.
func (m TranscriptModel) SetMessages(messages []session.Message) TranscriptModel {
	m.messages = messages
	m.viewport.SetContent(m.render())
	m.viewport.GotoBottom()
	return m
}

// Update forwards scroll keys and resizes to the viewport.
func (m TranscriptModel) Update(msg tea.Msg) (TranscriptModel, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = size.Width
		m.viewport.Width = size.Width
		m.viewport.Height = max(size.Height-6, 3)
		m.renderer, _ = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(max(size.Width-2, 20)),
		)
		m.viewport.SetContent(m.render())
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the viewport.
func (m TranscriptModel) View() string {
	return m.viewport.View()
}

func (m TranscriptModel) render() string {
	s := Styles()
	var b strings.Builder

	for _, msg := range m.messages {
		switch msg.Role {
		case session.RoleUser:
			text := msg.Text
			for _, ann := range msg.Annotations {
				ref := ann.Path
				if ann.Range != "" {
					ref += ann.Range
				}
				text += s.Dim.Render(fmt.Sprintf("\n  [%s]", ref))
			}
			line := s.Accent.Render("❯ ") + text
			if msg.Pending {
				line = s.Dim.Render("❯ " + msg.Text)
			}
			b.WriteString(line)
		case session.RoleAssistant:
			rendered := msg.Text
			if m.renderer != nil {
				if out, err := m.renderer.Render(msg.Text); err == nil {
					rendered = strings.TrimRight(out, "\n")
				}
			}
			b.WriteString(rendered)
		case session.RoleSystem:
			b.WriteString(s.Muted.Render(msg.Text))
		}
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
