// ABOUTME: Status footer: working spinner, model, agent, directory, mode
// ABOUTME: Shell mode swaps the prompt hint and tints the bar

package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ternchat/tern/internal/textwidth"
)

// FooterModel is the one-line status bar under the editor.
type FooterModel struct {
	spinner spinner.Model
	working bool
	model   string
	agent   string
	dir     string
	shell   bool
	width   int
}

// NewFooterModel creates a footer with the dot spinner.
func NewFooterModel() FooterModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return FooterModel{spinner: sp, width: 80}
}

// SetWorking toggles the spinner. Starting it returns the tick command.
func (m FooterModel) SetWorking(working bool) (FooterModel, tea.Cmd) {
	if working && !m.working {
		m.working = true
		return m, m.spinner.Tick
	}
	m.working = working
	return m, nil
}

// SetIdentity updates the model/agent/directory labels.
func (m FooterModel) SetIdentity(model, agent, dir string) FooterModel {
	m.model = model
	m.agent = agent
	m.dir = dir
	return m
}

// SetShell toggles the shell-mode indicator.
func (m FooterModel) SetShell(shell bool) FooterModel {
	m.shell = shell
	return m
}

// Update advances the spinner while working.
func (m FooterModel) Update(msg tea.Msg) (FooterModel, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = size.Width
	}
	if !m.working {
		return m, nil
	}
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

// View renders the footer line.
func (m FooterModel) View() string {
	s := Styles()

	var parts []string
	if m.working {
		parts = append(parts, m.spinner.View()+"working")
	}
	if m.shell {
		parts = append(parts, s.Warning.Render("shell"))
	}
	if m.model != "" {
		parts = append(parts, s.FooterModel.Render(m.model))
	}
	if m.agent != "" {
		parts = append(parts, s.FooterAgent.Render("@"+m.agent))
	}
	if m.dir != "" {
		parts = append(parts, s.FooterPath.Render(m.dir))
	}

	line := strings.Join(parts, s.Dim.Render(" · "))
	return textwidth.Truncate(line, m.width)
}
