// ABOUTME: Lipgloss style palette for the tern TUI
// ABOUTME: Styles() hands out the lazily built shared palette

package tui

import (
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// ThemeStyles is the full style palette used across components.
type ThemeStyles struct {
	Primary   lipgloss.Style
	Secondary lipgloss.Style
	Muted     lipgloss.Style
	Accent    lipgloss.Style

	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style

	Border    lipgloss.Style
	Selection lipgloss.Style
	Prompt    lipgloss.Style

	ChipFile  lipgloss.Style
	ChipAgent lipgloss.Style

	FooterPath  lipgloss.Style
	FooterModel lipgloss.Style
	FooterAgent lipgloss.Style

	Bold lipgloss.Style
	Dim  lipgloss.Style
}

var stylesOnce = sync.OnceValue(func() ThemeStyles {
	return ThemeStyles{
		Primary:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Secondary: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Muted:     lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Accent:    lipgloss.NewStyle().Foreground(lipgloss.Color("81")),

		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("75")),

		Border:    lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		Selection: lipgloss.NewStyle().Background(lipgloss.Color("237")),
		Prompt:    lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true),

		ChipFile:  lipgloss.NewStyle().Foreground(lipgloss.Color("114")).Background(lipgloss.Color("236")),
		ChipAgent: lipgloss.NewStyle().Foreground(lipgloss.Color("176")).Background(lipgloss.Color("236")),

		FooterPath:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		FooterModel: lipgloss.NewStyle().Foreground(lipgloss.Color("81")),
		FooterAgent: lipgloss.NewStyle().Foreground(lipgloss.Color("176")),

		Bold: lipgloss.NewStyle().Bold(true),
		Dim:  lipgloss.NewStyle().Faint(true),
	}
})

// Styles returns the shared palette.
func Styles() ThemeStyles {
	return stylesOnce()
}
