// ABOUTME: Non-blocking toast notifications shown above the footer
// ABOUTME: Toasts auto-dismiss on a timer; errors linger longer than status

package tui

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// ToastKind colors a toast.
type ToastKind int

const (
	ToastStatus ToastKind = iota
	ToastError
	ToastWarning
	ToastSuccess
)

const (
	statusToastDuration = 4 * time.Second
	errorToastDuration  = 8 * time.Second
)

var toastCounter atomic.Int64

// Toast is one notification.
type Toast struct {
	ID       int
	Kind     ToastKind
	Message  string
	Duration time.Duration
}

// ToastModel holds the visible toasts, newest last.
type ToastModel struct {
	toasts []Toast
}

// NewToastModel creates an empty toast stack.
func NewToastModel() ToastModel {
	return ToastModel{}
}

// Push adds a toast and returns the command that will expire it.
func (m ToastModel) Push(kind ToastKind, message string) (ToastModel, tea.Cmd) {
	d := statusToastDuration
	if kind == ToastError {
		d = errorToastDuration
	}
	t := Toast{
		ID:       int(toastCounter.Add(1)),
		Kind:     kind,
		Message:  message,
		Duration: d,
	}
	m.toasts = append(m.toasts, t)

	return m, tea.Tick(d, func(time.Time) tea.Msg {
		return ToastExpireMsg{ID: t.ID}
	})
}

// Update drops expired toasts.
func (m ToastModel) Update(msg tea.Msg) (ToastModel, tea.Cmd) {
	if expire, ok := msg.(ToastExpireMsg); ok {
		for i, t := range m.toasts {
			if t.ID == expire.ID {
				m.toasts = append(m.toasts[:i], m.toasts[i+1:]...)
				break
			}
		}
	}
	return m, nil
}

// Len returns the number of visible toasts.
func (m ToastModel) Len() int { return len(m.toasts) }

// View renders the toast stack, one per line.
func (m ToastModel) View() string {
	if len(m.toasts) == 0 {
		return ""
	}
	s := Styles()

	out := ""
	for i, t := range m.toasts {
		if i > 0 {
			out += "\n"
		}
		switch t.Kind {
		case ToastError:
			out += s.Error.Render("✗ " + t.Message)
		case ToastWarning:
			out += s.Warning.Render("! " + t.Message)
		case ToastSuccess:
			out += s.Success.Render("✓ " + t.Message)
		default:
			out += s.Info.Render("· " + t.Message)
		}
	}
	return out
}
