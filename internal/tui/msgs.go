// ABOUTME: Custom tea.Msg types for the tern TUI
// ABOUTME: Store events, submission results, completion data, and timers

package tui

import (
	"github.com/ternchat/tern/internal/complete"
	"github.com/ternchat/tern/internal/editor"
	"github.com/ternchat/tern/internal/session"
)

// StoreEventMsg wraps a session-store change delivered via Program.Send.
type StoreEventMsg struct{ Event session.Event }

// SubmitResultMsg reports the outcome of an async submission.
// Snapshot holds the editor contents from before the optimistic clear
// so a failure can restore them.
type SubmitResultMsg struct {
	Err            error
	Snapshot       editor.Prompt
	SnapshotCursor int
}

// CandidatesMsg carries freshly resolved completion candidates.
type CandidatesMsg struct {
	Trigger    complete.Trigger
	Candidates []complete.Candidate
	Err        error
}

// CommandsReloadedMsg signals that the custom command set changed.
type CommandsReloadedMsg struct{}

// ToastExpireMsg dismisses a toast after its timer fires.
type ToastExpireMsg struct{ ID int }
