// ABOUTME: Submission pipeline: validate, insert optimistic message, dispatch, roll back
// ABOUTME: Worktree-scoped prompts wait for the checkout before dispatching

package submit

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/ternchat/tern/internal/editor"
	"github.com/ternchat/tern/internal/log"
	"github.com/ternchat/tern/internal/session"
	"github.com/ternchat/tern/internal/shell"
	"github.com/ternchat/tern/internal/worktree"
	"github.com/ternchat/tern/pkg/sdk"
)

// ErrCancelled is returned when a submission was aborted before
// dispatch completed. Callers roll back silently on it.
var ErrCancelled = errors.New("submission cancelled")

// ValidationError rejects a submission before any state changes; the
// editor contents are preserved.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// IsValidation reports whether err is a pre-dispatch validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Dispatcher is the backend surface the orchestrator needs.
// *sdk.Client satisfies it.
type Dispatcher interface {
	Prompt(ctx context.Context, req sdk.PromptRequest) error
	Command(ctx context.Context, req sdk.CommandRequest) error
	Shell(ctx context.Context, req sdk.ShellRequest) error
	Abort(ctx context.Context, sessionID string) error
}

// Request is one submission.
type Request struct {
	Session session.Session
	Prompt  editor.Prompt
	Model   string
	Agent   string
	// Shell runs the prompt text as a local shell command instead of
	// dispatching it to the backend.
	Shell bool
	// WorktreePath, when set, must be a ready checkout before dispatch.
	WorktreePath string
}

// Orchestrator runs submissions against the store and backend.
type Orchestrator struct {
	store    *session.Store
	registry *Registry
	client   Dispatcher

	// scope returns a dispatcher routed to a working directory.
	// Nil means the base client handles every directory.
	scope func(dir string) Dispatcher
	// note supplies the sticky-context block prepended to payloads.
	note func() string
	// waitReady blocks until a worktree path is usable.
	waitReady func(ctx context.Context, path string) error
	// runShell executes shell-mode commands.
	runShell func(ctx context.Context, dir, command string) (shell.Result, error)

	worktreeTimeout time.Duration
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithScope routes directory-scoped sessions through scope.
func WithScope(scope func(dir string) Dispatcher) OrchestratorOption {
	return func(o *Orchestrator) { o.scope = scope }
}

// WithContextNote prepends note() to outgoing payloads.
func WithContextNote(note func() string) OrchestratorOption {
	return func(o *Orchestrator) { o.note = note }
}

// WithWorktreeTimeout bounds the wait for worktree readiness.
func WithWorktreeTimeout(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) { o.worktreeTimeout = d }
}

// WithWaitReady replaces the worktree readiness poll (for testing).
func WithWaitReady(f func(ctx context.Context, path string) error) OrchestratorOption {
	return func(o *Orchestrator) { o.waitReady = f }
}

// WithShellRunner replaces the shell executor (for testing).
func WithShellRunner(f func(ctx context.Context, dir, command string) (shell.Result, error)) OrchestratorOption {
	return func(o *Orchestrator) { o.runShell = f }
}

// NewOrchestrator creates an orchestrator over the store and backend.
func NewOrchestrator(store *session.Store, registry *Registry, client Dispatcher, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		store:           store,
		registry:        registry,
		client:          client,
		waitReady:       worktree.WaitReady,
		runShell:        shell.Run,
		worktreeTimeout: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Registry exposes the in-flight registry for abort handling.
func (o *Orchestrator) Registry() *Registry { return o.registry }

// Working reports whether the session has work in flight, locally or on
// the backend. The registry covers the dispatch window; the store status
// covers backend-side generation after dispatch succeeded.
func (o *Orchestrator) Working(sessionID string) bool {
	return o.registry.Working(sessionID) || o.store.Status(sessionID) == session.StatusWorking
}

// Abort cancels the session's work: the local in-flight dispatch when
// one exists, and backend-side generation either way.
func (o *Orchestrator) Abort(ctx context.Context, sessionID string) {
	o.registry.Abort(sessionID)
	if err := o.client.Abort(ctx, sessionID); err != nil {
		log.Warn("aborting session", "session", sessionID, "err", err)
	}
}

// ForwardCommand sends a slash command the client does not recognize to
// the backend's session.command endpoint. Results arrive on the event
// stream.
func (o *Orchestrator) ForwardCommand(ctx context.Context, sess session.Session, command, arguments string) error {
	client := o.scoped(sess)
	return client.Command(ctx, sdk.CommandRequest{
		SessionID: sess.ID,
		Command:   command,
		Arguments: arguments,
	})
}

// Submit validates and dispatches req.
//
// An empty prompt is a no-op, except while the session is working, when
// it aborts the in-flight submission instead. Failures after the
// optimistic insert remove the inserted message; the caller restores
// the editor from its own snapshot.
func (o *Orchestrator) Submit(ctx context.Context, req Request) error {
	sessID := req.Session.ID

	if req.Prompt.IsEmpty() {
		if o.Working(sessID) {
			o.Abort(ctx, sessID)
		}
		return nil
	}

	if !req.Shell {
		if req.Model == "" {
			return &ValidationError{Reason: "no model selected"}
		}
		if req.Agent == "" {
			return &ValidationError{Reason: "no agent selected"}
		}
	}

	msg := o.optimisticMessage(req)

	dctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if !o.registry.begin(sessID, msg.ID, cancel) {
		return &ValidationError{Reason: "a submission is already in flight"}
	}
	defer o.registry.finish(sessID)

	o.store.Insert(msg)
	o.store.SetStatus(sessID, session.StatusWorking)

	if err := o.dispatch(dctx, req); err != nil {
		o.store.Remove(sessID, msg.ID)
		o.store.SetStatus(sessID, session.StatusIdle)
		if dctx.Err() != nil || errors.Is(err, context.Canceled) {
			return ErrCancelled
		}
		return err
	}

	msg.Pending = false
	o.store.Update(msg)
	if req.Shell {
		o.store.SetStatus(sessID, session.StatusIdle)
	}
	return nil
}

func (o *Orchestrator) dispatch(ctx context.Context, req Request) error {
	if req.WorktreePath != "" {
		wctx, cancel := context.WithTimeout(ctx, o.worktreeTimeout)
		err := o.waitReady(wctx, req.WorktreePath)
		cancel()
		if err != nil {
			return fmt.Errorf("worktree not ready: %w", err)
		}
	}

	if req.Shell {
		return o.dispatchShell(ctx, req)
	}
	return o.scoped(req.Session).Prompt(ctx, o.buildPayload(req))
}

// scoped returns the dispatcher routed to the session's directory.
func (o *Orchestrator) scoped(sess session.Session) Dispatcher {
	if sess.Directory != "" && o.scope != nil {
		return o.scope(sess.Directory)
	}
	return o.client
}

func (o *Orchestrator) dispatchShell(ctx context.Context, req Request) error {
	dir := req.Session.Directory
	if dir == "" {
		dir = "."
	}
	result, err := o.runShell(ctx, dir, req.Prompt.Text())
	if err != nil {
		return fmt.Errorf("running shell command: %w", err)
	}

	// Mirror the command to the backend so the session's workspace state
	// stays in sync. The local pty run owns the output; a failed mirror
	// is logged, not fatal.
	if err := o.scoped(req.Session).Shell(ctx, sdk.ShellRequest{
		SessionID: req.Session.ID,
		Command:   req.Prompt.Text(),
	}); err != nil {
		log.Warn("mirroring shell command", "session", req.Session.ID, "err", err)
	}

	text := result.Output
	if result.ExitCode != 0 {
		text = fmt.Sprintf("%s\n(exit %d)", text, result.ExitCode)
	}
	o.store.Insert(session.Message{
		ID:        session.NextMessageID(),
		SessionID: req.Session.ID,
		Role:      session.RoleSystem,
		Text:      text,
		Time:      time.Now(),
	})
	return nil
}

// buildPayload converts the prompt into wire parts. File references get
// absolute paths and line-range annotations; the context note, when
// present, leads the payload.
func (o *Orchestrator) buildPayload(req Request) sdk.PromptRequest {
	out := sdk.PromptRequest{
		SessionID: req.Session.ID,
		Model:     req.Model,
		Agent:     req.Agent,
	}

	if o.note != nil {
		if note := o.note(); note != "" {
			out.Parts = append(out.Parts, sdk.PromptPart{Type: "text", Text: note + "\n\n"})
		}
	}

	for _, part := range req.Prompt.Parts {
		switch part.Kind {
		case editor.PartText:
			out.Parts = append(out.Parts, sdk.PromptPart{Type: "text", Text: part.Text})
		case editor.PartFile:
			p := sdk.PromptPart{Type: "file", Path: o.absPath(req, part.Path)}
			if part.Range != nil {
				p.Range = part.Range.String()
			}
			out.Parts = append(out.Parts, p)
		case editor.PartAgent:
			out.Parts = append(out.Parts, sdk.PromptPart{Type: "agent", Agent: part.Agent})
		case editor.PartImage:
			out.Parts = append(out.Parts, sdk.PromptPart{
				Type:     "image",
				Mime:     part.Mime,
				Filename: part.Filename,
				Data:     base64.StdEncoding.EncodeToString(part.Data),
			})
		}
	}
	return out
}

func (o *Orchestrator) absPath(req Request, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	base := req.Session.Directory
	if base == "" {
		base = "."
	}
	abs, err := filepath.Abs(filepath.Join(base, path))
	if err != nil {
		return path
	}
	return abs
}

func (o *Orchestrator) optimisticMessage(req Request) session.Message {
	msg := session.Message{
		ID:        session.NextMessageID(),
		SessionID: req.Session.ID,
		Role:      session.RoleUser,
		Text:      req.Prompt.Text(),
		Time:      time.Now(),
		Pending:   true,
	}
	for _, ref := range req.Prompt.References() {
		if ref.Kind != editor.PartFile {
			continue
		}
		ann := session.Annotation{Path: ref.Path}
		if ref.Range != nil {
			ann.Range = ref.Range.String()
		}
		msg.Annotations = append(msg.Annotations, ann)
	}
	for _, img := range req.Prompt.Images() {
		msg.ImageIDs = append(msg.ImageIDs, img.ImageID)
	}
	return msg
}
