// ABOUTME: Root Bubble Tea model: key routing, history, completion, submission
// ABOUTME: Owns the prompt engine, session store wiring, and shell-mode toggle

package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/ternchat/tern/internal/commands"
	"github.com/ternchat/tern/internal/complete"
	"github.com/ternchat/tern/internal/contextitems"
	"github.com/ternchat/tern/internal/editor"
	"github.com/ternchat/tern/internal/history"
	"github.com/ternchat/tern/internal/imageutil"
	"github.com/ternchat/tern/internal/session"
	"github.com/ternchat/tern/internal/submit"
)

// App is the root TUI model.
type App struct {
	editor     EditorModel
	popover    PopoverModel
	toasts     ToastModel
	transcript TranscriptModel
	footer     FooterModel

	store     *session.Store
	orch      *submit.Orchestrator
	nav       *history.Navigator
	histStore *history.Store
	completer *complete.Controller
	registry  *commands.Registry

	contextSet     *contextitems.Set
	sess           session.Session
	model          string
	agent          string
	shellMode      bool
	worktreePath   string
	quitting       bool
	createWorktree func(name string) (string, error)
}

// AppConfig carries the collaborators the app needs.
type AppConfig struct {
	Store     *session.Store
	Orch      *submit.Orchestrator
	History   *history.Store
	Completer *complete.Controller
	Registry  *commands.Registry
	Session   session.Session
	Model     string
	Agent     string
	// Context backs the /context command. Nilable.
	Context *contextitems.Set
	// CreateWorktree backs the /worktree command. Nilable.
	CreateWorktree func(name string) (string, error)
}

// NewApp assembles the root model.
func NewApp(cfg AppConfig) App {
	ed := NewEditorModel().SetPlaceholder("Ask anything, @ to mention, / for commands")
	return App{
		editor:         ed,
		popover:        NewPopoverModel(),
		toasts:         NewToastModel(),
		transcript:     NewTranscriptModel(),
		footer:         NewFooterModel().SetIdentity(cfg.Model, cfg.Agent, cfg.Session.Directory),
		store:          cfg.Store,
		orch:           cfg.Orch,
		nav:            history.NewNavigator(cfg.History, history.ModeNormal),
		histStore:      cfg.History,
		completer:      cfg.Completer,
		registry:       cfg.Registry,
		contextSet:     cfg.Context,
		sess:           cfg.Session,
		model:          cfg.Model,
		agent:          cfg.Agent,
		createWorktree: cfg.CreateWorktree,
	}
}

// Init starts with no pending commands.
func (a App) Init() tea.Cmd { return nil }

// Update routes messages. Keys flow popover-first, then app-level
// bindings, then the editor.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKey(msg)

	case StoreEventMsg:
		a.transcript = a.transcript.SetMessages(a.store.Messages(a.sess.ID))
		working := a.store.Status(a.sess.ID) == session.StatusWorking
		var cmd tea.Cmd
		a.footer, cmd = a.footer.SetWorking(working)
		cmds = append(cmds, cmd)

	case SubmitResultMsg:
		return a.handleSubmitResult(msg)

	case CandidatesMsg:
		if msg.Err == nil {
			a.popover = a.popover.Open(msg.Trigger, msg.Candidates)
		}

	case CommandsReloadedMsg:
		// Candidate lists refresh on the next trigger.

	case ToastExpireMsg:
		var cmd tea.Cmd
		a.toasts, cmd = a.toasts.Update(msg)
		cmds = append(cmds, cmd)

	case tea.WindowSizeMsg:
		var cmd tea.Cmd
		a.editor, cmd = a.editor.Update(msg)
		cmds = append(cmds, cmd)
		a.popover, cmd = a.popover.Update(msg)
		cmds = append(cmds, cmd)
		a.transcript, cmd = a.transcript.Update(msg)
		cmds = append(cmds, cmd)
		a.footer, cmd = a.footer.Update(msg)
		cmds = append(cmds, cmd)

	default:
		var cmd tea.Cmd
		a.footer, cmd = a.footer.Update(msg)
		cmds = append(cmds, cmd)
		a.transcript, cmd = a.transcript.Update(msg)
		cmds = append(cmds, cmd)
	}

	return a, tea.Batch(cmds...)
}

func (a App) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	engine := a.editor.Engine()

	// Popover captures navigation and acceptance first.
	if a.popover.IsOpen() {
		switch key.Type {
		case tea.KeyUp, tea.KeyDown:
			var cmd tea.Cmd
			a.popover, cmd = a.popover.Update(key)
			return a, cmd
		case tea.KeyTab, tea.KeyEnter:
			return a.acceptCandidate()
		case tea.KeyEsc:
			a.popover = a.popover.Close()
			return a, nil
		}
	}

	switch key.Type {
	case tea.KeyCtrlC:
		a.quitting = true
		return a, tea.Quit

	case tea.KeyCtrlG:
		if a.orch.Working(a.sess.ID) {
			return a, a.abortCmd()
		}
		return a, nil

	case tea.KeyEsc:
		if a.orch.Working(a.sess.ID) {
			return a, a.abortCmd()
		}
		if a.shellMode {
			return a.exitShellMode(), nil
		}
		return a, nil

	case tea.KeyEnter:
		if key.Alt {
			engine.InsertNewline()
			return a.afterEdit()
		}
		return a.submit()

	case tea.KeyCtrlJ:
		engine.InsertNewline()
		return a.afterEdit()

	case tea.KeyUp:
		if engine.MoveUp() {
			return a, nil
		}
		return a.historyUp(), nil

	case tea.KeyDown:
		if engine.MoveDown() {
			return a, nil
		}
		return a.historyDown(), nil

	case tea.KeyBackspace:
		if a.shellMode && engine.IsEmpty() {
			return a.exitShellMode(), nil
		}

	case tea.KeyRunes:
		// "!" on an empty prompt toggles shell mode instead of inserting.
		if !a.shellMode && len(key.Runes) == 1 && key.Runes[0] == '!' &&
			engine.IsEmpty() && engine.Cursor() == 0 {
			return a.enterShellMode(), nil
		}
	}

	var cmd tea.Cmd
	a.editor, cmd = a.editor.Update(key)
	model, editCmd := a.afterEdit()
	return model, tea.Batch(cmd, editCmd)
}

// afterEdit re-syncs the surface and refreshes completion state.
func (a App) afterEdit() (tea.Model, tea.Cmd) {
	engine := a.editor.Engine()
	engine.SyncSurface()

	if a.shellMode {
		a.popover = a.popover.Close()
		return a, nil
	}

	trigger := complete.Detect(engine.Text(), engine.Cursor())
	if trigger.Kind == complete.KindNone {
		a.popover = a.popover.Close()
		return a, nil
	}
	return a, a.resolveCandidates(trigger)
}

func (a App) resolveCandidates(trigger complete.Trigger) tea.Cmd {
	completer := a.completer
	return func() tea.Msg {
		candidates, err := completer.Candidates(context.Background(), trigger)
		return CandidatesMsg{Trigger: trigger, Candidates: candidates, Err: err}
	}
}

func (a App) acceptCandidate() (tea.Model, tea.Cmd) {
	candidate, ok := a.popover.Selected()
	if !ok {
		a.popover = a.popover.Close()
		return a, nil
	}
	trigger := a.popover.Trigger()
	a.popover = a.popover.Close()
	engine := a.editor.Engine()

	switch candidate.Kind {
	case complete.CandidateFile:
		engine.InsertReference(editor.FilePart(candidate.Value, nil), trigger.Start, trigger.End)
	case complete.CandidateAgent:
		engine.InsertReference(editor.AgentPart(candidate.Value), trigger.Start, trigger.End)
	case complete.CandidateCommand:
		text := "/" + candidate.Value + " "
		p := editor.FromText(text)
		engine.Apply(p, p.Len())
	}
	return a, nil
}

func (a App) enterShellMode() App {
	a.shellMode = true
	a.nav.SetMode(history.ModeShell)
	a.popover = a.popover.Close()
	a.editor = a.editor.SetPrompt("! ").SetPlaceholder("Shell command")
	a.footer = a.footer.SetShell(true)
	return a
}

func (a App) exitShellMode() App {
	a.shellMode = false
	a.nav.SetMode(history.ModeNormal)
	a.editor = a.editor.SetPrompt("> ").SetPlaceholder("Ask anything, @ to mention, / for commands")
	a.footer = a.footer.SetShell(false)
	return a
}

func (a App) historyUp() App {
	engine := a.editor.Engine()
	if p, cursor, ok := a.nav.Up(engine.Prompt()); ok {
		engine.Apply(p, cursor)
	}
	return a
}

func (a App) historyDown() App {
	engine := a.editor.Engine()
	if p, cursor, ok := a.nav.Down(); ok {
		engine.Apply(p, cursor)
	}
	return a
}

// abortCmd cancels the in-flight dispatch and tells the backend to
// stop generating, off the update loop so the RPC never blocks a key.
func (a App) abortCmd() tea.Cmd {
	orch := a.orch
	sessID := a.sess.ID
	return func() tea.Msg {
		orch.Abort(context.Background(), sessID)
		return nil
	}
}

// attachImage reads and downscales an image, then pins it to the draft.
func (a App) attachImage(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading image: %w", err)
	}
	data, mime, err := imageutil.Downscale(raw)
	if err != nil {
		return err
	}
	a.editor.Engine().AttachImage(editor.ImagePart(uuid.NewString(), filepath.Base(path), mime, data))
	return nil
}

// addContextItem pins a file, comment, or URL to the session's context
// set. URLs are fetched up front so the note carries the page text.
func (a App) addContextItem(kind, value string) error {
	item := contextitems.Item{Kind: contextitems.Kind(kind), Value: value}
	if item.Kind == contextitems.KindURL {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		detail, err := contextitems.FetchURL(ctx, value)
		if err != nil {
			return fmt.Errorf("fetching %s: %w", value, err)
		}
		item.Detail = detail
	}
	if !a.contextSet.Add(item) {
		return fmt.Errorf("%s already pinned", value)
	}
	return nil
}

// submit dispatches the current prompt. Slash commands run locally;
// everything else goes through the orchestrator with an optimistic
// clear and snapshot-based rollback.
func (a App) submit() (tea.Model, tea.Cmd) {
	engine := a.editor.Engine()
	prompt := engine.Prompt()
	text := strings.TrimSpace(engine.Text())

	if !a.shellMode && commands.IsCommand(text) {
		return a.dispatchCommand(text)
	}

	if prompt.IsEmpty() {
		if a.orch.Working(a.sess.ID) {
			req := a.buildRequest(prompt)
			return a, func() tea.Msg {
				return SubmitResultMsg{Err: a.orch.Submit(context.Background(), req)}
			}
		}
		return a, nil
	}

	// Validate before the optimistic clear so rejected input stays put.
	if !a.shellMode {
		if a.model == "" || a.agent == "" {
			var cmd tea.Cmd
			a.toasts, cmd = a.toasts.Push(ToastWarning, "select a model and agent first")
			return a, cmd
		}
	}

	snapshot := prompt.Clone()
	snapshotCursor := engine.Cursor()

	mode := history.ModeNormal
	if a.shellMode {
		mode = history.ModeShell
	}
	a.histStore.Add(mode, prompt)
	a.nav.Reset()

	req := a.buildRequest(prompt)
	engine.Reset()
	a.popover = a.popover.Close()

	var cmd tea.Cmd
	a.footer, cmd = a.footer.SetWorking(true)

	orch := a.orch
	return a, tea.Batch(cmd, func() tea.Msg {
		return SubmitResultMsg{
			Err:            orch.Submit(context.Background(), req),
			Snapshot:       snapshot,
			SnapshotCursor: snapshotCursor,
		}
	})
}

func (a App) buildRequest(prompt editor.Prompt) submit.Request {
	return submit.Request{
		Session:      a.sess,
		Prompt:       prompt,
		Model:        a.model,
		Agent:        a.agent,
		Shell:        a.shellMode,
		WorktreePath: a.worktreePath,
	}
}

func (a App) handleSubmitResult(msg SubmitResultMsg) (tea.Model, tea.Cmd) {
	a.transcript = a.transcript.SetMessages(a.store.Messages(a.sess.ID))

	working := a.store.Status(a.sess.ID) == session.StatusWorking
	var footerCmd tea.Cmd
	a.footer, footerCmd = a.footer.SetWorking(working)

	if msg.Err == nil {
		return a, footerCmd
	}

	// Rollback: restore the pre-submission editor state. Cancellation
	// stays quiet; real failures toast.
	if !msg.Snapshot.IsEmpty() {
		a.editor.Engine().Apply(msg.Snapshot, msg.SnapshotCursor)
	}
	if errors.Is(msg.Err, submit.ErrCancelled) {
		return a, footerCmd
	}
	var toastCmd tea.Cmd
	a.toasts, toastCmd = a.toasts.Push(ToastError, msg.Err.Error())
	return a, tea.Batch(footerCmd, toastCmd)
}

// dispatchCommand runs a slash command synchronously so it can mutate
// app state; prompt-sending custom commands hand back an async cmd.
func (a App) dispatchCommand(input string) (tea.Model, tea.Cmd) {
	engine := a.editor.Engine()
	engine.Reset()
	a.popover = a.popover.Close()

	var cmds []tea.Cmd
	quit := false

	cmdCtx := &commands.Context{
		Model:    a.model,
		Agent:    a.agent,
		CWD:      a.sess.Directory,
		Messages: len(a.store.Messages(a.sess.ID)),
		SetModel: func(m string) { a.model = m },
		SetAgent: func(g string) { a.agent = g },
		ClearSession: func() {
			a.store.Clear(a.sess.ID)
		},
		ExportSession: func(path string) error {
			return exportTranscript(path, a.store.Messages(a.sess.ID))
		},
		SendPrompt: func(text string) error {
			req := a.buildRequest(editor.FromText(text))
			req.Shell = false
			orch := a.orch
			cmds = append(cmds, func() tea.Msg {
				return SubmitResultMsg{Err: orch.Submit(context.Background(), req)}
			})
			return nil
		},
		AttachImage: a.attachImage,
		ExitFn:      func() { quit = true },
	}
	if a.contextSet != nil {
		cmdCtx.ContextAdd = a.addContextItem
		cmdCtx.ContextList = a.contextSet.Note
		cmdCtx.ContextClear = a.contextSet.Clear
	}
	if a.createWorktree != nil {
		cmdCtx.CreateWorktree = func(name string) (string, error) {
			path, err := a.createWorktree(name)
			if err == nil {
				a.worktreePath = path
			}
			return path, err
		}
	}

	out, err := a.registry.Dispatch(cmdCtx, input)
	if errors.Is(err, commands.ErrUnknown) {
		// Not a builtin or custom command; the backend may own it.
		name, args, _ := strings.Cut(strings.TrimPrefix(input, "/"), " ")
		orch := a.orch
		sess := a.sess
		return a, func() tea.Msg {
			return SubmitResultMsg{Err: orch.ForwardCommand(context.Background(), sess, name, strings.TrimSpace(args))}
		}
	}
	if err != nil {
		var cmd tea.Cmd
		a.toasts, cmd = a.toasts.Push(ToastError, err.Error())
		return a, cmd
	}
	if quit {
		a.quitting = true
		return a, tea.Quit
	}

	a.footer = a.footer.SetIdentity(a.model, a.agent, a.sess.Directory)
	if out != "" {
		a.store.Insert(session.Message{
			ID:        session.NextMessageID(),
			SessionID: a.sess.ID,
			Role:      session.RoleSystem,
			Text:      out,
		})
	}
	a.transcript = a.transcript.SetMessages(a.store.Messages(a.sess.ID))
	return a, tea.Batch(cmds...)
}

// exportTranscript writes the conversation as markdown.
func exportTranscript(path string, messages []session.Message) error {
	var b strings.Builder
	for _, msg := range messages {
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", msg.Role, msg.Text)
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

// View stacks transcript, editor, popover, toasts, and footer.
func (a App) View() string {
	if a.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(a.transcript.View())
	b.WriteString("\n\n")
	b.WriteString(a.editor.View())
	if a.popover.IsOpen() {
		b.WriteString("\n")
		b.WriteString(a.popover.View())
	}
	if a.toasts.Len() > 0 {
		b.WriteString("\n")
		b.WriteString(a.toasts.View())
	}
	b.WriteString("\n")
	b.WriteString(a.footer.View())
	return b.String()
}
