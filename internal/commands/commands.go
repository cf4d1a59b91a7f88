// ABOUTME: Slash command registry and dispatch for the prompt editor
// ABOUTME: Builtins cover conversation, identity, worktree, attachment, and context handling

package commands

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrUnknown marks a slash command with no local handler. Callers may
// forward such commands to the backend.
var ErrUnknown = errors.New("unknown command")

// Command is one slash command.
type Command struct {
	Name        string
	Title       string
	Description string
	// Custom is true for user-defined commands loaded from YAML.
	Custom  bool
	Execute func(ctx *Context, args string) (string, error)
}

// Context exposes app state and callbacks to command handlers.
// Nilable callbacks make the command report "not available".
type Context struct {
	Model    string
	Agent    string
	CWD      string
	Version  string
	Messages int

	SetModel       func(string)
	SetAgent       func(string)
	ClearSession   func()
	ExportSession  func(path string) error
	CreateWorktree func(name string) (string, error)
	SendPrompt     func(text string) error
	AttachImage    func(path string) error
	ContextAdd     func(kind, value string) error
	ContextList    func() string
	ContextClear   func()
	ExitFn         func()
}

// Registry holds builtin and custom commands.
type Registry struct {
	mu       sync.Mutex
	commands map[string]*Command
	custom   map[string]bool
}

// NewRegistry creates a registry with the builtins registered.
func NewRegistry() *Registry {
	r := &Registry{
		commands: make(map[string]*Command),
		custom:   make(map[string]bool),
	}
	r.registerBuiltins()
	return r
}

// Get returns a command by name.
func (r *Registry) Get(name string) (*Command, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cmd, ok := r.commands[name]
	return cmd, ok
}

// List returns all commands sorted by name.
func (r *Registry) List() []*Command {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		out = append(out, cmd)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Dispatch parses "/name args", looks up the command, and runs it.
func (r *Registry) Dispatch(ctx *Context, input string) (string, error) {
	input = strings.TrimSpace(input)
	if !IsCommand(input) {
		return "", fmt.Errorf("not a command: %q", input)
	}

	name, args, _ := strings.Cut(input[1:], " ")
	args = strings.TrimSpace(args)

	cmd, ok := r.Get(name)
	if !ok {
		return "", fmt.Errorf("%w: /%s", ErrUnknown, name)
	}
	return cmd.Execute(ctx, args)
}

// IsCommand reports whether input begins with '/'.
func IsCommand(input string) bool {
	return len(input) > 0 && input[0] == '/'
}

// register adds or replaces a command. Custom commands never shadow
// builtins.
func (r *Registry) register(cmd *Command) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cmd.Custom {
		if existing, ok := r.commands[cmd.Name]; ok && !existing.Custom {
			return
		}
		r.custom[cmd.Name] = true
	}
	r.commands[cmd.Name] = cmd
}

// dropCustom removes all custom commands, keeping builtins.
func (r *Registry) dropCustom() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name := range r.custom {
		delete(r.commands, name)
		delete(r.custom, name)
	}
}

func (r *Registry) registerBuiltins() {
	builtins := []*Command{
		{
			Name:  "clear",
			Title: "Clear the conversation",
			Execute: func(ctx *Context, _ string) (string, error) {
				if ctx.ClearSession == nil {
					return "Clear not available.", nil
				}
				ctx.ClearSession()
				return "Conversation cleared.", nil
			},
		},
		{
			Name:  "help",
			Title: "Show available commands",
			Execute: func(_ *Context, _ string) (string, error) {
				var b strings.Builder
				b.WriteString("Available commands:\n")
				for _, cmd := range r.List() {
					fmt.Fprintf(&b, "  /%s - %s\n", cmd.Name, cmd.Title)
				}
				return b.String(), nil
			},
		},
		{
			Name:  "model",
			Title: "Show or change the model",
			Execute: func(ctx *Context, args string) (string, error) {
				if args == "" {
					return fmt.Sprintf("Current model: %s", ctx.Model), nil
				}
				if ctx.SetModel == nil {
					return "Model switch not available.", nil
				}
				ctx.SetModel(args)
				return fmt.Sprintf("Model set to: %s", args), nil
			},
		},
		{
			Name:  "agent",
			Title: "Show or change the agent",
			Execute: func(ctx *Context, args string) (string, error) {
				if args == "" {
					return fmt.Sprintf("Current agent: %s", ctx.Agent), nil
				}
				if ctx.SetAgent == nil {
					return "Agent switch not available.", nil
				}
				ctx.SetAgent(args)
				return fmt.Sprintf("Agent set to: %s", args), nil
			},
		},
		{
			Name:  "worktree",
			Title: "Create an isolated worktree session",
			Execute: func(ctx *Context, args string) (string, error) {
				if ctx.CreateWorktree == nil {
					return "Worktrees not available.", nil
				}
				if args == "" {
					return "", fmt.Errorf("usage: /worktree <name>")
				}
				path, err := ctx.CreateWorktree(args)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("Worktree created at %s", path), nil
			},
		},
		{
			Name:  "export",
			Title: "Export the conversation to a file",
			Execute: func(ctx *Context, args string) (string, error) {
				if ctx.ExportSession == nil {
					return "Export not available.", nil
				}
				if args == "" {
					args = "conversation.md"
				}
				if err := ctx.ExportSession(args); err != nil {
					return "", err
				}
				return fmt.Sprintf("Exported to %s", args), nil
			},
		},
		{
			Name:  "attach",
			Title: "Attach an image to the prompt",
			Execute: func(ctx *Context, args string) (string, error) {
				if ctx.AttachImage == nil {
					return "Attachments not available.", nil
				}
				if args == "" {
					return "", fmt.Errorf("usage: /attach <image-path>")
				}
				if err := ctx.AttachImage(args); err != nil {
					return "", err
				}
				return fmt.Sprintf("Attached %s", args), nil
			},
		},
		{
			Name:  "context",
			Title: "Pin files, notes, or URLs to the session",
			Execute: func(ctx *Context, args string) (string, error) {
				if ctx.ContextAdd == nil {
					return "Context items not available.", nil
				}
				sub, rest, _ := strings.Cut(args, " ")
				rest = strings.TrimSpace(rest)
				switch sub {
				case "file", "comment", "url":
					if rest == "" {
						return "", fmt.Errorf("usage: /context %s <value>", sub)
					}
					if err := ctx.ContextAdd(sub, rest); err != nil {
						return "", err
					}
					return fmt.Sprintf("Pinned %s: %s", sub, rest), nil
				case "", "list":
					out := ctx.ContextList()
					if out == "" {
						return "No context items pinned.", nil
					}
					return out, nil
				case "clear":
					ctx.ContextClear()
					return "Context cleared.", nil
				default:
					return "", fmt.Errorf("usage: /context file|comment|url <value>, /context list, /context clear")
				}
			},
		},
		{
			Name:  "status",
			Title: "Show session status",
			Execute: func(ctx *Context, _ string) (string, error) {
				return fmt.Sprintf(
					"Model:    %s\nAgent:    %s\nCWD:      %s\nMessages: %d\nVersion:  %s",
					ctx.Model, ctx.Agent, ctx.CWD, ctx.Messages, ctx.Version,
				), nil
			},
		},
		{
			Name:  "exit",
			Title: "Exit the application",
			Execute: func(ctx *Context, _ string) (string, error) {
				if ctx.ExitFn == nil {
					return "Exit not available.", nil
				}
				ctx.ExitFn()
				return "Goodbye.", nil
			},
		},
	}
	for _, cmd := range builtins {
		r.register(cmd)
	}
}
