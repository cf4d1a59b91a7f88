// ABOUTME: CLI entry point for tern: flags, config, wiring, Bubble Tea run loop
// ABOUTME: Bridges session-store events into the program via Program.Send

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ternchat/tern/internal/commands"
	"github.com/ternchat/tern/internal/complete"
	"github.com/ternchat/tern/internal/config"
	"github.com/ternchat/tern/internal/contextitems"
	"github.com/ternchat/tern/internal/fsearch"
	"github.com/ternchat/tern/internal/history"
	ternlog "github.com/ternchat/tern/internal/log"
	"github.com/ternchat/tern/internal/session"
	"github.com/ternchat/tern/internal/stream"
	"github.com/ternchat/tern/internal/submit"
	"github.com/ternchat/tern/internal/tui"
	"github.com/ternchat/tern/internal/worktree"
	"github.com/ternchat/tern/pkg/sdk"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	args := parseFlags()

	if args.version {
		fmt.Printf("tern %s (%s)\n", version, commit)
		os.Exit(0)
	}

	if err := run(args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args cliArgs) error {
	if _, err := config.EnsureDir(); err != nil {
		return err
	}

	level := slog.LevelInfo
	if args.verbose {
		level = slog.LevelDebug
	}
	if logPath, err := config.LogPath(); err == nil {
		if err := ternlog.Init(logPath, level); err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if args.model != "" {
		cfg.Model = args.model
	}
	if args.agent != "" {
		cfg.Agent = args.agent
	}
	if args.baseURL != "" {
		cfg.BaseURL = args.baseURL
	}

	dir := args.dir
	if dir == "" {
		if dir, err = os.Getwd(); err != nil {
			return fmt.Errorf("resolving working directory: %w", err)
		}
	}

	historyPath, err := config.HistoryPath()
	if err != nil {
		return err
	}
	histStore, err := history.Load(historyPath)
	if err != nil {
		return err
	}

	sessionsDir, err := config.SessionsDir()
	if err != nil {
		return err
	}
	store := session.NewStore(sessionsDir)
	sess := session.NewSession(dir)
	store.AddSession(sess)

	client := sdk.New(cfg.BaseURL, sdk.WithTimeout(cfg.RequestTimeout))
	contextSet := contextitems.NewSet()

	orch := submit.NewOrchestrator(store, submit.NewRegistry(), client,
		submit.WithScope(func(dir string) submit.Dispatcher { return client.Scoped(dir) }),
		submit.WithContextNote(contextSet.Note),
		submit.WithWorktreeTimeout(cfg.WorktreeTimeout),
	)

	registry := commands.NewRegistry()
	commandsDir, err := config.CommandsDir()
	if err != nil {
		return err
	}
	if err := registry.LoadCustom(commandsDir); err != nil {
		ternlog.Warn("loading custom commands", "err", err)
	}

	searcher := fsearch.New(dir)
	completer := complete.New(
		[]string{"build", "plan", "review"},
		nil,
		searcher,
		func() []complete.CommandEntry {
			var entries []complete.CommandEntry
			for _, cmd := range registry.List() {
				entries = append(entries, complete.CommandEntry{
					Name:        cmd.Name,
					Title:       cmd.Title,
					Description: cmd.Description,
				})
			}
			return entries
		},
	)

	app := tui.NewApp(tui.AppConfig{
		Store:     store,
		Orch:      orch,
		History:   histStore,
		Completer: completer,
		Registry:  registry,
		Session:   sess,
		Model:     cfg.Model,
		Agent:     cfg.Agent,
		Context:   contextSet,
		CreateWorktree: func(name string) (string, error) {
			// The backend owns checkouts when it can; fall back to a
			// local git worktree when the RPC is unavailable.
			ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
			defer cancel()
			wt, err := client.CreateWorktree(ctx, name)
			if err == nil {
				return wt.Path, nil
			}
			ternlog.Debug("backend worktree create failed, using local git", "err", err)
			root, err := worktree.RepoRoot(context.Background(), dir)
			if err != nil {
				return "", err
			}
			info, err := worktree.Create(context.Background(), root, name)
			if err != nil {
				return "", err
			}
			return info.Path, nil
		},
	})

	program := tea.NewProgram(app, tea.WithAltScreen())

	unsubscribe := store.Subscribe(func(event session.Event) {
		program.Send(tui.StoreEventMsg{Event: event})
	})
	defer unsubscribe()

	// Backend events land in the store, whose subscription above
	// forwards them into the program.
	streamCtx, stopStream := context.WithCancel(context.Background())
	defer stopStream()
	go stream.Run(streamCtx, func(ctx context.Context, sessionID string) (stream.Receiver, error) {
		return client.Events(ctx, sessionID)
	}, store, sess.ID)

	stopWatch, err := registry.Watch(commandsDir, func() {
		program.Send(tui.CommandsReloadedMsg{})
	})
	if err == nil {
		defer stopWatch()
	} else {
		ternlog.Debug("command watcher unavailable", "err", err)
	}

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running tui: %w", err)
	}
	return nil
}
