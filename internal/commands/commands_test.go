// ABOUTME: Tests slash command dispatch, builtins, and custom YAML loading
// ABOUTME: Custom commands load from a temp directory fixture

package commands

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestIsCommand(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"/help", true},
		{"/model gpt", true},
		{"help", false},
		{"", false},
		{" /help", false},
	}
	for _, tt := range tests {
		if got := IsCommand(tt.input); got != tt.want {
			t.Errorf("IsCommand(%q) = %v; want %v", tt.input, got, tt.want)
		}
	}
}

func TestDispatchUnknownCommand(t *testing.T) {
	r := NewRegistry()
	_, err := r.Dispatch(&Context{}, "/nosuch")
	if !errors.Is(err, ErrUnknown) {
		t.Errorf("Dispatch = %v; want ErrUnknown", err)
	}
	if err == nil || !strings.Contains(err.Error(), "/nosuch") {
		t.Errorf("Dispatch = %v; want command named in error", err)
	}
}

func TestDispatchNotACommand(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Dispatch(&Context{}, "hello"); err == nil {
		t.Error("Dispatch(plain text) = nil; want error")
	}
}

func TestModelCommand(t *testing.T) {
	r := NewRegistry()
	var set string
	ctx := &Context{Model: "old", SetModel: func(m string) { set = m }}

	out, err := r.Dispatch(ctx, "/model")
	if err != nil || !strings.Contains(out, "old") {
		t.Errorf("bare /model = %q, %v; want current model", out, err)
	}

	out, err = r.Dispatch(ctx, "/model claude-new")
	if err != nil {
		t.Fatalf("/model claude-new = %v; want nil", err)
	}
	if set != "claude-new" {
		t.Errorf("SetModel got %q; want claude-new", set)
	}
	if !strings.Contains(out, "claude-new") {
		t.Errorf("output = %q; want new model named", out)
	}
}

func TestAgentCommand(t *testing.T) {
	r := NewRegistry()
	var set string
	ctx := &Context{Agent: "build", SetAgent: func(a string) { set = a }}

	if _, err := r.Dispatch(ctx, "/agent plan"); err != nil {
		t.Fatalf("/agent plan = %v; want nil", err)
	}
	if set != "plan" {
		t.Errorf("SetAgent got %q; want plan", set)
	}
}

func TestWorktreeCommandRequiresName(t *testing.T) {
	r := NewRegistry()
	ctx := &Context{CreateWorktree: func(name string) (string, error) { return "/wt/" + name, nil }}

	if _, err := r.Dispatch(ctx, "/worktree"); err == nil {
		t.Error("/worktree with no args = nil; want usage error")
	}

	out, err := r.Dispatch(ctx, "/worktree feature")
	if err != nil {
		t.Fatalf("/worktree feature = %v; want nil", err)
	}
	if !strings.Contains(out, "/wt/feature") {
		t.Errorf("output = %q; want created path", out)
	}
}

func TestAttachCommand(t *testing.T) {
	r := NewRegistry()

	out, err := r.Dispatch(&Context{}, "/attach x.png")
	if err != nil || !strings.Contains(out, "not available") {
		t.Errorf("/attach without callback = %q, %v; want not-available notice", out, err)
	}

	var attached string
	ctx := &Context{AttachImage: func(path string) error { attached = path; return nil }}
	if _, err := r.Dispatch(ctx, "/attach"); err == nil {
		t.Error("/attach with no args = nil; want usage error")
	}

	out, err = r.Dispatch(ctx, "/attach shots/ui.png")
	if err != nil {
		t.Fatalf("/attach shots/ui.png = %v; want nil", err)
	}
	if attached != "shots/ui.png" {
		t.Errorf("AttachImage got %q; want shots/ui.png", attached)
	}
	if !strings.Contains(out, "shots/ui.png") {
		t.Errorf("output = %q; want attached path echoed", out)
	}
}

func TestContextCommandSubforms(t *testing.T) {
	r := NewRegistry()
	var kind, value string
	cleared := false
	ctx := &Context{
		ContextAdd: func(k, v string) error {
			kind, value = k, v
			return nil
		},
		ContextList:  func() string { return "Context:\n- file: a.go" },
		ContextClear: func() { cleared = true },
	}

	tests := []struct {
		input string
		kind  string
		value string
	}{
		{"/context file notes.md", "file", "notes.md"},
		{"/context comment keep it simple", "comment", "keep it simple"},
		{"/context url https://example.com", "url", "https://example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			out, err := r.Dispatch(ctx, tt.input)
			if err != nil {
				t.Fatalf("Dispatch(%q) = %v; want nil", tt.input, err)
			}
			if kind != tt.kind || value != tt.value {
				t.Errorf("ContextAdd got %q %q; want %q %q", kind, value, tt.kind, tt.value)
			}
			if !strings.Contains(out, tt.value) {
				t.Errorf("output = %q; want value echoed", out)
			}
		})
	}

	if _, err := r.Dispatch(ctx, "/context file"); err == nil {
		t.Error("/context file with no value = nil; want usage error")
	}

	out, err := r.Dispatch(ctx, "/context list")
	if err != nil || !strings.Contains(out, "a.go") {
		t.Errorf("/context list = %q, %v; want listing", out, err)
	}
	out, err = r.Dispatch(ctx, "/context")
	if err != nil || !strings.Contains(out, "a.go") {
		t.Errorf("bare /context = %q, %v; want listing", out, err)
	}

	if _, err := r.Dispatch(ctx, "/context clear"); err != nil {
		t.Fatalf("/context clear = %v; want nil", err)
	}
	if !cleared {
		t.Error("ContextClear not called")
	}

	if _, err := r.Dispatch(ctx, "/context frobnicate"); err == nil {
		t.Error("/context frobnicate = nil; want usage error")
	}
}

func TestContextCommandEmptyList(t *testing.T) {
	r := NewRegistry()
	ctx := &Context{
		ContextAdd:  func(k, v string) error { return nil },
		ContextList: func() string { return "" },
	}
	out, err := r.Dispatch(ctx, "/context list")
	if err != nil || !strings.Contains(out, "No context items") {
		t.Errorf("/context list = %q, %v; want empty notice", out, err)
	}
}

func TestClearCommandWithoutCallback(t *testing.T) {
	r := NewRegistry()
	out, err := r.Dispatch(&Context{}, "/clear")
	if err != nil {
		t.Fatalf("/clear = %v; want nil", err)
	}
	if !strings.Contains(out, "not available") {
		t.Errorf("output = %q; want not-available notice", out)
	}
}

func TestHelpListsAllCommands(t *testing.T) {
	r := NewRegistry()
	out, err := r.Dispatch(&Context{}, "/help")
	if err != nil {
		t.Fatalf("/help = %v; want nil", err)
	}
	for _, name := range []string{"/clear", "/help", "/model", "/agent", "/worktree", "/export", "/status", "/exit", "/attach", "/context"} {
		if !strings.Contains(out, name) {
			t.Errorf("help output missing %s", name)
		}
	}
}

func TestListSorted(t *testing.T) {
	r := NewRegistry()
	list := r.List()
	for i := 1; i < len(list); i++ {
		if list[i-1].Name >= list[i].Name {
			t.Errorf("List not sorted: %q before %q", list[i-1].Name, list[i].Name)
		}
	}
}

func writeCommandFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestLoadCustom(t *testing.T) {
	dir := t.TempDir()
	writeCommandFile(t, dir, "review.yaml", `
name: review
title: Request a code review
template: "Please review the following: {{args}}"
`)
	// Name defaults to the filename stem.
	writeCommandFile(t, dir, "summarize.yml", `
template: Summarize the conversation so far.
`)
	// Missing template is skipped.
	writeCommandFile(t, dir, "broken.yaml", `
name: broken
title: No template here
`)

	r := NewRegistry()
	if err := r.LoadCustom(dir); err != nil {
		t.Fatalf("LoadCustom = %v; want nil", err)
	}

	if _, ok := r.Get("broken"); ok {
		t.Error("template-less command registered; want skipped")
	}
	if cmd, ok := r.Get("summarize"); !ok || !cmd.Custom {
		t.Error("filename-named command not registered as custom")
	}

	var sent string
	ctx := &Context{SendPrompt: func(text string) error { sent = text; return nil }}
	if _, err := r.Dispatch(ctx, "/review the parser"); err != nil {
		t.Fatalf("custom dispatch = %v; want nil", err)
	}
	if sent != "Please review the following: the parser" {
		t.Errorf("sent prompt = %q; want args expanded", sent)
	}
}

func TestLoadCustomDoesNotShadowBuiltin(t *testing.T) {
	dir := t.TempDir()
	writeCommandFile(t, dir, "help.yaml", `
name: help
template: hijacked
`)

	r := NewRegistry()
	if err := r.LoadCustom(dir); err != nil {
		t.Fatalf("LoadCustom = %v; want nil", err)
	}
	cmd, ok := r.Get("help")
	if !ok || cmd.Custom {
		t.Error("builtin /help shadowed by custom command")
	}
}

func TestLoadCustomReplacesPrevious(t *testing.T) {
	dir := t.TempDir()
	writeCommandFile(t, dir, "old.yaml", "template: old prompt\n")

	r := NewRegistry()
	if err := r.LoadCustom(dir); err != nil {
		t.Fatal(err)
	}
	if _, ok := r.Get("old"); !ok {
		t.Fatal("first load did not register /old")
	}

	if err := os.Remove(filepath.Join(dir, "old.yaml")); err != nil {
		t.Fatal(err)
	}
	writeCommandFile(t, dir, "new.yaml", "template: new prompt\n")
	if err := r.LoadCustom(dir); err != nil {
		t.Fatal(err)
	}

	if _, ok := r.Get("old"); ok {
		t.Error("/old survived reload after its file was removed")
	}
	if _, ok := r.Get("new"); !ok {
		t.Error("/new not registered on reload")
	}
}

func TestLoadCustomMissingDir(t *testing.T) {
	r := NewRegistry()
	if err := r.LoadCustom(filepath.Join(t.TempDir(), "nope")); err != nil {
		t.Errorf("LoadCustom(missing dir) = %v; want nil", err)
	}
}
