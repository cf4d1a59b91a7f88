// ABOUTME: Git worktree management for session isolation: create, list, remove
// ABOUTME: Wraps the git CLI via exec.CommandContext with porcelain parsing

package worktree

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const gitTimeout = 30 * time.Second

// Info holds metadata about a git worktree.
type Info struct {
	Path   string
	Branch string
	Head   string
	Bare   bool
	Main   bool
}

// Create adds a worktree at .tern/worktrees/<name> on a new tern/<name>
// branch based at HEAD. repoDir must be the repository root.
func Create(ctx context.Context, repoDir, name string) (info Info, err error) {
	if err := ValidateName(name); err != nil {
		return Info{}, err
	}

	wtPath := filepath.Join(repoDir, ".tern", "worktrees", name)
	branch := "tern/" + name

	ctx, cancel := context.WithTimeout(ctx, gitTimeout)
	defer cancel()

	out, err := gitCmd(ctx, repoDir, "worktree", "add", "-b", branch, wtPath)
	if err != nil {
		return Info{}, fmt.Errorf("git worktree add: %w: %s", err, out)
	}

	// Drop the half-created worktree if reading HEAD fails.
	defer func() {
		if err != nil {
			_ = Remove(context.Background(), wtPath)
		}
	}()

	head, err := gitCmd(ctx, wtPath, "rev-parse", "HEAD")
	if err != nil {
		return Info{}, fmt.Errorf("git worktree add: read HEAD: %w", err)
	}

	return Info{
		Path:   wtPath,
		Branch: branch,
		Head:   strings.TrimSpace(head),
	}, nil
}

// Remove deletes the worktree at path with git worktree remove --force.
// Runs from the parent directory so the worktree itself is not locked.
func Remove(ctx context.Context, path string) error {
	ctx, cancel := context.WithTimeout(ctx, gitTimeout)
	defer cancel()

	out, err := gitCmd(ctx, filepath.Dir(path), "worktree", "remove", "--force", path)
	if err != nil {
		return fmt.Errorf("git worktree remove: %w: %s", err, out)
	}
	return nil
}

// List returns all worktrees of the repo at repoDir.
func List(ctx context.Context, repoDir string) ([]Info, error) {
	ctx, cancel := context.WithTimeout(ctx, gitTimeout)
	defer cancel()

	out, err := gitCmd(ctx, repoDir, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, fmt.Errorf("git worktree list: %w: %s", err, out)
	}
	return parsePorcelain(out)
}

// RepoRoot resolves the repository root containing dir.
func RepoRoot(ctx context.Context, dir string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, gitTimeout)
	defer cancel()

	out, err := gitCmd(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("git repo root: %w: %s", err, out)
	}
	return strings.TrimSpace(out), nil
}

// IsInside reports whether dir is inside a git working tree.
func IsInside(dir string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), gitTimeout)
	defer cancel()

	out, err := gitCmd(ctx, dir, "rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(out) == "true"
}

// WaitReady polls until the directory at path is a populated working
// tree, or ctx ends. Backends report worktree paths before the checkout
// finishes, so the first prompt into one has to wait.
func WaitReady(ctx context.Context, path string) error {
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		if IsInside(path) {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for worktree %s: %w", path, ctx.Err())
		case <-ticker.C:
		}
	}
}

// ValidateName checks that name is safe as a directory and branch
// component: alphanumeric start, then alphanumerics, hyphens,
// underscores, and dots, no consecutive dots, at most 64 runes.
func ValidateName(name string) error {
	if name == "" || len(name) > 64 {
		return fmt.Errorf("invalid worktree name %q: must be 1-64 characters", name)
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case i > 0 && (r == '-' || r == '_'):
		case i > 0 && r == '.':
			if name[i-1] == '.' {
				return fmt.Errorf("invalid worktree name %q: consecutive dots", name)
			}
		default:
			return fmt.Errorf("invalid worktree name %q: must contain only alphanumerics, hyphens, underscores, and dots", name)
		}
	}
	return nil
}

// gitCmd runs git with the given working directory, returning combined
// output as a string.
func gitCmd(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// parsePorcelain parses git worktree list --porcelain output. Entries
// are blank-line separated; the first listed worktree is the main one.
func parsePorcelain(output string) ([]Info, error) {
	var worktrees []Info
	var current *Info
	first := true

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "worktree "):
			if current != nil {
				worktrees = append(worktrees, *current)
			}
			current = &Info{
				Path: strings.TrimPrefix(line, "worktree "),
				Main: first,
			}
			first = false
		case strings.HasPrefix(line, "HEAD "):
			if current != nil {
				current.Head = strings.TrimPrefix(line, "HEAD ")
			}
		case strings.HasPrefix(line, "branch "):
			if current != nil {
				ref := strings.TrimPrefix(line, "branch ")
				current.Branch = strings.TrimPrefix(ref, "refs/heads/")
			}
		case line == "bare":
			if current != nil {
				current.Bare = true
			}
		}
	}
	if current != nil {
		worktrees = append(worktrees, *current)
	}
	return worktrees, scanner.Err()
}
