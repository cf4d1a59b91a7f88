// ABOUTME: Runs shell-mode commands locally under a pseudo-terminal
// ABOUTME: PTY keeps color and progress output intact; window size mirrors the caller's terminal

package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/creack/pty"
	"golang.org/x/term"
)

// Result is the outcome of a shell-mode command.
type Result struct {
	Output   string
	ExitCode int
}

// Run executes command with the user's shell inside a pty rooted at dir.
// Output is captured and returned; a non-zero exit is not an error.
func Run(ctx context.Context, dir, command string) (Result, error) {
	shellPath := os.Getenv("SHELL")
	if shellPath == "" {
		shellPath = "/bin/sh"
	}

	cmd := exec.CommandContext(ctx, shellPath, "-c", command)
	cmd.Dir = dir
	cmd.Env = os.Environ()

	f, err := pty.StartWithSize(cmd, winsize())
	if err != nil {
		return Result{}, fmt.Errorf("starting pty: %w", err)
	}
	defer f.Close()

	var out strings.Builder
	// Reading until the pty closes; EIO is the normal close signal on Linux.
	if _, err := io.Copy(&out, f); err != nil && !isPtyClosed(err) {
		return Result{}, fmt.Errorf("reading pty: %w", err)
	}

	result := Result{Output: out.String()}
	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			return result, fmt.Errorf("waiting for command: %w", err)
		}
	}
	return result, nil
}

// winsize mirrors the controlling terminal's size, defaulting to 80x24
// when stdout is not a terminal.
func winsize() *pty.Winsize {
	ws := &pty.Winsize{Cols: 80, Rows: 24}
	fd := int(os.Stdout.Fd())
	if term.IsTerminal(fd) {
		if w, h, err := term.GetSize(fd); err == nil {
			ws.Cols = uint16(w)
			ws.Rows = uint16(h)
		}
	}
	return ws
}

func isPtyClosed(err error) bool {
	// Linux ptys return EIO when the child side closes.
	var pathErr *os.PathError
	return errors.As(err, &pathErr) || errors.Is(err, io.EOF)
}
