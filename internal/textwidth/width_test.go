// ABOUTME: Tests display-width measurement, ANSI stripping, truncation, and wrap
// ABOUTME: Covers escape sequences, wide characters, and grapheme clusters

package textwidth

import (
	"strings"
	"testing"
)

func TestVisible(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"empty", "", 0},
		{"plain ascii", "hello", 5},
		{"ansi color", "\x1b[31mred\x1b[0m", 3},
		{"osc sequence", "\x1b]0;title\abody", 4},
		{"wide cjk", "日本", 4},
		{"mixed", "a日b", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Visible(tt.input); got != tt.want {
				t.Errorf("Visible(%q) = %d; want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestStripANSI(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"plain", "plain"},
		{"\x1b[1;32mbold green\x1b[0m", "bold green"},
		{"a\x1b]8;;http://x\x1b\\link\x1b]8;;\x1b\\b", "alinkb"},
	}
	for _, tt := range tests {
		if got := StripANSI(tt.input); got != tt.want {
			t.Errorf("StripANSI(%q) = %q; want %q", tt.input, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxWidth int
		want     string
	}{
		{"fits", "short", 10, "short"},
		{"exact", "exact", 5, "exact"},
		{"cut", "hello world", 8, "hello w…"},
		{"zero", "anything", 0, ""},
		{"one", "ab", 1, "…"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.input, tt.maxWidth); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q; want %q", tt.input, tt.maxWidth, got, tt.want)
			}
		})
	}
}

func TestTruncateKeepsWithinWidth(t *testing.T) {
	got := Truncate("日本語のテキスト", 6)
	if w := Visible(got); w > 6 {
		t.Errorf("Visible(truncated) = %d; want <= 6", w)
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("truncated = %q; want ellipsis suffix", got)
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxWidth int
		want     []string
	}{
		{"empty", "", 10, []string{""}},
		{"fits", "hi", 10, []string{"hi"}},
		{"breaks long run", "abcdefgh", 3, []string{"abc", "def", "gh"}},
		{"newlines", "a\nb", 10, []string{"a", "b"}},
		{"zero width", "x", 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Wrap(tt.input, tt.maxWidth)
			if len(got) != len(tt.want) {
				t.Fatalf("Wrap = %v; want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("line[%d] = %q; want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}
