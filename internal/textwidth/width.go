// ABOUTME: Display-width helpers built on go-runewidth and uniseg
// ABOUTME: ANSI escape sequences count zero; grapheme clusters measured as units

package textwidth

import (
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// Visible returns the display width of s. ANSI escape sequences contribute
// zero width; East Asian characters and emoji may occupy two cells.
func Visible(s string) int {
	if s == "" {
		return 0
	}
	if isASCII(s) {
		return visibleASCII(s)
	}

	w := 0
	i := 0
	for i < len(s) {
		if s[i] == '\x1b' {
			i = skipANSI(s, i)
			continue
		}
		cluster, _, _, _ := uniseg.FirstGraphemeClusterInString(s[i:], -1)
		w += clusterWidth(cluster)
		i += len(cluster)
	}
	return w
}

// StripANSI removes escape sequences from s.
func StripANSI(s string) string {
	if !strings.ContainsRune(s, '\x1b') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	i := 0
	for i < len(s) {
		if s[i] == '\x1b' {
			i = skipANSI(s, i)
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		b.WriteRune(r)
		i += size
	}
	return b.String()
}

// Truncate cuts s to at most maxWidth visible columns, appending an ellipsis
// when anything was removed.
func Truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if Visible(s) <= maxWidth {
		return s
	}

	var b strings.Builder
	w := 0
	i := 0
	for i < len(s) {
		if s[i] == '\x1b' {
			end := skipANSI(s, i)
			b.WriteString(s[i:end])
			i = end
			continue
		}
		cluster, _, _, _ := uniseg.FirstGraphemeClusterInString(s[i:], -1)
		cw := clusterWidth(cluster)
		if w+cw > maxWidth-1 {
			break
		}
		b.WriteString(cluster)
		w += cw
		i += len(cluster)
	}
	b.WriteString("…")
	return b.String()
}

// Wrap breaks s into lines of at most maxWidth visible columns.
// Long words are broken mid-word. Newlines in s start a fresh line.
func Wrap(s string, maxWidth int) []string {
	if maxWidth <= 0 {
		return nil
	}
	if s == "" {
		return []string{""}
	}

	var lines []string
	var cur strings.Builder
	w := 0
	i := 0
	for i < len(s) {
		if s[i] == '\n' {
			lines = append(lines, cur.String())
			cur.Reset()
			w = 0
			i++
			continue
		}
		if s[i] == '\x1b' {
			end := skipANSI(s, i)
			cur.WriteString(s[i:end])
			i = end
			continue
		}
		cluster, _, _, _ := uniseg.FirstGraphemeClusterInString(s[i:], -1)
		cw := clusterWidth(cluster)
		if w+cw > maxWidth {
			lines = append(lines, cur.String())
			cur.Reset()
			w = 0
		}
		cur.WriteString(cluster)
		w += cw
		i += len(cluster)
	}
	lines = append(lines, cur.String())
	return lines
}

func clusterWidth(cluster string) int {
	w := 0
	for _, r := range cluster {
		w += runewidth.RuneWidth(r)
	}
	// A multi-rune cluster renders as a single unit; cap at 2 cells.
	if utf8.RuneCountInString(cluster) > 1 && w > 2 {
		w = 2
	}
	return w
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf || s[i] == '\x1b' {
			return false
		}
	}
	return true
}

func visibleASCII(s string) int {
	w := 0
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x20 && s[i] < 0x7f {
			w++
		}
	}
	return w
}

// skipANSI returns the index just past the escape sequence starting at i.
func skipANSI(s string, i int) int {
	if i+1 >= len(s) {
		return len(s)
	}
	if s[i+1] == '[' {
		// CSI: parameters then a final byte in 0x40..0x7e
		j := i + 2
		for j < len(s) {
			if s[j] >= 0x40 && s[j] <= 0x7e {
				return j + 1
			}
			j++
		}
		return len(s)
	}
	if s[i+1] == ']' {
		// OSC: terminated by BEL or ST
		j := i + 2
		for j < len(s) {
			if s[j] == '\a' {
				return j + 1
			}
			if s[j] == '\x1b' && j+1 < len(s) && s[j+1] == '\\' {
				return j + 2
			}
			j++
		}
		return len(s)
	}
	return i + 2
}
