// ABOUTME: Tagged-union content parts and the Prompt they compose
// ABOUTME: Invariant: concatenating part labels in order reproduces the logical text

package editor

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// PartKind discriminates the Part union.
type PartKind int

const (
	// PartText is a raw text run.
	PartText PartKind = iota
	// PartFile is an atomic reference to a project file.
	PartFile
	// PartAgent is an atomic reference to a named agent.
	PartAgent
	// PartImage is an attached image, outside the linear offset space.
	PartImage
)

var partKindNames = map[PartKind]string{
	PartText:  "text",
	PartFile:  "file",
	PartAgent: "agent",
	PartImage: "image",
}

// String returns the wire name of the kind.
func (k PartKind) String() string {
	if n, ok := partKindNames[k]; ok {
		return n
	}
	return "unknown"
}

// MarshalJSON encodes the kind as its wire name.
func (k PartKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON decodes a kind from its wire name.
func (k *PartKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for kind, name := range partKindNames {
		if name == s {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown part kind %q", s)
}

// LineRange is an optional line selection on a file reference.
type LineRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// String renders the range in #Lstart-end form.
func (r LineRange) String() string {
	if r.End > r.Start {
		return fmt.Sprintf("#L%d-%d", r.Start, r.End)
	}
	return fmt.Sprintf("#L%d", r.Start)
}

// Part is one typed segment of a composed prompt.
// Start/End are logical rune offsets maintained by Prompt normalization;
// image parts occupy a zero-width slot.
type Part struct {
	Kind PartKind `json:"kind"`

	// PartText
	Text string `json:"text,omitempty"`

	// PartFile
	Path  string     `json:"path,omitempty"`
	Range *LineRange `json:"range,omitempty"`

	// PartAgent
	Agent string `json:"agent,omitempty"`

	// PartImage
	ImageID  string `json:"image_id,omitempty"`
	Filename string `json:"filename,omitempty"`
	Mime     string `json:"mime,omitempty"`
	Data     []byte `json:"data,omitempty"`

	Start int `json:"start"`
	End   int `json:"end"`
}

// TextPart builds a text part.
func TextPart(s string) Part {
	return Part{Kind: PartText, Text: s}
}

// FilePart builds a file-reference part.
func FilePart(path string, r *LineRange) Part {
	return Part{Kind: PartFile, Path: path, Range: r}
}

// AgentPart builds an agent-reference part.
func AgentPart(name string) Part {
	return Part{Kind: PartAgent, Agent: name}
}

// ImagePart builds an image-attachment part.
func ImagePart(id, filename, mime string, data []byte) Part {
	return Part{Kind: PartImage, ImageID: id, Filename: filename, Mime: mime, Data: data}
}

// Label returns the part's contribution to the logical text.
// Atomic references render as @-prefixed placeholders; images contribute nothing.
func (p Part) Label() string {
	switch p.Kind {
	case PartText:
		return p.Text
	case PartFile:
		return "@" + p.Path
	case PartAgent:
		return "@" + p.Agent
	default:
		return ""
	}
}

// width returns the part's length in the logical offset space.
func (p Part) width() int {
	return utf8.RuneCountInString(p.Label())
}

// Prompt is an ordered sequence of content parts.
// The zero value is not canonical; use Empty for a fresh prompt.
type Prompt struct {
	Parts []Part `json:"parts"`
}

// Empty returns the canonical empty prompt: a single empty text part.
func Empty() Prompt {
	return Prompt{Parts: []Part{TextPart("")}}
}

// FromText builds a normalized prompt holding only the given text.
func FromText(s string) Prompt {
	return Prompt{Parts: []Part{TextPart(s)}}.Normalize()
}

// Text returns the concatenated logical text of all parts.
func (p Prompt) Text() string {
	var b strings.Builder
	for _, part := range p.Parts {
		b.WriteString(part.Label())
	}
	return b.String()
}

// Len returns the logical text length in runes.
func (p Prompt) Len() int {
	n := 0
	for _, part := range p.Parts {
		n += part.width()
	}
	return n
}

// IsEmpty reports whether the prompt has no text and no image attachments.
func (p Prompt) IsEmpty() bool {
	return p.Text() == "" && len(p.Images()) == 0
}

// Images returns the image parts in order.
func (p Prompt) Images() []Part {
	var imgs []Part
	for _, part := range p.Parts {
		if part.Kind == PartImage {
			imgs = append(imgs, part)
		}
	}
	return imgs
}

// References returns the file and agent reference parts in order.
func (p Prompt) References() []Part {
	var refs []Part
	for _, part := range p.Parts {
		if part.Kind == PartFile || part.Kind == PartAgent {
			refs = append(refs, part)
		}
	}
	return refs
}

// Clone returns a deep copy of the prompt.
func (p Prompt) Clone() Prompt {
	parts := make([]Part, len(p.Parts))
	copy(parts, p.Parts)
	for i := range parts {
		if parts[i].Range != nil {
			r := *parts[i].Range
			parts[i].Range = &r
		}
		if parts[i].Data != nil {
			d := make([]byte, len(parts[i].Data))
			copy(d, parts[i].Data)
			parts[i].Data = d
		}
	}
	return Prompt{Parts: parts}
}

// Normalize canonicalizes the prompt: CRLF and CR become LF, zero-width-space
// artifacts are stripped, text is NFC-normalized, adjacent text parts merge,
// empty text parts between non-text parts drop, offsets are recomputed, and a
// fully empty prompt collapses to the canonical single empty text part.
func (p Prompt) Normalize() Prompt {
	var parts []Part
	for _, part := range p.Parts {
		if part.Kind == PartText {
			text := normalizeText(part.Text)
			if text == "" {
				continue
			}
			if len(parts) > 0 && parts[len(parts)-1].Kind == PartText {
				parts[len(parts)-1].Text += text
				continue
			}
			parts = append(parts, TextPart(text))
			continue
		}
		parts = append(parts, part)
	}

	if !hasContent(parts) {
		// Keep images even when text is empty.
		imgs := Prompt{Parts: parts}.Images()
		parts = append([]Part{TextPart("")}, imgs...)
	}

	off := 0
	for i := range parts {
		parts[i].Start = off
		off += parts[i].width()
		parts[i].End = off
	}
	return Prompt{Parts: parts}
}

// Equal reports content equality after normalization.
func (p Prompt) Equal(q Prompt) bool {
	a, b := p.Normalize(), q.Normalize()
	if len(a.Parts) != len(b.Parts) {
		return false
	}
	for i := range a.Parts {
		if !partEqual(a.Parts[i], b.Parts[i]) {
			return false
		}
	}
	return true
}

// ReplaceSpan replaces logical offsets [start,end) with the given part and
// returns the normalized result. The span must lie within text content;
// spans crossing an atomic reference leave it intact and splice around it.
func (p Prompt) ReplaceSpan(start, end int, part Part) Prompt {
	var parts []Part
	inserted := false
	for _, cur := range p.Parts {
		// Images sit outside the offset space; atomic references overlapping
		// the span stay whole.
		if cur.Kind != PartText || cur.End <= start || cur.Start >= end {
			parts = append(parts, cur)
			continue
		}
		runes := []rune(cur.Text)
		lo := clamp(start-cur.Start, 0, len(runes))
		hi := clamp(end-cur.Start, 0, len(runes))
		if lo > 0 {
			parts = append(parts, TextPart(string(runes[:lo])))
		}
		if !inserted {
			parts = append(parts, part)
			inserted = true
		}
		if hi < len(runes) {
			parts = append(parts, TextPart(string(runes[hi:])))
		}
	}
	if !inserted {
		parts = append(parts, part)
	}
	return Prompt{Parts: parts}.Normalize()
}

// AppendImage returns the prompt with an image attachment appended.
func (p Prompt) AppendImage(img Part) Prompt {
	q := p.Clone()
	q.Parts = append(q.Parts, img)
	return q.Normalize()
}

// RemoveImage returns the prompt without the image of the given ID.
func (p Prompt) RemoveImage(id string) Prompt {
	q := p.Clone()
	parts := q.Parts[:0]
	for _, part := range q.Parts {
		if part.Kind == PartImage && part.ImageID == id {
			continue
		}
		parts = append(parts, part)
	}
	q.Parts = parts
	return q.Normalize()
}

const zwsp = '​'

func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	if strings.ContainsRune(s, zwsp) {
		s = strings.ReplaceAll(s, string(zwsp), "")
	}
	return norm.NFC.String(s)
}

func hasContent(parts []Part) bool {
	for _, p := range parts {
		if p.Kind != PartImage {
			return true
		}
	}
	return false
}

func partEqual(a, b Part) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case PartText:
		return a.Text == b.Text
	case PartFile:
		if a.Path != b.Path {
			return false
		}
		if (a.Range == nil) != (b.Range == nil) {
			return false
		}
		return a.Range == nil || *a.Range == *b.Range
	case PartAgent:
		return a.Agent == b.Agent
	case PartImage:
		return a.ImageID == b.ImageID
	}
	return false
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
