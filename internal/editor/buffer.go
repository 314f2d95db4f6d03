// Package editor is a headless text buffer that applies and produces
// CodeDeltas the way the browser editor does.
//
// Columns count runes. Positions outside the document are clamped to it
// rather than rejected, matching how the editor treats stale deltas.
package editor

import (
	"strings"

	"github.com/fakeyudi/sourcereel/internal/reel"
)

// Buffer holds editor text as lines.
type Buffer struct {
	lines [][]rune
}

// NewBuffer returns a buffer holding text.
func NewBuffer(text string) *Buffer {
	b := &Buffer{}
	b.SetValue(text)
	return b
}

// SetValue replaces the whole document.
func (b *Buffer) SetValue(text string) {
	parts := strings.Split(text, "\n")
	b.lines = make([][]rune, len(parts))
	for i, p := range parts {
		b.lines[i] = []rune(p)
	}
}

// Value returns the document text.
func (b *Buffer) Value() string {
	parts := make([]string, len(b.lines))
	for i, l := range b.lines {
		parts[i] = string(l)
	}
	return strings.Join(parts, "\n")
}

// LineCount returns the number of lines, which is at least one.
func (b *Buffer) LineCount() int { return len(b.lines) }

func (b *Buffer) clamp(p reel.Position) reel.Position {
	if p.Row < 0 {
		return reel.Position{}
	}
	if p.Row >= len(b.lines) {
		last := len(b.lines) - 1
		return reel.Position{Row: last, Column: len(b.lines[last])}
	}
	if p.Column < 0 {
		p.Column = 0
	}
	if n := len(b.lines[p.Row]); p.Column > n {
		p.Column = n
	}
	return p
}

// Apply performs one delta.
func (b *Buffer) Apply(d reel.CodeDelta) {
	switch d.Action {
	case reel.DeltaInsert:
		b.insert(b.clamp(d.Start), d.Lines)
	case reel.DeltaRemove:
		start, end := b.clamp(d.Start), b.clamp(d.End)
		if end.Before(start) {
			start, end = end, start
		}
		b.remove(start, end)
	}
}

// ApplyAll performs deltas in order.
func (b *Buffer) ApplyAll(deltas []reel.CodeDelta) {
	for _, d := range deltas {
		b.Apply(d)
	}
}

func (b *Buffer) insert(at reel.Position, text []string) {
	if len(text) == 0 {
		return
	}
	line := b.lines[at.Row]
	head := append([]rune(nil), line[:at.Column]...)
	tail := append([]rune(nil), line[at.Column:]...)

	if len(text) == 1 {
		b.lines[at.Row] = append(append(head, []rune(text[0])...), tail...)
		return
	}

	inserted := make([][]rune, len(text))
	inserted[0] = append(head, []rune(text[0])...)
	for i := 1; i < len(text)-1; i++ {
		inserted[i] = []rune(text[i])
	}
	inserted[len(text)-1] = append([]rune(text[len(text)-1]), tail...)

	out := make([][]rune, 0, len(b.lines)+len(text)-1)
	out = append(out, b.lines[:at.Row]...)
	out = append(out, inserted...)
	out = append(out, b.lines[at.Row+1:]...)
	b.lines = out
}

func (b *Buffer) remove(start, end reel.Position) {
	head := b.lines[start.Row][:start.Column]
	tail := b.lines[end.Row][end.Column:]
	joined := append(append([]rune(nil), head...), tail...)

	out := make([][]rune, 0, len(b.lines)-(end.Row-start.Row))
	out = append(out, b.lines[:start.Row]...)
	out = append(out, joined)
	out = append(out, b.lines[end.Row+1:]...)
	b.lines = out
}
