package editor

import (
	"strings"

	"github.com/fakeyudi/sourcereel/internal/reel"
)

// Diff returns the deltas that turn old into new: at most one remove of the
// changed middle region followed by one insert. Deltas are unstamped.
func Diff(old, new string) []reel.CodeDelta {
	if old == new {
		return nil
	}
	o, n := []rune(old), []rune(new)

	prefix := 0
	for prefix < len(o) && prefix < len(n) && o[prefix] == n[prefix] {
		prefix++
	}
	suffix := 0
	for suffix < len(o)-prefix && suffix < len(n)-prefix &&
		o[len(o)-1-suffix] == n[len(n)-1-suffix] {
		suffix++
	}

	start := positionAt(o, prefix)
	var deltas []reel.CodeDelta

	if removed := o[prefix : len(o)-suffix]; len(removed) > 0 {
		deltas = append(deltas, reel.CodeDelta{
			Action: reel.DeltaRemove,
			Start:  start,
			End:    positionAt(o, len(o)-suffix),
			Lines:  strings.Split(string(removed), "\n"),
		})
	}
	if inserted := n[prefix : len(n)-suffix]; len(inserted) > 0 {
		lines := strings.Split(string(inserted), "\n")
		deltas = append(deltas, reel.CodeDelta{
			Action: reel.DeltaInsert,
			Start:  start,
			End:    endOf(start, lines),
			Lines:  lines,
		})
	}
	return deltas
}

// positionAt converts a rune offset into a row/column position.
func positionAt(text []rune, offset int) reel.Position {
	var p reel.Position
	for _, r := range text[:offset] {
		if r == '\n' {
			p.Row++
			p.Column = 0
			continue
		}
		p.Column++
	}
	return p
}

func endOf(start reel.Position, lines []string) reel.Position {
	last := len([]rune(lines[len(lines)-1]))
	if len(lines) == 1 {
		return reel.Position{Row: start.Row, Column: start.Column + last}
	}
	return reel.Position{Row: start.Row + len(lines) - 1, Column: last}
}
