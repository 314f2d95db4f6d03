package reel

import "time"

// DeltaAction is the kind of text edit a CodeDelta performs.
type DeltaAction string

const (
	DeltaInsert DeltaAction = "insert"
	DeltaRemove DeltaAction = "remove"
)

// Position is a zero-based row/column location in the editor.
type Position struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

// Before reports whether p sorts strictly before q.
func (p Position) Before(q Position) bool {
	return p.Row < q.Row || (p.Row == q.Row && p.Column < q.Column)
}

// CodeDelta is a timestamped incremental edit of the editor text.
// Lines holds the inserted or removed text split on newlines.
type CodeDelta struct {
	Time   time.Duration `json:"time"`
	Action DeltaAction   `json:"action"`
	Start  Position      `json:"start"`
	End    Position      `json:"end"`
	Lines  []string      `json:"lines"`
}

// At returns a copy of d stamped with t.
func (d CodeDelta) At(t time.Duration) CodeDelta {
	d.Time = t
	return d
}
