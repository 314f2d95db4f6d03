// Package reel defines the data model shared by the recorder and the
// playback driver: recorded inputs, code deltas, the session timer and the
// finalized PlaybackData snapshot.
package reel

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

var (
	ErrMissingInit      = errors.New("playback data has no init state")
	ErrNonMonotonic     = errors.New("timestamps are not non-decreasing")
	ErrUnknownInputType = errors.New("unknown input type")
	ErrInvalidPayload   = errors.New("invalid input payload")
	ErrInvalidDelta     = errors.New("invalid code delta")
)

// ValidationError locates the entry that made PlaybackData unusable.
type ValidationError struct {
	Field string // "init", "inputs" or "deltas"
	Index int    // -1 when not about a single entry
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("invalid playback data: %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("invalid playback data: %s[%d]: %v", e.Field, e.Index, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Init is the workspace state captured when a recording starts.
type Init struct {
	Chapter         int             `json:"chapter"`
	ExternalLibrary ExternalLibrary `json:"external_library"`
	EditorValue     string          `json:"editor_value"`
}

// PlaybackData is the immutable snapshot of a finished recording.
type PlaybackData struct {
	Init   *Init       `json:"init"`
	Inputs []Input     `json:"inputs"`
	Deltas []CodeDelta `json:"deltas"`
}

// Validate checks the invariants playback depends on. It stops at the first
// violation.
func (p PlaybackData) Validate() error {
	if p.Init == nil {
		return &ValidationError{Field: "init", Index: -1, Err: ErrMissingInit}
	}
	if p.Init.Chapter < MinChapter || p.Init.Chapter > MaxChapter {
		return &ValidationError{Field: "init", Index: -1,
			Err: fmt.Errorf("%w: chapter %d out of range", ErrInvalidPayload, p.Init.Chapter)}
	}
	if !slices.Contains(ExternalLibraries, p.Init.ExternalLibrary) {
		return &ValidationError{Field: "init", Index: -1,
			Err: fmt.Errorf("%w: unknown external library %q", ErrInvalidPayload, p.Init.ExternalLibrary)}
	}
	var last time.Duration
	for i, in := range p.Inputs {
		if in.Time < last {
			return &ValidationError{Field: "inputs", Index: i, Err: ErrNonMonotonic}
		}
		last = in.Time
		if _, err := in.Bind(nopHandlers{}); err != nil {
			return &ValidationError{Field: "inputs", Index: i, Err: err}
		}
	}
	last = 0
	for i, d := range p.Deltas {
		if d.Time < last {
			return &ValidationError{Field: "deltas", Index: i, Err: ErrNonMonotonic}
		}
		last = d.Time
		if d.Action != DeltaInsert && d.Action != DeltaRemove {
			return &ValidationError{Field: "deltas", Index: i,
				Err: fmt.Errorf("%w: action %q", ErrInvalidDelta, d.Action)}
		}
		if d.End.Before(d.Start) {
			return &ValidationError{Field: "deltas", Index: i,
				Err: fmt.Errorf("%w: end before start", ErrInvalidDelta)}
		}
	}
	return nil
}

// Last returns the timestamp of the final input or delta.
func (p PlaybackData) Last() time.Duration {
	var last time.Duration
	if n := len(p.Inputs); n > 0 {
		last = p.Inputs[n-1].Time
	}
	if n := len(p.Deltas); n > 0 && p.Deltas[n-1].Time > last {
		last = p.Deltas[n-1].Time
	}
	return last
}

// Clone returns a deep copy so the snapshot cannot be mutated through
// slices still held by a recorder.
func (p PlaybackData) Clone() PlaybackData {
	out := PlaybackData{
		Inputs: make([]Input, len(p.Inputs)),
		Deltas: make([]CodeDelta, len(p.Deltas)),
	}
	if p.Init != nil {
		init := *p.Init
		out.Init = &init
	}
	for i, in := range p.Inputs {
		in.Data = slices.Clone(in.Data)
		out.Inputs[i] = in
	}
	for i, d := range p.Deltas {
		d.Lines = slices.Clone(d.Lines)
		out.Deltas[i] = d
	}
	return out
}

// Handlers are the host actions recorded inputs and deltas are replayed
// against. The same handlers serve live use and playback.
type Handlers interface {
	ChapterSelect(chapter int)
	ExternalLibrarySelect(name ExternalLibrary)
	ActiveTabChange(tab SideContentType)
	KeyboardCommand(cmd KeyboardCommand)
	ApplyDeltas(deltas []CodeDelta)
	// Reset restores the host to the state a recording started from.
	Reset(init Init)
}

type nopHandlers struct{}

func (nopHandlers) ChapterSelect(int)                     {}
func (nopHandlers) ExternalLibrarySelect(ExternalLibrary) {}
func (nopHandlers) ActiveTabChange(SideContentType)       {}
func (nopHandlers) KeyboardCommand(KeyboardCommand)       {}
func (nopHandlers) ApplyDeltas([]CodeDelta)               {}
func (nopHandlers) Reset(Init)                            {}
