package reel

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"
)

// InputType identifies the kind of a recorded input.
type InputType string

const (
	InputKeyboardCommand       InputType = "keyboardCommand"
	InputChapterSelect         InputType = "chapterSelect"
	InputExternalLibrarySelect InputType = "externalLibrarySelect"
	InputActiveTabChange       InputType = "activeTabChange"
)

// KeyboardCommand is an editor keyboard shortcut.
type KeyboardCommand string

const KeyboardCommandRun KeyboardCommand = "run"

// ExternalLibrary names a library that can be loaded alongside the program.
type ExternalLibrary string

const (
	LibraryNone            ExternalLibrary = "NONE"
	LibrarySounds          ExternalLibrary = "SOUNDS"
	LibraryPixNFlix        ExternalLibrary = "PIX&FLIX"
	LibraryBinaryTrees     ExternalLibrary = "BINARYTREES"
	LibraryMachineLearning ExternalLibrary = "MACHINELEARNING"
)

// ExternalLibraries lists every known library in display order.
var ExternalLibraries = []ExternalLibrary{
	LibraryNone, LibrarySounds, LibraryPixNFlix, LibraryBinaryTrees, LibraryMachineLearning,
}

// SideContentType identifies a side panel tab.
type SideContentType string

const (
	TabIntroduction   SideContentType = "introduction"
	TabSourcereel     SideContentType = "sourcereel"
	TabDataVisualiser SideContentType = "dataVisualiser"
	TabInspector      SideContentType = "inspector"
	TabEnvVisualiser  SideContentType = "envVisualiser"
)

// SideContentTabs lists every side panel tab in display order.
var SideContentTabs = []SideContentType{
	TabSourcereel, TabIntroduction, TabDataVisualiser, TabInspector, TabEnvVisualiser,
}

// MinChapter and MaxChapter bound the language chapters.
const (
	MinChapter = 1
	MaxChapter = 4
)

// Input is one discrete user action captured during a recording.
type Input struct {
	Time time.Duration   `json:"time"`
	Type InputType       `json:"type"`
	Data json.RawMessage `json:"data"`
}

// At returns a copy of in stamped with t.
func (in Input) At(t time.Duration) Input {
	in.Time = t
	return in
}

func newInput(typ InputType, v any) Input {
	// Payloads are ints and strings; Marshal cannot fail on them.
	data, _ := json.Marshal(v)
	return Input{Type: typ, Data: data}
}

// ChapterSelectInput builds a chapterSelect input.
func ChapterSelectInput(chapter int) Input {
	return newInput(InputChapterSelect, chapter)
}

// ExternalLibraryInput builds an externalLibrarySelect input.
func ExternalLibraryInput(name ExternalLibrary) Input {
	return newInput(InputExternalLibrarySelect, name)
}

// ActiveTabInput builds an activeTabChange input.
func ActiveTabInput(tab SideContentType) Input {
	return newInput(InputActiveTabChange, tab)
}

// KeyboardCommandInput builds a keyboardCommand input.
func KeyboardCommandInput(cmd KeyboardCommand) Input {
	return newInput(InputKeyboardCommand, cmd)
}

// Bind decodes the payload and returns the handler call the input stands for.
func (in Input) Bind(h Handlers) (func(), error) {
	switch in.Type {
	case InputChapterSelect:
		var chapter int
		if err := json.Unmarshal(in.Data, &chapter); err != nil {
			return nil, fmt.Errorf("%w: chapter: %v", ErrInvalidPayload, err)
		}
		if chapter < MinChapter || chapter > MaxChapter {
			return nil, fmt.Errorf("%w: chapter %d out of range", ErrInvalidPayload, chapter)
		}
		return func() { h.ChapterSelect(chapter) }, nil
	case InputExternalLibrarySelect:
		var name ExternalLibrary
		if err := json.Unmarshal(in.Data, &name); err != nil {
			return nil, fmt.Errorf("%w: external library: %v", ErrInvalidPayload, err)
		}
		if !slices.Contains(ExternalLibraries, name) {
			return nil, fmt.Errorf("%w: unknown external library %q", ErrInvalidPayload, name)
		}
		return func() { h.ExternalLibrarySelect(name) }, nil
	case InputActiveTabChange:
		var tab SideContentType
		if err := json.Unmarshal(in.Data, &tab); err != nil {
			return nil, fmt.Errorf("%w: active tab: %v", ErrInvalidPayload, err)
		}
		if !slices.Contains(SideContentTabs, tab) {
			return nil, fmt.Errorf("%w: unknown side content tab %q", ErrInvalidPayload, tab)
		}
		return func() { h.ActiveTabChange(tab) }, nil
	case InputKeyboardCommand:
		var cmd KeyboardCommand
		if err := json.Unmarshal(in.Data, &cmd); err != nil {
			return nil, fmt.Errorf("%w: keyboard command: %v", ErrInvalidPayload, err)
		}
		if cmd != KeyboardCommandRun {
			return nil, fmt.Errorf("%w: unknown keyboard command %q", ErrInvalidPayload, cmd)
		}
		return func() { h.KeyboardCommand(cmd) }, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownInputType, in.Type)
	}
}

// Describe renders the input payload for humans, e.g. `chapterSelect 2`.
func (in Input) Describe() string {
	var v any
	if err := json.Unmarshal(in.Data, &v); err != nil {
		return string(in.Type)
	}
	return fmt.Sprintf("%s %v", in.Type, v)
}
