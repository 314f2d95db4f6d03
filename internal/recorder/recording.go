package recorder

import "github.com/fakeyudi/sourcereel/internal/reel"

// Recording wraps host handlers so each action acts first and then records
// itself when the session is recording.
type Recording struct {
	host reel.Handlers
	rec  *Recorder
}

var _ reel.Handlers = (*Recording)(nil)

// Wrap returns handlers that forward to host and record into rec.
func Wrap(host reel.Handlers, rec *Recorder) *Recording {
	return &Recording{host: host, rec: rec}
}

func (w *Recording) ChapterSelect(chapter int) {
	w.host.ChapterSelect(chapter)
	w.rec.Record(reel.ChapterSelectInput(chapter))
}

func (w *Recording) ExternalLibrarySelect(name reel.ExternalLibrary) {
	w.host.ExternalLibrarySelect(name)
	w.rec.Record(reel.ExternalLibraryInput(name))
}

func (w *Recording) ActiveTabChange(tab reel.SideContentType) {
	w.host.ActiveTabChange(tab)
	w.rec.Record(reel.ActiveTabInput(tab))
}

func (w *Recording) KeyboardCommand(cmd reel.KeyboardCommand) {
	w.host.KeyboardCommand(cmd)
	w.rec.Record(reel.KeyboardCommandInput(cmd))
}

func (w *Recording) ApplyDeltas(deltas []reel.CodeDelta) {
	w.host.ApplyDeltas(deltas)
	for _, d := range deltas {
		w.rec.RecordDelta(d)
	}
}

// Reset is never recorded; it only restores the host.
func (w *Recording) Reset(init reel.Init) {
	w.host.Reset(init)
}
