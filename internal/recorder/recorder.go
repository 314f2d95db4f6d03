// Package recorder captures user actions as timestamped inputs while a
// recording session is running.
//
// Recording piggybacks on the live handlers: Recording wraps the host's
// handlers so every action first takes effect and then, if the session is
// recording, appends itself to the log with the current timer reading.
// Playback later drives the very same handlers.
package recorder

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/fakeyudi/sourcereel/internal/clock"
	"github.com/fakeyudi/sourcereel/internal/reel"
	"github.com/fakeyudi/sourcereel/internal/session"
)

var (
	ErrAlreadyRecording = errors.New("recording already in progress")
	ErrNotRecording     = errors.New("not recording")
	ErrNotPaused        = errors.New("recording is not paused")
)

// AppendInput appends in to log only when status is Recording.
func AppendInput(log []reel.Input, status reel.RecordingStatus, in reel.Input) []reel.Input {
	if status != reel.Recording {
		return log
	}
	return append(log, in)
}

// Take is a finalized recording.
type Take struct {
	Data     reel.PlaybackData
	Duration time.Duration
}

// Recorder drives the lifecycle of one session.
type Recorder struct {
	sess  *session.Session
	clock clock.Clock
}

// New returns a recorder operating on sess.
func New(sess *session.Session, c clock.Clock) *Recorder {
	return &Recorder{sess: sess, clock: c}
}

// Status returns the recording status.
func (r *Recorder) Status() reel.RecordingStatus { return r.sess.Status }

// Duration returns the current timer reading.
func (r *Recorder) Duration() time.Duration {
	return r.sess.Timer.Duration(r.clock.Now())
}

// Start snapshots init, clears the logs and starts the timer.
func (r *Recorder) Start(init reel.Init) error {
	if r.sess.Status != reel.NotRecording {
		return ErrAlreadyRecording
	}
	r.sess.Init = &init
	r.sess.Inputs = []reel.Input{}
	r.sess.Deltas = []reel.CodeDelta{}
	r.sess.Timer.Start(r.clock.Now())
	r.sess.Status = reel.Recording
	return nil
}

// Pause freezes the timer. Inputs are not recorded while paused.
func (r *Recorder) Pause() error {
	if r.sess.Status != reel.Recording {
		return ErrNotRecording
	}
	r.sess.Timer.Pause(r.clock.Now())
	r.sess.Status = reel.RecordingPaused
	return nil
}

// Resume continues the timer from where it was paused.
func (r *Recorder) Resume() error {
	if r.sess.Status != reel.RecordingPaused {
		return ErrNotPaused
	}
	r.sess.Timer.Resume(r.clock.Now())
	r.sess.Status = reel.Recording
	return nil
}

// stamp returns the current timer reading, never earlier than floor.
// Persisted sessions lose the monotonic clock reading, so a wall clock step
// backwards must not reorder the log.
func (r *Recorder) stamp(floor time.Duration) time.Duration {
	d := r.Duration()
	if d < floor {
		return floor
	}
	return d
}

// Record stamps in with the current timer reading and appends it. It reports
// whether the input was recorded.
func (r *Recorder) Record(in reel.Input) bool {
	if r.sess.Status != reel.Recording {
		return false
	}
	var floor time.Duration
	if n := len(r.sess.Inputs); n > 0 {
		floor = r.sess.Inputs[n-1].Time
	}
	r.sess.Inputs = AppendInput(r.sess.Inputs, r.sess.Status, in.At(r.stamp(floor)))
	return true
}

// RecordDelta stamps d and appends it to the delta log.
func (r *Recorder) RecordDelta(d reel.CodeDelta) bool {
	if r.sess.Status != reel.Recording {
		return false
	}
	var floor time.Duration
	if n := len(r.sess.Deltas); n > 0 {
		floor = r.sess.Deltas[n-1].Time
	}
	d.Lines = slices.Clone(d.Lines)
	r.sess.Deltas = append(r.sess.Deltas, d.At(r.stamp(floor)))
	return true
}

// ResumeFrom continues a paused recording from t, typically the time a
// preview was stopped at. Inputs and deltas stamped after t are dropped. t is
// clamped to [0, Duration()]. It returns how many entries were dropped.
func (r *Recorder) ResumeFrom(t time.Duration) (inputs, deltas int, err error) {
	if r.sess.Status != reel.RecordingPaused {
		return 0, 0, ErrNotPaused
	}
	t = max(0, min(t, r.Duration()))

	keepIn := len(r.sess.Inputs)
	if i := slices.IndexFunc(r.sess.Inputs, func(in reel.Input) bool { return in.Time > t }); i >= 0 {
		keepIn = i
	}
	keepDl := len(r.sess.Deltas)
	if i := slices.IndexFunc(r.sess.Deltas, func(d reel.CodeDelta) bool { return d.Time > t }); i >= 0 {
		keepDl = i
	}
	inputs, deltas = len(r.sess.Inputs)-keepIn, len(r.sess.Deltas)-keepDl
	r.sess.Inputs = r.sess.Inputs[:keepIn]
	r.sess.Deltas = r.sess.Deltas[:keepDl]

	r.sess.Timer.ResumeFrom(r.clock.Now(), t)
	r.sess.Status = reel.Recording
	return inputs, deltas, nil
}

// Preview snapshots a paused recording so it can be played back before
// recording continues.
func (r *Recorder) Preview() (Take, error) {
	if r.sess.Status != reel.RecordingPaused {
		return Take{}, ErrNotPaused
	}
	if r.sess.Init == nil {
		return Take{}, fmt.Errorf("preview: %w", reel.ErrMissingInit)
	}
	return r.snapshot(), nil
}

// Finalize stops the recording and hands its logs over as an immutable
// snapshot. The session returns to NotRecording.
func (r *Recorder) Finalize() (Take, error) {
	if r.sess.Status == reel.NotRecording {
		return Take{}, ErrNotRecording
	}
	if r.sess.Init == nil {
		return Take{}, fmt.Errorf("finalize: %w", reel.ErrMissingInit)
	}
	r.sess.Timer.Pause(r.clock.Now())
	take := r.snapshot()
	r.clear()
	return take, nil
}

// Discard throws the recording in progress away. The workspace is kept.
func (r *Recorder) Discard() error {
	if r.sess.Status == reel.NotRecording {
		return ErrNotRecording
	}
	r.clear()
	return nil
}

func (r *Recorder) snapshot() Take {
	return Take{
		Data: reel.PlaybackData{
			Init:   r.sess.Init,
			Inputs: r.sess.Inputs,
			Deltas: r.sess.Deltas,
		}.Clone(),
		Duration: r.sess.Timer.Duration(r.clock.Now()),
	}
}

func (r *Recorder) clear() {
	r.sess.Status = reel.NotRecording
	r.sess.Init = nil
	r.sess.Inputs = []reel.Input{}
	r.sess.Deltas = []reel.CodeDelta{}
	r.sess.Timer.Reset()
}
