// Package playback replays a finalized recording against the same handlers
// that were live while it was recorded.
//
// The driver is cooperative: the host calls Tick (or AdvanceTo with its own
// media time) from its UI loop and the driver applies every entry whose
// timestamp has been crossed. A Driver is not safe for concurrent use.
package playback

import (
	"errors"
	"fmt"
	"time"

	"github.com/fakeyudi/sourcereel/internal/clock"
	"github.com/fakeyudi/sourcereel/internal/reel"
)

// Option configures a Driver.
type Option func(*Driver)

// WithDuration extends the end of playback to d, typically the length of the
// accompanying audio. Shorter values are ignored.
func WithDuration(d time.Duration) Option {
	return func(dr *Driver) {
		if d > dr.end {
			dr.end = d
		}
	}
}

// Driver replays one PlaybackData.
type Driver struct {
	data     reel.PlaybackData
	calls    []func()
	handlers reel.Handlers
	clock    clock.Clock

	timer  reel.Timer
	status reel.PlaybackStatus
	end    time.Duration

	// Index of the next unconsumed input and delta. Everything before them
	// has been applied to the host since the last reset.
	nextInput int
	nextDelta int
	primed    bool
	// played is set by the first Play; a finished or stopped driver that
	// is scrubbed back then waits paused instead of idle.
	played bool
}

// New validates data and binds its inputs to h. Malformed data is rejected
// as a whole.
func New(data reel.PlaybackData, h reel.Handlers, c clock.Clock, opts ...Option) (*Driver, error) {
	if h == nil {
		return nil, errors.New("playback: handlers cannot be nil")
	}
	if c == nil {
		c = clock.System{}
	}
	if err := data.Validate(); err != nil {
		return nil, err
	}
	data = data.Clone()

	calls := make([]func(), len(data.Inputs))
	for i, in := range data.Inputs {
		call, err := in.Bind(h)
		if err != nil {
			return nil, fmt.Errorf("bind input %d: %w", i, err)
		}
		calls[i] = call
	}

	d := &Driver{
		data:     data,
		calls:    calls,
		handlers: h,
		clock:    c,
		end:      data.Last(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Status returns the playback status.
func (d *Driver) Status() reel.PlaybackStatus { return d.status }

// End returns the time at which playback finishes.
func (d *Driver) End() time.Duration { return d.end }

// Applied returns how many inputs have been applied since the host was last
// reset to the initial state.
func (d *Driver) Applied() int { return d.nextInput }

// Data returns the snapshot being played.
func (d *Driver) Data() reel.PlaybackData { return d.data }

// Position returns the current playback time.
func (d *Driver) Position() time.Duration {
	p := d.timer.Duration(d.clock.Now())
	if p > d.end {
		return d.end
	}
	return p
}

// Play resets the host to the initial state and plays from time zero.
func (d *Driver) Play() {
	d.rewind()
	d.timer.Start(d.clock.Now())
	d.status = reel.Playing
	d.played = true
}

// Pause freezes playback at the current position.
func (d *Driver) Pause() {
	if d.status != reel.Playing {
		return
	}
	d.timer.Pause(d.clock.Now())
	d.status = reel.PlaybackPaused
}

// Resume continues from the frozen position.
func (d *Driver) Resume() {
	if d.status != reel.PlaybackPaused {
		return
	}
	d.timer.Resume(d.clock.Now())
	d.status = reel.Playing
}

// Stop ends playback, keeping the host in whatever state it reached.
func (d *Driver) Stop() {
	d.timer.Pause(d.clock.Now())
	d.status = reel.NotPlaying
}

// Tick applies everything due at the driver's own timer reading. It reports
// whether any input was applied. Tick does nothing unless playing.
func (d *Driver) Tick() bool {
	if d.status != reel.Playing {
		return false
	}
	pos := d.timer.Duration(d.clock.Now())
	applied := d.advance(pos)
	d.finishIfDone(pos)
	return applied
}

// AdvanceTo applies everything due at t, a host-supplied playback time such
// as the audio player's position, and moves the timer there. Moving a
// finished driver before End leaves it paused so Resume continues from t.
func (d *Driver) AdvanceTo(t time.Duration) bool {
	if t < 0 {
		t = 0
	}
	if d.status == reel.NotPlaying && d.played && t < d.end {
		d.status = reel.PlaybackPaused
	}
	if d.timer.Running {
		d.timer.ResumeFrom(d.clock.Now(), t)
	} else {
		d.timer.ElapsedBeforePause = t
	}
	applied := d.advance(t)
	d.finishIfDone(t)
	return applied
}

// Seek scrubs to t, clamped to [0, End]. Entries up to t are applied exactly
// once; seeking backwards resets the host and replays the prefix.
func (d *Driver) Seek(t time.Duration) bool {
	if t > d.end {
		t = d.end
	}
	return d.AdvanceTo(t)
}

func (d *Driver) rewind() {
	d.handlers.Reset(*d.data.Init)
	d.nextInput = 0
	d.nextDelta = 0
	d.primed = true
}

// consumedAfter reports whether an entry later than t was already applied.
func (d *Driver) consumedAfter(t time.Duration) bool {
	if d.nextInput > 0 && d.data.Inputs[d.nextInput-1].Time > t {
		return true
	}
	return d.nextDelta > 0 && d.data.Deltas[d.nextDelta-1].Time > t
}

func (d *Driver) advance(t time.Duration) bool {
	if !d.primed || d.consumedAfter(t) {
		d.rewind()
	}

	inputs, deltas := d.data.Inputs, d.data.Deltas
	var batch []reel.CodeDelta
	flush := func() {
		if len(batch) > 0 {
			d.handlers.ApplyDeltas(batch)
			batch = nil
		}
	}

	applied := false
	for {
		inputDue := d.nextInput < len(inputs) && inputs[d.nextInput].Time <= t
		deltaDue := d.nextDelta < len(deltas) && deltas[d.nextDelta].Time <= t
		if !inputDue && !deltaDue {
			break
		}
		// Text typed in the same instant as a command lands first.
		if deltaDue && (!inputDue || deltas[d.nextDelta].Time <= inputs[d.nextInput].Time) {
			batch = append(batch, deltas[d.nextDelta])
			d.nextDelta++
			continue
		}
		flush()
		d.calls[d.nextInput]()
		d.nextInput++
		applied = true
	}
	flush()
	return applied
}

func (d *Driver) finishIfDone(pos time.Duration) {
	if d.status != reel.Playing {
		return
	}
	if d.nextInput < len(d.data.Inputs) || d.nextDelta < len(d.data.Deltas) || pos < d.end {
		return
	}
	d.timer.Reset()
	d.timer.ElapsedBeforePause = d.end
	d.status = reel.NotPlaying
}
