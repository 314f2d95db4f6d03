package reel

import "time"

// Timer measures session time as an elapsed/resumed-at split so that pausing
// freezes the reading and resuming continues from it.
type Timer struct {
	ElapsedBeforePause time.Duration `json:"elapsed_before_pause"`
	// ResumedAt is only meaningful while Running.
	ResumedAt time.Time `json:"resumed_at"`
	Running   bool      `json:"running"`
}

// Start resets the timer to zero and starts it at now.
func (t *Timer) Start(now time.Time) {
	t.ElapsedBeforePause = 0
	t.ResumedAt = now
	t.Running = true
}

// Pause folds the running interval into ElapsedBeforePause.
// Pausing a stopped timer does nothing.
func (t *Timer) Pause(now time.Time) {
	if !t.Running {
		return
	}
	t.ElapsedBeforePause = t.Duration(now)
	t.ResumedAt = time.Time{}
	t.Running = false
}

// Resume continues from the frozen reading.
func (t *Timer) Resume(now time.Time) {
	if t.Running {
		return
	}
	t.ResumedAt = now
	t.Running = true
}

// ResumeFrom restarts the timer at now with elapsed already on the clock.
func (t *Timer) ResumeFrom(now time.Time, elapsed time.Duration) {
	t.ElapsedBeforePause = elapsed
	t.ResumedAt = now
	t.Running = true
}

// Reset zeroes and stops the timer.
func (t *Timer) Reset() {
	*t = Timer{}
}

// Duration returns the current reading.
func (t Timer) Duration(now time.Time) time.Duration {
	if !t.Running {
		return t.ElapsedBeforePause
	}
	return t.ElapsedBeforePause + now.Sub(t.ResumedAt)
}
