package reel

import "fmt"

// RecordingStatus is the lifecycle state of a recording session.
type RecordingStatus int

const (
	NotRecording RecordingStatus = iota
	Recording
	RecordingPaused
)

var recordingStatusNames = [...]string{"notRecording", "recording", "paused"}

func (s RecordingStatus) String() string {
	if s < 0 || int(s) >= len(recordingStatusNames) {
		return fmt.Sprintf("RecordingStatus(%d)", int(s))
	}
	return recordingStatusNames[s]
}

func (s RecordingStatus) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(recordingStatusNames) {
		return nil, fmt.Errorf("invalid recording status %d", int(s))
	}
	return []byte(recordingStatusNames[s]), nil
}

func (s *RecordingStatus) UnmarshalText(b []byte) error {
	for i, name := range recordingStatusNames {
		if name == string(b) {
			*s = RecordingStatus(i)
			return nil
		}
	}
	return fmt.Errorf("unknown recording status %q", b)
}

// PlaybackStatus is the lifecycle state of a playback.
type PlaybackStatus int

const (
	NotPlaying PlaybackStatus = iota
	Playing
	PlaybackPaused
)

var playbackStatusNames = [...]string{"notPlaying", "playing", "paused"}

func (s PlaybackStatus) String() string {
	if s < 0 || int(s) >= len(playbackStatusNames) {
		return fmt.Sprintf("PlaybackStatus(%d)", int(s))
	}
	return playbackStatusNames[s]
}
