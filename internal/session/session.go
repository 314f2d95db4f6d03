package session

import (
	"time"

	"github.com/fakeyudi/sourcereel/internal/reel"
	"github.com/fakeyudi/sourcereel/internal/workspace"
)

// Session is the persisted state of a recording in progress. It outlives a
// single CLI invocation, so everything the recorder needs lives here.
type Session struct {
	ID        string               `json:"id"`
	CreatedAt time.Time            `json:"created_at"`
	Status    reel.RecordingStatus `json:"status"`
	Timer     reel.Timer           `json:"timer"`
	// Init is set when recording starts and cleared when it is finalized.
	Init   *reel.Init       `json:"init,omitempty"`
	Inputs []reel.Input     `json:"inputs"`
	Deltas []reel.CodeDelta `json:"deltas"`
	// Workspace is the live host state the handlers act on.
	Workspace workspace.State `json:"workspace"`
}
