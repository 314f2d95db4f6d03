// Package bundle defines the sourcecast artifact written when a recording is
// stopped, and its JSON and Markdown file formats.
package bundle

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/fakeyudi/sourcereel/internal/reel"
)

// Sourcecast is a finished recording together with its metadata and the
// optional audio track it was narrated over.
type Sourcecast struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Author      string            `json:"author,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	Duration    time.Duration     `json:"duration"`
	AudioName   string            `json:"audio_name,omitempty"`
	Audio       []byte            `json:"audio,omitempty"`
	Data        reel.PlaybackData `json:"playback_data"`
}

// Validate checks the embedded playback data.
func (sc *Sourcecast) Validate() error {
	return sc.Data.Validate()
}

// Extension returns the file extension for a bundle format.
func Extension(format string) string {
	if format == "json" {
		return ".json"
	}
	return ".md"
}

// RendererFor returns the renderer for a format name. Unknown formats fall
// back to Markdown.
func RendererFor(format string) Renderer {
	if format == "json" {
		return &JSONRenderer{}
	}
	return &MarkdownRenderer{}
}

// ParserFor picks a parser from the file extension of path.
func ParserFor(path string) Parser {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return &JSONParser{}
	}
	return &MarkdownParser{}
}
