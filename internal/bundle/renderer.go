package bundle

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	bundleVersion = 1
	versionPrefix = "<!-- sourcereel-bundle-version: "
	dataPrefix    = "<!-- sourcereel-data: "
	commentSuffix = " -->"
)

// Renderer serializes a Sourcecast to bytes.
type Renderer interface {
	Render(sc *Sourcecast) ([]byte, error)
}

// JSONRenderer renders a Sourcecast as indented JSON.
type JSONRenderer struct{}

func (r *JSONRenderer) Render(sc *Sourcecast) ([]byte, error) {
	return json.MarshalIndent(sc, "", "  ")
}

// MarkdownRenderer renders a Sourcecast as a human-readable summary with an
// embedded base64 JSON payload for lossless round-trip parsing.
type MarkdownRenderer struct{}

func (r *MarkdownRenderer) Render(sc *Sourcecast) ([]byte, error) {
	jsonBytes, err := json.Marshal(sc)
	if err != nil {
		return nil, fmt.Errorf("marshal sourcecast: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(jsonBytes)

	var sb strings.Builder

	fmt.Fprintf(&sb, "%s%d%s\n", versionPrefix, bundleVersion, commentSuffix)
	fmt.Fprintf(&sb, "%s%s%s\n\n", dataPrefix, encoded, commentSuffix)

	title := sc.Title
	if title == "" {
		title = "Untitled sourcecast"
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)
	if sc.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", sc.Description)
	}

	// ## Summary
	sb.WriteString("## Summary\n\n")
	fmt.Fprintf(&sb, "- ID: %s\n", sc.ID)
	fmt.Fprintf(&sb, "- Recorded: %s\n", sc.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&sb, "- Duration: %s\n", FormatDuration(sc.Duration))
	if sc.Author != "" {
		fmt.Fprintf(&sb, "- Author: %s\n", sc.Author)
	}
	if sc.AudioName != "" {
		fmt.Fprintf(&sb, "- Audio: %s (%d bytes)\n", sc.AudioName, len(sc.Audio))
	}
	sb.WriteString("\n")

	// ## Initial State
	sb.WriteString("## Initial State\n\n")
	if sc.Data.Init == nil {
		sb.WriteString("_No initial state recorded._\n\n")
	} else {
		fmt.Fprintf(&sb, "- Chapter: %d\n", sc.Data.Init.Chapter)
		fmt.Fprintf(&sb, "- External library: %s\n\n", sc.Data.Init.ExternalLibrary)
		if sc.Data.Init.EditorValue != "" {
			sb.WriteString("```\n")
			sb.WriteString(sc.Data.Init.EditorValue)
			if !strings.HasSuffix(sc.Data.Init.EditorValue, "\n") {
				sb.WriteString("\n")
			}
			sb.WriteString("```\n\n")
		}
	}

	// ## Inputs
	sb.WriteString("## Inputs\n\n")
	if len(sc.Data.Inputs) == 0 {
		sb.WriteString("_No inputs recorded._\n")
	} else {
		sb.WriteString("| Time | Input |\n")
		sb.WriteString("|------|-------|\n")
		for _, in := range sc.Data.Inputs {
			fmt.Fprintf(&sb, "| %s | %s |\n", FormatDuration(in.Time), in.Describe())
		}
	}
	sb.WriteString("\n")

	// ## Code Changes
	sb.WriteString("## Code Changes\n\n")
	if len(sc.Data.Deltas) == 0 {
		sb.WriteString("_No code changes recorded._\n")
	} else {
		fmt.Fprintf(&sb, "%d delta(s), last at %s.\n", len(sc.Data.Deltas),
			FormatDuration(sc.Data.Deltas[len(sc.Data.Deltas)-1].Time))
	}
	sb.WriteString("\n")

	return []byte(sb.String()), nil
}

// FormatDuration renders d as m:ss.mmm.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	ms := d.Milliseconds()
	return fmt.Sprintf("%d:%02d.%03d", ms/60000, (ms/1000)%60, ms%1000)
}
