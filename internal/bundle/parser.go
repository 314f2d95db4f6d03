package bundle

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNotBundle is wrapped by every MarkdownParser failure.
var ErrNotBundle = errors.New("not a valid sourcereel bundle")

// Parser deserializes a bundle file back into a Sourcecast.
type Parser interface {
	Parse(data []byte) (*Sourcecast, error)
}

// JSONParser parses a JSON-encoded Sourcecast.
type JSONParser struct{}

func (p *JSONParser) Parse(data []byte) (*Sourcecast, error) {
	var sc Sourcecast
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("failed to parse JSON bundle: %w", err)
	}
	return &sc, nil
}

// MarkdownParser reads the base64 JSON payload embedded in a Markdown
// sourcecast. The human-readable part is ignored.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(data []byte) (*Sourcecast, error) {
	content := string(data)

	version, ok := comment(content, versionPrefix)
	if !ok {
		return nil, fmt.Errorf("%w: missing version sentinel", ErrNotBundle)
	}
	n, err := strconv.Atoi(version)
	if err != nil {
		return nil, fmt.Errorf("%w: bad version %q", ErrNotBundle, version)
	}
	if n < 1 || n > bundleVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrNotBundle, n)
	}

	encoded, ok := comment(content, dataPrefix)
	if !ok {
		return nil, fmt.Errorf("%w: missing data payload", ErrNotBundle)
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: corrupted base64 payload: %v", ErrNotBundle, err)
	}

	var sc Sourcecast
	if err := json.Unmarshal(raw, &sc); err != nil {
		return nil, fmt.Errorf("%w: failed to parse embedded JSON: %v", ErrNotBundle, err)
	}
	return &sc, nil
}

// comment returns the trimmed body of the first HTML comment starting with
// prefix.
func comment(content, prefix string) (string, bool) {
	start := strings.Index(content, prefix)
	if start == -1 {
		return "", false
	}
	start += len(prefix)
	end := strings.Index(content[start:], commentSuffix)
	if end == -1 {
		return "", false
	}
	return strings.TrimSpace(content[start : start+end]), true
}
