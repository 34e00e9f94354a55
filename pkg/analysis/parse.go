package analysis

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var fencePattern = regexp.MustCompile("(?is)```json\\s*(.*?)```")

// StripFence returns the contents of the first ```json fenced block in s,
// or s unchanged when there is none.
func StripFence(s string) string {
	if m := fencePattern.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}

// Extract returns the analyzer's JSON payload from raw model text: the
// fence is removed and the document is checked against the schema.
func Extract(text string) ([]byte, error) {
	body := strings.TrimSpace(StripFence(text))
	if body == "" {
		return nil, fmt.Errorf("empty analyzer output")
	}
	if !json.Valid([]byte(body)) {
		return nil, fmt.Errorf("analyzer output is not valid JSON")
	}
	if err := Validate([]byte(body)); err != nil {
		return nil, err
	}
	return []byte(body), nil
}

// Decode unmarshals a payload produced by Extract (or replayed from the
// cache) into a Result.
func Decode(payload []byte) (*Result, error) {
	var r Result
	if err := json.Unmarshal(payload, &r); err != nil {
		return nil, fmt.Errorf("failed to decode analysis: %w", err)
	}
	r.Normalize()
	return &r, nil
}
