package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/dgallion1/coursedraft/internal/outline"
)

var codeBlockRe = regexp.MustCompile("(?s)```(?:json)?[ \\t]*\\r?\\n(.*?)\\r?\\n?[ \\t]*```")

// stripCodeBlock returns the body of the first fenced block, or the trimmed
// input when there is none.
func stripCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	return s
}

// ParseOutline decodes a model response into a course.
func ParseOutline(text string) (*outline.Course, error) {
	body := stripCodeBlock(text)
	var c outline.Course
	if err := json.Unmarshal([]byte(body), &c); err != nil {
		return nil, fmt.Errorf("invalid JSON response from model: %w (raw: %s)", err, truncate(body, 200))
	}
	if strings.TrimSpace(c.Title) == "" {
		return nil, errors.New("generated outline has no title")
	}
	return &c, nil
}
