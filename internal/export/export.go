// Package export renders a course outline into downloadable formats.
package export

import (
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/dgallion1/coursedraft/internal/outline"
)

// Encoder writes a course in one download format. Encoders never modify the
// course they are given.
type Encoder interface {
	Format() string
	// Extension is the filename suffix, including the dot.
	Extension() string
	ContentType() string
	Encode(w io.Writer, c *outline.Course) error
}

var encoders = map[string]Encoder{}

func register(e Encoder) { encoders[e.Format()] = e }

func init() {
	register(Markdown{})
	register(Text{})
	register(JSON{})
	register(YAML{})
	register(HTML{})
	register(DOCX{})
	register(ContactSheet{List: outline.Instructors})
	register(ContactSheet{List: outline.Leads})
	register(SCORM{})
}

// ForFormat returns the encoder registered under name.
func ForFormat(name string) (Encoder, error) {
	e, ok := encoders[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unsupported export format %q", name)
	}
	return e, nil
}

// Formats lists the registered format names.
func Formats() []string {
	out := make([]string, 0, len(encoders))
	for name := range encoders {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

var unsafeFilename = regexp.MustCompile(`[^\p{L}\p{N}_.-]+`)

// Filename derives a download name from the course title.
func Filename(c *outline.Course, e Encoder) string {
	name := strings.Join(strings.Fields(c.Title), "_")
	name = strings.Trim(unsafeFilename.ReplaceAllString(name, ""), "._-")
	if name == "" {
		name = "course"
	}
	return name + e.Extension()
}
