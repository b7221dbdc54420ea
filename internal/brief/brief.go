// Package brief reads reference material (notes, syllabi, job descriptions)
// into a heading tree and condenses it into a summary for outline generation.
package brief

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Brief is the root of a parsed reference document.
type Brief struct {
	Title    string     `json:"title"`
	Sections []*Section `json:"sections"`
}

// Section is a recursive heading section.
type Section struct {
	Title    string     `json:"title,omitempty"`
	Text     string     `json:"text,omitempty"`
	Page     int        `json:"page,omitempty"` // source page, 0 if N/A
	Children []*Section `json:"children,omitempty"`
}

// Reader converts raw document bytes into a Brief.
type Reader interface {
	Read(r io.Reader, filename string) (*Brief, error)
}

// SupportedExtensions lists file extensions a brief can be read from.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the reader for a filename.
func ForFile(filename string) (Reader, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextReader{}, nil
	case ".md", ".markdown":
		return &MarkdownReader{}, nil
	case ".html", ".htm":
		return &HTMLReader{}, nil
	case ".pdf":
		return &PDFReader{FallbackPdftotext: true}, nil
	case ".docx":
		return &DOCXReader{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %q", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

func baseTitle(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// outlineBuilder nests sections by heading level while collecting the
// paragraphs that follow each heading.
type outlineBuilder struct {
	root  *Section
	stack []builderEntry
	text  strings.Builder
}

type builderEntry struct {
	node  *Section
	level int
}

func newOutlineBuilder(title string) *outlineBuilder {
	root := &Section{Title: title}
	return &outlineBuilder{root: root, stack: []builderEntry{{node: root}}}
}

func (b *outlineBuilder) heading(level int, title string) {
	b.flush()
	node := &Section{Title: title}
	for len(b.stack) > 1 && b.stack[len(b.stack)-1].level >= level {
		b.stack = b.stack[:len(b.stack)-1]
	}
	parent := b.stack[len(b.stack)-1].node
	parent.Children = append(parent.Children, node)
	b.stack = append(b.stack, builderEntry{node: node, level: level})
}

func (b *outlineBuilder) paragraph(t string) {
	t = strings.TrimSpace(t)
	if t == "" {
		return
	}
	if b.text.Len() > 0 {
		b.text.WriteString("\n\n")
	}
	b.text.WriteString(t)
}

func (b *outlineBuilder) flush() {
	t := strings.TrimSpace(b.text.String())
	b.text.Reset()
	if t == "" {
		return
	}
	top := b.stack[len(b.stack)-1].node
	if top.Text != "" {
		top.Text += "\n\n" + t
	} else {
		top.Text = t
	}
}

// sections closes the builder. Text before the first heading becomes a
// leading untitled section.
func (b *outlineBuilder) sections() []*Section {
	b.flush()
	out := b.root.Children
	if b.root.Text != "" {
		out = append([]*Section{{Text: b.root.Text}}, out...)
	}
	return out
}

// EstimateTokens gives a rough token count from the word count.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	tokens := int(float64(len(strings.Fields(text))) * 1.33)
	if tokens < 1 {
		tokens = 1
	}
	return tokens
}

// Summary flattens headings and text into an excerpt of at most maxTokens
// estimated tokens. A non-positive maxTokens means no bound.
func (b *Brief) Summary(maxTokens int) string {
	var lines []string
	if b.Title != "" {
		lines = append(lines, b.Title)
	}
	var walk func(ss []*Section, depth int)
	walk = func(ss []*Section, depth int) {
		for _, s := range ss {
			if s.Title != "" {
				lines = append(lines, strings.Repeat("#", min(depth, 6))+" "+s.Title)
			}
			for _, para := range strings.Split(s.Text, "\n\n") {
				if para = strings.Join(strings.Fields(para), " "); para != "" {
					lines = append(lines, para)
				}
			}
			walk(s.Children, depth+1)
		}
	}
	walk(b.Sections, 1)

	if maxTokens <= 0 {
		return strings.Join(lines, "\n")
	}
	var out []string
	used := 0
	for _, line := range lines {
		n := EstimateTokens(line)
		if used+n <= maxTokens {
			out = append(out, line)
			used += n
			continue
		}
		words := strings.Fields(line)
		fit := int(float64(maxTokens-used) / 1.33)
		if fit > 0 && fit < len(words) {
			out = append(out, strings.Join(words[:fit], " ")+" ...")
		}
		break
	}
	return strings.Join(out, "\n")
}
