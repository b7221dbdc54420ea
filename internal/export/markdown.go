package export

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/dgallion1/coursedraft/internal/outline"
)

// Markdown renders the outline as a markdown document.
type Markdown struct{}

func (Markdown) Format() string      { return "md" }
func (Markdown) Extension() string   { return ".md" }
func (Markdown) ContentType() string { return "text/markdown; charset=utf-8" }

func (Markdown) Encode(w io.Writer, c *outline.Course) error {
	_, err := w.Write(renderMarkdown(c))
	return err
}

func renderMarkdown(c *outline.Course) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "# %s\n\n", c.Title)
	fmt.Fprintf(&b, "## Description\n%s\n\n", c.Description)

	b.WriteString("## Learning Outcomes\n")
	for _, o := range c.LearningOutcomes {
		fmt.Fprintf(&b, "* %s\n", o)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "## Key Assignment\n%s\n\n", c.KeyAssignment)

	b.WriteString("## Curriculum\n")
	for _, day := range c.Curriculum {
		fmt.Fprintf(&b, "### Day %d: %s\n", day.Day, day.Title)
		for _, m := range day.Modules {
			fmt.Fprintf(&b, "#### %s\n", m.Title)
			for _, l := range m.Lessons {
				fmt.Fprintf(&b, "* **%s**: %s\n", l.Title, l.Description)
			}
		}
		b.WriteString("\n")
	}

	if ma := c.MarketAnalysis; ma.SuggestedPricing != "" || len(ma.CompetitorCourses) > 0 {
		b.WriteString("## Market Analysis\n")
		if ma.SuggestedPricing != "" {
			fmt.Fprintf(&b, "Suggested pricing: %s\n\n", ma.SuggestedPricing)
		}
		for _, cc := range ma.CompetitorCourses {
			fmt.Fprintf(&b, "* [%s](%s) - %s\n", cc.Name, cc.URL, cc.Provider)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Potential Instructors\n")
	for _, p := range c.PotentialInstructors {
		fmt.Fprintf(&b, "* [%s](%s) - %s\n", p.Name, p.LinkedIn, p.Title)
	}
	b.WriteString("\n")

	b.WriteString("## Potential Client Leads\n")
	for _, l := range c.PotentialLeads {
		detail := l.Title
		if l.IsCompany() {
			detail = l.Why()
		}
		fmt.Fprintf(&b, "* [%s](%s) - %s\n", l.Name, l.LinkedIn, detail)
	}
	b.WriteString("\n")

	b.WriteString("## FAQ\n")
	for _, f := range c.FAQ {
		fmt.Fprintf(&b, "### %s\n%s\n\n", f.Question, f.Answer)
	}
	return b.Bytes()
}

// Text is the markdown rendering with links reduced to their labels.
type Text struct{}

func (Text) Format() string      { return "txt" }
func (Text) Extension() string   { return ".txt" }
func (Text) ContentType() string { return "text/plain; charset=utf-8" }

var markdownLink = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)

func (Text) Encode(w io.Writer, c *outline.Course) error {
	_, err := w.Write(markdownLink.ReplaceAll(renderMarkdown(c), []byte("$1")))
	return err
}

// lessonSections pairs lesson content fields with their display headings.
func lessonSections(l outline.Lesson) []struct{ Heading, Body string } {
	var out []struct{ Heading, Body string }
	add := func(h, body string) {
		if strings.TrimSpace(body) != "" {
			out = append(out, struct{ Heading, Body string }{h, body})
		}
	}
	add("Lecture Notes", l.LectureNotes)
	add("Key Talking Points", l.KeyTalkingPoints)
	add("Quiz Questions", l.QuizQuestions)
	return out
}
