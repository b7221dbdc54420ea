package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/coursedraft/internal/outline"
)

// DOCX writes a Word document: an overview page followed by one page per
// curriculum day and a closing FAQ page.
type DOCX struct{}

func (DOCX) Format() string    { return "docx" }
func (DOCX) Extension() string { return ".docx" }
func (DOCX) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}

func (DOCX) Encode(w io.Writer, c *outline.Course) error {
	doc := docx.New().WithDefaultTheme().WithA4Page()

	heading := func(level int, text string) {
		doc.AddParagraph().Style(fmt.Sprintf("Heading%d", level)).AddText(text)
	}
	para := func(text string) {
		for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
			if line = strings.TrimSpace(line); line != "" {
				doc.AddParagraph().AddText(line)
			}
		}
	}
	pageBreak := func() { doc.AddParagraph().AddPageBreaks() }

	doc.AddParagraph().Style("Title").AddText(c.Title).Bold().Size("40")
	para(c.Description)
	if len(c.LearningOutcomes) > 0 {
		heading(1, "Learning Outcomes")
		for _, o := range c.LearningOutcomes {
			doc.AddParagraph().AddText("• " + o)
		}
	}
	if c.KeyAssignment != "" {
		heading(1, "Key Assignment")
		para(c.KeyAssignment)
	}

	for _, day := range c.Curriculum {
		pageBreak()
		heading(1, fmt.Sprintf("Day %d: %s", day.Day, day.Title))
		for _, m := range day.Modules {
			heading(2, m.Title)
			for _, l := range m.Lessons {
				heading(3, l.Title)
				para(l.Description)
				for _, s := range lessonSections(l) {
					doc.AddParagraph().AddText(s.Heading).Bold()
					para(s.Body)
				}
			}
		}
	}

	if len(c.FAQ) > 0 {
		pageBreak()
		heading(1, "FAQ")
		for _, f := range c.FAQ {
			doc.AddParagraph().AddText(f.Question).Bold()
			para(f.Answer)
		}
	}

	_, err := doc.WriteTo(w)
	return err
}
