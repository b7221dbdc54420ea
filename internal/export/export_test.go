package export

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"encoding/xml"
	"io"
	"strings"
	"testing"

	"github.com/fumiama/go-docx"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/dgallion1/coursedraft/internal/outline"
)

func testCourse() *outline.Course {
	return &outline.Course{
		Title:            "Data Literacy: Basics",
		Description:      "Learn to read charts.",
		LearningOutcomes: []string{"Read a chart", "Spot bias"},
		KeyAssignment:    "Critique a dashboard.",
		Curriculum: []outline.CurriculumDay{
			{Day: 1, Title: "Foundations", Modules: []outline.Module{
				{Title: "Charts", Lessons: []outline.Lesson{
					{Title: "Bar charts", Description: "Compare categories.", LectureNotes: "Use **bars** for counts.\n\n<script>alert(1)</script>"},
					{Title: "Line charts", Description: "Trends over time."},
				}},
			}},
			{Day: 2, Title: "Statistics", Modules: []outline.Module{
				{Title: "Averages", Lessons: []outline.Lesson{
					{Title: "Mean vs median", Description: "Skew matters.", QuizQuestions: "1. What is skew?"},
				}},
			}},
		},
		MarketAnalysis: outline.MarketAnalysis{
			SuggestedPricing: "$499",
			CompetitorCourses: []outline.CompetitorCourse{
				{Name: "Charts 101", Provider: "EduCo", URL: "https://example.com/c"},
			},
		},
		PotentialInstructors: []outline.Contact{
			{Name: "Ada", LinkedIn: "https://linkedin.com/in/ada", Title: "Analyst", RelevancyScore: 9.5, ExpertiseSummary: "Charts"},
		},
		PotentialLeads: []outline.Contact{
			{Name: "Bob", LinkedIn: "https://linkedin.com/in/bob", Title: "CTO", ExpertiseSummary: "Buys training", RelevancyScore: 7},
			{Name: "Acme", LinkedIn: "https://linkedin.com/company/acme", Reason: "Hiring analysts"},
		},
		FAQ: []outline.FAQ{{Question: "Prereqs?", Answer: "None."}},
	}
}

func encode(t *testing.T, format string, c *outline.Course) []byte {
	t.Helper()
	enc, err := ForFormat(format)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := enc.Encode(&buf, c); err != nil {
		t.Fatalf("%s: %v", format, err)
	}
	return buf.Bytes()
}

func TestForFormat(t *testing.T) {
	want := []string{"docx", "html", "instructors.xlsx", "json", "leads.xlsx", "md", "scorm", "txt", "yaml"}
	if got := strings.Join(Formats(), ","); got != strings.Join(want, ",") {
		t.Fatalf("unexpected formats %s", got)
	}
	if _, err := ForFormat("pdf"); err == nil {
		t.Fatal("expected unknown format to fail")
	}
	if e, err := ForFormat("MD"); err != nil || e.Format() != "md" {
		t.Fatalf("expected case-insensitive lookup, got %v %v", e, err)
	}
}

func TestFilename(t *testing.T) {
	c := testCourse()
	cases := map[string]string{
		"md":               "Data_Literacy_Basics.md",
		"scorm":            "Data_Literacy_Basics_SCORM.zip",
		"instructors.xlsx": "Data_Literacy_Basics_Instructors.xlsx",
		"leads.xlsx":       "Data_Literacy_Basics_Leads.xlsx",
	}
	for format, want := range cases {
		enc, _ := ForFormat(format)
		if got := Filename(c, enc); got != want {
			t.Errorf("%s: got %q, want %q", format, got, want)
		}
	}
	enc, _ := ForFormat("json")
	if got := Filename(&outline.Course{Title: " / "}, enc); got != "course.json" {
		t.Errorf("expected fallback name, got %q", got)
	}
}

func TestMarkdown(t *testing.T) {
	md := string(encode(t, "md", testCourse()))
	for _, want := range []string{
		"# Data Literacy: Basics\n",
		"* Read a chart\n",
		"### Day 2: Statistics\n",
		"* **Bar charts**: Compare categories.\n",
		"Suggested pricing: $499",
		"* [Ada](https://linkedin.com/in/ada) - Analyst\n",
		"* [Bob](https://linkedin.com/in/bob) - CTO\n",
		"* [Acme](https://linkedin.com/company/acme) - Hiring analysts\n",
		"### Prereqs?\nNone.\n",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestTextFlattensLinks(t *testing.T) {
	txt := string(encode(t, "txt", testCourse()))
	if strings.Contains(txt, "](") {
		t.Fatal("expected links to be flattened")
	}
	if !strings.Contains(txt, "* Ada - Analyst") {
		t.Fatalf("expected link label to remain, got:\n%s", txt)
	}
}

func TestEncodersDoNotMutate(t *testing.T) {
	c := testCourse()
	before := testCourse()
	for _, f := range Formats() {
		encode(t, f, c)
	}
	if !outline.Equal(c, before) {
		t.Fatal("an encoder modified the course")
	}
}

func TestJSONAndYAML(t *testing.T) {
	var back outline.Course
	if err := json.Unmarshal(encode(t, "json", testCourse()), &back); err != nil {
		t.Fatal(err)
	}
	if !outline.Equal(&back, testCourse()) {
		t.Fatal("json export does not decode to the same course")
	}

	var doc map[string]any
	if err := yaml.Unmarshal(encode(t, "yaml", testCourse()), &doc); err != nil {
		t.Fatal(err)
	}
	if doc["title"] != "Data Literacy: Basics" {
		t.Fatalf("unexpected yaml title %v", doc["title"])
	}
	if _, ok := doc["learningOutcomes"]; !ok {
		t.Fatal("expected json field names in yaml")
	}
}

func TestHTML(t *testing.T) {
	page := string(encode(t, "html", testCourse()))
	if !strings.Contains(page, "<title>Data Literacy: Basics</title>") {
		t.Fatal("missing title")
	}
	if !strings.Contains(page, `<a href="https://linkedin.com/in/ada">Ada</a>`) {
		t.Fatal("expected rendered markdown links")
	}
}

func TestContactSheets(t *testing.T) {
	f, err := excelize.OpenReader(bytes.NewReader(encode(t, "leads.xlsx", testCourse())))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := f.GetRows("Potential Leads")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][2] != "Reason/Summary" {
		t.Errorf("unexpected header %v", rows[0])
	}
	if rows[1][0] != "Bob" || rows[1][2] != "Buys training" || rows[1][5] != "7" {
		t.Errorf("unexpected person row %v", rows[1])
	}
	if rows[2][1] != "Company" || rows[2][2] != "Hiring analysts" {
		t.Errorf("unexpected company row %v", rows[2])
	}

	f2, err := excelize.OpenReader(bytes.NewReader(encode(t, "instructors.xlsx", testCourse())))
	if err != nil {
		t.Fatal(err)
	}
	defer f2.Close()
	rows, err = f2.GetRows("Potential Instructors")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[1][4] != "9.5" || rows[1][5] != "Charts" {
		t.Fatalf("unexpected instructor rows %v", rows)
	}
}

func TestDOCXOnePagePerDay(t *testing.T) {
	data := encode(t, "docx", testCourse())
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatal(err)
	}
	breaks := 0
	var texts []string
	for _, item := range doc.Document.Body.Items {
		p, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		for _, child := range p.Children {
			run, ok := child.(*docx.Run)
			if !ok {
				continue
			}
			for _, rc := range run.Children {
				switch v := rc.(type) {
				case *docx.BarterRabbet:
					if v.Type == "page" {
						breaks++
					}
				case *docx.Text:
					texts = append(texts, v.Text)
				}
			}
		}
	}
	// Two days plus the FAQ page.
	if breaks != 3 {
		t.Fatalf("expected 3 page breaks, got %d", breaks)
	}
	joined := strings.Join(texts, "\n")
	for _, want := range []string{"Day 1: Foundations", "Day 2: Statistics", "Quiz Questions", "Prereqs?"} {
		if !strings.Contains(joined, want) {
			t.Errorf("docx missing %q", want)
		}
	}
}

func TestSCORMPackage(t *testing.T) {
	data := encode(t, "scorm", testCourse())
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatal(err)
	}
	files := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		b, _ := io.ReadAll(rc)
		rc.Close()
		files[f.Name] = string(b)
	}
	if len(files) != 4 {
		t.Fatalf("expected manifest + 3 lessons, got %v", len(files))
	}

	var m struct {
		Organizations struct {
			Organization struct {
				Items []struct {
					Title string `xml:"title"`
					Items []struct {
						Items []struct {
							IdentifierRef string `xml:"identifierref,attr"`
						} `xml:"item"`
					} `xml:"item"`
				} `xml:"item"`
			} `xml:"organization"`
		} `xml:"organizations"`
		Resources []struct {
			Href string `xml:"href,attr"`
		} `xml:"resources>resource"`
	}
	if err := xml.Unmarshal([]byte(files["imsmanifest.xml"]), &m); err != nil {
		t.Fatal(err)
	}
	days := m.Organizations.Organization.Items
	if len(days) != 2 || days[1].Title != "Statistics" {
		t.Fatalf("unexpected organization %+v", days)
	}
	if ref := days[1].Items[0].Items[0].IdentifierRef; ref != "RES_LESSON_3" {
		t.Fatalf("expected third lesson ref, got %q", ref)
	}
	if len(m.Resources) != 3 || m.Resources[0].Href != "lessons/lesson_1.html" {
		t.Fatalf("unexpected resources %+v", m.Resources)
	}
	if !strings.Contains(files["imsmanifest.xml"], `adlcp:scormtype="sco"`) {
		t.Fatal("expected SCO resources")
	}

	lesson := files["lessons/lesson_1.html"]
	if !strings.Contains(lesson, "<strong>bars</strong>") {
		t.Fatal("expected lecture notes rendered from markdown")
	}
	if strings.Contains(lesson, "<script>") {
		t.Fatal("expected raw html in notes to be dropped")
	}
	if strings.Contains(files["lessons/lesson_2.html"], "Lecture Notes") {
		t.Fatal("expected empty sections to be omitted")
	}
}

func TestSCORMIdentifiersUniqueWithRepeatedDays(t *testing.T) {
	c := testCourse()
	c.Curriculum[0].Day = 1
	c.Curriculum[1].Day = 1
	data := encode(t, "scorm", c)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatal(err)
	}
	var manifest string
	for _, f := range zr.File {
		if f.Name != "imsmanifest.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		b, _ := io.ReadAll(rc)
		rc.Close()
		manifest = string(b)
	}

	seen := map[string]bool{}
	for _, part := range strings.Split(manifest, ` identifier="`)[1:] {
		id := part[:strings.IndexByte(part, '"')]
		if seen[id] {
			t.Errorf("duplicate identifier %q", id)
		}
		seen[id] = true
	}
	for _, want := range []string{"DAY_1", "DAY_2", "MOD_1_0", "MOD_2_0"} {
		if !seen[want] {
			t.Errorf("missing identifier %q", want)
		}
	}
}
