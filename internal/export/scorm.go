package export

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/dgallion1/coursedraft/internal/outline"
)

// SCORM writes a SCORM 1.2 content package: an IMS manifest describing the
// day/module/lesson hierarchy plus one HTML page per lesson.
type SCORM struct{}

func (SCORM) Format() string      { return "scorm" }
func (SCORM) Extension() string   { return "_SCORM.zip" }
func (SCORM) ContentType() string { return "application/zip" }

type imsManifest struct {
	XMLName        xml.Name `xml:"manifest"`
	Identifier     string   `xml:"identifier,attr"`
	Version        string   `xml:"version,attr"`
	Xmlns          string   `xml:"xmlns,attr"`
	XmlnsADLCP     string   `xml:"xmlns:adlcp,attr"`
	XmlnsXSI       string   `xml:"xmlns:xsi,attr"`
	SchemaLocation string   `xml:"xsi:schemaLocation,attr"`

	Metadata struct {
		Schema        string `xml:"schema"`
		SchemaVersion string `xml:"schemaversion"`
		LOM           struct {
			Xmlns       string     `xml:"xmlns,attr"`
			Title       langString `xml:"general>title>langstring"`
			Description langString `xml:"general>description>langstring"`
		} `xml:"lom"`
	} `xml:"metadata"`

	Organizations struct {
		Default      string `xml:"default,attr"`
		Organization struct {
			Identifier string    `xml:"identifier,attr"`
			Title      string    `xml:"title"`
			Items      []imsItem `xml:"item"`
		} `xml:"organization"`
	} `xml:"organizations"`

	Resources []imsResource `xml:"resources>resource"`
}

type langString struct {
	Lang  string `xml:"xml:lang,attr"`
	Value string `xml:",chardata"`
}

type imsItem struct {
	Identifier    string    `xml:"identifier,attr"`
	IdentifierRef string    `xml:"identifierref,attr,omitempty"`
	IsVisible     string    `xml:"isvisible,attr"`
	Title         string    `xml:"title"`
	Items         []imsItem `xml:"item"`
}

type imsResource struct {
	Identifier string `xml:"identifier,attr"`
	Type       string `xml:"type,attr"`
	ScormType  string `xml:"adlcp:scormtype,attr"`
	Href       string `xml:"href,attr"`
	File       struct {
		Href string `xml:"href,attr"`
	} `xml:"file"`
}

var lessonTemplate = template.Must(template.New("lesson").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Lesson}}</title>
<style>
body { font-family: sans-serif; line-height: 1.6; padding: 2em; }
h1 { color: #333; }
h2 { color: #555; border-bottom: 1px solid #ccc; padding-bottom: 5px; }
pre, code { background-color: #f4f4f4; border-radius: 5px; }
</style>
</head>
<body>
<h1>{{.Course}}</h1>
<h2>{{.Lesson}}</h2>
<p>{{.Description}}</p>
{{range .Sections}}<h2>{{.Heading}}</h2>
{{.Body}}
{{end}}</body>
</html>
`))

type lessonPage struct {
	Course, Lesson, Description string
	Sections                    []renderedSection
}

type renderedSection struct {
	Heading string
	Body    template.HTML
}

func lessonHref(n int) string { return fmt.Sprintf("lessons/lesson_%d.html", n) }

func (SCORM) Encode(w io.Writer, c *outline.Course) error {
	zw := zip.NewWriter(w)

	m := buildManifest(c)
	mw, err := zw.Create("imsmanifest.xml")
	if err != nil {
		return err
	}
	if _, err := io.WriteString(mw, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(mw)
	enc.Indent("", "  ")
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	n := 0
	var walkErr error
	c.EachLesson(func(_ outline.LessonRef, l outline.Lesson) {
		if walkErr != nil {
			return
		}
		n++
		walkErr = writeLesson(zw, lessonHref(n), c.Title, l)
	})
	if walkErr != nil {
		return walkErr
	}
	return zw.Close()
}

func writeLesson(zw *zip.Writer, name, courseTitle string, l outline.Lesson) error {
	page := lessonPage{Course: courseTitle, Lesson: l.Title, Description: l.Description}
	for _, s := range lessonSections(l) {
		body, err := renderHTML([]byte(s.Body))
		if err != nil {
			return fmt.Errorf("render %s: %w", name, err)
		}
		page.Sections = append(page.Sections, renderedSection{Heading: s.Heading, Body: body})
	}
	fw, err := zw.Create(name)
	if err != nil {
		return err
	}
	return lessonTemplate.Execute(fw, page)
}

func buildManifest(c *outline.Course) *imsManifest {
	m := &imsManifest{
		Identifier: "com.coursedraft." + strings.ToLower(strings.TrimSuffix(Filename(c, SCORM{}), SCORM{}.Extension())),
		Version:    "1.1",
		Xmlns:      "http://www.imsproject.org/xsd/imscp_rootv1p1p2",
		XmlnsADLCP: "http://www.adlnet.org/xsd/adlcp_rootv1p2",
		XmlnsXSI:   "http://www.w3.org/2001/XMLSchema-instance",
		SchemaLocation: "http://www.imsproject.org/xsd/imscp_rootv1p1p2 imscp_rootv1p1p2.xsd " +
			"http://www.imsglobal.org/xsd/imsmd_rootv1p2p1 imsmd_rootv1p2p1.xsd " +
			"http://www.adlnet.org/xsd/adlcp_rootv1p2 adlcp_rootv1p2.xsd",
	}
	m.Metadata.Schema = "ADL SCORM"
	m.Metadata.SchemaVersion = "1.2"
	m.Metadata.LOM.Xmlns = "http://www.imsglobal.org/xsd/imsmd_rootv1p2p1"
	m.Metadata.LOM.Title = langString{Lang: "en-US", Value: c.Title}
	m.Metadata.LOM.Description = langString{Lang: "en-US", Value: c.Description}

	m.Organizations.Default = "ORG-1"
	org := &m.Organizations.Organization
	org.Identifier = "ORG-1"
	org.Title = c.Title

	// Identifiers come from positions; day numbers are editable and may repeat.
	n := 0
	for di, day := range c.Curriculum {
		dayItem := imsItem{Identifier: fmt.Sprintf("DAY_%d", di+1), IsVisible: "true", Title: day.Title}
		for mi, mod := range day.Modules {
			modItem := imsItem{Identifier: fmt.Sprintf("MOD_%d_%d", di+1, mi), IsVisible: "true", Title: mod.Title}
			for _, l := range mod.Lessons {
				n++
				id := fmt.Sprintf("LESSON_%d", n)
				modItem.Items = append(modItem.Items, imsItem{
					Identifier:    id,
					IdentifierRef: "RES_" + id,
					IsVisible:     "true",
					Title:         l.Title,
				})
				res := imsResource{Identifier: "RES_" + id, Type: "webcontent", ScormType: "sco", Href: lessonHref(n)}
				res.File.Href = lessonHref(n)
				m.Resources = append(m.Resources, res)
			}
			dayItem.Items = append(dayItem.Items, modItem)
		}
		org.Items = append(org.Items, dayItem)
	}
	return m
}
