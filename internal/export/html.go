package export

import (
	"bytes"
	"html/template"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/dgallion1/coursedraft/internal/outline"
)

// markdownHTML converts model-written markdown. Raw HTML in the source is
// escaped since the renderer is not configured with WithUnsafe.
var markdownHTML = goldmark.New(goldmark.WithExtensions(extension.GFM))

func renderHTML(src []byte) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdownHTML.Convert(src, &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

var printTemplate = template.Must(template.New("print").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
body { font-family: Georgia, serif; line-height: 1.5; max-width: 48em; margin: 2em auto; padding: 0 1em; color: #222; }
h1 { border-bottom: 2px solid #333; }
h3 { margin-top: 1.5em; }
a { color: #1a4f8b; }
@media print { body { margin: 0; max-width: none; } h3 { break-before: page; } }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// HTML renders a printable page from the markdown rendering.
type HTML struct{}

func (HTML) Format() string      { return "html" }
func (HTML) Extension() string   { return ".html" }
func (HTML) ContentType() string { return "text/html; charset=utf-8" }

func (HTML) Encode(w io.Writer, c *outline.Course) error {
	body, err := renderHTML(renderMarkdown(c))
	if err != nil {
		return err
	}
	return printTemplate.Execute(w, struct {
		Title string
		Body  template.HTML
	}{c.Title, body})
}
