// Package export renders assembled planning documents for download: raw
// markdown, a standalone printable HTML page and an ODT-flavoured HTML file
// that LibreOffice and Word open directly.
package export

import (
	"bytes"
	"fmt"
	"html/template"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Format is a download format.
type Format string

const (
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
	FormatODT      Format = "odt"
)

// ParseFormat accepts "md", "markdown", "html" and "odt".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "md", "markdown":
		return FormatMarkdown, nil
	case "html", "htm":
		return FormatHTML, nil
	case "odt":
		return FormatODT, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// ContentType is the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatODT:
		return "application/vnd.oasis.opendocument.text"
	default:
		return "text/markdown; charset=utf-8"
	}
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// FileName builds the download name from the document title, replacing
// whitespace runs with underscores.
func FileName(title string, f Format) string {
	return whitespaceRun.ReplaceAllString(title, "_") + "." + string(f)
}

var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// Render converts the document to the requested format.
func Render(title, markdown string, f Format) ([]byte, error) {
	switch f {
	case FormatMarkdown:
		return []byte(markdown), nil
	case FormatHTML:
		return HTML(title, markdown)
	case FormatODT:
		return ODT(title, markdown)
	}
	return nil, fmt.Errorf("unsupported export format %q", f)
}

// Body renders markdown to an HTML fragment with GFM tables.
func Body(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

type page struct {
	Title string
	Body  template.HTML
}

var htmlPage = template.Must(template.New("html").Parse(`<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: Arial, sans-serif; line-height: 1.5; max-width: 60rem; margin: 2rem auto; color: #1e293b; }
table { border-collapse: collapse; width: 100%; margin: 20px 0; }
th, td { border: 1px solid #000; padding: 8px; text-align: left; font-size: 10pt; vertical-align: top; }
th { background-color: #f2f2f2; }
h1 { color: #2c3e50; }
h2 { border-bottom: 1px solid #ccc; color: #34495e; }
@media print {
  body { margin: 0; max-width: none; }
  h2 { page-break-after: avoid; }
  table { page-break-inside: auto; }
  tr { page-break-inside: avoid; }
}
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

var odtPage = template.Must(template.New("odt").Parse(`<html xmlns:o='urn:schemas-microsoft-com:office:office' xmlns:w='urn:schemas-microsoft-com:office:word' xmlns='http://www.w3.org/TR/REC-html40'>
<head><meta charset='utf-8'><title>{{.Title}}</title>
<style>
body { font-family: 'Arial', sans-serif; line-height: 1.5; }
table { border-collapse: collapse; width: 100%; margin: 20px 0; }
th, td { border: 1px solid #000; padding: 8px; text-align: left; font-size: 10pt; }
th { background-color: #f2f2f2; }
h1 { color: #2c3e50; }
h2 { border-bottom: 1px solid #ccc; color: #34495e; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// HTML renders a standalone printable page.
func HTML(title, markdown string) ([]byte, error) {
	return renderPage(htmlPage, title, markdown)
}

// ODT renders the office-namespaced HTML document served with the ODT MIME
// type.
func ODT(title, markdown string) ([]byte, error) {
	return renderPage(odtPage, title, markdown)
}

func renderPage(t *template.Template, title, markdown string) ([]byte, error) {
	body, err := Body(markdown)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	// Body is trusted: it is rendered from the user's own document.
	if err := t.Execute(&buf, page{Title: title, Body: template.HTML(body)}); err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	return buf.Bytes(), nil
}
