// Package rendering turns cover letter text into a printable page and a PDF.
package rendering

import (
	"html/template"
	"strings"
)

// Title is the fixed heading printed above every letter.
const Title = "Cover Letter"

// Typography in points, US Letter page with one-inch margins.
const (
	TitleFontSize  = 16
	BodyFontSize   = 12
	ParagraphSpace = 12
)

var pageTemplate = template.Must(template.New("letter").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
@page { size: letter; margin: 1in; }
body { font-family: Helvetica, Arial, sans-serif; margin: 0; }
h1 { font-size: {{.TitleSize}}pt; text-align: center; margin: 0 0 30pt 0; }
p { font-size: {{.BodySize}}pt; line-height: 1.2; margin: 0 0 {{.Spacing}}pt 0; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{range .Paragraphs}}<p>{{.}}</p>
{{end}}</body>
</html>
`))

type pageData struct {
	Title      string
	TitleSize  int
	BodySize   int
	Spacing    int
	Paragraphs []string
}

// Paragraphs splits text on blank-line breaks and drops empty paragraphs.
func Paragraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	for _, para := range strings.Split(text, "\n\n") {
		if para = strings.TrimSpace(para); para != "" {
			out = append(out, para)
		}
	}
	return out
}

// BuildHTML renders the letter page: one title block, then one escaped body
// block per paragraph.
func BuildHTML(text string) (string, error) {
	var sb strings.Builder
	err := pageTemplate.Execute(&sb, pageData{
		Title:      Title,
		TitleSize:  TitleFontSize,
		BodySize:   BodyFontSize,
		Spacing:    ParagraphSpace,
		Paragraphs: Paragraphs(text),
	})
	if err != nil {
		return "", &TemplateError{Message: "failed to execute letter template", Cause: err}
	}
	return sb.String(), nil
}
