package extract

import (
	"fmt"
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Placeholders used only inside the synthesized document, never in Site fields.
const (
	PlaceholderHTML = "<p>No HTML content was generated for this request.</p>"
	PlaceholderCSS  = "/* No CSS was generated for this request. */"
	PlaceholderJS   = "// No JavaScript was generated for this request."
)

const documentTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>%s</title>
    <style>
%s
    </style>
</head>
<body>
%s
    <script>
%s
    </script>
</body>
</html>`

// BuildDocument embeds the CSS in a <style> and the JS in a <script> around the
// HTML. If the HTML is already a full document the style and script are
// injected before </head> and </body>.
func BuildDocument(site Site, title string) string {
	body := orDefault(site.HTML, PlaceholderHTML)
	css := orDefault(site.CSS, PlaceholderCSS)
	js := orDefault(site.JS, PlaceholderJS)

	lower := strings.ToLower(body)
	headEnd := strings.LastIndex(lower, "</head>")
	bodyEnd := strings.LastIndex(lower, "</body>")
	if headEnd != -1 && bodyEnd > headEnd {
		var b strings.Builder
		b.WriteString(body[:headEnd])
		b.WriteString("<style>\n" + css + "\n</style>\n")
		b.WriteString(body[headEnd:bodyEnd])
		b.WriteString("<script>\n" + js + "\n</script>\n")
		b.WriteString(body[bodyEnd:])
		return b.String()
	}

	return fmt.Sprintf(documentTemplate, html.EscapeString(title), css, body, js)
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// Metadata returns the <title> text and the <meta name="description"> content
// of doc. Missing tags yield empty strings.
func Metadata(doc string) (title, description string) {
	if strings.TrimSpace(doc) == "" {
		return "", ""
	}
	d, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	if err != nil {
		return "", ""
	}

	title = strings.TrimSpace(d.Find("title").First().Text())
	d.Find("meta").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		name, _ := s.Attr("name")
		if !strings.EqualFold(strings.TrimSpace(name), "description") {
			return true
		}
		content, _ := s.Attr("content")
		description = strings.TrimSpace(content)
		return false
	})
	return title, description
}
