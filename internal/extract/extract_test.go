package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const threeBlocks = "Here is your site:\n\n```html\n<div class=\"calc\">0</div>\n```\n\n" +
	"```css\n.calc { color: red; }\n```\n\n```javascript\nconsole.log('hi');\n```\nEnjoy!"

func TestExtract_AllThreeBlocks(t *testing.T) {
	site := Extract(threeBlocks)

	assert.Equal(t, `<div class="calc">0</div>`, site.HTML)
	assert.Equal(t, ".calc { color: red; }", site.CSS)
	assert.Equal(t, "console.log('hi');", site.JS)
	assert.False(t, site.Empty())
}

func TestExtract_OrderDoesNotMatter(t *testing.T) {
	text := "```javascript\nlet a = 1;\n```\n```css\nbody{}\n```\n```html\n<p>x</p>\n```"
	site := Extract(text)

	assert.Equal(t, "<p>x</p>", site.HTML)
	assert.Equal(t, "body{}", site.CSS)
	assert.Equal(t, "let a = 1;", site.JS)
}

func TestExtract_MissingBlocksStayEmpty(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Site
	}{
		{"only css", "```css\na{}\n```", Site{CSS: "a{}"}},
		{"html and js", "```html\n<b>x</b>\n```\n```js\nf()\n```", Site{HTML: "<b>x</b>", JS: "f()"}},
		{"json is not js", "```json\n{\"a\":1}\n```", Site{}},
		{"no fences", "just prose, nothing else", Site{}},
		{"unlabelled fence", "```\n<p>hi</p>\n```", Site{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.text))
		})
	}
}

func TestExtract_CaseInsensitiveLabel(t *testing.T) {
	site := Extract("```HTML\n<h1>A</h1>\n```\n```CSS\nh1{}\n```\n```JavaScript\nx()\n```")
	assert.Equal(t, Site{HTML: "<h1>A</h1>", CSS: "h1{}", JS: "x()"}, site)
}

func TestExtract_NonGreedyTakesFirstBlock(t *testing.T) {
	text := "```css\nfirst{}\n```\nmore text\n```css\nsecond{}\n```"
	assert.Equal(t, "first{}", Extract(text).CSS)
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"html fence", "```html\n<html></html>\n```", "<html></html>"},
		{"bare fence", "```\n<p>x</p>\n```", "<p>x</p>"},
		{"no fence", "  <p>x</p>  ", "<p>x</p>"},
		{"chatter around block", "Sure!\n```html\n<p>y</p>\n```\nHope it helps", "<p>y</p>"},
		{"trailing fence only", "<p>z</p>\n```", "<p>z</p>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripFences(tt.in))
		})
	}
}

func TestBuildDocument_WrapsParts(t *testing.T) {
	doc := BuildDocument(Site{HTML: "<main>hi</main>", CSS: "main{}", JS: "go()"}, "Calc & Co")

	assert.True(t, strings.HasPrefix(doc, "<!DOCTYPE html>"))
	assert.Contains(t, doc, "<title>Calc &amp; Co</title>")
	assert.Contains(t, doc, "<style>\nmain{}\n    </style>")
	assert.Contains(t, doc, "<script>\ngo()\n    </script>")
	assert.Contains(t, doc, "<main>hi</main>")
}

func TestBuildDocument_PlaceholdersOnlyInDocument(t *testing.T) {
	site := Site{HTML: "<p>only html</p>"}
	doc := BuildDocument(site, "T")

	assert.Contains(t, doc, PlaceholderCSS)
	assert.Contains(t, doc, PlaceholderJS)
	assert.NotContains(t, doc, PlaceholderHTML)
	assert.Empty(t, site.CSS)
	assert.Empty(t, site.JS)
}

func TestBuildDocument_InjectsIntoFullDocument(t *testing.T) {
	full := "<html><head><title>X</title></head><body><p>b</p></body></html>"
	doc := BuildDocument(Site{HTML: full, CSS: "p{}", JS: "run()"}, "ignored")

	require.Contains(t, doc, "<style>\np{}\n</style>\n</head>")
	assert.Contains(t, doc, "<script>\nrun()\n</script>\n</body>")
	assert.NotContains(t, doc, "ignored")
}

func TestMetadata(t *testing.T) {
	doc := `<html><head><title> Pocket Calculator </title>
<meta content="A tiny calculator" name="Description"></head><body></body></html>`

	title, desc := Metadata(doc)
	assert.Equal(t, "Pocket Calculator", title)
	assert.Equal(t, "A tiny calculator", desc)
}

func TestMetadata_Missing(t *testing.T) {
	title, desc := Metadata("<div>no head here</div>")
	assert.Empty(t, title)
	assert.Empty(t, desc)

	title, desc = Metadata("")
	assert.Empty(t, title)
	assert.Empty(t, desc)
}
