package provider

import "context"

// DefaultFakeResponse is a small three-block answer in the format the
// website stage asks for.
const DefaultFakeResponse = "```html\n<header><h1>Sample Site</h1></header>\n<main><button id=\"go\">Go</button></main>\n```\n\n" +
	"```css\nbody { font-family: Inter, sans-serif; }\nbutton { padding: 0.75rem 1.5rem; }\n```\n\n" +
	"```javascript\ndocument.getElementById('go').addEventListener('click', () => alert('Hello'));\n```\n"

// Fake returns a fixed response. Used for offline runs.
type Fake struct {
	Response string
}

func NewFake(response string) *Fake {
	if response == "" {
		response = DefaultFakeResponse
	}
	return &Fake{Response: response}
}

func (f *Fake) Name() string { return "Fake" }

func (f *Fake) Generate(ctx context.Context, _ Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return f.Response, nil
}
