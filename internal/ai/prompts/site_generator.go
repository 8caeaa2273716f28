package prompts

import (
	"fmt"
	"strings"
)

const fence = "```"

// Website asks for the three fenced blocks the extractor understands.
func Website(userPrompt string) string {
	return fmt.Sprintf(`
You are a professional web developer. Build a complete, working website for:

---
"%s"
---

Rules:
1.  Return exactly three fenced code blocks, in this order:
    *   `+fence+`html: the markup that goes inside <body> (no <html>, <head> or <body> tags)
    *   `+fence+`css: all styles
    *   `+fence+`javascript: all behaviour
2.  Styling: CSS variables for the palette, Inter/Poppins typography, responsive
    layout with CSS Grid or Flexbox, cards with soft shadows and rounded corners.
3.  Content: real, professional copy. No lorem ipsum.
4.  Behaviour: smooth scrolling, form validation where forms exist, hover
    feedback on interactive elements, a working mobile menu.
5.  No external links or navigation away from the page.

Only include code. No explanations before or after the blocks.
`, userPrompt)
}

// WebsiteFallback is the short prompt used when the full prompt keeps failing.
func WebsiteFallback(userPrompt string) string {
	return fmt.Sprintf(`
Create a simple, responsive one-page website for: "%s"

Return three fenced code blocks: `+fence+`html (body markup), `+fence+`css and `+fence+`javascript.
Keep it short. No explanations.
`, userPrompt)
}

// HTMLOnly asks for bare semantic structure.
func HTMLOnly(userPrompt string) string {
	return fmt.Sprintf(`
Create basic HTML structure for: "%s"

Requirements:
- Simple, semantic HTML5 document with <title> and <meta name="description">
- Basic structure only (no CSS, no JavaScript)
- Use appropriate headings and content sections

Return only clean HTML code.
`, userPrompt)
}

func HTMLOnlyFallback(userPrompt string) string {
	return fmt.Sprintf("Write a minimal semantic HTML5 page for: \"%s\". No CSS, no JavaScript. Return only HTML.\n", userPrompt)
}

// Styles asks for a stylesheet matching upstream HTML.
func Styles(userPrompt, html string) string {
	return fmt.Sprintf(`
Write modern CSS for this HTML structure:

HTML:
%s

Original request: "%s"

Include a clean colour scheme, responsive layout with CSS Grid or Flexbox,
professional typography, hover effects and subtle animations.

Return a single `+fence+`css block and nothing else. Do not repeat the HTML.
`, html, userPrompt)
}

func StylesFallback(userPrompt, html string) string {
	return fmt.Sprintf("Write short, responsive CSS for this HTML (request: \"%s\"). Return one "+fence+"css block only.\n\n%s\n", userPrompt, html)
}

// Scripts asks for JavaScript matching upstream HTML and CSS.
func Scripts(userPrompt, html, css string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\nAdd JavaScript behaviour to this page.\n\nHTML:\n%s\n", html)
	if strings.TrimSpace(css) != "" {
		fmt.Fprintf(&b, "\nCSS:\n%s\n", css)
	}
	fmt.Fprintf(&b, `
Original request: "%s"

Include event listeners, form validation and submission handling where forms
exist, loading states and user feedback, and error handling. Use modern ES6+.
For games add full game logic, scoring and win/lose conditions.

Return a single `+fence+`javascript block and nothing else.
`, userPrompt)
	return b.String()
}

func ScriptsFallback(userPrompt, html, _ string) string {
	return fmt.Sprintf("Write minimal JavaScript for this HTML (request: \"%s\"). Return one "+fence+"javascript block only.\n\n%s\n", userPrompt, html)
}

// Functionality asks for the complete page with a script added.
func Functionality(userPrompt, html string) string {
	return fmt.Sprintf(`
Take this styled HTML and add JavaScript functionality to make it interactive:

HTML:
%s

Original request: "%s"

Add interactive functionality based on the original request, form validation,
smooth transitions, event listeners, mobile-friendly touch interactions and
error handling for user actions.

Add the JavaScript inside <script> tags at the end of the <body>.
Return the complete HTML with embedded CSS and JavaScript.
No explanations, just the functional HTML code.
`, html, userPrompt)
}

func FunctionalityFallback(userPrompt, html string) string {
	return fmt.Sprintf("Add a small <script> to this HTML so it works for: \"%s\". Return the full HTML only.\n\n%s\n", userPrompt, html)
}
