// Package extract pulls HTML, CSS and JavaScript out of the free-form text an
// LLM returns and assembles them into a standalone document.
package extract

import (
	"regexp"
	"strings"
)

// Site holds the three code regions found in a provider response.
// Any field may be empty; callers decide what to show instead.
type Site struct {
	HTML string
	CSS  string
	JS   string
}

// Empty reports whether no region was found at all.
func (s Site) Empty() bool {
	return s.HTML == "" && s.CSS == "" && s.JS == ""
}

// Lazy (.*?) so the match stops at the nearest closing fence and blocks of
// different languages never merge. The \b keeps ```json from matching js.
var (
	reHTMLBlock = regexp.MustCompile("(?is)```html\\b[ \\t]*(.*?)```")
	reCSSBlock  = regexp.MustCompile("(?is)```css\\b[ \\t]*(.*?)```")
	reJSBlock   = regexp.MustCompile("(?is)```(?:javascript|js)\\b[ \\t]*(.*?)```")
)

// Extract returns the interior of the first html, css and javascript fenced
// block in text. Nested backticks inside a block are not special-cased.
func Extract(text string) Site {
	return Site{
		HTML: firstBlock(reHTMLBlock, text),
		CSS:  firstBlock(reCSSBlock, text),
		JS:   firstBlock(reJSBlock, text),
	}
}

func firstBlock(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// StripFences cleans a single-blob response. A labelled html block wins over
// any chatter around it; otherwise one leading fence line and one trailing
// fence are dropped.
func StripFences(text string) string {
	if html := firstBlock(reHTMLBlock, text); html != "" {
		return html
	}

	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```") {
		if nl := strings.Index(cleaned, "\n"); nl != -1 {
			cleaned = cleaned[nl+1:]
		} else {
			cleaned = strings.TrimPrefix(cleaned, "```")
		}
	}
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}
