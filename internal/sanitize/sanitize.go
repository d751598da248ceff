// Package sanitize reduces untrusted card HTML to the paragraph subset the
// editor produces.
package sanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var blockElements = []string{"div", "p", "span", "b", "strong", "i", "em", "u", "s", "h1", "h2", "h3", "blockquote"}

var documentPolicy = sync.OnceValue(func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(blockElements...)
	p.AllowElements("br", "hr")
	p.AllowStyles("color", "font-size", "font-weight", "font-style", "text-align",
		"text-decoration", "display", "width", "flex").OnElements(blockElements...)
	return p
})

var textPolicy = sync.OnceValue(bluemonday.StrictPolicy)

// Document sanitizes the HTML of a document field.
func Document(s string) string {
	if s == "" {
		return s
	}
	return documentPolicy().Sanitize(s)
}

// Text strips every tag from a plain-text field. Entities are decoded again
// since the field is never rendered as HTML.
func Text(s string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy().Sanitize(s)))
}
