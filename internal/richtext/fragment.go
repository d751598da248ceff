package richtext

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Fragment parses markup as body content and returns a selection rooted at
// a detached container element. The container itself is never rendered.
func Fragment(markup string) *goquery.Selection {
	container := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), body)
	if err == nil {
		for _, n := range nodes {
			container.AppendChild(n)
		}
	}
	return goquery.NewDocumentFromNode(container).Selection
}

// Render serializes the children of a selection produced by Fragment.
func Render(root *goquery.Selection) string {
	out, err := root.Html()
	if err != nil {
		return ""
	}
	return out
}

// TextOf returns the rendered text of markup: tags stripped, entities
// decoded and line breaks kept as newlines.
func TextOf(markup string) string {
	if !strings.ContainsAny(markup, "<&") {
		return markup
	}
	root := Fragment(markup)
	root.Find("br").ReplaceWithHtml("\n")
	return root.Text()
}
