// Package richtext maps a card's HTML fragment onto an ordered list of
// addressable units and back.
//
// A unit is one top-level element of the fragment. Its Markup is the exact
// byte span the element occupied in the source, so a document that is
// serialized without replacements reproduces its input byte for byte. Bytes
// that fall between top-level elements (whitespace, stray text, comments)
// are kept as gaps and written back untouched.
package richtext

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Unit is one addressable block of a document.
type Unit struct {
	Index     int    `json:"index"`
	PlainText string `json:"plainText"`
	Markup    string `json:"markup"`
	// Synthetic marks the fallback unit built from a bare text run that has
	// no wrapping element.
	Synthetic bool `json:"synthetic,omitempty"`
}

// Document is the parsed view of an HTML fragment.
type Document struct {
	Source string
	Units  []Unit
	// gaps[i] precedes Units[i]; gaps[len(Units)] trails the last unit.
	gaps []string
}

type span struct{ start, end int }

// Parse splits src into units. It never fails: an empty or blank fragment
// yields a document with zero units.
func Parse(src string) *Document {
	spans := topLevelSpans(src)

	doc := &Document{Source: src}
	if len(spans) == 0 {
		if strings.TrimSpace(TextOf(src)) == "" {
			doc.gaps = []string{src}
			return doc
		}
		doc.Units = []Unit{{
			Index:     0,
			PlainText: TextOf(src),
			Markup:    src,
			Synthetic: true,
		}}
		doc.gaps = []string{"", ""}
		return doc
	}

	prev := 0
	doc.Units = make([]Unit, 0, len(spans))
	doc.gaps = make([]string, 0, len(spans)+1)
	for i, sp := range spans {
		doc.gaps = append(doc.gaps, src[prev:sp.start])
		markup := src[sp.start:sp.end]
		doc.Units = append(doc.Units, Unit{
			Index:     i,
			PlainText: TextOf(markup),
			Markup:    markup,
		})
		prev = sp.end
	}
	doc.gaps = append(doc.gaps, src[prev:])
	return doc
}

// Len returns the number of units.
func (d *Document) Len() int { return len(d.Units) }

// Unit returns the unit at i and whether i is in range.
func (d *Document) Unit(i int) (Unit, bool) {
	if i < 0 || i >= len(d.Units) {
		return Unit{}, false
	}
	return d.Units[i], true
}

// Serialize rebuilds the fragment, substituting replacements[i] for unit i
// where present. Keys outside the unit range are ignored.
func (d *Document) Serialize(replacements map[int]string) string {
	if len(d.Units) == 0 {
		return strings.Join(d.gaps, "")
	}
	var sb strings.Builder
	sb.Grow(len(d.Source))
	for i, u := range d.Units {
		sb.WriteString(d.gaps[i])
		if r, ok := replacements[i]; ok {
			sb.WriteString(r)
		} else {
			sb.WriteString(u.Markup)
		}
	}
	sb.WriteString(d.gaps[len(d.Units)])
	return sb.String()
}

// Promote wraps a synthetic unit in a div so that block styles can be
// attached. The text is carried over verbatim. Element units are returned
// as they are.
func Promote(u Unit) string {
	if !u.Synthetic {
		return u.Markup
	}
	return "<div>" + u.Markup + "</div>"
}

// topLevelSpans returns the byte ranges of every top-level element in src.
func topLevelSpans(src string) []span {
	var (
		spans []span
		stack []string
		pos   int
		start int
	)
	z := html.NewTokenizer(strings.NewReader(src))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		n := len(z.Raw())
		switch tt {
		case html.StartTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if closesOpenBlock(stack, tag) {
				spans = append(spans, span{start, pos})
				stack = stack[:0]
			}
			if len(stack) == 0 {
				start = pos
			}
			if isVoid(tag) {
				if len(stack) == 0 {
					spans = append(spans, span{start, pos + n})
				}
				break
			}
			stack = append(stack, tag)
		case html.SelfClosingTagToken:
			if len(stack) == 0 {
				spans = append(spans, span{pos, pos + n})
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			// Pop through unclosed inline elements up to the matching opener.
			for i := len(stack) - 1; i >= 0; i-- {
				if stack[i] == tag {
					stack = stack[:i]
					if len(stack) == 0 {
						spans = append(spans, span{start, pos + n})
					}
					break
				}
			}
		}
		pos += n
	}
	if len(stack) > 0 {
		spans = append(spans, span{start, len(src)})
	}
	return spans
}

// closesOpenBlock reports whether opening tag implicitly ends the open
// top-level element, as a second <p> or <li> does.
func closesOpenBlock(stack []string, tag string) bool {
	if len(stack) == 0 || stack[0] != tag {
		return false
	}
	switch atom.Lookup([]byte(tag)) {
	case atom.P:
		return true
	case atom.Li:
		for _, open := range stack[1:] {
			if a := atom.Lookup([]byte(open)); a == atom.Ul || a == atom.Ol || a == atom.Menu {
				return false
			}
		}
		return true
	}
	return false
}

func isVoid(tag string) bool {
	switch atom.Lookup([]byte(tag)) {
	case atom.Area, atom.Base, atom.Br, atom.Col, atom.Embed, atom.Hr, atom.Img,
		atom.Input, atom.Link, atom.Meta, atom.Source, atom.Track, atom.Wbr:
		return true
	}
	return false
}
