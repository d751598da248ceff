package transform

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/starford/cardsmith/internal/match"
	"github.com/starford/cardsmith/internal/models"
	"github.com/starford/cardsmith/internal/richtext"
)

// ApplyMatchStyle wraps every occurrence of q in the plain text of each
// selected unit in a styled span. Occurrences are found on the unit's whole
// text, so one that crosses inline markup is wrapped piecewise. Tag names
// and attribute values are never matched. Text that already sits in a span
// is wrapped again.
func ApplyMatchStyle(src string, selection []int, q match.Query, f models.FormattingStyles) string {
	re, ok := q.Compile()
	if !ok {
		return src
	}
	style := richtext.Declarations(f)
	if style.Len() == 0 {
		return src
	}
	return rewrite(src, selection, func(u richtext.Unit) string {
		ranges := matchRanges(u.PlainText, re)
		if len(ranges) == 0 {
			return u.Markup
		}
		return wrapRanges(u.Markup, ranges, style.String())
	})
}

// WrapRange wraps the rune range [start, end) of a unit's plain text in a
// styled span, splitting the span across inline elements where the range
// crosses them. Invalid ranges leave the document unchanged.
func WrapRange(src string, unit, start, end int, f models.FormattingStyles) string {
	style := richtext.Declarations(f)
	if style.Len() == 0 || start < 0 || end <= start {
		return src
	}
	doc := richtext.Parse(src)
	u, ok := doc.Unit(unit)
	if !ok || end > utf8.RuneCountInString(u.PlainText) {
		return src
	}
	out := wrapRanges(u.Markup, [][2]int{{start, end}}, style.String())
	return doc.Serialize(map[int]string{unit: out})
}

// matchRanges returns the non-empty matches of re in text as rune ranges.
func matchRanges(text string, re *regexp.Regexp) [][2]int {
	var out [][2]int
	for _, loc := range re.FindAllStringIndex(text, -1) {
		if loc[0] == loc[1] {
			continue
		}
		out = append(out, [2]int{
			utf8.RuneCountInString(text[:loc[0]]),
			utf8.RuneCountInString(text[:loc[1]]),
		})
	}
	return out
}

// wrapRanges wraps each rune range of markup's plain text in a span. A range
// that covers several text nodes gets one span per node. Ranges must be
// sorted and disjoint.
func wrapRanges(markup string, ranges [][2]int, style string) string {
	return rewriteText(markup, func(text string, offset int) (string, bool) {
		runes := []rune(text)
		var (
			sb   strings.Builder
			prev int
			hit  bool
		)
		for _, r := range ranges {
			lo, hi := max(r[0]-offset, prev), min(r[1]-offset, len(runes))
			if lo >= hi {
				continue
			}
			sb.WriteString(escapeText(string(runes[prev:lo])))
			sb.WriteString(span(style, string(runes[lo:hi])))
			prev, hit = hi, true
		}
		if !hit {
			return "", false
		}
		sb.WriteString(escapeText(string(runes[prev:])))
		return sb.String(), true
	})
}

func span(style, text string) string {
	return `<span style="` + html.EscapeString(style) + `">` + escapeText(text) + `</span>`
}

// rewriteText re-emits markup token by token. edit receives the decoded
// text of each text token and its rune offset within the plain-text
// projection; it returns replacement markup, or false to keep the raw bytes.
// Line breaks count as one rune. Script and style bodies are never edited.
func rewriteText(markup string, edit func(text string, offset int) (string, bool)) string {
	var (
		sb     strings.Builder
		offset int
		opaque int
	)
	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		raw := string(z.Raw())
		switch tt {
		case html.TextToken:
			text := string(z.Text())
			if opaque == 0 {
				if out, ok := edit(text, offset); ok {
					sb.WriteString(out)
					offset += utf8.RuneCountInString(text)
					continue
				}
			}
			offset += utf8.RuneCountInString(text)
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.Br:
				offset++
			case atom.Script, atom.Style:
				if tt == html.StartTagToken {
					opaque++
				}
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if a := atom.Lookup(name); (a == atom.Script || a == atom.Style) && opaque > 0 {
				opaque--
			}
		}
		sb.WriteString(raw)
	}
	return sb.String()
}
