// Package transform applies batch formatting to the selected units of a
// document. Every function takes the serialized document and returns a new
// one; units outside the selection are written back byte for byte and
// indices that do not exist are skipped.
package transform

import (
	"strings"

	"github.com/starford/cardsmith/internal/models"
	"github.com/starford/cardsmith/internal/richtext"
)

// Alignment is a block-level text alignment.
type Alignment string

const (
	AlignLeft    Alignment = "left"
	AlignCenter  Alignment = "center"
	AlignRight   Alignment = "right"
	AlignJustify Alignment = "justify"
)

// Alignments lists the accepted alignment values.
var Alignments = []Alignment{AlignLeft, AlignCenter, AlignRight, AlignJustify}

// ParseAlignment validates s.
func ParseAlignment(s string) (Alignment, bool) {
	a := Alignment(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range Alignments {
		if a == v {
			return a, true
		}
	}
	return "", false
}

// ApplyAlignment sets text-align on every selected unit. A bare-text
// fallback unit is wrapped in a div first.
func ApplyAlignment(src string, selection []int, a Alignment) string {
	if _, ok := ParseAlignment(string(a)); !ok {
		return src
	}
	var patch richtext.Style
	patch.Set("text-align", string(a))
	return rewrite(src, selection, func(u richtext.Unit) string {
		return richtext.SetBlockStyle(richtext.Promote(u), patch)
	})
}

// ApplyParagraphStyle patches the block style of every selected unit with f.
func ApplyParagraphStyle(src string, selection []int, f models.FormattingStyles) string {
	patch := richtext.Declarations(f)
	if patch.Len() == 0 {
		return src
	}
	return rewrite(src, selection, func(u richtext.Unit) string {
		return richtext.SetBlockStyle(richtext.Promote(u), patch)
	})
}

// ApplyThreeColumnRow replaces the target unit with a row of three equal
// cells aligned left, center and right. The unit's previous markup is
// discarded.
func ApplyThreeColumnRow(src string, target int, left, center, right string) string {
	return rewrite(src, []int{target}, func(richtext.Unit) string {
		return ThreeColumnRow(left, center, right)
	})
}

// ThreeColumnRow renders the row markup used by ApplyThreeColumnRow.
func ThreeColumnRow(left, center, right string) string {
	var sb strings.Builder
	sb.WriteString(`<div style="display:flex;width:100%">`)
	for _, c := range []struct{ align, text string }{
		{"left", left}, {"center", center}, {"right", right},
	} {
		sb.WriteString(`<div style="flex:1;text-align:` + c.align + `">`)
		sb.WriteString(cellText(c.text))
		sb.WriteString(`</div>`)
	}
	sb.WriteString(`</div>`)
	return sb.String()
}

func cellText(s string) string {
	if strings.TrimSpace(s) == "" {
		return "&nbsp;"
	}
	return escapeText(s)
}

// rewrite parses src, replaces each addressable selected unit with fn(unit)
// and serializes the result.
func rewrite(src string, selection []int, fn func(richtext.Unit) string) string {
	doc := richtext.Parse(src)
	repl := make(map[int]string, len(selection))
	for _, i := range selection {
		u, ok := doc.Unit(i)
		if !ok {
			continue
		}
		if _, done := repl[i]; done {
			continue
		}
		repl[i] = fn(u)
	}
	if len(repl) == 0 {
		return src
	}
	return doc.Serialize(repl)
}

var textEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"\u00a0", "&nbsp;",
)

func escapeText(s string) string {
	return textEscaper.Replace(s)
}
