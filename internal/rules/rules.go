// Package rules detects formatting rules from styled markup and replays
// rule lists against documents.
package rules

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/starford/cardsmith/internal/match"
	"github.com/starford/cardsmith/internal/models"
	"github.com/starford/cardsmith/internal/richtext"
	"github.com/starford/cardsmith/internal/transform"
)

const previewRunes = 5

// DefaultRule is returned by ScanForRules when a document has no styled
// elements. It highlights paragraphs that open with ◎.
func DefaultRule() models.TransformationRule {
	return models.TransformationRule{
		ID:         "rule_" + uuid.NewString(),
		Name:       "Example: highlight lead",
		Pattern:    "^◎.*",
		IsRegex:    true,
		Formatting: models.FormattingStyles{Color: "#c0392b", IsBold: true},
		Scope:      models.ScopeParagraph,
		IsActive:   true,
	}
}

// ScanForRules derives one match-scope rule per distinct (formatting, text)
// pair found on styled elements of doc. Elements aligned justify are
// ignored. A document without usable styles yields DefaultRule.
func ScanForRules(doc string) []models.TransformationRule {
	var (
		out  []models.TransformationRule
		seen = make(map[string]struct{})
	)
	richtext.Fragment(doc).Find("[style]").Each(func(_ int, el *goquery.Selection) {
		raw, _ := el.Attr("style")
		st := richtext.ParseStyle(raw)
		if v, ok := st.Get("text-align"); ok && strings.EqualFold(v, "justify") {
			return
		}
		f := st.Formatting()
		text := el.Text()
		if f.IsZero() || text == "" {
			return
		}
		key := dedupeKey(f, text)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		out = append(out, models.TransformationRule{
			ID:         "rule_" + uuid.NewString(),
			Name:       "识别: " + preview(text) + "...",
			Pattern:    text,
			Formatting: f,
			Scope:      models.ScopeMatch,
			IsActive:   true,
		})
	})
	if len(out) == 0 {
		return []models.TransformationRule{DefaultRule()}
	}
	return out
}

// ApplyRules replays the active rules in order. Each rule sees the output of
// the one before it.
func ApplyRules(doc string, list []models.TransformationRule) string {
	for _, r := range list {
		if !r.IsActive {
			continue
		}
		doc = apply(doc, r)
	}
	return doc
}

func apply(doc string, r models.TransformationRule) string {
	q := Query(r)
	if q.Blank() || r.Formatting.IsZero() {
		return doc
	}
	found := match.Find(richtext.Parse(doc).Units, q)
	if len(found.Indices) == 0 {
		return doc
	}
	if r.Scope == models.ScopeParagraph {
		return transform.ApplyParagraphStyle(doc, found.Indices, r.Formatting)
	}
	return transform.ApplyMatchStyle(doc, found.Indices, q, r.Formatting)
}

// Query returns the match query a rule's pattern stands for.
func Query(r models.TransformationRule) match.Query {
	mode := match.Literal
	if r.IsRegex {
		mode = match.Regex
	}
	return match.Query{Text: r.Pattern, Mode: mode}
}

func dedupeKey(f models.FormattingStyles, text string) string {
	b, _ := json.Marshal(f)
	return string(b) + text
}

func preview(text string) string {
	r := []rune(text)
	if len(r) > previewRunes {
		r = r[:previewRunes]
	}
	return string(r)
}
