// Package match finds the units of a document whose plain text satisfies a
// literal or regular-expression query, and tracks which of those matches the
// user has selected.
package match

import (
	"regexp"
	"strings"

	"github.com/starford/cardsmith/internal/richtext"
)

// Mode selects how a query's text is interpreted.
type Mode string

const (
	Literal Mode = "literal"
	Regex   Mode = "regex"
)

// ParseMode maps s to a Mode. Unknown values are literal.
func ParseMode(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), string(Regex)) {
		return Regex
	}
	return Literal
}

// Query is user input plus its mode. Matching is always case-insensitive.
type Query struct {
	Text string `json:"query"`
	Mode Mode   `json:"mode"`
}

// Blank reports whether the query has no text after trimming.
func (q Query) Blank() bool {
	return strings.TrimSpace(q.Text) == ""
}

// Compile returns the case-insensitive expression for q. ok is false for a
// blank query or an invalid pattern.
func (q Query) Compile() (*regexp.Regexp, bool) {
	if q.Blank() {
		return nil, false
	}
	pattern := q.Text
	if q.Mode != Regex {
		pattern = regexp.QuoteMeta(pattern)
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, false
	}
	return re, true
}

// Range builds a query that matches from the first occurrence of a through
// the last following occurrence of b.
func Range(a, b string) Query {
	return Query{
		Text: regexp.QuoteMeta(a) + ".*" + regexp.QuoteMeta(b),
		Mode: Regex,
	}
}

// Result is the outcome of Find.
type Result struct {
	Indices []int `json:"indices"`
	// Awaiting is set when the query is blank, as opposed to a query that
	// matched nothing.
	Awaiting bool `json:"awaiting"`
}

// Find returns the ascending indices of units whose plain text matches q.
func Find(units []richtext.Unit, q Query) Result {
	if q.Blank() {
		return Result{Indices: []int{}, Awaiting: true}
	}
	res := Result{Indices: []int{}}
	re, ok := q.Compile()
	if !ok {
		return res
	}
	for _, u := range units {
		if re.MatchString(u.PlainText) {
			res.Indices = append(res.Indices, u.Index)
		}
	}
	return res
}
