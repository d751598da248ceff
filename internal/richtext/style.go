package richtext

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/aymerick/douceur/parser"

	"github.com/starford/cardsmith/internal/models"
)

type decl struct {
	prop  string
	value string
}

// Style is an ordered set of inline CSS declarations.
type Style struct {
	decls []decl
}

// ParseStyle reads the value of a style attribute. Declarations the CSS
// parser rejects are dropped.
func ParseStyle(s string) Style {
	var st Style
	s = strings.TrimSpace(s)
	if s == "" {
		return st
	}
	// The parser drops a final declaration that is not terminated.
	if !strings.HasSuffix(s, ";") {
		s += ";"
	}
	parsed, err := parser.ParseDeclarations(s)
	if err != nil {
		return splitStyle(s)
	}
	for _, d := range parsed {
		v := d.Value
		if d.Important {
			v += " !important"
		}
		st.Set(d.Property, v)
	}
	return st
}

// splitStyle is a lenient fallback for values the CSS parser refuses.
func splitStyle(s string) Style {
	var st Style
	for _, part := range strings.Split(s, ";") {
		prop, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		st.Set(prop, value)
	}
	return st
}

// Get returns the value of prop.
func (s Style) Get(prop string) (string, bool) {
	prop = normProp(prop)
	for _, d := range s.decls {
		if d.prop == prop {
			return d.value, true
		}
	}
	return "", false
}

// Set assigns prop, keeping its original position when already present.
func (s *Style) Set(prop, value string) {
	prop = normProp(prop)
	value = strings.TrimSpace(value)
	if prop == "" || value == "" {
		return
	}
	for i := range s.decls {
		if s.decls[i].prop == prop {
			s.decls[i].value = value
			return
		}
	}
	s.decls = append(s.decls, decl{prop: prop, value: value})
}

// Delete removes prop.
func (s *Style) Delete(prop string) {
	prop = normProp(prop)
	out := s.decls[:0]
	for _, d := range s.decls {
		if d.prop != prop {
			out = append(out, d)
		}
	}
	s.decls = out
}

// Len returns the number of declarations.
func (s Style) Len() int { return len(s.decls) }

// String renders the declarations as "a:b;c:d".
func (s Style) String() string {
	parts := make([]string, 0, len(s.decls))
	for _, d := range s.decls {
		parts = append(parts, d.prop+":"+d.value)
	}
	return strings.Join(parts, ";")
}

func normProp(p string) string {
	return strings.ToLower(strings.TrimSpace(p))
}

// Declarations converts a formatting patch to CSS declarations in a stable
// order. Zero fields produce nothing.
func Declarations(f models.FormattingStyles) Style {
	var st Style
	if f.Color != "" {
		st.Set("color", f.Color)
	}
	if f.FontSize > 0 {
		st.Set("font-size", strconv.Itoa(f.FontSize)+"px")
	}
	if f.IsBold {
		st.Set("font-weight", "bold")
	}
	if f.IsItalic {
		st.Set("font-style", "italic")
	}
	if f.TextAlign != "" {
		st.Set("text-align", f.TextAlign)
	}
	return st
}

// Formatting reads the declarations the engine understands back into a
// formatting record. text-align:justify is treated as default flow and is
// not reported.
func (s Style) Formatting() models.FormattingStyles {
	var f models.FormattingStyles
	if v, ok := s.Get("color"); ok {
		f.Color = v
	}
	if v, ok := s.Get("font-size"); ok {
		f.FontSize = leadingInt(v)
	}
	if v, ok := s.Get("font-weight"); ok {
		switch strings.ToLower(v) {
		case "bold", "bolder":
			f.IsBold = true
		default:
			f.IsBold = leadingInt(v) >= 700
		}
	}
	if v, ok := s.Get("font-style"); ok && strings.EqualFold(v, "italic") {
		f.IsItalic = true
	}
	if v, ok := s.Get("text-align"); ok && !strings.EqualFold(v, "justify") {
		f.TextAlign = v
	}
	return f
}

// leadingInt parses the integer prefix of v ("16px" -> 16). Anything that
// does not start with a digit yields 0.
func leadingInt(v string) int {
	v = strings.TrimSpace(v)
	end := 0
	for end < len(v) && v[end] >= '0' && v[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(v[:end])
	if err != nil {
		return 0
	}
	return n
}

// SetBlockStyle merges patch into the style attribute of the first element
// of markup and returns the re-rendered markup. Markup without an element
// is returned unchanged.
func SetBlockStyle(markup string, patch Style) string {
	root := Fragment(markup)
	el := root.Children().First()
	if el.Length() == 0 {
		return markup
	}
	mergeStyle(el, patch)
	return Render(root)
}

func mergeStyle(el *goquery.Selection, patch Style) {
	current, _ := el.Attr("style")
	st := ParseStyle(current)
	for _, d := range patch.decls {
		st.Set(d.prop, d.value)
	}
	el.SetAttr("style", st.String())
}
