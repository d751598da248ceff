package models

import "time"

// Rule scopes.
const (
	ScopeMatch     = "match"
	ScopeParagraph = "paragraph"
)

// FormattingStyles is a sparse style patch. Zero fields are not applied.
type FormattingStyles struct {
	Color     string `json:"color,omitempty"`
	FontSize  int    `json:"fontSize,omitempty"`
	IsBold    bool   `json:"isBold,omitempty"`
	IsItalic  bool   `json:"isItalic,omitempty"`
	TextAlign string `json:"textAlign,omitempty"`
}

// IsZero reports whether the patch carries no formatting at all.
func (f FormattingStyles) IsZero() bool {
	return f == FormattingStyles{}
}

// TransformationRule is a replayable unit of batch formatting.
type TransformationRule struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Pattern    string           `json:"pattern"`
	IsRegex    bool             `json:"isRegex,omitempty"`
	Formatting FormattingStyles `json:"formatting"`
	Scope      string           `json:"scope"`
	IsActive   bool             `json:"isActive"`
}

// CoverPatch is a partial CoverState. Nil fields are not part of the snapshot.
type CoverPatch struct {
	Title             *string `json:"title,omitempty"`
	Subtitle          *string `json:"subtitle,omitempty"`
	BodyText          *string `json:"bodyText,omitempty"`
	SecondaryBodyText *string `json:"secondaryBodyText,omitempty"`
	Category          *string `json:"category,omitempty"`
	Author            *string `json:"author,omitempty"`
	BackgroundColor   *string `json:"backgroundColor,omitempty"`
	AccentColor       *string `json:"accentColor,omitempty"`
	TextColor         *string `json:"textColor,omitempty"`
	TitleFont         *string `json:"titleFont,omitempty"`
	BodyFont          *string `json:"bodyFont,omitempty"`
	LayoutStyle       *string `json:"layoutStyle,omitempty"`
	BodyTextSize      *string `json:"bodyTextSize,omitempty"`
	BodyTextAlign     *string `json:"bodyTextAlign,omitempty"`
}

// AdvancedPreset couples a style/content snapshot with formatting rules.
type AdvancedPreset struct {
	ID             string               `json:"id"`
	Name           string               `json:"name"`
	IncludeStyle   bool                 `json:"includeStyle"`
	IncludeContent bool                 `json:"includeContent"`
	CoverState     CoverPatch           `json:"coverState"`
	Rules          []TransformationRule `json:"rules"`
	CreatedAt      time.Time            `json:"created_at"`
}

// NewAdvancedPreset snapshots s. Only active rules are kept.
func NewAdvancedPreset(id, name string, s CoverState, includeStyle, includeContent bool, rules []TransformationRule) AdvancedPreset {
	p := AdvancedPreset{
		ID:             id,
		Name:           name,
		IncludeStyle:   includeStyle,
		IncludeContent: includeContent,
		Rules:          []TransformationRule{},
		CreatedAt:      time.Now().UTC(),
	}
	if includeStyle {
		p.CoverState.BackgroundColor = ptr(s.BackgroundColor)
		p.CoverState.AccentColor = ptr(s.AccentColor)
		p.CoverState.TextColor = ptr(s.TextColor)
		p.CoverState.TitleFont = ptr(s.TitleFont)
		p.CoverState.BodyFont = ptr(s.BodyFont)
		p.CoverState.LayoutStyle = ptr(s.LayoutStyle)
		p.CoverState.BodyTextSize = ptr(s.BodyTextSize)
		p.CoverState.BodyTextAlign = ptr(s.BodyTextAlign)
	}
	if includeContent {
		p.CoverState.Title = ptr(s.Title)
		p.CoverState.Subtitle = ptr(s.Subtitle)
		p.CoverState.BodyText = ptr(s.BodyText)
		p.CoverState.SecondaryBodyText = ptr(s.SecondaryBodyText)
		p.CoverState.Category = ptr(s.Category)
		p.CoverState.Author = ptr(s.Author)
	}
	for _, r := range rules {
		if r.IsActive {
			p.Rules = append(p.Rules, r)
		}
	}
	return p
}

// Apply merges the non-nil patch fields into s.
func (c CoverPatch) Apply(s *CoverState) {
	set(&s.Title, c.Title)
	set(&s.Subtitle, c.Subtitle)
	set(&s.BodyText, c.BodyText)
	set(&s.SecondaryBodyText, c.SecondaryBodyText)
	set(&s.Category, c.Category)
	set(&s.Author, c.Author)
	set(&s.BackgroundColor, c.BackgroundColor)
	set(&s.AccentColor, c.AccentColor)
	set(&s.TextColor, c.TextColor)
	set(&s.TitleFont, c.TitleFont)
	set(&s.BodyFont, c.BodyFont)
	set(&s.LayoutStyle, c.LayoutStyle)
	set(&s.BodyTextSize, c.BodyTextSize)
	set(&s.BodyTextAlign, c.BodyTextAlign)
}

func ptr(s string) *string { return &s }

func set(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
