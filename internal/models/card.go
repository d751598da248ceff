// Package models defines the domain types for cardsmith.
package models

import "time"

// Card modes.
const (
	ModeCover    = "cover"
	ModeLongText = "long-text"
)

// Document fields of a card that hold rich-text HTML.
const (
	FieldBody          = "body"
	FieldSecondaryBody = "secondary"
)

// CoverState is the complete editable state of one card.
type CoverState struct {
	Title             string `json:"title"`
	Subtitle          string `json:"subtitle"`
	BodyText          string `json:"bodyText"`
	SecondaryBodyText string `json:"secondaryBodyText"`
	Category          string `json:"category"`
	Author            string `json:"author"`
	BackgroundColor   string `json:"backgroundColor"`
	AccentColor       string `json:"accentColor"`
	TextColor         string `json:"textColor"`
	TitleFont         string `json:"titleFont"`
	BodyFont          string `json:"bodyFont"`
	LayoutStyle       string `json:"layoutStyle"`
	Mode              string `json:"mode"`
	BodyTextSize      string `json:"bodyTextSize"`
	BodyTextAlign     string `json:"bodyTextAlign"`
	IsBodyBold        bool   `json:"isBodyBold"`
	IsBodyItalic      bool   `json:"isBodyItalic"`
}

// NewCoverState returns a card state with the editor defaults.
func NewCoverState() CoverState {
	return CoverState{
		Category:        "文稿",
		BackgroundColor: "#f5f0e8",
		AccentColor:     "#c0392b",
		TextColor:       "#2c2c2c",
		TitleFont:       "serif",
		BodyFont:        "serif",
		LayoutStyle:     "minimal",
		Mode:            ModeCover,
		BodyTextSize:    "text-[13px]",
		BodyTextAlign:   "text-justify",
	}
}

// FillDefaults replaces empty presentation fields with defaults.
// Content fields are left alone.
func (s *CoverState) FillDefaults() {
	d := NewCoverState()
	if s.BackgroundColor == "" {
		s.BackgroundColor = d.BackgroundColor
	}
	if s.AccentColor == "" {
		s.AccentColor = d.AccentColor
	}
	if s.TextColor == "" {
		s.TextColor = d.TextColor
	}
	if s.TitleFont == "" {
		s.TitleFont = d.TitleFont
	}
	if s.BodyFont == "" {
		s.BodyFont = d.BodyFont
	}
	if s.LayoutStyle == "" {
		s.LayoutStyle = d.LayoutStyle
	}
	if s.Mode == "" {
		s.Mode = d.Mode
	}
	if s.BodyTextSize == "" {
		s.BodyTextSize = d.BodyTextSize
	}
	if s.BodyTextAlign == "" {
		s.BodyTextAlign = d.BodyTextAlign
	}
}

// Field returns the HTML of a document field and whether the name is known.
func (s *CoverState) Field(name string) (string, bool) {
	switch name {
	case FieldBody:
		return s.BodyText, true
	case FieldSecondaryBody:
		return s.SecondaryBodyText, true
	}
	return "", false
}

// SetField replaces a document field wholesale. Unknown names are ignored.
func (s *CoverState) SetField(name, html string) bool {
	switch name {
	case FieldBody:
		s.BodyText = html
	case FieldSecondaryBody:
		s.SecondaryBodyText = html
	default:
		return false
	}
	return true
}

// Card is a persisted card record.
type Card struct {
	ID        string     `json:"id"`
	State     CoverState `json:"state"`
	Checksum  string     `json:"checksum,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CardMetadata is a lightweight representation returned by list operations.
type CardMetadata struct {
	ID        string    `json:"id"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Draft is a named snapshot of a card's text content.
type Draft struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Title             string    `json:"title"`
	Subtitle          string    `json:"subtitle"`
	BodyText          string    `json:"bodyText"`
	SecondaryBodyText string    `json:"secondaryBodyText,omitempty"`
	Category          string    `json:"category"`
	Author            string    `json:"author"`
	CreatedAt         time.Time `json:"created_at"`
}

// DraftFromState snapshots the content fields of s.
func DraftFromState(id, name string, s CoverState) Draft {
	return Draft{
		ID:                id,
		Name:              name,
		Title:             s.Title,
		Subtitle:          s.Subtitle,
		BodyText:          s.BodyText,
		SecondaryBodyText: s.SecondaryBodyText,
		Category:          s.Category,
		Author:            s.Author,
		CreatedAt:         time.Now().UTC(),
	}
}

// ApplyTo loads the draft's content into s.
func (d Draft) ApplyTo(s *CoverState) {
	s.Title = d.Title
	s.Subtitle = d.Subtitle
	s.BodyText = d.BodyText
	s.SecondaryBodyText = d.SecondaryBodyText
	s.Category = d.Category
	s.Author = d.Author
}
