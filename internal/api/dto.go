package api

import (
	"github.com/starford/cardsmith/internal/cardservice"
	"github.com/starford/cardsmith/internal/index"
	"github.com/starford/cardsmith/internal/models"
	"github.com/starford/cardsmith/internal/richtext"
	"github.com/starford/cardsmith/internal/workspace"
)

// CardListItem is a lightweight item in a list response (aliased from the domain layer).
type CardListItem = cardservice.CardListItem

// CardListResponse wraps paginated card listings.
type CardListResponse struct {
	Cards []CardListItem `json:"cards" validate:"required"`
	Total int            `json:"total" example:"42" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results" validate:"required"`
}

// DocumentState is the editing state of one document field.
type DocumentState = workspace.State

// SearchRequest runs a query against a document field.
type SearchRequest struct {
	Query string `json:"query" example:"Zhang"`
	Mode  string `json:"mode" example:"literal" enums:"literal,regex"`
}

// RangeRequest builds a range query from two anchors.
type RangeRequest struct {
	Start string `json:"start" validate:"required"`
	End   string `json:"end" validate:"required"`
}

// ToggleRequest flips one unit of the selection.
type ToggleRequest struct {
	Unit int `json:"unit"`
}

// AlignRequest aligns the selected units.
type AlignRequest struct {
	Alignment string `json:"alignment" example:"center" enums:"left,center,right,justify"`
}

// HighlightRequest marks a rune range of one unit.
type HighlightRequest struct {
	Unit  int `json:"unit"`
	Start int `json:"start"`
	End   int `json:"end"`
}

// SlotRequest fills one cell of the pending three-column row.
type SlotRequest struct {
	Slot          string `json:"slot" enums:"left,center,right"`
	Text          string `json:"text"`
	FromHighlight bool   `json:"fromHighlight"`
}

// ComposeRequest inserts the pending row in place of a unit.
type ComposeRequest struct {
	Target int `json:"target"`
}

// RulesRequest carries a rule list to replay.
type RulesRequest struct {
	Rules []models.TransformationRule `json:"rules"`
}

// RulesResponse wraps a rule list.
type RulesResponse struct {
	Rules []models.TransformationRule `json:"rules"`
}

// DraftRequest snapshots a card into a draft.
type DraftRequest struct {
	CardID string `json:"cardId" validate:"required"`
	Name   string `json:"name" validate:"required"`
}

// NamesResponse lists character names found in a card.
type NamesResponse struct {
	Names []string `json:"names"`
}

// ParseRequest is the input of the stateless document endpoints.
type ParseRequest struct {
	HTML string `json:"html"`
}

// ParseResponse lists the units of a document.
type ParseResponse struct {
	Units []richtext.Unit `json:"units"`
}

// FindRequest runs a query against a document.
type FindRequest struct {
	HTML  string `json:"html"`
	Query string `json:"query"`
	Mode  string `json:"mode"`
}

// FindResponse lists matching unit indices.
type FindResponse struct {
	Indices  []int `json:"indices"`
	Awaiting bool  `json:"awaiting"`
}

// TransformRequest applies one transformation to a document.
type TransformRequest struct {
	HTML       string                      `json:"html"`
	Op         string                      `json:"op" enums:"align,match-style,paragraph-style,row,rules"`
	Selection  []int                       `json:"selection"`
	Alignment  string                      `json:"alignment,omitempty"`
	Query      string                      `json:"query,omitempty"`
	Mode       string                      `json:"mode,omitempty"`
	Formatting models.FormattingStyles     `json:"formatting,omitempty"`
	Target     int                         `json:"target,omitempty"`
	Row        workspace.Row               `json:"row,omitempty"`
	Rules      []models.TransformationRule `json:"rules,omitempty"`
}

// TransformResponse carries the transformed document.
type TransformResponse struct {
	HTML string `json:"html"`
}
