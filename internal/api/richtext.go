package api

import (
	"fmt"
	"net/http"

	"github.com/starford/cardsmith/internal/apperr"
	"github.com/starford/cardsmith/internal/match"
	"github.com/starford/cardsmith/internal/richtext"
	"github.com/starford/cardsmith/internal/rules"
	"github.com/starford/cardsmith/internal/transform"
)

// The /richtext endpoints run the engine on a document supplied by the
// client. Nothing is stored.

// ParseDocument handles POST /api/richtext/parse.
func (h *Handler) ParseDocument(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	units := richtext.Parse(req.HTML).Units
	if units == nil {
		units = []richtext.Unit{}
	}
	writeJSON(w, http.StatusOK, ParseResponse{Units: units})
}

// FindDocument handles POST /api/richtext/find.
func (h *Handler) FindDocument(w http.ResponseWriter, r *http.Request) {
	var req FindRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	q := match.Query{Text: req.Query, Mode: match.ParseMode(req.Mode)}
	res := match.Find(richtext.Parse(req.HTML).Units, q)
	writeJSON(w, http.StatusOK, FindResponse{Indices: res.Indices, Awaiting: res.Awaiting})
}

// TransformDocument handles POST /api/richtext/transform.
func (h *Handler) TransformDocument(w http.ResponseWriter, r *http.Request) {
	var req TransformRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	out, err := applyTransform(req)
	if err != nil {
		writeError(w, "transform", err)
		return
	}
	writeJSON(w, http.StatusOK, TransformResponse{HTML: out})
}

func applyTransform(req TransformRequest) (string, error) {
	switch req.Op {
	case "align":
		a, ok := transform.ParseAlignment(req.Alignment)
		if !ok {
			return "", fmt.Errorf("alignment %q: %w", req.Alignment, apperr.ErrInvalidInput)
		}
		return transform.ApplyAlignment(req.HTML, req.Selection, a), nil

	case "match-style":
		q := match.Query{Text: req.Query, Mode: match.ParseMode(req.Mode)}
		if _, ok := q.Compile(); !ok {
			return "", fmt.Errorf("query %q: %w", req.Query, apperr.ErrInvalidInput)
		}
		if req.Formatting.IsZero() {
			return "", fmt.Errorf("empty formatting: %w", apperr.ErrInvalidInput)
		}
		return transform.ApplyMatchStyle(req.HTML, req.Selection, q, req.Formatting), nil

	case "paragraph-style":
		if req.Formatting.IsZero() {
			return "", fmt.Errorf("empty formatting: %w", apperr.ErrInvalidInput)
		}
		return transform.ApplyParagraphStyle(req.HTML, req.Selection, req.Formatting), nil

	case "row":
		if n := richtext.Parse(req.HTML).Len(); req.Target < 0 || req.Target >= n {
			return "", fmt.Errorf("unit %d: %w", req.Target, apperr.ErrNotFound)
		}
		return transform.ApplyThreeColumnRow(req.HTML, req.Target, req.Row.Left, req.Row.Center, req.Row.Right), nil

	case "rules":
		if err := rules.ValidateAll(req.Rules); err != nil {
			return "", fmt.Errorf("%v: %w", err, apperr.ErrInvalidInput)
		}
		return rules.ApplyRules(req.HTML, req.Rules), nil
	}
	return "", fmt.Errorf("op %q: %w", req.Op, apperr.ErrInvalidInput)
}
