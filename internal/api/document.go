package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/cardsmith/internal/match"
	"github.com/starford/cardsmith/internal/models"
	"github.com/starford/cardsmith/internal/workspace"
)

// documentRef returns the card id and field name of a document route.
func documentRef(r *http.Request) (string, string) {
	return chi.URLParam(r, "id"), chi.URLParam(r, "field")
}

func (h *Handler) respondState(w http.ResponseWriter, r *http.Request, op string, st workspace.State, err error) {
	if err != nil {
		id, field := documentRef(r)
		writeError(w, op, err, slog.String("id", id), slog.String("field", field))
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// Units handles GET /api/cards/{id}/{field}/units.
//
//	@Summary		Units, matches, selection and pending row of a document field
//	@Tags			documents
//	@Produce		json
//	@Param			id		path		string	true	"Card id"
//	@Param			field	path		string	true	"Document field"	Enums(body, secondary)
//	@Success		200		{object}	DocumentState
//	@Security		BearerAuth
//	@Router			/cards/{id}/{field}/units [get]
func (h *Handler) Units(w http.ResponseWriter, r *http.Request) {
	id, field := documentRef(r)
	st, err := h.svc.Units(r.Context(), id, field)
	h.respondState(w, r, "units", st, err)
}

// FindUnits handles POST /api/cards/{id}/{field}/search.
// Every match is selected.
func (h *Handler) FindUnits(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id, field := documentRef(r)
	q := match.Query{Text: req.Query, Mode: match.ParseMode(req.Mode)}
	st, err := h.svc.FindUnits(r.Context(), id, field, q)
	h.respondState(w, r, "find units", st, err)
}

// FindRange handles POST /api/cards/{id}/{field}/search/range.
func (h *Handler) FindRange(w http.ResponseWriter, r *http.Request) {
	var req RangeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Start == "" || req.End == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("start and end are required"))
		return
	}
	id, field := documentRef(r)
	st, err := h.svc.FindUnits(r.Context(), id, field, match.Range(req.Start, req.End))
	h.respondState(w, r, "find range", st, err)
}

// Toggle handles POST /api/cards/{id}/{field}/selection/toggle.
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	var req ToggleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id, field := documentRef(r)
	st, err := h.svc.Toggle(r.Context(), id, field, req.Unit)
	h.respondState(w, r, "toggle", st, err)
}

// SelectAll handles POST /api/cards/{id}/{field}/selection/all.
func (h *Handler) SelectAll(w http.ResponseWriter, r *http.Request) {
	id, field := documentRef(r)
	st, err := h.svc.SelectAll(r.Context(), id, field)
	h.respondState(w, r, "select all", st, err)
}

// SelectNone handles POST /api/cards/{id}/{field}/selection/none.
func (h *Handler) SelectNone(w http.ResponseWriter, r *http.Request) {
	id, field := documentRef(r)
	st, err := h.svc.SelectNone(r.Context(), id, field)
	h.respondState(w, r, "select none", st, err)
}

// Align handles POST /api/cards/{id}/{field}/align.
//
//	@Summary		Align the selected units
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			body	body		AlignRequest	true	"Alignment"
//	@Success		200		{object}	DocumentState
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/cards/{id}/{field}/align [post]
func (h *Handler) Align(w http.ResponseWriter, r *http.Request) {
	var req AlignRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id, field := documentRef(r)
	st, err := h.svc.Align(r.Context(), id, field, req.Alignment)
	h.respondState(w, r, "align", st, err)
}

// MatchStyle handles POST /api/cards/{id}/{field}/match-style.
//
//	@Summary		Style every occurrence of the query inside the selected units
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			body	body		models.FormattingStyles	true	"Formatting"
//	@Success		200		{object}	DocumentState
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/cards/{id}/{field}/match-style [post]
func (h *Handler) MatchStyle(w http.ResponseWriter, r *http.Request) {
	var f models.FormattingStyles
	if !decodeJSON(w, r, &f) {
		return
	}
	id, field := documentRef(r)
	st, err := h.svc.StyleMatches(r.Context(), id, field, f)
	h.respondState(w, r, "match style", st, err)
}

// Highlight handles POST /api/cards/{id}/{field}/highlight.
func (h *Handler) Highlight(w http.ResponseWriter, r *http.Request) {
	var req HighlightRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id, field := documentRef(r)
	st, err := h.svc.Highlight(r.Context(), id, field, req.Unit, req.Start, req.End)
	h.respondState(w, r, "highlight", st, err)
}

// ClearHighlight handles DELETE /api/cards/{id}/{field}/highlight.
func (h *Handler) ClearHighlight(w http.ResponseWriter, r *http.Request) {
	id, field := documentRef(r)
	st, err := h.svc.ClearHighlight(r.Context(), id, field)
	h.respondState(w, r, "clear highlight", st, err)
}

// StyleHighlight handles POST /api/cards/{id}/{field}/highlight/style.
func (h *Handler) StyleHighlight(w http.ResponseWriter, r *http.Request) {
	var f models.FormattingStyles
	if !decodeJSON(w, r, &f) {
		return
	}
	id, field := documentRef(r)
	st, err := h.svc.StyleHighlight(r.Context(), id, field, f)
	h.respondState(w, r, "style highlight", st, err)
}

// SetSlot handles PUT /api/cards/{id}/{field}/row.
func (h *Handler) SetSlot(w http.ResponseWriter, r *http.Request) {
	var req SlotRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id, field := documentRef(r)
	st, err := h.svc.SetSlot(r.Context(), id, field, req.Slot, req.Text, req.FromHighlight)
	h.respondState(w, r, "set slot", st, err)
}

// ComposeRow handles POST /api/cards/{id}/{field}/row.
func (h *Handler) ComposeRow(w http.ResponseWriter, r *http.Request) {
	var req ComposeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id, field := documentRef(r)
	st, err := h.svc.ComposeRow(r.Context(), id, field, req.Target)
	h.respondState(w, r, "compose row", st, err)
}

// ResetRow handles DELETE /api/cards/{id}/{field}/row.
func (h *Handler) ResetRow(w http.ResponseWriter, r *http.Request) {
	id, field := documentRef(r)
	st, err := h.svc.ResetRow(r.Context(), id, field)
	h.respondState(w, r, "reset row", st, err)
}

// ScanRules handles GET /api/cards/{id}/{field}/rules/scan.
func (h *Handler) ScanRules(w http.ResponseWriter, r *http.Request) {
	id, field := documentRef(r)
	list, err := h.svc.ScanRules(r.Context(), id, field)
	if err != nil {
		writeError(w, "scan rules", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, RulesResponse{Rules: list})
}

// ApplyRules handles POST /api/cards/{id}/{field}/rules/apply.
func (h *Handler) ApplyRules(w http.ResponseWriter, r *http.Request) {
	var req RulesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id, field := documentRef(r)
	st, err := h.svc.ApplyRules(r.Context(), id, field, req.Rules)
	h.respondState(w, r, "apply rules", st, err)
}
