package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/cardsmith/internal/analysis"
	"github.com/starford/cardsmith/internal/cardservice"
	"github.com/starford/cardsmith/internal/export"
	"github.com/starford/cardsmith/internal/models"
)

// Handler holds API route handlers.
type Handler struct {
	svc      *cardservice.Service
	exporter *export.Exporter
	names    analysis.NameExtractor
}

// NewHandler creates a new Handler. A nil exporter renders with the default
// canvas; a nil extractor finds no names.
func NewHandler(svc *cardservice.Service, exporter *export.Exporter, names analysis.NameExtractor) *Handler {
	if exporter == nil {
		exporter = export.NewExporter(nil, export.Settings{})
	}
	if names == nil {
		names = analysis.Noop{}
	}
	return &Handler{svc: svc, exporter: exporter, names: names}
}

func cardID(r *http.Request) string {
	return chi.URLParam(r, "id")
}

func setETag(w http.ResponseWriter, c *models.Card) {
	w.Header().Set("ETag", `"`+c.Checksum+`"`)
}

// ListCards handles GET /api/cards.
//
//	@Summary		List cards with optional pagination and filtering
//	@Tags			cards
//	@Produce		json
//	@Param			limit	query		int		false	"Page size"
//	@Param			offset	query		int		false	"Page offset"
//	@Param			mode	query		string	false	"Filter by mode"	Enums(cover, long-text)
//	@Param			sort	query		string	false	"Sort field"	Enums(updated_at, title)
//	@Success		200		{object}	CardListResponse
//	@Security		BearerAuth
//	@Router			/cards [get]
func (h *Handler) ListCards(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	items, total, err := h.svc.ListCards(r.Context(), limit, offset, q.Get("mode"), q.Get("sort"))
	if err != nil {
		writeError(w, "list cards", err)
		return
	}
	writeJSON(w, http.StatusOK, CardListResponse{Cards: items, Total: total})
}

// GetCard handles GET /api/cards/{id}.
//
//	@Summary		Get a single card
//	@Tags			cards
//	@Produce		json
//	@Param			id	path		string	true	"Card id"
//	@Success		200	{object}	models.Card
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/cards/{id} [get]
func (h *Handler) GetCard(w http.ResponseWriter, r *http.Request) {
	id := cardID(r)
	card, err := h.svc.GetCard(r.Context(), id)
	if err != nil {
		writeError(w, "get card", err, slog.String("id", id))
		return
	}
	setETag(w, card)
	writeJSON(w, http.StatusOK, card)
}

// CreateCard handles POST /api/cards. The body is a card state; omitted
// fields take the editor defaults.
//
//	@Summary		Create a new card
//	@Tags			cards
//	@Accept			json
//	@Produce		json
//	@Param			body	body		models.CoverState	true	"Card state"
//	@Success		201		{object}	models.Card
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/cards [post]
func (h *Handler) CreateCard(w http.ResponseWriter, r *http.Request) {
	state := models.NewCoverState()
	if !decodeJSON(w, r, &state) {
		return
	}
	card, err := h.svc.CreateCard(r.Context(), state)
	if err != nil {
		writeError(w, "create card", err)
		return
	}
	setETag(w, card)
	writeJSON(w, http.StatusCreated, card)
}

// UpdateCard handles PUT /api/cards/{id}.
//
//	@Summary		Replace a card's state with optimistic concurrency
//	@Tags			cards
//	@Accept			json
//	@Produce		json
//	@Param			id			path		string				true	"Card id"
//	@Param			If-Match	header		string				false	"SHA-256 checksum for optimistic concurrency"
//	@Param			body		body		models.CoverState	true	"Card state"
//	@Success		200			{object}	models.Card
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/cards/{id} [put]
func (h *Handler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	id := cardID(r)
	var state models.CoverState
	if !decodeJSON(w, r, &state) {
		return
	}

	// Strip surrounding quotes if present (standard ETag format).
	ifMatch := strings.Trim(r.Header.Get("If-Match"), `"`)

	card, err := h.svc.UpdateCard(r.Context(), id, state, ifMatch)
	if err != nil {
		writeError(w, "update card", err, slog.String("id", id))
		return
	}
	setETag(w, card)
	writeJSON(w, http.StatusOK, card)
}

// DeleteCard handles DELETE /api/cards/{id}.
//
//	@Summary		Delete a card
//	@Tags			cards
//	@Param			id	path	string	true	"Card id"
//	@Success		204	"Card deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/cards/{id} [delete]
func (h *Handler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	id := cardID(r)
	if err := h.svc.DeleteCard(r.Context(), id); err != nil {
		writeError(w, "delete card", err, slog.String("id", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across cards
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeError(w, "search", err, slog.String("query", q))
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}
