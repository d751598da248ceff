package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/cardsmith/internal/cardservice"
)

// ListPresets handles GET /api/presets.
//
//	@Summary		List advanced presets in creation order
//	@Tags			presets
//	@Produce		json
//	@Success		200	{array}	models.AdvancedPreset
//	@Security		BearerAuth
//	@Router			/presets [get]
func (h *Handler) ListPresets(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListPresets(r.Context())
	if err != nil {
		writeError(w, "list presets", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// CreatePreset handles POST /api/presets.
func (h *Handler) CreatePreset(w http.ResponseWriter, r *http.Request) {
	var req cardservice.PresetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.svc.SavePreset(r.Context(), req)
	if err != nil {
		writeError(w, "save preset", err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// ImportPresets handles POST /api/presets/import. The payload is either the
// request body or the "file" field of a multipart form.
func (h *Handler) ImportPresets(w http.ResponseWriter, r *http.Request) {
	data, ok := readUpload(w, r, ".json")
	if !ok {
		return
	}
	list, err := h.svc.ImportPresets(r.Context(), data)
	if err != nil {
		writeError(w, "import presets", err)
		return
	}
	writeJSON(w, http.StatusCreated, list)
}

// GetPreset handles GET /api/presets/{id}.
func (h *Handler) GetPreset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := h.svc.GetPreset(r.Context(), id)
	if err != nil {
		writeError(w, "get preset", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// DeletePreset handles DELETE /api/presets/{id}.
func (h *Handler) DeletePreset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.DeletePreset(r.Context(), id); err != nil {
		writeError(w, "delete preset", err, slog.String("id", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ApplyPreset handles POST /api/presets/{id}/apply/{cardID}.
func (h *Handler) ApplyPreset(w http.ResponseWriter, r *http.Request) {
	id, target := chi.URLParam(r, "id"), chi.URLParam(r, "cardID")
	card, err := h.svc.ApplyPresetToCard(r.Context(), id, target)
	if err != nil {
		writeError(w, "apply preset", err, slog.String("id", id), slog.String("card", target))
		return
	}
	setETag(w, card)
	writeJSON(w, http.StatusOK, card)
}

// ListDrafts handles GET /api/drafts.
func (h *Handler) ListDrafts(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListDrafts(r.Context())
	if err != nil {
		writeError(w, "list drafts", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// CreateDraft handles POST /api/drafts.
func (h *Handler) CreateDraft(w http.ResponseWriter, r *http.Request) {
	var req DraftRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	d, err := h.svc.SaveDraft(r.Context(), req.CardID, req.Name)
	if err != nil {
		writeError(w, "save draft", err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

// GetDraft handles GET /api/drafts/{id}.
func (h *Handler) GetDraft(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	d, err := h.svc.GetDraft(r.Context(), id)
	if err != nil {
		writeError(w, "get draft", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// DeleteDraft handles DELETE /api/drafts/{id}.
func (h *Handler) DeleteDraft(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteDraft(r.Context(), id); err != nil {
		writeError(w, "delete draft", err, slog.String("id", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LoadDraft handles POST /api/drafts/{id}/load/{cardID}.
func (h *Handler) LoadDraft(w http.ResponseWriter, r *http.Request) {
	id, target := chi.URLParam(r, "id"), chi.URLParam(r, "cardID")
	card, err := h.svc.LoadDraft(r.Context(), id, target)
	if err != nil {
		writeError(w, "load draft", err, slog.String("id", id), slog.String("card", target))
		return
	}
	setETag(w, card)
	writeJSON(w, http.StatusOK, card)
}
