package api

import (
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/starford/cardsmith/internal/export"
)

// ExportImage handles GET /api/cards/{id}/export.
//
// The names query parameter (comma separated) fills the filename suffix.
// Without it the first name found by the text analysis is used.
//
//	@Summary		Render a card to PNG
//	@Tags			export
//	@Produce		png
//	@Param			id		path	string	true	"Card id"
//	@Param			names	query	string	false	"Character names for the filename"
//	@Success		200
//	@Failure		404	{object}	errResponse
//	@Failure		429	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/cards/{id}/export [get]
func (h *Handler) ExportImage(w http.ResponseWriter, r *http.Request) {
	id := cardID(r)
	card, err := h.svc.GetCard(r.Context(), id)
	if err != nil {
		writeError(w, "export", err, slog.String("id", id))
		return
	}

	var names []string
	if raw, ok := r.URL.Query()["names"]; ok {
		for _, n := range strings.Split(strings.Join(raw, ","), ",") {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
	} else if found := h.names.Names(r.Context(), card.State); len(found) > 0 {
		names = found[:1]
	}

	filename, data, err := h.exporter.Image(r.Context(), *card, names)
	if err != nil {
		writeError(w, "export", err, slog.String("id", id))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// ExportMarkdown handles GET /api/cards/{id}/markdown.
func (h *Handler) ExportMarkdown(w http.ResponseWriter, r *http.Request) {
	id := cardID(r)
	card, err := h.svc.GetCard(r.Context(), id)
	if err != nil {
		writeError(w, "export markdown", err, slog.String("id", id))
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(export.Markdown(card.State)))
}

// Names handles GET /api/cards/{id}/names.
func (h *Handler) Names(w http.ResponseWriter, r *http.Request) {
	id := cardID(r)
	card, err := h.svc.GetCard(r.Context(), id)
	if err != nil {
		writeError(w, "names", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, NamesResponse{Names: h.names.Names(r.Context(), card.State)})
}
