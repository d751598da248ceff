package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(h *Handler, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Cards CRUD.
	r.Get("/cards", h.ListCards)
	r.Post("/cards", h.CreateCard)
	r.Post("/cards/import", h.ImportCard)
	r.Get("/cards/{id}", h.GetCard)
	r.Put("/cards/{id}", h.UpdateCard)
	r.Delete("/cards/{id}", h.DeleteCard)

	// Export and analysis.
	r.Get("/cards/{id}/export", h.ExportImage)
	r.Get("/cards/{id}/markdown", h.ExportMarkdown)
	r.Get("/cards/{id}/names", h.Names)

	// Document fields.
	const doc = "/cards/{id}/{field}"
	r.Get(doc+"/units", h.Units)
	r.Post(doc+"/search", h.FindUnits)
	r.Post(doc+"/search/range", h.FindRange)
	r.Post(doc+"/selection/toggle", h.Toggle)
	r.Post(doc+"/selection/all", h.SelectAll)
	r.Post(doc+"/selection/none", h.SelectNone)
	r.Post(doc+"/align", h.Align)
	r.Post(doc+"/match-style", h.MatchStyle)
	r.Post(doc+"/highlight", h.Highlight)
	r.Delete(doc+"/highlight", h.ClearHighlight)
	r.Post(doc+"/highlight/style", h.StyleHighlight)
	r.Put(doc+"/row", h.SetSlot)
	r.Post(doc+"/row", h.ComposeRow)
	r.Delete(doc+"/row", h.ResetRow)
	r.Get(doc+"/rules/scan", h.ScanRules)
	r.Post(doc+"/rules/apply", h.ApplyRules)

	// Search.
	r.Get("/search", h.Search)

	// Presets and drafts.
	r.Get("/presets", h.ListPresets)
	r.Post("/presets", h.CreatePreset)
	r.Post("/presets/import", h.ImportPresets)
	r.Get("/presets/{id}", h.GetPreset)
	r.Delete("/presets/{id}", h.DeletePreset)
	r.Post("/presets/{id}/apply/{cardID}", h.ApplyPreset)

	r.Get("/drafts", h.ListDrafts)
	r.Post("/drafts", h.CreateDraft)
	r.Get("/drafts/{id}", h.GetDraft)
	r.Delete("/drafts/{id}", h.DeleteDraft)
	r.Post("/drafts/{id}/load/{cardID}", h.LoadDraft)

	// Stateless engine.
	r.Post("/richtext/parse", h.ParseDocument)
	r.Post("/richtext/find", h.FindDocument)
	r.Post("/richtext/transform", h.TransformDocument)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
