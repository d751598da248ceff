package api

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"
)

const maxUploadBytes = 5 << 20 // 5 MB

// readUpload returns the uploaded payload. Multipart requests must carry it
// in the "file" field with one of the allowed extensions; any other request
// is read as a raw body. On failure a 400 response is written.
func readUpload(w http.ResponseWriter, r *http.Request, exts ...string) ([]byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("body too large or unreadable"))
			return nil, false
		}
		return data, true
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return nil, false
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return nil, false
	}
	defer file.Close()

	if !allowedExt(header.Filename, exts) {
		writeJSON(w, http.StatusBadRequest, errorBody("unsupported file type: "+header.Filename))
		return nil, false
	}
	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read file"))
		return nil, false
	}
	return data, true
}

func allowedExt(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// ImportCard handles POST /api/cards/import. The manuscript is Markdown with
// optional YAML frontmatter.
func (h *Handler) ImportCard(w http.ResponseWriter, r *http.Request) {
	data, ok := readUpload(w, r, ".md", ".markdown", ".txt")
	if !ok {
		return
	}
	card, err := h.svc.ImportMarkdown(r.Context(), data)
	if err != nil {
		writeError(w, "import card", err)
		return
	}
	setETag(w, card)
	writeJSON(w, http.StatusCreated, card)
}
