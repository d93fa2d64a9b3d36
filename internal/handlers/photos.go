// internal/handlers/photos.go
package handlers

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// PhotoHandler serves stored photo assets from the uploads root
type PhotoHandler struct {
	root   string
	logger *slog.Logger
}

// NewPhotoHandler creates a new photo handler rooted at the assets directory
func NewPhotoHandler(root string, logger *slog.Logger) *PhotoHandler {
	return &PhotoHandler{
		root:   root,
		logger: logger.With(slog.String("handler", "photos")),
	}
}

// ServePhoto handles GET /uploads/{path...}. Only paths that resolve inside
// the uploads root are served.
func (h *PhotoHandler) ServePhoto(w http.ResponseWriter, r *http.Request) {
	rel := r.PathValue("path")
	if rel == "" || strings.Contains(rel, "..") {
		respondError(h.logger, w, http.StatusBadRequest, "Invalid photo path")
		return
	}

	full := filepath.Join(h.root, filepath.Clean("/"+rel))
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		respondError(h.logger, w, http.StatusNotFound, "Photo not found")
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeFile(w, r, full)
}
