package handler

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"shop-inventory/internal/media"
	"shop-inventory/internal/model"

	"github.com/rs/zerolog"
)

// MediaHandler serves stored uploads and generated codes back to clients.
type MediaHandler struct {
	store  media.Store
	logger zerolog.Logger
}

// NewMediaHandler creates a new media handler.
func NewMediaHandler(store media.Store, logger zerolog.Logger) *MediaHandler {
	return &MediaHandler{
		store:  store,
		logger: logger.With().Str("handler", "media").Logger(),
	}
}

// Serve returns a handler streaming files from folder. The request path,
// once cleaned, must still lie inside folder; anything else is 404.
func (h *MediaHandler) Serve(folder string) http.HandlerFunc {
	prefix := "/" + folder + "/"
	return func(w http.ResponseWriter, r *http.Request) {
		rel := path.Clean("/" + r.URL.Path)
		if !strings.HasPrefix(rel, prefix) {
			h.logger.Warn().Str("path", r.URL.Path).Str("folder", folder).Msg("media path outside folder")
			writeError(w, http.StatusNotFound, model.ErrCodeNotFound, "file not found", h.logger)
			return
		}
		h.stream(w, r, rel)
	}
}

func (h *MediaHandler) stream(w http.ResponseWriter, r *http.Request, rel string) {
	rc, err := h.store.Open(r.Context(), rel)
	if err != nil {
		if errors.Is(err, media.ErrNotFound) || errors.Is(err, media.ErrInvalidPath) {
			writeError(w, http.StatusNotFound, model.ErrCodeNotFound, "file not found", h.logger)
			return
		}
		h.logger.Error().Err(err).Str("path", rel).Msg("failed to open media file")
		writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "failed to read file", h.logger)
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(path.Ext(rel))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn().Err(err).Str("path", rel).Msg("media stream interrupted")
	}
}
