package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/isaacrego/plex-poster-display/config"
	"github.com/isaacrego/plex-poster-display/services/mediasource"
	"github.com/isaacrego/plex-poster-display/services/plex"
	"github.com/isaacrego/plex-poster-display/utils"
)

// ArtworkHandler proxies images hosted by the configured server. Callers pass
// only the image path; the token is attached server side. Status payloads
// still carry the server's own image URLs.
type ArtworkHandler struct {
	Manager *config.Manager
	Sources mediasource.Factory
}

func NewArtworkHandler(m *config.Manager, sources mediasource.Factory) *ArtworkHandler {
	return &ArtworkHandler{Manager: m, Sources: sources}
}

func (h *ArtworkHandler) Get(w http.ResponseWriter, r *http.Request) {
	ref := strings.TrimSpace(r.URL.Query().Get("path"))
	if ref == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}

	s := h.Manager.Load()
	if !s.IsConfigured() {
		writeError(w, http.StatusConflict, "media server not configured")
		return
	}

	data, err := h.Sources(s.Connection).FetchImage(r.Context(), ref)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, plex.ErrForeignImage) {
			status = http.StatusBadRequest
		}
		log.Printf("[artwork] request %s: fetch %s: %v", utils.RequestID(r.Context()), ref, err)
		writeError(w, status, err.Error())
		return
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		writeError(w, http.StatusBadGateway, "upstream returned "+mt.String())
		return
	}

	w.Header().Set("Content-Type", mt.String())
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
