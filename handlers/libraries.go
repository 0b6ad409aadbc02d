package handlers

import (
	"log"
	"net/http"

	"github.com/isaacrego/plex-poster-display/config"
	"github.com/isaacrego/plex-poster-display/models"
	"github.com/isaacrego/plex-poster-display/services/mediasource"
	"github.com/isaacrego/plex-poster-display/utils"
)

type LibrariesHandler struct {
	Manager *config.Manager
	Sources mediasource.Factory
}

func NewLibrariesHandler(m *config.Manager, sources mediasource.Factory) *LibrariesHandler {
	return &LibrariesHandler{Manager: m, Sources: sources}
}

type LibrariesResponse struct {
	Libraries []models.Library `json:"libraries"`
	Selected  string           `json:"selected"`
}

// List returns the movie and show libraries of the configured server.
func (h *LibrariesHandler) List(w http.ResponseWriter, r *http.Request) {
	s := h.Manager.Load()
	if !s.IsConfigured() {
		writeError(w, http.StatusConflict, "media server not configured")
		return
	}

	libs, err := h.Sources(s.Connection).Libraries(r.Context())
	if err != nil {
		log.Printf("[libraries] request %s: list failed: %v", utils.RequestID(r.Context()), err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	if libs == nil {
		libs = []models.Library{}
	}
	writeJSON(w, http.StatusOK, LibrariesResponse{Libraries: libs, Selected: s.Poster.Library})
}
