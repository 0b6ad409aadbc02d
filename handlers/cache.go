package handlers

import (
	"net/http"

	"github.com/isaacrego/plex-poster-display/models"
)

type CacheSummarizer interface {
	Summary() models.CacheSummary
}

type CacheHandler struct {
	Cache CacheSummarizer
}

func NewCacheHandler(c CacheSummarizer) *CacheHandler {
	return &CacheHandler{Cache: c}
}

func (h *CacheHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Cache.Summary())
}
