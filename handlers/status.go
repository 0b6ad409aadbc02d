package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/isaacrego/plex-poster-display/models"
	"github.com/isaacrego/plex-poster-display/utils"
)

// StatusResolver computes the display payload.
type StatusResolver interface {
	Resolve(ctx context.Context) models.Status
}

type StatusHandler struct {
	Resolver StatusResolver
}

func NewStatusHandler(r StatusResolver) *StatusHandler {
	return &StatusHandler{Resolver: r}
}

// temporaryErrorStatus is served if resolving panics. The display keeps
// polling, so a 200 keeps it on screen instead of an error page.
func temporaryErrorStatus() models.Status {
	st := models.NotConnectedStatus()
	st.Message = "Temporary cache error"
	return st
}

// GetCurrent always answers 200 with a well-formed payload.
func (h *StatusHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[status] request %s: resolve panicked: %v", utils.RequestID(r.Context()), rec)
			writeJSON(w, http.StatusOK, temporaryErrorStatus())
		}
	}()

	st := h.Resolver.Resolve(r.Context())
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, st)
}
