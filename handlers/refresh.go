package handlers

import (
	"net/http"

	"github.com/isaacrego/plex-poster-display/services/scheduler"
)

// Refresher runs refresh cycles on demand and reports the last outcome.
type Refresher interface {
	Trigger() string
	LastResult() (scheduler.CycleResult, bool)
}

type RefreshHandler struct {
	Scheduler Refresher
}

func NewRefreshHandler(s Refresher) *RefreshHandler {
	return &RefreshHandler{Scheduler: s}
}

// Trigger starts a manual refresh and returns immediately.
func (h *RefreshHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	id := h.Scheduler.Trigger()
	writeJSON(w, http.StatusAccepted, map[string]string{"id": id})
}

// Last reports the most recent refresh cycle.
func (h *RefreshHandler) Last(w http.ResponseWriter, r *http.Request) {
	result, ok := h.Scheduler.LastResult()
	if !ok {
		writeError(w, http.StatusNotFound, "no refresh has run yet")
		return
	}
	writeJSON(w, http.StatusOK, result)
}
