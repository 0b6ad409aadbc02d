package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/isaacrego/plex-poster-display/config"
	"github.com/isaacrego/plex-poster-display/services/mediasource"
	"github.com/isaacrego/plex-poster-display/utils"
)

// RefreshTrigger starts a background refresh and returns its cycle id.
type RefreshTrigger interface {
	Trigger() string
}

type SettingsHandler struct {
	Manager   *config.Manager
	Refresher RefreshTrigger
	Sources   mediasource.Factory
}

func NewSettingsHandler(m *config.Manager, refresher RefreshTrigger, sources mediasource.Factory) *SettingsHandler {
	return &SettingsHandler{Manager: m, Refresher: refresher, Sources: sources}
}

// ConnectionTestRequest carries the server details to probe. Blank fields
// fall back to the saved connection.
type ConnectionTestRequest struct {
	PlexIP    string `json:"plex_ip"`
	PlexToken string `json:"plex_token"`
}

type ConnectionTestResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Manager.Load())
}

// PutSettings replaces the whole document. Omitted fields take their defaults.
func (h *SettingsHandler) PutSettings(w http.ResponseWriter, r *http.Request) {
	s := config.Default()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.Connection.PlexIP = strings.TrimSpace(s.Connection.PlexIP)
	s.Connection.PlexToken = strings.TrimSpace(s.Connection.PlexToken)

	h.saveAndRefresh(w, r, s)
}

// PatchSettings applies a partial, loosely typed update.
func (h *SettingsHandler) PatchSettings(w http.ResponseWriter, r *http.Request) {
	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s, err := config.ApplyPatch(h.Manager.Load(), patch)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, config.ErrUnknownField) || errors.Is(err, config.ErrInvalidGroup) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}

	h.saveAndRefresh(w, r, s)
}

func (h *SettingsHandler) saveAndRefresh(w http.ResponseWriter, r *http.Request, s config.Settings) {
	reqID := utils.RequestID(r.Context())
	if err := h.Manager.Save(s); err != nil {
		log.Printf("[settings] request %s: save failed: %v", reqID, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if h.Refresher != nil {
		id := h.Refresher.Trigger()
		w.Header().Set("X-Refresh-ID", id)
		log.Printf("[settings] request %s: saved, refresh %s started", reqID, id)
	}
	writeJSON(w, http.StatusOK, s)
}

// ResetSettings restores defaults but keeps the server connection.
func (h *SettingsHandler) ResetSettings(w http.ResponseWriter, r *http.Request) {
	if err := h.Manager.ResetExceptConnection(); err != nil {
		log.Printf("[settings] request %s: reset failed: %v", utils.RequestID(r.Context()), err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.Manager.Load())
}

// TestConnection probes a server without saving anything.
func (h *SettingsHandler) TestConnection(w http.ResponseWriter, r *http.Request) {
	var req ConnectionTestRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	conn := h.Manager.Load().Connection
	if ip := strings.TrimSpace(req.PlexIP); ip != "" {
		conn.PlexIP = ip
	}
	if token := strings.TrimSpace(req.PlexToken); token != "" {
		conn.PlexToken = token
	}

	ok, msg := h.Sources(conn).TestConnection(r.Context())
	writeJSON(w, http.StatusOK, ConnectionTestResponse{OK: ok, Message: msg})
}
