package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/isaacrego/plex-poster-display/api"
)

// Handlers groups every HTTP handler the server exposes.
type Handlers struct {
	Status    *StatusHandler
	Settings  *SettingsHandler
	Libraries *LibrariesHandler
	Refresh   *RefreshHandler
	Cache     *CacheHandler
	Artwork   *ArtworkHandler
	Version   *VersionHandler
	Logs      *LogsHandler
}

// Register mounts the API under /api. Actions that reach out to the media
// server are rate limited per client IP.
func Register(r *mux.Router, h Handlers, limiter *api.IPRateLimiter) {
	apiRouter := r.PathPrefix("/api").Subrouter()

	apiRouter.HandleFunc("/current", h.Status.GetCurrent).Methods(http.MethodGet)

	apiRouter.HandleFunc("/config", h.Settings.GetSettings).Methods(http.MethodGet)
	apiRouter.HandleFunc("/config", h.Settings.PutSettings).Methods(http.MethodPut)
	apiRouter.HandleFunc("/config", h.Settings.PatchSettings).Methods(http.MethodPatch)
	apiRouter.HandleFunc("/config/reset", h.Settings.ResetSettings).Methods(http.MethodPost)
	apiRouter.Handle("/config/test", api.RateLimitHandlerFunc(limiter, h.Settings.TestConnection)).Methods(http.MethodPost)

	apiRouter.HandleFunc("/libraries", h.Libraries.List).Methods(http.MethodGet)

	apiRouter.Handle("/refresh", api.RateLimitHandlerFunc(limiter, h.Refresh.Trigger)).Methods(http.MethodPost)
	apiRouter.HandleFunc("/refresh", h.Refresh.Last).Methods(http.MethodGet)

	apiRouter.HandleFunc("/cache", h.Cache.GetSummary).Methods(http.MethodGet)
	apiRouter.HandleFunc("/artwork", h.Artwork.Get).Methods(http.MethodGet)
	apiRouter.HandleFunc("/version", h.Version.GetVersion).Methods(http.MethodGet)

	if h.Logs != nil {
		apiRouter.HandleFunc("/logs", h.Logs.Tail).Methods(http.MethodGet)
	}
}
