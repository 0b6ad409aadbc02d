package handlers

import (
	"net/http"
	"os"
	"strings"
	"sync"
)

// version can be set with -ldflags "-X <module>/handlers.version=1.2.3";
// otherwise it is read from version.txt.
var (
	version     string
	versionOnce sync.Once
)

type VersionHandler struct{}

type VersionResponse struct {
	Version string `json:"version"`
}

func NewVersionHandler() *VersionHandler {
	return &VersionHandler{}
}

// Version returns the build version, "unknown" when none is available.
func Version() string {
	versionOnce.Do(func() {
		if version != "" {
			return
		}
		for _, path := range []string{"version.txt", "/app/version.txt"} {
			if data, err := os.ReadFile(path); err == nil {
				if v := strings.TrimSpace(string(data)); v != "" {
					version = v
					return
				}
			}
		}
		version = "unknown"
	})
	return version
}

func (h *VersionHandler) GetVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, VersionResponse{Version: Version()})
}
