package handlers

import (
	"net/http"
	"runtime"
)

// VersionResponse reports build information.
type VersionResponse struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

// VersionHandler serves build metadata.
type VersionHandler struct {
	Version   string
	Commit    string
	BuildDate string
}

func (h *VersionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, VersionResponse{
		Version:   h.Version,
		Commit:    h.Commit,
		BuildDate: h.BuildDate,
		GoVersion: runtime.Version(),
	})
}
