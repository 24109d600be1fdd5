package api

import (
	"encoding/json"
	"net/http"
	"runtime"
)

// BuildInfo is the body of GET /version.
type BuildInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// VersionHandler reports the build metadata injected via ldflags. It is
// mounted without authentication.
func VersionHandler(version, gitCommit, buildDate string) http.Handler {
	info := BuildInfo{
		Version:   orDefault(version, "dev"),
		GitCommit: orDefault(gitCommit, "unknown"),
		BuildDate: orDefault(buildDate, "unknown"),
		GoVersion: runtime.Version(),
	}
	return methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_ = json.NewEncoder(w).Encode(info)
		}),
	})
}
