package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionHandler(t *testing.T) {
	tests := []struct {
		name                    string
		version, commit, date   string
		wantVersion, wantCommit string
		wantDate                string
	}{
		{"with all values", "0.1.0", "abc123", "2026-01-28T12:00:00Z", "0.1.0", "abc123", "2026-01-28T12:00:00Z"},
		{"defaults", "", "", "", "dev", "unknown", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			VersionHandler(tt.version, tt.commit, tt.date).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/version", nil))

			require.Equal(t, http.StatusOK, rec.Code)
			var info BuildInfo
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
			assert.Equal(t, tt.wantVersion, info.Version)
			assert.Equal(t, tt.wantCommit, info.GitCommit)
			assert.Equal(t, tt.wantDate, info.BuildDate)
			assert.Equal(t, runtime.Version(), info.GoVersion)
		})
	}
}

func TestVersionHandler_RejectsPost(t *testing.T) {
	rec := httptest.NewRecorder()
	VersionHandler("1", "c", "d").ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/version", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "GET", rec.Header().Get("Allow"))
}
