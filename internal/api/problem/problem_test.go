package problem

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, res *httptest.ResponseRecorder) ProblemDetails {
	t.Helper()
	var body ProblemDetails
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	return body
}

func TestWrite_DevIncludesDetail(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://example.com/api/v1/events/7", nil)
	res := httptest.NewRecorder()

	Write(res, req, http.StatusNotFound, TypeNotFound, "Not found", errors.New("no such event"), "development")

	assert.Equal(t, "application/problem+json", res.Header().Get("Content-Type"))
	assert.Equal(t, http.StatusNotFound, res.Code)
	body := decode(t, res)
	assert.Equal(t, "no such event", body.Detail)
	assert.Equal(t, "/api/v1/events/7", body.Instance)
	assert.Equal(t, TypeNotFound, body.Type)
}

func TestWrite_ProdSanitizesDetail(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://example.com/api/v1/events", nil)
	res := httptest.NewRecorder()

	Write(res, req, http.StatusInternalServerError, TypeInternalError, "Internal error", errors.New("pq: connection refused"), "production")

	body := decode(t, res)
	assert.Equal(t, http.StatusText(http.StatusInternalServerError), body.Detail)
}

func TestWrite_FieldErrors(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "http://example.com/api/v1/events", nil)
	res := httptest.NewRecorder()

	Write(res, req, http.StatusUnprocessableEntity, TypeValidation, "Missing data", nil, "production",
		WithDetail("missing data: title"),
		WithErrors(map[string]any{"title": "required"}))

	body := decode(t, res)
	assert.Equal(t, "missing data: title", body.Detail)
	assert.Equal(t, map[string]any{"title": "required"}, body.Errors)
}
