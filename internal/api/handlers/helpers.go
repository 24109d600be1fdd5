package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/eventdesk/server/internal/api/problem"
	"github.com/eventdesk/server/internal/domain/events"
)

// message is the body of write responses that carry no resource.
type message struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeBinary(w http.ResponseWriter, mimeType string, data []byte) {
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func pathParam(r *http.Request, key string) string {
	if r == nil {
		return ""
	}
	return r.PathValue(key)
}

// pathID parses a positive integer path value.
func pathID(r *http.Request, key string) (int64, error) {
	raw := strings.TrimSpace(pathParam(r, key))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, events.InvalidDataError{Field: key, Value: raw}
	}
	return id, nil
}

// decodeJSON reads a single JSON document from the body into dst.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	return nil
}

// textBody reads a short plain-text body, used by the relation endpoints
// that accept either a bare value or a JSON object.
func textBody(r *http.Request) (string, error) {
	if r.Body == nil {
		return "", errEmptyBody
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", errEmptyBody
	}
	return text, nil
}

var (
	errEmptyBody     = errors.New("request body is empty")
	errMalformedBody = errors.New("malformed request body")
)

func writeServerError(w http.ResponseWriter, r *http.Request, err error, env string) {
	problem.Write(w, r, http.StatusInternalServerError, problem.TypeInternalError, "Server error", err, env)
}
