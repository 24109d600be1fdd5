package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/eventdesk/server/internal/domain/events"
)

// relationValue reads the single value posted to a relation endpoint.
// The body is either the bare value, a JSON scalar, or a JSON object
// holding it under key.
func relationValue(r *http.Request, key string) (string, error) {
	text, err := textBody(r)
	if err != nil {
		return "", err
	}
	switch text[0] {
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal([]byte(text), &obj); err != nil {
			return "", errMalformedBody
		}
		raw, ok := obj[key]
		if !ok || string(raw) == "null" {
			return "", events.MissingDataError{Field: key}
		}
		return jsonScalar(raw)
	case '"':
		return jsonScalar(json.RawMessage(text))
	default:
		return text, nil
	}
}

func jsonScalar(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), nil
	}
	return "", errMalformedBody
}

func (h *EventsHandler) Tags(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	tags, err := h.Service.Tags(r.Context(), id)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, mapViews(tags, newTagView))
}

// AddTag attaches a vocabulary tag. Posting a tag the event already has
// returns the existing row.
func (h *EventsHandler) AddTag(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	value, err := relationValue(r, "tag")
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	tag, err := h.Service.AddTag(r.Context(), id, value, true)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusCreated, newTagView(*tag))
}

// DeleteTag removes a tag by row id when the segment is numeric and by
// text otherwise.
func (h *EventsHandler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	removed, err := h.Service.DeleteTag(r.Context(), id, events.ParseTagKey(pathParam(r, "tag")))
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	if !removed {
		writeError(w, r, events.ErrNoSuchTag, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, message{Message: "Tag deleted."})
}

func (h *EventsHandler) Customers(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	links, err := h.Service.Customers(r.Context(), id)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, mapViews(links, newEventCustomerView))
}

func (h *EventsHandler) AddCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	value, err := relationValue(r, "customer")
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	customerID, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		writeError(w, r, events.InvalidDataError{Field: "customer", Value: value}, h.Env)
		return
	}
	link, err := h.Service.AddCustomer(r.Context(), id, customerID)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusCreated, newEventCustomerView(*link))
}

func (h *EventsHandler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	customerID, err := pathID(r, "customer")
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	removed, err := h.Service.DeleteCustomer(r.Context(), id, customerID)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	if !removed {
		writeError(w, r, events.ErrNoSuchCustomer, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, message{Message: "Customer deleted."})
}

// Vocabulary lists the tags events may carry.
func (h *EventsHandler) Vocabulary(w http.ResponseWriter, r *http.Request) {
	tags, err := h.Service.Vocabulary(r.Context())
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(tags))
}
