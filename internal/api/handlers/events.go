package handlers

import (
	"errors"
	"net/http"

	"github.com/eventdesk/server/internal/api/middleware"
	"github.com/eventdesk/server/internal/api/problem"
	"github.com/eventdesk/server/internal/domain/events"
)

// EventsHandler serves the staff endpoints of the event aggregate.
type EventsHandler struct {
	Service        *events.Service
	Env            string
	MaxUploadBytes int64
}

func NewEventsHandler(service *events.Service, env string, maxUploadBytes int64) *EventsHandler {
	return &EventsHandler{Service: service, Env: env, MaxUploadBytes: maxUploadBytes}
}

type eventWriteResponse struct {
	Message          string   `json:"message"`
	ID               int64    `json:"id,omitempty"`
	InvalidTags      []string `json:"invalid_tags"`
	InvalidCustomers []int64  `json:"invalid_customers"`
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// staffAccount returns the authenticated account id. The route is always
// behind StaffAuth, so a miss is a wiring bug.
func (h *EventsHandler) staffAccount(w http.ResponseWriter, r *http.Request) (int64, bool) {
	staff, ok := middleware.StaffFromContext(r.Context())
	if !ok {
		problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Unauthorized", errors.New("no staff identity"), h.Env)
		return 0, false
	}
	return staff.AccountID, true
}

func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.ListDetails(r.Context())
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, mapViews(list, newEventView))
}

func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	details, err := h.Service.Details(r.Context(), id)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, newEventView(*details))
}

func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.staffAccount(w, r)
	if !ok {
		return
	}
	var input events.EventInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	result, err := h.Service.Create(r.Context(), accountID, input)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusCreated, eventWriteResponse{
		Message:          "Event created.",
		ID:               result.Event.ID,
		InvalidTags:      orEmpty(result.InvalidTags),
		InvalidCustomers: orEmpty(result.InvalidCustomers),
	})
}

func (h *EventsHandler) Patch(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.staffAccount(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	var patch events.EventPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	result, err := h.Service.Patch(r.Context(), id, accountID, patch)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, eventWriteResponse{
		Message:          "Event patched.",
		InvalidTags:      orEmpty(result.InvalidTags),
		InvalidCustomers: orEmpty(result.InvalidCustomers),
	})
}

func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, message{Message: "Event deleted."})
}

func (h *EventsHandler) Editors(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	editors, err := h.Service.Editors(r.Context(), id)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, mapViews(editors, newEditorView))
}
