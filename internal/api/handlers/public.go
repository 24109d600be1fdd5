package handlers

import (
	"net/http"
	"time"

	"github.com/eventdesk/server/internal/api/middleware"
	"github.com/eventdesk/server/internal/domain/customers"
	"github.com/eventdesk/server/internal/domain/events"
)

// PublicHandler serves the customer-facing endpoints. Routes are mounted
// behind middleware.PublicAccess, which puts the customer on the context.
type PublicHandler struct {
	Service *events.Service
	Env     string
	Now     func() time.Time
}

func NewPublicHandler(service *events.Service, env string) *PublicHandler {
	return &PublicHandler{Service: service, Env: env, Now: time.Now}
}

func (h *PublicHandler) customer(w http.ResponseWriter, r *http.Request) (customers.Customer, bool) {
	customer, ok := middleware.CustomerFromContext(r.Context())
	if !ok {
		writeError(w, r, customers.ErrMissingAccessToken, h.Env)
	}
	return customer, ok
}

func (h *PublicHandler) List(w http.ResponseWriter, r *http.Request) {
	customer, ok := h.customer(w, r)
	if !ok {
		return
	}
	list, err := h.Service.VisibleEvents(r.Context(), customer.ID, h.Now())
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, mapViews(list, newPublicEventView))
}

func (h *PublicHandler) Get(w http.ResponseWriter, r *http.Request) {
	customer, ok := h.customer(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	details, err := h.Service.VisibleEvent(r.Context(), customer.ID, id, h.Now())
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, newPublicEventView(*details))
}

func (h *PublicHandler) Image(w http.ResponseWriter, r *http.Request) {
	customer, ok := h.customer(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	image, data, err := h.Service.VisibleImage(r.Context(), customer.ID, id, h.Now())
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeBinary(w, image.MimeType, data)
}
