package handlers

import (
	"net/http"
	"time"

	"github.com/eventdesk/server/internal/domain/customers"
)

type CustomersHandler struct {
	Service *customers.Service
	Env     string
}

func NewCustomersHandler(service *customers.Service, env string) *CustomersHandler {
	return &CustomersHandler{Service: service, Env: env}
}

type accessTokenView struct {
	Customer int64     `json:"customer"`
	Token    string    `json:"token"`
	Created  time.Time `json:"created"`
}

// List returns the allow-listed customers, the only ones events can be
// shared with.
func (h *CustomersHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.ListAllowed(r.Context())
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, mapViews(list, newCustomerView))
}

func (h *CustomersHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	token, err := h.Service.IssueToken(r.Context(), id)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, accessTokenView{Customer: token.CustomerID, Token: token.Token, Created: token.Created})
}

func (h *CustomersHandler) RevokeToken(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	removed, err := h.Service.RevokeToken(r.Context(), id)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	if !removed {
		notFound(w, r, "No access token", nil, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, message{Message: "Access token revoked."})
}
