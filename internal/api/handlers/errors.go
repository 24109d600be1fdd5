package handlers

import (
	"errors"
	"net/http"

	"github.com/eventdesk/server/internal/api/problem"
	"github.com/eventdesk/server/internal/domain/customers"
	"github.com/eventdesk/server/internal/domain/directory"
	"github.com/eventdesk/server/internal/domain/events"
)

// writeError maps a domain or request error onto a problem response.
// Anything not recognised here is a server error.
func writeError(w http.ResponseWriter, r *http.Request, err error, env string) {
	var (
		maxBytes *http.MaxBytesError
		missing  events.MissingDataError
		invalid  events.InvalidDataError
		tag      events.InvalidTagError
		customer events.InvalidCustomerError
	)

	switch {
	case errors.As(err, &maxBytes):
		problem.Write(w, r, http.StatusRequestEntityTooLarge, problem.TypeTooLarge, "Request body too large", err, env)

	case errors.Is(err, errEmptyBody), errors.Is(err, errMalformedBody):
		problem.Write(w, r, http.StatusBadRequest, problem.TypeBadRequest, "Invalid request", err, env)

	case errors.Is(err, events.ErrNoSuchEvent):
		notFound(w, r, "No such event", err, env)
	case errors.Is(err, events.ErrNoSuchImage):
		notFound(w, r, "No such image", err, env)
	case errors.Is(err, events.ErrNoSuchTag):
		notFound(w, r, "No such tag", err, env)
	case errors.Is(err, events.ErrNoSuchSubEvent):
		notFound(w, r, "No such sub-event", err, env)
	case errors.Is(err, events.ErrNoSuchPrice):
		notFound(w, r, "No such price", err, env)
	case errors.Is(err, customers.ErrNoSuchCustomer):
		notFound(w, r, "No such customer", err, env)
	case errors.Is(err, directory.ErrNoSuchAccount):
		notFound(w, r, "No such account", err, env)

	case errors.As(err, &missing):
		unprocessable(w, r, "Missing data", err, env, map[string]any{missing.Field: "missing"})
	case errors.As(err, &invalid):
		unprocessable(w, r, "Invalid data", err, env, map[string]any{invalid.Field: "invalid"})
	case errors.As(err, &tag):
		unprocessable(w, r, "Invalid tag", err, env, map[string]any{"tag": tag.Tag})
	case errors.As(err, &customer):
		unprocessable(w, r, "Invalid customer", err, env, map[string]any{"customer": customer.CustomerID})
	case errors.Is(err, directory.ErrNoSuchAddress):
		unprocessable(w, r, "Invalid data", err, env, map[string]any{"address": "invalid"})
	case errors.Is(err, events.ErrNoImageProvided):
		unprocessable(w, r, "No image provided", err, env, map[string]any{"image": "missing"})
	case errors.Is(err, events.ErrNoMetaDataProvided):
		unprocessable(w, r, "No metadata provided", err, env, map[string]any{"metadata": "missing"})

	case errors.Is(err, customers.ErrMissingAccessToken):
		problem.Write(w, r, http.StatusUnprocessableEntity, problem.TypeAccessToken, "Missing access token", err, env)
	case errors.Is(err, customers.ErrInvalidAccessToken):
		problem.Write(w, r, http.StatusUnprocessableEntity, problem.TypeAccessToken, "Invalid access token", err, env)

	default:
		writeServerError(w, r, err, env)
	}
}

func notFound(w http.ResponseWriter, r *http.Request, title string, err error, env string) {
	problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, title, err, env)
}

func unprocessable(w http.ResponseWriter, r *http.Request, title string, err error, env string, fields map[string]any) {
	problem.Write(w, r, http.StatusUnprocessableEntity, problem.TypeValidation, title, err, env, problem.WithErrors(fields))
}
