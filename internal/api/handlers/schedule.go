package handlers

import (
	"net/http"

	"github.com/eventdesk/server/internal/domain/events"
)

func (h *EventsHandler) SubEvents(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	subs, err := h.Service.SubEvents(r.Context(), id)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, mapViews(subs, newSubEventView))
}

func (h *EventsHandler) AddSubEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	var input events.SubEventInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	sub, err := h.Service.AddSubEvent(r.Context(), id, input)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusCreated, newSubEventView(*sub))
}

// subEventIDs reads the event and sub-event ids of a sub-event route.
func subEventIDs(r *http.Request) (int64, int64, error) {
	eventID, err := pathID(r, "id")
	if err != nil {
		return 0, 0, err
	}
	subID, err := pathID(r, "sub")
	if err != nil {
		return 0, 0, err
	}
	return eventID, subID, nil
}

func (h *EventsHandler) GetSubEvent(w http.ResponseWriter, r *http.Request) {
	eventID, subID, err := subEventIDs(r)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	sub, err := h.Service.SubEvent(r.Context(), eventID, subID)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, newSubEventView(*sub))
}

func (h *EventsHandler) PatchSubEvent(w http.ResponseWriter, r *http.Request) {
	eventID, subID, err := subEventIDs(r)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	var patch events.SubEventPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	sub, err := h.Service.PatchSubEvent(r.Context(), eventID, subID, patch)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, newSubEventView(*sub))
}

func (h *EventsHandler) DeleteSubEvent(w http.ResponseWriter, r *http.Request) {
	eventID, subID, err := subEventIDs(r)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	removed, err := h.Service.DeleteSubEvent(r.Context(), eventID, subID)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	if !removed {
		writeError(w, r, events.ErrNoSuchSubEvent, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, message{Message: "Sub-event deleted."})
}

func (h *EventsHandler) Prices(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	prices, err := h.Service.Prices(r.Context(), id)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, mapViews(prices, newPriceView))
}

func (h *EventsHandler) AddPrice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	var input events.PriceInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	price, err := h.Service.AddPrice(r.Context(), id, input)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusCreated, newPriceView(*price))
}

func (h *EventsHandler) GetPrice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	price, err := h.Service.Price(r.Context(), id)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, newPriceView(*price))
}

func (h *EventsHandler) PatchPrice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	var patch events.PricePatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	price, err := h.Service.PatchPrice(r.Context(), id, patch)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, newPriceView(*price))
}

func (h *EventsHandler) DeletePrice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	removed, err := h.Service.DeletePrice(r.Context(), id)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	if !removed {
		writeError(w, r, events.ErrNoSuchPrice, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, message{Message: "Price deleted."})
}
