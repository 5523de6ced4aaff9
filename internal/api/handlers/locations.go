package handlers

import (
	"net/http"

	"github.com/dom/vehicle-reservation/internal/domain"
	"github.com/dom/vehicle-reservation/internal/service"
)

type LocationHandler struct {
	locations *service.LocationService
}

func NewLocationHandler(locations *service.LocationService) *LocationHandler {
	return &LocationHandler{locations: locations}
}

func (h *LocationHandler) CreateDestination(w http.ResponseWriter, r *http.Request) {
	var d domain.Destination
	if err := decodeJSON(r, &d); err != nil {
		writeError(w, r, "destinations.Create", err)
		return
	}
	created, err := h.locations.CreateDestination(r.Context(), d)
	if err != nil {
		writeError(w, r, "destinations.Create", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *LocationHandler) ListDestinations(w http.ResponseWriter, r *http.Request) {
	list, err := h.locations.ListDestinations(r.Context())
	if err != nil {
		writeError(w, r, "destinations.List", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *LocationHandler) GetDestination(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, "destinations.Get", err)
		return
	}
	d, err := h.locations.GetDestination(r.Context(), id)
	if err != nil {
		writeError(w, r, "destinations.Get", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *LocationHandler) UpdateDestination(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, "destinations.Update", err)
		return
	}
	var incoming domain.Destination
	if err := decodeJSON(r, &incoming); err != nil {
		writeError(w, r, "destinations.Update", err)
		return
	}
	d, err := h.locations.UpdateDestination(r.Context(), id, incoming)
	if err != nil {
		writeError(w, r, "destinations.Update", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *LocationHandler) DeleteDestination(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, "destinations.Delete", err)
		return
	}
	if err := h.locations.DeleteDestination(r.Context(), id); err != nil {
		writeError(w, r, "destinations.Delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Reachable lists the destinations one route hop away from {id}.
func (h *LocationHandler) Reachable(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, "destinations.Reachable", err)
		return
	}
	list, err := h.locations.DestinationsReachableFrom(r.Context(), id)
	if err != nil {
		writeError(w, r, "destinations.Reachable", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *LocationHandler) CreateBookingOffice(w http.ResponseWriter, r *http.Request) {
	var b domain.BookingOffice
	if err := decodeJSON(r, &b); err != nil {
		writeError(w, r, "bookingOffices.Create", err)
		return
	}
	created, err := h.locations.CreateBookingOffice(r.Context(), b)
	if err != nil {
		writeError(w, r, "bookingOffices.Create", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ListBookingOffices accepts an optional destinationId filter.
func (h *LocationHandler) ListBookingOffices(w http.ResponseWriter, r *http.Request) {
	destinationID, err := queryID(r, "destinationId")
	if err != nil {
		writeError(w, r, "bookingOffices.List", err)
		return
	}
	list, err := h.locations.ListBookingOffices(r.Context(), destinationID)
	if err != nil {
		writeError(w, r, "bookingOffices.List", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *LocationHandler) GetBookingOffice(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, "bookingOffices.Get", err)
		return
	}
	b, err := h.locations.GetBookingOffice(r.Context(), id)
	if err != nil {
		writeError(w, r, "bookingOffices.Get", err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *LocationHandler) UpdateBookingOffice(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, "bookingOffices.Update", err)
		return
	}
	var incoming domain.BookingOffice
	if err := decodeJSON(r, &incoming); err != nil {
		writeError(w, r, "bookingOffices.Update", err)
		return
	}
	b, err := h.locations.UpdateBookingOffice(r.Context(), id, incoming)
	if err != nil {
		writeError(w, r, "bookingOffices.Update", err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *LocationHandler) DeleteBookingOffice(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, "bookingOffices.Delete", err)
		return
	}
	if err := h.locations.DeleteBookingOffice(r.Context(), id); err != nil {
		writeError(w, r, "bookingOffices.Delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
