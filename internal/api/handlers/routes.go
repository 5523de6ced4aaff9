package handlers

import (
	"net/http"

	"github.com/dom/vehicle-reservation/internal/domain"
	"github.com/dom/vehicle-reservation/internal/service"
)

type RouteHandler struct {
	routes *service.RouteService
}

func NewRouteHandler(routes *service.RouteService) *RouteHandler {
	return &RouteHandler{routes: routes}
}

type CreateRoutePairRequest struct {
	DepartureID int64 `json:"departureId"`
	ArrivalID   int64 `json:"arrivalId"`
}

// CreatePair creates both directions between the two destinations and
// returns them outbound first.
func (h *RouteHandler) CreatePair(w http.ResponseWriter, r *http.Request) {
	var req CreateRoutePairRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, "routes.CreatePair", err)
		return
	}
	pair, err := h.routes.CreateRoutePair(r.Context(), req.DepartureID, req.ArrivalID)
	if err != nil {
		writeError(w, r, "routes.CreatePair", err)
		return
	}
	writeJSON(w, http.StatusCreated, pair)
}

func (h *RouteHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.routes.ListRoutes(r.Context())
	if err != nil {
		writeError(w, r, "routes.List", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *RouteHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, "routes.Get", err)
		return
	}
	route, err := h.routes.GetRoute(r.Context(), id)
	if err != nil {
		writeError(w, r, "routes.Get", err)
		return
	}
	writeJSON(w, http.StatusOK, route)
}

func (h *RouteHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, "routes.Update", err)
		return
	}
	var incoming domain.Route
	if err := decodeJSON(r, &incoming); err != nil {
		writeError(w, r, "routes.Update", err)
		return
	}
	route, err := h.routes.UpdateRoute(r.Context(), id, incoming)
	if err != nil {
		writeError(w, r, "routes.Update", err)
		return
	}
	writeJSON(w, http.StatusOK, route)
}

// Delete removes the route and its reverse.
func (h *RouteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, "routes.Delete", err)
		return
	}
	if err := h.routes.DeleteRoute(r.Context(), id); err != nil {
		writeError(w, r, "routes.Delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
