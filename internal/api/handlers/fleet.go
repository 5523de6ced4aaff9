package handlers

import (
	"context"
	"net/http"

	"github.com/dom/vehicle-reservation/internal/domain"
	"github.com/dom/vehicle-reservation/internal/service"
	"github.com/go-chi/chi/v5"
)

type FleetHandler struct {
	operators   resource[domain.Operator, *domain.Operator]
	seatLayouts resource[domain.SeatLayout, *domain.SeatLayout]
	vehicles    resource[domain.Vehicle, *domain.Vehicle]
}

func NewFleetHandler(fleet *service.FleetService) *FleetHandler {
	return &FleetHandler{
		operators: resource[domain.Operator, *domain.Operator]{
			name:   "operators",
			create: fleet.CreateOperator,
			get:    fleet.GetOperator,
			list: func(ctx context.Context, _ *http.Request) ([]*domain.Operator, error) {
				return fleet.ListOperators(ctx)
			},
			update: fleet.UpdateOperator,
			remove: fleet.DeleteOperator,
		},
		seatLayouts: resource[domain.SeatLayout, *domain.SeatLayout]{
			name:   "seatLayouts",
			create: fleet.CreateSeatLayout,
			get:    fleet.GetSeatLayout,
			list: func(ctx context.Context, _ *http.Request) ([]*domain.SeatLayout, error) {
				return fleet.ListSeatLayouts(ctx)
			},
			update: fleet.UpdateSeatLayout,
			remove: fleet.DeleteSeatLayout,
		},
		vehicles: resource[domain.Vehicle, *domain.Vehicle]{
			name:   "vehicles",
			create: fleet.CreateVehicle,
			get:    fleet.GetVehicle,
			list: func(ctx context.Context, _ *http.Request) ([]*domain.Vehicle, error) {
				return fleet.ListVehicles(ctx)
			},
			update: fleet.UpdateVehicle,
			remove: fleet.DeleteVehicle,
		},
	}
}

func (h *FleetHandler) OperatorRoutes(r chi.Router)   { h.operators.Routes(r) }
func (h *FleetHandler) SeatLayoutRoutes(r chi.Router) { h.seatLayouts.Routes(r) }
func (h *FleetHandler) VehicleRoutes(r chi.Router)    { h.vehicles.Routes(r) }
