package handlers

import (
	"context"
	"net/http"

	"github.com/dom/vehicle-reservation/internal/domain"
	"github.com/dom/vehicle-reservation/internal/service"
	"github.com/go-chi/chi/v5"
)

// ScheduleHandler serves schedules as composed views. Writes accept the
// plain schedule shape.
type ScheduleHandler struct {
	routeSchedules   resource[domain.RouteSchedule, *domain.RouteScheduleView]
	vehicleSchedules resource[domain.VehicleSchedule, *domain.VehicleScheduleView]
}

func NewScheduleHandler(schedules *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{
		routeSchedules: resource[domain.RouteSchedule, *domain.RouteScheduleView]{
			name:   "routeSchedules",
			create: schedules.CreateRouteSchedule,
			get:    schedules.GetRouteSchedule,
			list: func(ctx context.Context, r *http.Request) ([]*domain.RouteScheduleView, error) {
				routeID, err := queryID(r, "routeId")
				if err != nil {
					return nil, err
				}
				return schedules.ListRouteSchedules(ctx, routeID)
			},
			update: schedules.UpdateRouteSchedule,
			remove: schedules.DeleteRouteSchedule,
		},
		vehicleSchedules: resource[domain.VehicleSchedule, *domain.VehicleScheduleView]{
			name:   "vehicleSchedules",
			create: schedules.CreateVehicleSchedule,
			get:    schedules.GetVehicleSchedule,
			list: func(ctx context.Context, r *http.Request) ([]*domain.VehicleScheduleView, error) {
				vehicleID, err := queryID(r, "vehicleId")
				if err != nil {
					return nil, err
				}
				return schedules.ListVehicleSchedules(ctx, vehicleID)
			},
			update: schedules.UpdateVehicleSchedule,
			remove: schedules.DeleteVehicleSchedule,
		},
	}
}

func (h *ScheduleHandler) RouteScheduleRoutes(r chi.Router)   { h.routeSchedules.Routes(r) }
func (h *ScheduleHandler) VehicleScheduleRoutes(r chi.Router) { h.vehicleSchedules.Routes(r) }
