package service

import (
	"context"

	"github.com/dom/vehicle-reservation/internal/domain"
	"github.com/dom/vehicle-reservation/internal/repository"
)

// ScheduleComposer flattens schedule references into display fields. A
// reference that does not resolve leaves its field empty.
type ScheduleComposer struct {
	repos *repository.Repositories
}

func NewScheduleComposer(repos *repository.Repositories) *ScheduleComposer {
	return &ScheduleComposer{repos: repos}
}

func (c *ScheduleComposer) RouteSchedule(ctx context.Context, rs *domain.RouteSchedule) *domain.RouteScheduleView {
	view := &domain.RouteScheduleView{RouteSchedule: *rs}
	view.OperatorName = c.operatorName(ctx, rs.OperatorID)
	view.DepartureCity, view.ArrivalCity = c.endpoints(ctx, rs.RouteID)
	return view
}

func (c *ScheduleComposer) VehicleSchedule(ctx context.Context, vs *domain.VehicleSchedule) *domain.VehicleScheduleView {
	view := &domain.VehicleScheduleView{VehicleSchedule: *vs}
	view.OperatorName = c.operatorName(ctx, vs.OperatorID)
	if v, err := c.repos.Vehicle.Get(ctx, vs.VehicleID); err == nil {
		view.VehicleType = v.VehicleType
	}
	if rs, err := c.repos.RouteSchedule.Get(ctx, vs.RouteScheduleID); err == nil {
		view.Day = rs.Day
		view.Time = rs.Time
		view.DepartureCity, view.ArrivalCity = c.endpoints(ctx, rs.RouteID)
	}
	return view
}

func (c *ScheduleComposer) operatorName(ctx context.Context, id int64) string {
	o, err := c.repos.Operator.Get(ctx, id)
	if err != nil {
		return ""
	}
	return o.Name
}

func (c *ScheduleComposer) endpoints(ctx context.Context, routeID int64) (departure, arrival string) {
	r, err := c.repos.Route.Get(ctx, routeID)
	if err != nil {
		return "", ""
	}
	return cityOf(ctx, c.repos.Destination, r.DepartureID), cityOf(ctx, c.repos.Destination, r.ArrivalID)
}
