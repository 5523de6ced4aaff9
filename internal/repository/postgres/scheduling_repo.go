package postgres

import (
	"context"

	"github.com/dom/vehicle-reservation/internal/domain"
	"gorm.io/gorm"
)

type routeScheduleRepository struct {
	store[domain.RouteSchedule]
}

func NewRouteScheduleRepository(db *gorm.DB) *routeScheduleRepository {
	return &routeScheduleRepository{store[domain.RouteSchedule]{db: db}}
}

func (r *routeScheduleRepository) ListByRoute(ctx context.Context, routeID int64) ([]*domain.RouteSchedule, error) {
	return where[domain.RouteSchedule](ctx, r.db, "route_id = ?", routeID)
}

type vehicleScheduleRepository struct {
	store[domain.VehicleSchedule]
}

func NewVehicleScheduleRepository(db *gorm.DB) *vehicleScheduleRepository {
	return &vehicleScheduleRepository{store[domain.VehicleSchedule]{db: db}}
}

func (r *vehicleScheduleRepository) ListByVehicle(ctx context.Context, vehicleID int64) ([]*domain.VehicleSchedule, error) {
	return where[domain.VehicleSchedule](ctx, r.db, "vehicle_id = ?", vehicleID)
}
