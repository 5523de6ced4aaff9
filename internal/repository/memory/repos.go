package memory

import (
	"context"

	"github.com/dom/vehicle-reservation/internal/domain"
)

type userCredentialRepository struct {
	*table[domain.UserCredential, *domain.UserCredential]
}

func (r *userCredentialRepository) GetByUsername(_ context.Context, username string) (*domain.UserCredential, error) {
	key := domain.NormalizeUsername(username)
	return r.first(func(c domain.UserCredential) bool {
		return domain.NormalizeUsername(c.Username) == key
	})
}

type userDetailRepository struct {
	*table[domain.UserDetail, *domain.UserDetail]
}

func (r *userDetailRepository) GetByUserID(_ context.Context, userID int64) (*domain.UserDetail, error) {
	return r.first(func(d domain.UserDetail) bool { return d.UserID == userID })
}

type routeRepository struct {
	*table[domain.Route, *domain.Route]
}

func (r *routeRepository) GetByEndpoints(_ context.Context, departureID, arrivalID int64) (*domain.Route, error) {
	return r.first(func(rt domain.Route) bool {
		return rt.DepartureID == departureID && rt.ArrivalID == arrivalID
	})
}

func (r *routeRepository) ListByDeparture(_ context.Context, departureID int64) ([]*domain.Route, error) {
	return r.filter(func(rt domain.Route) bool { return rt.DepartureID == departureID }), nil
}

type bookingOfficeRepository struct {
	*table[domain.BookingOffice, *domain.BookingOffice]
}

func (r *bookingOfficeRepository) ListByDestination(_ context.Context, destinationID int64) ([]*domain.BookingOffice, error) {
	return r.filter(func(b domain.BookingOffice) bool { return b.DestinationID == destinationID }), nil
}

type routeScheduleRepository struct {
	*table[domain.RouteSchedule, *domain.RouteSchedule]
}

func (r *routeScheduleRepository) ListByRoute(_ context.Context, routeID int64) ([]*domain.RouteSchedule, error) {
	return r.filter(func(s domain.RouteSchedule) bool { return s.RouteID == routeID }), nil
}

type vehicleScheduleRepository struct {
	*table[domain.VehicleSchedule, *domain.VehicleSchedule]
}

func (r *vehicleScheduleRepository) ListByVehicle(_ context.Context, vehicleID int64) ([]*domain.VehicleSchedule, error) {
	return r.filter(func(s domain.VehicleSchedule) bool { return s.VehicleID == vehicleID }), nil
}
