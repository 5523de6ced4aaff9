package repository

import (
	"context"

	"github.com/dom/vehicle-reservation/internal/domain"
)

// Store is the storage contract shared by every entity kind. Get and Replace
// return domain.ErrNotFound for a missing row; Delete of a missing row is not
// an error.
type Store[E any] interface {
	Get(ctx context.Context, id int64) (*E, error)
	List(ctx context.Context) ([]*E, error)
	Insert(ctx context.Context, e *E) error
	Replace(ctx context.Context, e *E) error
	Delete(ctx context.Context, id int64) error
}

type UserCredentialRepository interface {
	Store[domain.UserCredential]
	GetByUsername(ctx context.Context, username string) (*domain.UserCredential, error)
}

type UserDetailRepository interface {
	Store[domain.UserDetail]
	GetByUserID(ctx context.Context, userID int64) (*domain.UserDetail, error)
}

type DestinationRepository interface {
	Store[domain.Destination]
}

type RouteRepository interface {
	Store[domain.Route]
	GetByEndpoints(ctx context.Context, departureID, arrivalID int64) (*domain.Route, error)
	ListByDeparture(ctx context.Context, departureID int64) ([]*domain.Route, error)
}

type BookingOfficeRepository interface {
	Store[domain.BookingOffice]
	ListByDestination(ctx context.Context, destinationID int64) ([]*domain.BookingOffice, error)
}

type OperatorRepository interface {
	Store[domain.Operator]
}

type SeatLayoutRepository interface {
	Store[domain.SeatLayout]
}

type VehicleRepository interface {
	Store[domain.Vehicle]
}

type RouteScheduleRepository interface {
	Store[domain.RouteSchedule]
	ListByRoute(ctx context.Context, routeID int64) ([]*domain.RouteSchedule, error)
}

type VehicleScheduleRepository interface {
	Store[domain.VehicleSchedule]
	ListByVehicle(ctx context.Context, vehicleID int64) ([]*domain.VehicleSchedule, error)
}

// Transactor runs fn against repositories bound to a single transaction.
// Every write made through the repositories handed to fn is rolled back when
// fn returns an error.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(repos *Repositories) error) error
}

type Repositories struct {
	UserCredential  UserCredentialRepository
	UserDetail      UserDetailRepository
	Destination     DestinationRepository
	Route           RouteRepository
	BookingOffice   BookingOfficeRepository
	Operator        OperatorRepository
	SeatLayout      SeatLayoutRepository
	Vehicle         VehicleRepository
	RouteSchedule   RouteScheduleRepository
	VehicleSchedule VehicleScheduleRepository

	Tx Transactor
}
