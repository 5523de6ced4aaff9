package postgres

import (
	"context"

	"github.com/dom/vehicle-reservation/internal/domain"
	"gorm.io/gorm"
)

type destinationRepository struct {
	store[domain.Destination]
}

func NewDestinationRepository(db *gorm.DB) *destinationRepository {
	return &destinationRepository{store[domain.Destination]{db: db}}
}

type routeRepository struct {
	store[domain.Route]
}

func NewRouteRepository(db *gorm.DB) *routeRepository {
	return &routeRepository{store[domain.Route]{db: db}}
}

func (r *routeRepository) GetByEndpoints(ctx context.Context, departureID, arrivalID int64) (*domain.Route, error) {
	return first[domain.Route](ctx, r.db, "departure_id = ? AND arrival_id = ?", departureID, arrivalID)
}

func (r *routeRepository) ListByDeparture(ctx context.Context, departureID int64) ([]*domain.Route, error) {
	return where[domain.Route](ctx, r.db, "departure_id = ?", departureID)
}

type bookingOfficeRepository struct {
	store[domain.BookingOffice]
}

func NewBookingOfficeRepository(db *gorm.DB) *bookingOfficeRepository {
	return &bookingOfficeRepository{store[domain.BookingOffice]{db: db}}
}

func (r *bookingOfficeRepository) ListByDestination(ctx context.Context, destinationID int64) ([]*domain.BookingOffice, error) {
	return where[domain.BookingOffice](ctx, r.db, "destination_id = ?", destinationID)
}
