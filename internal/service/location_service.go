package service

import (
	"context"
	"fmt"

	"github.com/dom/vehicle-reservation/internal/domain"
	"github.com/dom/vehicle-reservation/internal/events"
	"github.com/dom/vehicle-reservation/internal/repository"
)

// LocationService manages destinations and the booking offices at them.
type LocationService struct {
	repos   *repository.Repositories
	changes *Changes
}

func NewLocationService(repos *repository.Repositories, changes *Changes) *LocationService {
	return &LocationService{repos: repos, changes: changes}
}

func (s *LocationService) CreateDestination(ctx context.Context, d domain.Destination) (*domain.Destination, error) {
	if d.City == "" {
		return nil, observe(domain.KindDestination, "create", fmt.Errorf("%w: city is required", domain.ErrInvalidInput))
	}
	d.Base = domain.Base{}
	if err := s.repos.Destination.Insert(ctx, &d); err != nil {
		return nil, observe(domain.KindDestination, "create", fmt.Errorf("create destination: %w", err))
	}
	s.changes.committed(ctx, domain.KindDestination, events.OpCreated, d.ID)
	return &d, observe(domain.KindDestination, "create", nil)
}

func (s *LocationService) GetDestination(ctx context.Context, id int64) (*domain.Destination, error) {
	d, err := s.repos.Destination.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get destination %d: %w", id, err)
	}
	return d, nil
}

func (s *LocationService) ListDestinations(ctx context.Context) ([]*domain.Destination, error) {
	return s.repos.Destination.List(ctx)
}

func (s *LocationService) UpdateDestination(ctx context.Context, id int64, incoming domain.Destination) (*domain.Destination, error) {
	d, err := mergeAndReplace(ctx, s.repos.Destination, id, incoming, domain.MergeDestination)
	if err != nil {
		return nil, observe(domain.KindDestination, "update", fmt.Errorf("update destination %d: %w", id, err))
	}
	s.changes.committed(ctx, domain.KindDestination, events.OpUpdated, d.ID)
	return d, observe(domain.KindDestination, "update", nil)
}

func (s *LocationService) DeleteDestination(ctx context.Context, id int64) error {
	if err := s.repos.Destination.Delete(ctx, id); err != nil {
		return observe(domain.KindDestination, "delete", fmt.Errorf("delete destination %d: %w", id, err))
	}
	s.changes.committed(ctx, domain.KindDestination, events.OpDeleted, id)
	return observe(domain.KindDestination, "delete", nil)
}

// DestinationsReachableFrom returns the arrival of every route departing
// departureID, ordered by destination id. Arrivals that no longer exist are
// skipped.
func (s *LocationService) DestinationsReachableFrom(ctx context.Context, departureID int64) ([]*domain.Destination, error) {
	routes, err := s.repos.Route.ListByDeparture(ctx, departureID)
	if err != nil {
		return nil, fmt.Errorf("list routes from %d: %w", departureID, err)
	}

	seen := make(map[int64]bool, len(routes))
	out := make([]*domain.Destination, 0, len(routes))
	for _, r := range routes {
		if seen[r.ArrivalID] {
			continue
		}
		seen[r.ArrivalID] = true
		d, err := s.repos.Destination.Get(ctx, r.ArrivalID)
		if err != nil {
			continue
		}
		out = append(out, d)
	}
	sortByID(out)
	return out, nil
}

func (s *LocationService) CreateBookingOffice(ctx context.Context, b domain.BookingOffice) (*domain.BookingOffice, error) {
	if err := requireRef(ctx, s.repos.Destination, domain.KindDestination, b.DestinationID); err != nil {
		return nil, observe(domain.KindBookingOffice, "create", err)
	}
	b.Base = domain.Base{}
	if err := s.repos.BookingOffice.Insert(ctx, &b); err != nil {
		return nil, observe(domain.KindBookingOffice, "create", fmt.Errorf("create booking office: %w", err))
	}
	s.changes.committed(ctx, domain.KindBookingOffice, events.OpCreated, b.ID)
	return &b, observe(domain.KindBookingOffice, "create", nil)
}

func (s *LocationService) GetBookingOffice(ctx context.Context, id int64) (*domain.BookingOffice, error) {
	b, err := s.repos.BookingOffice.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get booking office %d: %w", id, err)
	}
	return b, nil
}

// ListBookingOffices lists every office, or only those at destinationID when
// it is non-zero.
func (s *LocationService) ListBookingOffices(ctx context.Context, destinationID int64) ([]*domain.BookingOffice, error) {
	if destinationID != 0 {
		return s.repos.BookingOffice.ListByDestination(ctx, destinationID)
	}
	return s.repos.BookingOffice.List(ctx)
}

func (s *LocationService) UpdateBookingOffice(ctx context.Context, id int64, incoming domain.BookingOffice) (*domain.BookingOffice, error) {
	b, err := mergeAndReplace(ctx, s.repos.BookingOffice, id, incoming, domain.MergeBookingOffice)
	if err != nil {
		return nil, observe(domain.KindBookingOffice, "update", fmt.Errorf("update booking office %d: %w", id, err))
	}
	s.changes.committed(ctx, domain.KindBookingOffice, events.OpUpdated, b.ID)
	return b, observe(domain.KindBookingOffice, "update", nil)
}

func (s *LocationService) DeleteBookingOffice(ctx context.Context, id int64) error {
	if err := s.repos.BookingOffice.Delete(ctx, id); err != nil {
		return observe(domain.KindBookingOffice, "delete", fmt.Errorf("delete booking office %d: %w", id, err))
	}
	s.changes.committed(ctx, domain.KindBookingOffice, events.OpDeleted, id)
	return observe(domain.KindBookingOffice, "delete", nil)
}
