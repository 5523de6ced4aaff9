package service

import (
	"context"
	"fmt"

	"github.com/dom/vehicle-reservation/internal/domain"
	"github.com/dom/vehicle-reservation/internal/events"
	"github.com/dom/vehicle-reservation/internal/repository"
)

// FleetService manages operators, seat layouts and vehicles.
type FleetService struct {
	repos   *repository.Repositories
	changes *Changes
}

func NewFleetService(repos *repository.Repositories, changes *Changes) *FleetService {
	return &FleetService{repos: repos, changes: changes}
}

func (s *FleetService) CreateOperator(ctx context.Context, o domain.Operator) (*domain.Operator, error) {
	if o.Name == "" {
		return nil, observe(domain.KindOperator, "create", fmt.Errorf("%w: operator name is required", domain.ErrInvalidInput))
	}
	o.Base = domain.Base{}
	if err := s.repos.Operator.Insert(ctx, &o); err != nil {
		return nil, observe(domain.KindOperator, "create", fmt.Errorf("create operator: %w", err))
	}
	s.changes.committed(ctx, domain.KindOperator, events.OpCreated, o.ID)
	return &o, observe(domain.KindOperator, "create", nil)
}

func (s *FleetService) GetOperator(ctx context.Context, id int64) (*domain.Operator, error) {
	o, err := s.repos.Operator.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get operator %d: %w", id, err)
	}
	return o, nil
}

func (s *FleetService) ListOperators(ctx context.Context) ([]*domain.Operator, error) {
	return s.repos.Operator.List(ctx)
}

func (s *FleetService) UpdateOperator(ctx context.Context, id int64, incoming domain.Operator) (*domain.Operator, error) {
	o, err := mergeAndReplace(ctx, s.repos.Operator, id, incoming, domain.MergeOperator)
	if err != nil {
		return nil, observe(domain.KindOperator, "update", fmt.Errorf("update operator %d: %w", id, err))
	}
	s.changes.committed(ctx, domain.KindOperator, events.OpUpdated, o.ID)
	return o, observe(domain.KindOperator, "update", nil)
}

func (s *FleetService) DeleteOperator(ctx context.Context, id int64) error {
	if err := s.repos.Operator.Delete(ctx, id); err != nil {
		return observe(domain.KindOperator, "delete", fmt.Errorf("delete operator %d: %w", id, err))
	}
	s.changes.committed(ctx, domain.KindOperator, events.OpDeleted, id)
	return observe(domain.KindOperator, "delete", nil)
}

func (s *FleetService) CreateSeatLayout(ctx context.Context, l domain.SeatLayout) (*domain.SeatLayout, error) {
	if l.Rows < 0 || l.Columns < 0 {
		return nil, observe(domain.KindSeatLayout, "create", fmt.Errorf("%w: rows and columns must not be negative", domain.ErrInvalidInput))
	}
	l.Base = domain.Base{}
	if err := s.repos.SeatLayout.Insert(ctx, &l); err != nil {
		return nil, observe(domain.KindSeatLayout, "create", fmt.Errorf("create seat layout: %w", err))
	}
	s.changes.committed(ctx, domain.KindSeatLayout, events.OpCreated, l.ID)
	return &l, observe(domain.KindSeatLayout, "create", nil)
}

func (s *FleetService) GetSeatLayout(ctx context.Context, id int64) (*domain.SeatLayout, error) {
	l, err := s.repos.SeatLayout.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get seat layout %d: %w", id, err)
	}
	return l, nil
}

func (s *FleetService) ListSeatLayouts(ctx context.Context) ([]*domain.SeatLayout, error) {
	return s.repos.SeatLayout.List(ctx)
}

func (s *FleetService) UpdateSeatLayout(ctx context.Context, id int64, incoming domain.SeatLayout) (*domain.SeatLayout, error) {
	l, err := mergeAndReplace(ctx, s.repos.SeatLayout, id, incoming, domain.MergeSeatLayout)
	if err != nil {
		return nil, observe(domain.KindSeatLayout, "update", fmt.Errorf("update seat layout %d: %w", id, err))
	}
	s.changes.committed(ctx, domain.KindSeatLayout, events.OpUpdated, l.ID)
	return l, observe(domain.KindSeatLayout, "update", nil)
}

func (s *FleetService) DeleteSeatLayout(ctx context.Context, id int64) error {
	if err := s.repos.SeatLayout.Delete(ctx, id); err != nil {
		return observe(domain.KindSeatLayout, "delete", fmt.Errorf("delete seat layout %d: %w", id, err))
	}
	s.changes.committed(ctx, domain.KindSeatLayout, events.OpDeleted, id)
	return observe(domain.KindSeatLayout, "delete", nil)
}

// CreateVehicle requires the seat layout to exist when one is set.
func (s *FleetService) CreateVehicle(ctx context.Context, v domain.Vehicle) (*domain.Vehicle, error) {
	if v.SeatLayoutID != 0 {
		if err := requireRef(ctx, s.repos.SeatLayout, domain.KindSeatLayout, v.SeatLayoutID); err != nil {
			return nil, observe(domain.KindVehicle, "create", err)
		}
	}
	v.Base = domain.Base{}
	if err := s.repos.Vehicle.Insert(ctx, &v); err != nil {
		return nil, observe(domain.KindVehicle, "create", fmt.Errorf("create vehicle: %w", err))
	}
	s.changes.committed(ctx, domain.KindVehicle, events.OpCreated, v.ID)
	return &v, observe(domain.KindVehicle, "create", nil)
}

func (s *FleetService) GetVehicle(ctx context.Context, id int64) (*domain.Vehicle, error) {
	v, err := s.repos.Vehicle.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get vehicle %d: %w", id, err)
	}
	return v, nil
}

func (s *FleetService) ListVehicles(ctx context.Context) ([]*domain.Vehicle, error) {
	return s.repos.Vehicle.List(ctx)
}

func (s *FleetService) UpdateVehicle(ctx context.Context, id int64, incoming domain.Vehicle) (*domain.Vehicle, error) {
	v, err := mergeAndReplace(ctx, s.repos.Vehicle, id, incoming, domain.MergeVehicle,
		func(v *domain.Vehicle) error {
			if v.SeatLayoutID == 0 {
				return nil
			}
			return requireRef(ctx, s.repos.SeatLayout, domain.KindSeatLayout, v.SeatLayoutID)
		})
	if err != nil {
		return nil, observe(domain.KindVehicle, "update", fmt.Errorf("update vehicle %d: %w", id, err))
	}
	s.changes.committed(ctx, domain.KindVehicle, events.OpUpdated, v.ID)
	return v, observe(domain.KindVehicle, "update", nil)
}

func (s *FleetService) DeleteVehicle(ctx context.Context, id int64) error {
	if err := s.repos.Vehicle.Delete(ctx, id); err != nil {
		return observe(domain.KindVehicle, "delete", fmt.Errorf("delete vehicle %d: %w", id, err))
	}
	s.changes.committed(ctx, domain.KindVehicle, events.OpDeleted, id)
	return observe(domain.KindVehicle, "delete", nil)
}
