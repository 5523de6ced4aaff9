package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dom/vehicle-reservation/internal/domain"
	"github.com/dom/vehicle-reservation/internal/events"
	"github.com/dom/vehicle-reservation/internal/repository"
)

// RouteService keeps routes as symmetric pairs: between two distinct
// destinations there are either no routes or exactly A->B and B->A.
type RouteService struct {
	repos   *repository.Repositories
	changes *Changes
}

func NewRouteService(repos *repository.Repositories, changes *Changes) *RouteService {
	return &RouteService{repos: repos, changes: changes}
}

// CreateRoutePair returns [a->b, b->a], inserting whichever direction is
// missing. An existing direction is returned unmodified.
func (s *RouteService) CreateRoutePair(ctx context.Context, a, b int64) ([]*domain.Route, error) {
	if a == b {
		return nil, observe(domain.KindRoute, "create", fmt.Errorf("%w: a route needs two distinct destinations", domain.ErrInvalidInput))
	}

	var pair []*domain.Route
	var created []int64
	err := s.repos.Tx.WithinTransaction(ctx, func(tx *repository.Repositories) error {
		pair, created = nil, nil
		for _, id := range []int64{a, b} {
			if err := requireRef(ctx, tx.Destination, domain.KindDestination, id); err != nil {
				return err
			}
		}
		for _, ends := range [][2]int64{{a, b}, {b, a}} {
			route, inserted, err := ensureRoute(ctx, tx.Route, ends[0], ends[1])
			if err != nil {
				return err
			}
			if inserted {
				created = append(created, route.ID)
			}
			pair = append(pair, route)
		}
		return nil
	})
	if err != nil {
		return nil, observe(domain.KindRoute, "create", fmt.Errorf("create route pair %d-%d: %w", a, b, err))
	}

	if len(created) > 0 {
		s.changes.committed(ctx, domain.KindRoute, events.OpCreated, created...)
	}
	for _, r := range pair {
		s.resolveName(ctx, r)
	}
	return pair, observe(domain.KindRoute, "create", nil)
}

func ensureRoute(ctx context.Context, routes repository.RouteRepository, departureID, arrivalID int64) (*domain.Route, bool, error) {
	existing, err := routes.GetByEndpoints(ctx, departureID, arrivalID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, err
	}
	route := &domain.Route{DepartureID: departureID, ArrivalID: arrivalID, Active: true}
	if err := routes.Insert(ctx, route); err != nil {
		return nil, false, err
	}
	return route, true, nil
}

func (s *RouteService) GetRoute(ctx context.Context, id int64) (*domain.Route, error) {
	r, err := s.repos.Route.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get route %d: %w", id, err)
	}
	s.resolveName(ctx, r)
	return r, nil
}

func (s *RouteService) ListRoutes(ctx context.Context) ([]*domain.Route, error) {
	routes, err := s.repos.Route.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range routes {
		s.resolveName(ctx, r)
	}
	return routes, nil
}

// UpdateRoute merges the active flag and mirrors it onto the reverse route so
// a pair is always enabled or disabled together.
func (s *RouteService) UpdateRoute(ctx context.Context, id int64, incoming domain.Route) (*domain.Route, error) {
	var route *domain.Route
	var touched []int64
	err := s.repos.Tx.WithinTransaction(ctx, func(tx *repository.Repositories) error {
		var err error
		route, err = mergeAndReplace(ctx, tx.Route, id, incoming, domain.MergeRoute)
		if err != nil {
			return err
		}
		touched = []int64{route.ID}

		reverse, err := tx.Route.GetByEndpoints(ctx, route.ArrivalID, route.DepartureID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		mirrored := domain.MergeRoute(*route, *reverse)
		if err := tx.Route.Replace(ctx, &mirrored); err != nil {
			return err
		}
		touched = append(touched, mirrored.ID)
		return nil
	})
	if err != nil {
		return nil, observe(domain.KindRoute, "update", fmt.Errorf("update route %d: %w", id, err))
	}

	s.changes.committed(ctx, domain.KindRoute, events.OpUpdated, touched...)
	s.resolveName(ctx, route)
	return route, observe(domain.KindRoute, "update", nil)
}

// DeleteRoute removes the route and its reverse. Either being absent already
// is not an error.
func (s *RouteService) DeleteRoute(ctx context.Context, id int64) error {
	var deleted []int64
	err := s.repos.Tx.WithinTransaction(ctx, func(tx *repository.Repositories) error {
		deleted = nil
		route, err := tx.Route.Get(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := tx.Route.Delete(ctx, route.ID); err != nil {
			return err
		}
		deleted = append(deleted, route.ID)

		reverse, err := tx.Route.GetByEndpoints(ctx, route.ArrivalID, route.DepartureID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := tx.Route.Delete(ctx, reverse.ID); err != nil {
			return err
		}
		deleted = append(deleted, reverse.ID)
		return nil
	})
	if err != nil {
		return observe(domain.KindRoute, "delete", fmt.Errorf("delete route %d: %w", id, err))
	}

	if len(deleted) > 0 {
		s.changes.committed(ctx, domain.KindRoute, events.OpDeleted, deleted...)
	}
	return observe(domain.KindRoute, "delete", nil)
}

func (s *RouteService) resolveName(ctx context.Context, r *domain.Route) {
	r.Name = domain.RouteName(cityOf(ctx, s.repos.Destination, r.DepartureID), cityOf(ctx, s.repos.Destination, r.ArrivalID))
}

// cityOf resolves a destination's city, or "" when it does not resolve.
func cityOf(ctx context.Context, destinations repository.DestinationRepository, id int64) string {
	d, err := destinations.Get(ctx, id)
	if err != nil {
		return ""
	}
	return d.City
}
