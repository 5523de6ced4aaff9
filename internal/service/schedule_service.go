package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dom/vehicle-reservation/internal/cache"
	"github.com/dom/vehicle-reservation/internal/domain"
	"github.com/dom/vehicle-reservation/internal/events"
	"github.com/dom/vehicle-reservation/internal/metrics"
	"github.com/dom/vehicle-reservation/internal/repository"
	"go.uber.org/zap"
)

// ScheduleService manages route and vehicle schedules. Every read returns a
// composed view; composed views are cached until the next write to a kind
// that feeds them.
type ScheduleService struct {
	repos    *repository.Repositories
	composer *ScheduleComposer
	views    cache.ViewCache
	changes  *Changes
	log      *zap.Logger
}

func NewScheduleService(repos *repository.Repositories, composer *ScheduleComposer, views cache.ViewCache, changes *Changes, log *zap.Logger) *ScheduleService {
	return &ScheduleService{repos: repos, composer: composer, views: views, changes: changes, log: log}
}

func (s *ScheduleService) CreateRouteSchedule(ctx context.Context, rs domain.RouteSchedule) (*domain.RouteScheduleView, error) {
	day, err := normalizeDay(rs.Day)
	if err != nil {
		return nil, observe(domain.KindRouteSchedule, "create", err)
	}
	rs.Day = day
	if err := requireRef(ctx, s.repos.Operator, domain.KindOperator, rs.OperatorID); err != nil {
		return nil, observe(domain.KindRouteSchedule, "create", err)
	}
	if err := requireRef(ctx, s.repos.Route, domain.KindRoute, rs.RouteID); err != nil {
		return nil, observe(domain.KindRouteSchedule, "create", err)
	}

	rs.Base = domain.Base{}
	if err := s.repos.RouteSchedule.Insert(ctx, &rs); err != nil {
		return nil, observe(domain.KindRouteSchedule, "create", fmt.Errorf("create route schedule: %w", err))
	}
	s.changes.committed(ctx, domain.KindRouteSchedule, events.OpCreated, rs.ID)
	return s.composer.RouteSchedule(ctx, &rs), observe(domain.KindRouteSchedule, "create", nil)
}

func (s *ScheduleService) GetRouteSchedule(ctx context.Context, id int64) (*domain.RouteScheduleView, error) {
	return cached(ctx, s, fmt.Sprintf("route_schedule:%d", id), func() (*domain.RouteScheduleView, error) {
		rs, err := s.repos.RouteSchedule.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get route schedule %d: %w", id, err)
		}
		return s.composer.RouteSchedule(ctx, rs), nil
	})
}

// ListRouteSchedules lists every route schedule, or only those on routeID
// when it is non-zero.
func (s *ScheduleService) ListRouteSchedules(ctx context.Context, routeID int64) ([]*domain.RouteScheduleView, error) {
	return cached(ctx, s, fmt.Sprintf("route_schedules:%d", routeID), func() ([]*domain.RouteScheduleView, error) {
		var rows []*domain.RouteSchedule
		var err error
		if routeID != 0 {
			rows, err = s.repos.RouteSchedule.ListByRoute(ctx, routeID)
		} else {
			rows, err = s.repos.RouteSchedule.List(ctx)
		}
		if err != nil {
			return nil, err
		}
		out := make([]*domain.RouteScheduleView, 0, len(rows))
		for _, rs := range rows {
			out = append(out, s.composer.RouteSchedule(ctx, rs))
		}
		return out, nil
	})
}

// UpdateRouteSchedule moves the route, day, time and active flag. The
// operator stays with the schedule.
func (s *ScheduleService) UpdateRouteSchedule(ctx context.Context, id int64, incoming domain.RouteSchedule) (*domain.RouteScheduleView, error) {
	rs, err := mergeAndReplace(ctx, s.repos.RouteSchedule, id, incoming, domain.MergeRouteSchedule,
		func(rs *domain.RouteSchedule) error {
			day, err := normalizeDay(rs.Day)
			if err != nil {
				return err
			}
			rs.Day = day
			return requireRef(ctx, s.repos.Route, domain.KindRoute, rs.RouteID)
		})
	if err != nil {
		return nil, observe(domain.KindRouteSchedule, "update", fmt.Errorf("update route schedule %d: %w", id, err))
	}
	s.changes.committed(ctx, domain.KindRouteSchedule, events.OpUpdated, rs.ID)
	return s.composer.RouteSchedule(ctx, rs), observe(domain.KindRouteSchedule, "update", nil)
}

func (s *ScheduleService) DeleteRouteSchedule(ctx context.Context, id int64) error {
	if err := s.repos.RouteSchedule.Delete(ctx, id); err != nil {
		return observe(domain.KindRouteSchedule, "delete", fmt.Errorf("delete route schedule %d: %w", id, err))
	}
	s.changes.committed(ctx, domain.KindRouteSchedule, events.OpDeleted, id)
	return observe(domain.KindRouteSchedule, "delete", nil)
}

func (s *ScheduleService) CreateVehicleSchedule(ctx context.Context, vs domain.VehicleSchedule) (*domain.VehicleScheduleView, error) {
	if err := requireRef(ctx, s.repos.Operator, domain.KindOperator, vs.OperatorID); err != nil {
		return nil, observe(domain.KindVehicleSchedule, "create", err)
	}
	if err := requireRef(ctx, s.repos.Vehicle, domain.KindVehicle, vs.VehicleID); err != nil {
		return nil, observe(domain.KindVehicleSchedule, "create", err)
	}
	if err := requireRef(ctx, s.repos.RouteSchedule, domain.KindRouteSchedule, vs.RouteScheduleID); err != nil {
		return nil, observe(domain.KindVehicleSchedule, "create", err)
	}

	vs.Base = domain.Base{}
	if err := s.repos.VehicleSchedule.Insert(ctx, &vs); err != nil {
		return nil, observe(domain.KindVehicleSchedule, "create", fmt.Errorf("create vehicle schedule: %w", err))
	}
	s.changes.committed(ctx, domain.KindVehicleSchedule, events.OpCreated, vs.ID)
	return s.composer.VehicleSchedule(ctx, &vs), observe(domain.KindVehicleSchedule, "create", nil)
}

func (s *ScheduleService) GetVehicleSchedule(ctx context.Context, id int64) (*domain.VehicleScheduleView, error) {
	return cached(ctx, s, fmt.Sprintf("vehicle_schedule:%d", id), func() (*domain.VehicleScheduleView, error) {
		vs, err := s.repos.VehicleSchedule.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get vehicle schedule %d: %w", id, err)
		}
		return s.composer.VehicleSchedule(ctx, vs), nil
	})
}

// ListVehicleSchedules lists every vehicle schedule, or only those of
// vehicleID when it is non-zero.
func (s *ScheduleService) ListVehicleSchedules(ctx context.Context, vehicleID int64) ([]*domain.VehicleScheduleView, error) {
	return cached(ctx, s, fmt.Sprintf("vehicle_schedules:%d", vehicleID), func() ([]*domain.VehicleScheduleView, error) {
		var rows []*domain.VehicleSchedule
		var err error
		if vehicleID != 0 {
			rows, err = s.repos.VehicleSchedule.ListByVehicle(ctx, vehicleID)
		} else {
			rows, err = s.repos.VehicleSchedule.List(ctx)
		}
		if err != nil {
			return nil, err
		}
		out := make([]*domain.VehicleScheduleView, 0, len(rows))
		for _, vs := range rows {
			out = append(out, s.composer.VehicleSchedule(ctx, vs))
		}
		return out, nil
	})
}

func (s *ScheduleService) UpdateVehicleSchedule(ctx context.Context, id int64, incoming domain.VehicleSchedule) (*domain.VehicleScheduleView, error) {
	vs, err := mergeAndReplace(ctx, s.repos.VehicleSchedule, id, incoming, domain.MergeVehicleSchedule,
		func(vs *domain.VehicleSchedule) error {
			if err := requireRef(ctx, s.repos.Vehicle, domain.KindVehicle, vs.VehicleID); err != nil {
				return err
			}
			return requireRef(ctx, s.repos.RouteSchedule, domain.KindRouteSchedule, vs.RouteScheduleID)
		})
	if err != nil {
		return nil, observe(domain.KindVehicleSchedule, "update", fmt.Errorf("update vehicle schedule %d: %w", id, err))
	}
	s.changes.committed(ctx, domain.KindVehicleSchedule, events.OpUpdated, vs.ID)
	return s.composer.VehicleSchedule(ctx, vs), observe(domain.KindVehicleSchedule, "update", nil)
}

func (s *ScheduleService) DeleteVehicleSchedule(ctx context.Context, id int64) error {
	if err := s.repos.VehicleSchedule.Delete(ctx, id); err != nil {
		return observe(domain.KindVehicleSchedule, "delete", fmt.Errorf("delete vehicle schedule %d: %w", id, err))
	}
	s.changes.committed(ctx, domain.KindVehicleSchedule, events.OpDeleted, id)
	return observe(domain.KindVehicleSchedule, "delete", nil)
}

// cached serves key from the view cache, falling back to load. Cache faults
// are logged and never fail the read.
func cached[T any](ctx context.Context, s *ScheduleService, key string, load func() (T, error)) (T, error) {
	gen, err := s.views.Generation(ctx)
	if err != nil {
		s.log.Warn("view cache unavailable", zap.Error(err))
		return load()
	}

	var hit T
	ok, err := s.views.Get(ctx, gen, key, &hit)
	if err != nil {
		s.log.Warn("view cache read failed", zap.String("key", key), zap.Error(err))
	}
	metrics.ObserveCacheLookup(ok)
	if ok {
		return hit, nil
	}

	v, err := load()
	if err != nil {
		return v, err
	}
	if err := s.views.Set(ctx, gen, key, v); err != nil {
		s.log.Warn("view cache write failed", zap.String("key", key), zap.Error(err))
	}
	return v, nil
}

// normalizeDay accepts a weekday name in any case and returns it capitalized.
// An empty day is left empty.
func normalizeDay(day string) (string, error) {
	day = strings.TrimSpace(day)
	if day == "" {
		return "", nil
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(day, d.String()) {
			return d.String(), nil
		}
	}
	return "", fmt.Errorf("%w: %q is not a day of the week", domain.ErrInvalidInput, day)
}
