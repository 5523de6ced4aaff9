package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/dom/vehicle-reservation/internal/cache"
	"github.com/dom/vehicle-reservation/internal/domain"
	"github.com/dom/vehicle-reservation/internal/events"
	"github.com/dom/vehicle-reservation/internal/metrics"
	"github.com/dom/vehicle-reservation/internal/repository"
	"go.uber.org/zap"
)

// Publisher receives change events after a write commits.
type Publisher interface {
	Publish(ctx context.Context, ev events.ChangeEvent) error
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, events.ChangeEvent) error { return nil }

// viewSources are the kinds whose rows feed composed schedule views.
var viewSources = map[domain.Kind]bool{
	domain.KindDestination:     true,
	domain.KindRoute:           true,
	domain.KindOperator:        true,
	domain.KindVehicle:         true,
	domain.KindRouteSchedule:   true,
	domain.KindVehicleSchedule: true,
}

// Changes fans a committed write out to the view cache, the event bus and
// metrics. Failures here are logged; the write itself already succeeded.
type Changes struct {
	pub   Publisher
	views cache.ViewCache
	log   *zap.Logger
}

// NewChanges builds the post-commit fan-out. A nil publisher or view cache
// disables that side effect.
func NewChanges(pub Publisher, views cache.ViewCache, log *zap.Logger) *Changes {
	if pub == nil {
		pub = noopPublisher{}
	}
	if views == nil {
		views = cache.Noop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Changes{pub: pub, views: views, log: log}
}

func (c *Changes) committed(ctx context.Context, kind domain.Kind, op events.Op, ids ...int64) {
	if viewSources[kind] {
		if err := c.views.Invalidate(ctx); err != nil {
			c.log.Warn("view cache invalidation failed", zap.String("kind", string(kind)), zap.Error(err))
		}
	}
	for _, id := range ids {
		err := c.pub.Publish(ctx, events.NewChangeEvent(kind, op, id))
		metrics.ObservePublish(err)
		if err != nil {
			c.log.Warn("change event publish failed",
				zap.String("kind", string(kind)),
				zap.String("op", string(op)),
				zap.Int64("id", id),
				zap.Error(err),
			)
		}
	}
}

// observe records the outcome of a service operation and returns err.
func observe(kind domain.Kind, op string, err error) error {
	metrics.ObserveOperation(string(kind), op, resultOf(err))
	return err
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrMissingReference):
		return "missing_reference"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	default:
		return "error"
	}
}

// requireRef fails with domain.ErrMissingReference when id does not resolve.
func requireRef[E any](ctx context.Context, store repository.Store[E], kind domain.Kind, id int64) error {
	if _, err := store.Get(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: %s %d", domain.ErrMissingReference, kind, id)
		}
		return fmt.Errorf("resolve %s %d: %w", kind, id, err)
	}
	return nil
}

// mergeAndReplace is the shared update sequence: fetch the authoritative row,
// merge the mutable fields onto it and write it back. checks run on the merged
// row only after the target is known to exist, and may normalize it.
func mergeAndReplace[E any](ctx context.Context, store repository.Store[E], id int64, incoming E, merge func(incoming, stored E) E, checks ...func(*E) error) (*E, error) {
	stored, err := store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	merged := merge(incoming, *stored)
	for _, check := range checks {
		if err := check(&merged); err != nil {
			return nil, err
		}
	}
	if err := store.Replace(ctx, &merged); err != nil {
		return nil, err
	}
	return &merged, nil
}

func sortByID[E any, P interface {
	*E
	domain.Record
}](rows []P) {
	sort.Slice(rows, func(i, j int) bool { return rows[i].GetID() < rows[j].GetID() })
}
