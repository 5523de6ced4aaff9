package service

import (
	"github.com/dom/vehicle-reservation/internal/cache"
	"github.com/dom/vehicle-reservation/internal/config"
	"github.com/dom/vehicle-reservation/internal/repository"
	"go.uber.org/zap"
)

type Services struct {
	User     *UserService
	Location *LocationService
	Route    *RouteService
	Fleet    *FleetService
	Schedule *ScheduleService
}

// NewServices wires every service over repos. A nil publisher or view cache
// disables that side effect.
func NewServices(repos *repository.Repositories, cfg *config.Config, pub Publisher, views cache.ViewCache, log *zap.Logger) *Services {
	if views == nil {
		views = cache.Noop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	ch := NewChanges(pub, views, log)

	return &Services{
		User:     NewUserService(repos, cfg.BcryptCost, ch),
		Location: NewLocationService(repos, ch),
		Route:    NewRouteService(repos, ch),
		Fleet:    NewFleetService(repos, ch),
		Schedule: NewScheduleService(repos, NewScheduleComposer(repos), views, ch, log),
	}
}
