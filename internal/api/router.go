package api

import (
	"net/http"

	"github.com/dom/vehicle-reservation/internal/api/handlers"
	"github.com/dom/vehicle-reservation/internal/api/middleware"
	"github.com/dom/vehicle-reservation/internal/config"
	"github.com/dom/vehicle-reservation/internal/metrics"
	"github.com/dom/vehicle-reservation/internal/service"
	"github.com/dom/vehicle-reservation/internal/websocket"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func NewRouter(services *service.Services, hub *websocket.Hub, cfg *config.Config, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.RequestLogger(log))
	r.Use(chiMiddleware.Recoverer)
	r.Use(metrics.HTTPMiddleware)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Initialize handlers
	userHandler := handlers.NewUserHandler(services.User)
	locationHandler := handlers.NewLocationHandler(services.Location)
	routeHandler := handlers.NewRouteHandler(services.Route)
	fleetHandler := handlers.NewFleetHandler(services.Fleet)
	scheduleHandler := handlers.NewScheduleHandler(services.Schedule)
	wsHandler := handlers.NewWebSocketHandler(hub, cfg.AllowedOrigins, log)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Get("/", userHandler.List)
			r.Post("/", userHandler.Create)
			r.Get("/{username}", userHandler.Get)
			r.Put("/{username}", userHandler.Update)
			r.Delete("/{username}", userHandler.Delete)
			r.Post("/{username}/verify", userHandler.Verify)

			r.Post("/{username}/detail", userHandler.CreateDetail)
			r.Get("/{username}/detail", userHandler.GetDetail)
			r.Put("/{username}/detail", userHandler.UpdateDetail)
		})

		r.Route("/destinations", func(r chi.Router) {
			r.Get("/", locationHandler.ListDestinations)
			r.Post("/", locationHandler.CreateDestination)
			r.Get("/{id}", locationHandler.GetDestination)
			r.Put("/{id}", locationHandler.UpdateDestination)
			r.Delete("/{id}", locationHandler.DeleteDestination)
			r.Get("/{id}/reachable", locationHandler.Reachable)
		})

		r.Route("/booking-offices", func(r chi.Router) {
			r.Get("/", locationHandler.ListBookingOffices)
			r.Post("/", locationHandler.CreateBookingOffice)
			r.Get("/{id}", locationHandler.GetBookingOffice)
			r.Put("/{id}", locationHandler.UpdateBookingOffice)
			r.Delete("/{id}", locationHandler.DeleteBookingOffice)
		})

		// Routes are created in pairs; update and delete touch both directions.
		r.Route("/routes", func(r chi.Router) {
			r.Get("/", routeHandler.List)
			r.Post("/", routeHandler.CreatePair)
			r.Get("/{id}", routeHandler.Get)
			r.Put("/{id}", routeHandler.Update)
			r.Delete("/{id}", routeHandler.Delete)
		})

		r.Route("/operators", fleetHandler.OperatorRoutes)
		r.Route("/seat-layouts", fleetHandler.SeatLayoutRoutes)
		r.Route("/vehicles", fleetHandler.VehicleRoutes)
		r.Route("/route-schedules", scheduleHandler.RouteScheduleRoutes)
		r.Route("/vehicle-schedules", scheduleHandler.VehicleScheduleRoutes)

		// Change feed
		r.Get("/events", wsHandler.Handle)
	})

	return r
}
