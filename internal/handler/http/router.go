package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JJ-Sinklaire/desesperanza/internal/auth"
	"github.com/JJ-Sinklaire/desesperanza/internal/service"
	"github.com/JJ-Sinklaire/desesperanza/pkg/health"
	"github.com/JJ-Sinklaire/desesperanza/pkg/middleware"
)

// RouterDeps bundles everything the route tree needs.
type RouterDeps struct {
	Addresses *service.AddressService
	Orders    *service.OrderService
	Customers *service.CustomerService
	Geocoder  Geocoder
	Tokens    *auth.Manager
	Health    *health.Handler
	CORS      middleware.CORSConfig
	Logger    *slog.Logger
}

// NewRouter creates a chi router with all ordering routes registered.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.CORS(deps.CORS))
	r.Use(middleware.RequestLogging(deps.Logger))
	r.Use(middleware.PrometheusMetrics("ordering"))
	r.Use(middleware.Tracing("ordering"))

	// Health check endpoints
	r.Get("/health/live", deps.Health.LivenessHandler())
	r.Get("/health/ready", deps.Health.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	authHandler := NewAuthHandler(deps.Customers, deps.Logger)
	addressHandler := NewAddressHandler(deps.Addresses, deps.Logger)
	orderHandler := NewOrderHandler(deps.Orders, deps.Logger)
	geocodeHandler := NewGeocodeHandler(deps.Geocoder, deps.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/registro", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})

		// Session-scoped endpoints. RequestLogger runs after Auth so the
		// customer ID lands in every log line.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(tokenValidator(deps.Tokens)))
			r.Use(middleware.RequestLogger(deps.Logger))

			r.Route("/direcciones", func(r chi.Router) {
				r.Get("/", addressHandler.List)
				r.Post("/", addressHandler.Create)
				r.Get("/{id}", addressHandler.Get)
				r.Put("/{id}", addressHandler.Update)
				r.Delete("/{id}", addressHandler.Delete)
			})

			r.Route("/pedidos", func(r chi.Router) {
				r.Get("/mis-pedidos", orderHandler.ListMine)
				r.Get("/{id}", orderHandler.Get)
				r.Get("/{id}/ticket", orderHandler.Ticket)
			})

			r.Route("/geocode", func(r chi.Router) {
				r.Get("/reverse", geocodeHandler.Reverse)
				r.Get("/search", geocodeHandler.Search)
			})
		})
	})

	return r
}

// tokenValidator adapts the JWT manager to the auth middleware contract.
func tokenValidator(m *auth.Manager) middleware.TokenValidator {
	return func(token string) (*middleware.Claims, error) {
		claims, err := m.Validate(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			CustomerID: claims.CustomerID,
			Email:      claims.Email,
		}, nil
	}
}
