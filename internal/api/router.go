package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/labelproof/labelproof/internal/api/handler"
	"github.com/labelproof/labelproof/internal/api/middleware"
	"github.com/labelproof/labelproof/internal/authz"
	"github.com/labelproof/labelproof/internal/obs"
)

// RouterDeps holds the handlers and middleware the router wires together.
type RouterDeps struct {
	Auth     *handler.AuthHandler
	Users    *handler.UserHandler
	Products *handler.ProductHandler
	Orders   *handler.OrderHandler
	Logs     *handler.LogHandler
	Health   *handler.HealthHandler
	Gate     *middleware.Gate

	LoginRatePerMinute int
}

// NewRouter builds the HTTP routing tree. Moderator-tier routes carry the
// role gate as middleware; routes whose policy depends on the target (own
// password vs someone else's) authorize inside the handler instead.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(obs.Middleware)

	r.Get("/health", deps.Health.Health)
	r.Method(http.MethodGet, "/metrics", obs.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.With(middleware.LoginRateLimit(deps.LoginRatePerMinute)).Post("/login", deps.Auth.Login)
	})

	r.Route("/users", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(deps.Gate.Authenticate)
			r.With(deps.Gate.Require(authz.ActionListUsers)).Get("/", deps.Users.List)
			r.With(deps.Gate.Require(authz.ActionCreateUser)).Post("/", deps.Users.Create)
		})
		// Target-dependent policy: the gate runs in the handler so body
		// validation can precede the credential check.
		r.Put("/{id}", deps.Users.Update)
		r.Put("/{id}/password", deps.Users.SetPassword)
		r.Delete("/{id}", deps.Users.Delete)
	})

	r.Route("/products", func(r chi.Router) {
		r.Use(deps.Gate.Authenticate)
		r.Get("/", deps.Products.List)
		r.Post("/", deps.Products.Create)
		r.Put("/{code}", deps.Products.Update)
		r.Delete("/{code}", deps.Products.Delete)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(deps.Gate.Authenticate)
			r.Get("/", deps.Orders.List)
			r.Post("/", deps.Orders.Create)
		})
		// Moderator-tier mutations authorize in the handler via the gate.
		r.Post("/{id}/verify", deps.Orders.Verify)
		r.Put("/{id}", deps.Orders.Update)
		r.Delete("/{id}", deps.Orders.Delete)
	})

	r.Group(func(r chi.Router) {
		r.Use(deps.Gate.Authenticate)
		r.With(deps.Gate.Require(authz.ActionViewAuditLog)).Get("/logs", deps.Logs.List)
		r.Get("/statistics", deps.Orders.Stats)
	})

	return r
}
