package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"server/internal/http/handlers"
	"server/internal/middleware"
)

// NewRouter wires every route with the shared middleware chain. The auth
// group requires a bearer token; the admin group additionally requires the
// admin role.
func NewRouter(app *handlers.App, countryLookup middleware.CountryLookup) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS(app.Config.CORSOrigins),
		middleware.I18N("id", countryLookup),
	)

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/menu", func(r chi.Router) {
		r.Get("/", app.MenuList)
		r.Get("/{id}", app.MenuItem)
	})

	// Anonymous auth endpoints get the tighter per-IP limit.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(app.Config.RateLimitPerMin, time.Minute))
		r.Post("/v1/auth/register", app.Register)
		r.Post("/v1/auth/login", app.Login)
		r.Post("/v1/password/forgot", app.PasswordForgot)
		r.Post("/v1/password/reset", app.PasswordReset)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthJWT(app.Config.JWTSecret))

		r.Get("/v1/me", app.Me)
		r.Put("/v1/me", app.UpdateMe)

		r.Route("/v1/subscriptions", func(r chi.Router) {
			r.Post("/", app.SubscriptionCreate)
			r.Get("/me", app.SubscriptionMine)
			r.Patch("/{id}/status", app.SubscriptionUpdateStatus)
			r.Patch("/{id}/schedule", app.SubscriptionUpdateSchedule)
			r.Delete("/{id}", app.SubscriptionCancel)
		})

		r.Route("/v1/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Get("/subscriptions", app.AdminListSubscriptions)
			r.Get("/stats", app.AdminStats)
		})
	})

	return r
}
