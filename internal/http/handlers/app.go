package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"server/internal/catalog"
	"server/internal/domain"
	"server/internal/infra"
	"server/internal/mailer"
	"server/internal/middleware"
)

// App is the handler container. All request handlers hang off it so wiring
// happens once in cmd/api.
type App struct {
	SQL     infra.SQLExecutor
	Logger  zerolog.Logger
	Config  *infra.Config
	Catalog *catalog.Catalog
	Mailer  mailer.Mailer

	// Clock is overridable in tests; defaults to time.Now.
	Clock func() time.Time
}

func NewApp(sql infra.SQLExecutor, logger zerolog.Logger, cfg *infra.Config, cat *catalog.Catalog, m mailer.Mailer) *App {
	return &App{
		SQL:     sql,
		Logger:  logger,
		Config:  cfg,
		Catalog: cat,
		Mailer:  m,
	}
}

func (a *App) now() time.Time {
	if a.Clock != nil {
		return a.Clock()
	}
	return time.Now()
}

func (a *App) identity(r *http.Request) (middleware.Identity, bool) {
	return middleware.IdentityFromContext(r.Context())
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, msg string) {
	a.json(w, status, map[string]any{"error": code, "message": msg})
}

// domainError maps the error taxonomy onto HTTP statuses. Exactly one error
// kind surfaces per failed call; nothing is retried here.
func (a *App) domainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, domain.ErrTokenInvalid):
		a.error(w, http.StatusBadRequest, "invalid_token", err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		a.error(w, http.StatusUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, domain.ErrForbidden):
		a.error(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrEmailTaken):
		a.error(w, http.StatusConflict, "email_taken", err.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		a.error(w, http.StatusConflict, "invalid_transition", err.Error())
	default:
		a.Logger.Error().Err(err).Msg("unhandled error")
		a.error(w, http.StatusInternalServerError, "internal", "internal server error")
	}
}
