package stub

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"

	"github.com/conorls/dublinrent/internal/middleware"
)

// NewRouter mounts the stub endpoints. The route set and auth rules
// mirror the real backend: /login takes a form body, /predict accepts an
// optional bearer token, the /users/me routes require one.
func NewRouter(h *Handler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))

	r.Post("/login", h.Login)
	r.Post("/signup", h.Signup)

	r.Get("/model-info", h.ModelInfo)
	r.Get("/healthcheck", h.Healthcheck)

	r.With(middleware.OptionalBearer(h.Store)).Post("/predict", h.Predict)

	// Protected group: requires a valid bearer token
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireBearer(h.Store))
		r.Get("/users/me", h.Me)
		r.Get("/users/me/search-history", h.SearchHistory)
	})

	return r
}
