// File: internal/api/router.go
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates the chi router with all routes mounted. The creation
// endpoint answers both GET and POST: simple callers pass query parameters,
// programmatic ones a JSON body.
func NewRouter(h *Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.Healthz)
	r.Get(CreateAccountPath, h.CreateAccount)
	r.Post(CreateAccountPath, h.CreateAccount)

	return r
}
