package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func Router(srv *Server) http.Handler {
	r := chi.NewRouter()

	r.Post("/Bundle", srv.UploadSummary)
	r.Get("/Bundle", srv.GetRecord)

	r.Route("/consent", func(r chi.Router) {
		r.Post("/", srv.SetPermissions)
		r.Get("/", srv.GetPermissions)
	})

	r.Get("/healthcheck", srv.GetHealthStatus)

	return r
}
