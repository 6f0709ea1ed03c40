package runtime

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"

	"github.com/Cleo-Systems/elevate-scr/internal/service/config"
	"github.com/Cleo-Systems/elevate-scr/internal/service/correlation"
	scrHTTP "github.com/Cleo-Systems/elevate-scr/internal/service/scr/adapters/http"
)

func NewHTTPServer(cfg config.Config, logger *zap.Logger, server *scrHTTP.Server) (*http.Server, error) {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(correlation.Middleware(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"*"},
	}))
	r.Use(httprate.LimitByIP(100, time.Minute))

	// The upload handler stays open across the whole submit-and-poll window,
	// so the request timeout must exceed the result timeout.
	r.Use(middleware.Timeout(cfg.ScrResultTimeout + 30*time.Second))

	r.Mount("/", scrHTTP.Router(server))

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return srv, nil
}
