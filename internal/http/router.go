package httpapi

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/skawashin1122/bento-app-project/internal/clients"
	"github.com/skawashin1122/bento-app-project/internal/config"
	"github.com/skawashin1122/bento-app-project/internal/middleware"
)

type Deps struct {
	Logger *log.Logger
	Cfg    config.Config

	Sessions     *Registry
	HealthProbes []clients.HealthProbe
}

func NewRouter(d Deps) http.Handler {
	h := &Handler{logger: d.Logger, sessions: d.Sessions, probes: d.HealthProbes}

	r := chi.NewRouter()

	// Middlewares (outer -> inner)
	r.Use(middleware.Logging(d.Logger))
	r.Use(middleware.CorrelationID)
	r.Use(middleware.CORS(d.Cfg.CORSAllowOrigins))
	r.Use(middleware.RequireSessionID)
	r.Use(middleware.Recover(d.Logger))

	r.Get("/", h.Index)
	r.Get("/health", h.Health)
	r.Get("/health/upstream", h.Upstream)

	r.Post("/api/sessions", h.CreateSession)

	r.Route("/api/session", func(r chi.Router) {
		r.Use(h.loadSession)

		r.Get("/", h.GetSession)
		r.Delete("/", h.DeleteSession)

		r.Post("/menu/refresh", h.RefreshMenu)

		r.Post("/cart/items", h.ChangeCart)
		r.Delete("/cart", h.ClearCart)

		r.Post("/orders", h.Submit)
		r.Get("/orders", h.History)
	})

	return r
}
