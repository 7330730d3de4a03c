package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/dossier-agent/backend/internal/handler/dossier"
	"github.com/zhouzirui/dossier-agent/backend/internal/handler/web"
	middlewarePkg "github.com/zhouzirui/dossier-agent/backend/internal/middleware"
	dossierService "github.com/zhouzirui/dossier-agent/backend/internal/service/dossier"
	"github.com/zhouzirui/dossier-agent/backend/pkg/utils"
)

// NewRouter wires HTTP routes to the dossier pipeline. svc may be nil when
// the model is not configured; generate routes then answer 503. limiter may
// be nil to disable rate limiting.
func NewRouter(svc *dossierService.Service, limiter *middlewarePkg.RateLimiter) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	var limits []func(http.Handler) http.Handler
	if limiter != nil {
		limits = append(limits, limiter.Middleware)
	}

	// A nil *Service must not become a non-nil interface.
	var gen dossier.Generator
	if svc != nil {
		gen = svc
	}
	webHandler := web.New(gen)
	apiHandler := dossier.New(gen)

	webHandler.RegisterRoutes(r, limits...)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(api chi.Router) {
		apiHandler.RegisterRoutes(api, limits...)
	})

	return r
}
