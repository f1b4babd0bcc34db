package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/scribe/backend/internal/handler/checkout"
	"github.com/zhouzirui/scribe/backend/internal/handler/content"
	"github.com/zhouzirui/scribe/backend/internal/handler/page"
	"github.com/zhouzirui/scribe/backend/internal/logger"
	"github.com/zhouzirui/scribe/backend/internal/metrics"
	middlewarePkg "github.com/zhouzirui/scribe/backend/internal/middleware"
	"github.com/zhouzirui/scribe/backend/pkg/utils"
)

// Dependencies collects what the router wires into handlers. A nil
// Generator or Checkout leaves its routes answering 503.
type Dependencies struct {
	Generator content.Generator
	Checkout  checkout.SessionCreator
	Logger    logger.Logger
	Metrics   *metrics.Metrics
}

// NewRouter wires HTTP routes to the relay services.
func NewRouter(deps Dependencies) (http.Handler, error) {
	log := deps.Logger
	if log == nil {
		log = logger.NewNop()
	}
	m := deps.Metrics
	if m == nil {
		m = metrics.New()
	}

	pages, err := page.New(log)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.Metrics(m))
	r.Use(middlewarePkg.RequestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	pages.RegisterRoutes(r)

	if deps.Generator != nil {
		content.New(deps.Generator, log).RegisterRoutes(r)
	} else {
		r.Post("/generate", unavailable("content generation unavailable"))
		r.Post("/generate/stream", unavailable("content generation unavailable"))
	}

	if deps.Checkout != nil {
		checkout.New(deps.Checkout, log).RegisterRoutes(r)
	} else {
		r.Post("/create-checkout-session", unavailable("checkout unavailable"))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", m.Handler())

	return r, nil
}

func unavailable(message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		utils.RespondError(w, http.StatusServiceUnavailable, message)
	}
}
