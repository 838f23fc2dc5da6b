package routers

import (
	"fmt"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mufasadev/contribution-reconciler/internal/di"
	http2 "github.com/mufasadev/contribution-reconciler/internal/infrastructure/api/http"
	"github.com/mufasadev/contribution-reconciler/internal/infrastructure/api/middlewares"
)

func NewRouter(container *di.Container) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Get("/healthz", container.HealthHandler.Healthz)

	// Set up v1 routes with a path prefix
	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/webhooks", func(r chi.Router) {
			wh := container.WebhookHandler
			r.Post("/bank", wh.Bank)
			r.Post("/checkout", wh.Checkout)
		})

		r.Route("/cron", func(r chi.Router) {
			r.Use(middlewares.BearerTokenMiddleware(container.CronSecret))
			ph := container.PollHandler
			path := fmt.Sprintf("/reconcile/{%s}", http2.GatewayParam)
			r.Get(path, ph.Reconcile)
			r.Post(path, ph.Reconcile)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middlewares.BearerTokenMiddleware(container.AdminToken))
			rh := container.ResyncHandler
			r.Post(fmt.Sprintf("/transactions/{%s}/resync", http2.TransactionIDParam), rh.Resync)
		})
	})

	return router
}
