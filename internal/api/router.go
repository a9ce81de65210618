package api

import (
	"net/http"

	_ "multicurrency/docs"
	"multicurrency/internal/rate/handler"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swagger "github.com/swaggo/http-swagger"
)

func NewRouter(h *handler.Handler, gatherer prometheus.Gatherer) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Heartbeat("/healthz"))

	// Swagger UI
	router.Get("/swagger/*", swagger.WrapHandler)
	router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/rates/updates", h.ScheduleUpdate)
		r.Get("/rates/updates/status", h.GetUpdateStatus)
		r.Get("/rates", h.GetRatesOverview)
		r.Get("/rates/{code}", h.GetRate)

		r.Get("/convert", h.Convert)

		r.Post("/payments", h.RecordPayment)
		r.Get("/payments", h.ListPayments)
		r.Post("/payments/{id}/reverse", h.ReversePayment)

		r.Get("/history", h.ListHistory)

		r.Route("/currencies", func(r chi.Router) {
			r.Get("/", h.ListCurrencies)
			r.Post("/", h.CreateCurrency)
			r.Get("/{code}", h.GetCurrency)
			r.Put("/{code}", h.UpdateCurrency)
			r.Delete("/{code}", h.DeleteCurrency)
			r.Put("/{code}/rate", h.SetCurrencyRate)
			r.Post("/{code}/toggle", h.ToggleCurrency)
			r.Post("/{code}/resolve", h.ResolveCurrency)
		})

		r.Get("/settings", h.GetSettings)
		r.Put("/settings", h.UpdateSettings)
	})
	return router
}
