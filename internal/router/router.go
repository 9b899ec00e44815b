package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"career-advisor/internal/handlers"
	"career-advisor/internal/middleware"
)

func New(
	log *zap.Logger,
	adviceHandler *handlers.AdviceHandler,
	corsOrigin string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(log))
	r.Use(chimiddleware.Recoverer)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	// ──── Form page ────
	r.Get("/", adviceHandler.Page)
	r.Post("/", adviceHandler.Submit)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.CORS(corsOrigin))
		r.Post("/advice", adviceHandler.Advise)
	})

	return r
}
