package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterDeps struct {
	Ingestion *IngestionHandler
	Programs  *ProgramHandler
	Auth      BasicAuth
	Gatherer  prometheus.Gatherer
	Logger    *slog.Logger
}

func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware(deps.Logger))
	r.Use(loggingMiddleware(deps.Logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/programs", deps.Programs.List)
		r.Get("/programs/search", deps.Programs.Search)
		r.Get("/programs/{programName}/{networkName}", deps.Programs.Get)
		r.Get("/networks", deps.Programs.Networks)
		r.Get("/categories", deps.Programs.Categories)
		r.Get("/admin/programs", deps.Programs.AdminList)
		r.Get("/admin/update-category-mappings", deps.Programs.RemapCategoriesMethodNotAllowed)

		r.Group(func(r chi.Router) {
			r.Use(basicAuthMiddleware(deps.Auth, deps.Logger))
			r.Get("/fetch", deps.Ingestion.FetchAll)
			r.Get("/fetch/{network}", deps.Ingestion.Fetch)
			r.Post("/admin/update-category-mappings", deps.Programs.RemapCategories)
		})
	})

	return r
}
