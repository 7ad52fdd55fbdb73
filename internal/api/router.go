package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MikeSquared-Agency/Qualify/internal/assess"
	"github.com/MikeSquared-Agency/Qualify/internal/config"
	"github.com/MikeSquared-Agency/Qualify/internal/hermes"
	"github.com/MikeSquared-Agency/Qualify/internal/store"
)

// Endpoints lists the calculation routes advertised by the status document and
// the not-found answer.
var Endpoints = []string{"/calculate", "/preview", "/export-html", "/export-json", "/test"}

// NewRouter builds the public API. A nil store leaves the draft routes
// unmounted.
func NewRouter(a *assess.Assessor, s store.Store, h hermes.Client, cfg *config.Config, logger *slog.Logger) http.Handler {
	if h == nil {
		h = hermes.NopClient{}
	}

	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(RateLimitMiddleware(cfg.Server.RateLimitPerMinute))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		ExposedHeaders: []string{"X-Calculated-At", "X-Calculation-ID", "Content-Disposition"},
		MaxAge:         86400,
	}))
	r.Use(chiMiddleware.Timeout(cfg.RequestTimeout()))

	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	calc := NewCalculateHandler(a, cfg.Report)

	r.Get("/", calc.Status)
	r.Get("/test", calc.Status)
	r.Post("/calculate", calc.Calculate)
	r.Post("/preview", calc.Preview)
	r.Post("/export-html", calc.ExportHTML)
	r.Post("/export-json", calc.ExportJSON)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/point-table", calc.PointTable)

		if s == nil {
			return
		}
		drafts := NewDraftsHandler(s, h, logger)

		r.Post("/drafts", drafts.Create)
		r.Get("/drafts", drafts.List)
		r.Get("/drafts/{id}", drafts.Get)
		r.Put("/drafts/{id}", drafts.Update)
		r.Delete("/drafts/{id}", drafts.Delete)

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.Server.AdminToken))
			r.Get("/admin/drafts/backup", drafts.Backup)
			r.Post("/admin/drafts/restore", drafts.Restore)
		})
	})

	return r
}

func NewMetricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]any{
		"error":               "endpoint not found",
		"available_endpoints": Endpoints,
	})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	allowed := allowedMethods(r.URL.Path)
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeJSON(w, http.StatusMethodNotAllowed, map[string]any{
		"error":           "method not allowed",
		"allowed_methods": allowed,
	})
}

func allowedMethods(path string) []string {
	switch {
	case path == "/" || path == "/test" || strings.HasSuffix(path, "/point-table") || strings.HasSuffix(path, "/backup"):
		return []string{"GET", "OPTIONS"}
	case path == "/api/v1/drafts":
		return []string{"GET", "POST", "OPTIONS"}
	case strings.HasPrefix(path, "/api/v1/drafts/"):
		return []string{"GET", "PUT", "DELETE", "OPTIONS"}
	default:
		return []string{"POST", "OPTIONS"}
	}
}
