package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/site-tracker/engine/internal/api/handlers"
	mw "github.com/site-tracker/engine/internal/api/middleware"
	"github.com/site-tracker/engine/internal/models"
	"github.com/site-tracker/engine/internal/ratelimit"
)

type Dependencies struct {
	Tokens         mw.TokenVerifier
	AuthLimiter    ratelimit.Limiter
	TrustedProxies *mw.TrustedProxies
	CORSOrigin     string
	Registry       *prometheus.Registry

	HealthHandler      *handlers.HealthHandler
	AuthHandler        *handlers.AuthHandler
	ProjectsHandler    *handlers.ProjectsHandler
	FoldersHandler     *handlers.FoldersHandler
	LogsHandler        *handlers.LogsHandler
	AttachmentsHandler *handlers.AttachmentsHandler
	ReportsHandler     *handlers.ReportsHandler
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()

	reg := dep.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	metrics := mw.NewMetrics(reg)

	r.Use(mw.RequestID)
	r.Use(mw.Recovery)
	r.Use(mw.Logging)
	r.Use(metrics.Handler)
	r.Use(mw.SecurityHeaders)
	r.Use(mw.CORS(dep.CORSOrigin))
	r.Use(mw.ClientIP(dep.TrustedProxies))
	r.Use(chimid.Compress(5, "application/json"))

	// Health endpoints
	r.Get("/healthz", dep.HealthHandler.Liveness)
	r.Get("/readyz", dep.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	// Swagger documentation
	r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL("/docs/doc.json")))

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", dep.HealthHandler.Health)

		api.Route("/auth", func(ar chi.Router) {
			ar.Group(func(public chi.Router) {
				public.Use(mw.RateLimit(dep.AuthLimiter))
				public.Post("/register", dep.AuthHandler.Register)
				public.Post("/login", dep.AuthHandler.Login)
				public.Post("/forgot-password", dep.AuthHandler.ForgotPassword)
				public.Post("/reset-password", dep.AuthHandler.ResetPassword)
			})
			ar.Group(func(session chi.Router) {
				session.Use(mw.Auth(dep.Tokens))
				session.Get("/me", dep.AuthHandler.Me)
				session.Post("/change-password", dep.AuthHandler.ChangePassword)
			})
		})

		// Protected routes
		api.Group(func(protected chi.Router) {
			protected.Use(mw.Auth(dep.Tokens))

			protected.Route("/projects", func(pr chi.Router) {
				pr.Get("/", dep.ProjectsHandler.List)
				pr.Post("/", dep.ProjectsHandler.Create)
				pr.Route("/{id}", func(one chi.Router) {
					one.Get("/", dep.ProjectsHandler.Get)
					one.Delete("/", dep.ProjectsHandler.Delete)
					one.With(mw.RequireRole(models.RoleAdmin)).Put("/", dep.ProjectsHandler.Replace)
					one.With(mw.RequireRole(models.RoleAdmin)).Patch("/", dep.ProjectsHandler.Patch)
					one.With(mw.RequireRole(models.RoleAdmin)).Patch("/archive", dep.ProjectsHandler.Archive)

					one.Get("/report", dep.ReportsHandler.Project)
					one.Get("/reports/daily", dep.ReportsHandler.Daily)

					one.Get("/logs", dep.LogsHandler.List)
					one.Post("/logs", dep.LogsHandler.Create)

					one.Get("/folders", dep.FoldersHandler.List)
					one.Post("/folders", dep.FoldersHandler.Create)
				})
			})

			protected.Route("/folders/{id}", func(fr chi.Router) {
				fr.Patch("/", dep.FoldersHandler.Rename)
				fr.Delete("/", dep.FoldersHandler.Delete)
			})

			protected.Route("/logs/{id}", func(lr chi.Router) {
				lr.Get("/", dep.LogsHandler.Get)
				lr.Put("/", dep.LogsHandler.Replace)
				lr.Patch("/", dep.LogsHandler.Patch)
				lr.Delete("/", dep.LogsHandler.Delete)
				lr.Get("/attachments", dep.LogsHandler.Attachments)
				lr.Post("/attachments", dep.AttachmentsHandler.Upload)
			})

			protected.Route("/attachments/{id}", func(ar chi.Router) {
				ar.Delete("/", dep.AttachmentsHandler.Delete)
				ar.Get("/comments", dep.AttachmentsHandler.ListComments)
				ar.Post("/comments", dep.AttachmentsHandler.AddComment)
			})
		})
	})

	return r
}
