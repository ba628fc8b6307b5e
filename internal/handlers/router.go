package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/recipe-hub/api/internal/platform/httpx"
	"github.com/recipe-hub/api/internal/platform/observability"
)

const (
	defaultAPIPrefix = "/api/v1"
	defaultTimeout   = 60 * time.Second
)

// RouterConfig wires the handler groups into the route tree.
type RouterConfig struct {
	Logger         *zap.Logger
	AllowedOrigins []string

	Health *HealthHandlers
	Public *PublicHandlers
	Auth   *AuthHandlers
	Admin  *AdminHandlers
}

// NewRouter constructs the chi router with shared middleware and the route
// groups for the public site, authentication and the admin surface.
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(defaultTimeout))
	r.Use(observability.InjectLoggerMiddleware(cfg.Logger))
	r.Use(observability.RequestLoggerMiddleware())

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		httpx.WriteError(req.Context(), w, httpx.NewError("route_not_found", fmt.Sprintf("no route for %s", req.URL.Path), http.StatusNotFound))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		httpx.WriteError(req.Context(), w, httpx.NewError("method_not_allowed", fmt.Sprintf("method %s not allowed on %s", req.Method, req.URL.Path), http.StatusMethodNotAllowed))
	})

	health := cfg.Health
	if health == nil {
		health = NewHealthHandlers()
	}
	r.Get("/healthz", health.Healthz)

	r.Route(defaultAPIPrefix, func(api chi.Router) {
		if cfg.Public != nil {
			api.Route("/public", cfg.Public.Routes)
		}
		if cfg.Auth != nil {
			api.Route("/auth", cfg.Auth.Routes)
		}
		if cfg.Admin != nil {
			api.Route("/admin", cfg.Admin.Routes)
		}
	})

	return r
}
