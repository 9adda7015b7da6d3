package rest

import (
	"context"
	"net/http"
	"time"

	"campusqa/interfaces/http/rest/handlers"
	"campusqa/interfaces/http/rest/middleware"
	"campusqa/pkg/common"
	"campusqa/pkg/observability"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// ReadinessCheck reports whether the storage backend is reachable
type ReadinessCheck func(ctx context.Context) error

// RouterOptions toggles optional surfaces
type RouterOptions struct {
	EnableCORS    bool
	CORSOrigins   []string
	EnableMetrics bool
}

// Router creates and configures the HTTP router
type Router struct {
	forum     *handlers.ForumHandler
	metrics   *observability.Collector
	readiness ReadinessCheck
	options   RouterOptions
	logger    *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	forum *handlers.ForumHandler,
	metrics *observability.Collector,
	readiness ReadinessCheck,
	options RouterOptions,
	logger *zap.Logger,
) *Router {
	return &Router{
		forum:     forum,
		metrics:   metrics,
		readiness: readiness,
		options:   options,
		logger:    logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(middleware.EchoRequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	if rt.metrics != nil {
		router.Use(middleware.Metrics(rt.metrics))
	}

	if rt.options.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   rt.options.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.options.EnableMetrics && rt.metrics != nil {
		router.Handle("/metrics", rt.metrics.Handler())
	}

	// Forum page and form posts
	router.Get("/", rt.forum.Page)
	router.Post("/signup", rt.forum.Signup)
	router.Post("/login", rt.forum.Login)
	router.Post("/logout", rt.forum.Logout)
	router.Route("/questions", func(r chi.Router) {
		r.Post("/", rt.forum.AskQuestion)
		r.Post("/solved", rt.forum.ToggleSolved)
		r.Post("/{questionID}/select", rt.forum.SelectQuestion)
	})
	router.Post("/answers", rt.forum.AnswerQuestion)
	router.Post("/tickets", rt.forum.SubmitTicket)

	// API v1 routes
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/views", rt.forum.Views)
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	if rt.readiness != nil {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()
		if err := rt.readiness(ctx); err != nil {
			rt.logger.Warn("Readiness check failed", zap.Error(err))
			common.RespondError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "storage is not reachable")
			return
		}
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
