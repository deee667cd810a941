// Package handler provides the JSON HTTP API for Task Flow.
package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/prn-tf/taskflow/internal/ai"
	"github.com/prn-tf/taskflow/internal/metrics"
	"github.com/prn-tf/taskflow/internal/store"
)

// Router wires the API routes to the store.
type Router struct {
	store       *store.Store
	ai          ai.Generator
	metrics     *metrics.Metrics
	metricsPath string
	markdown    goldmark.Markdown
	logger      zerolog.Logger
}

// RouterConfig contains configuration for the router.
type RouterConfig struct {
	Store   *store.Store
	AI      ai.Generator
	Metrics *metrics.Metrics

	// MetricsPath mounts the Prometheus handler. Empty disables it.
	MetricsPath string

	Logger zerolog.Logger
}

// NewRouter creates a new Router.
func NewRouter(config RouterConfig) *Router {
	return &Router{
		store:       config.Store,
		ai:          config.AI,
		metrics:     config.Metrics,
		metricsPath: config.MetricsPath,
		markdown:    goldmark.New(goldmark.WithExtensions(extension.GFM)),
		logger:      config.Logger.With().Str("component", "router").Logger(),
	}
}

// Handler returns the main HTTP handler.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(rt.requestLogger)

	// Health check (no session)
	r.Get("/health", rt.handleHealth)
	if rt.metricsPath != "" {
		r.Handle(rt.metricsPath, rt.metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/session", rt.handleLogin)
		r.Delete("/session", rt.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(rt.requireSession)

			r.Get("/session", rt.handleSession)

			r.Get("/users", rt.handleListUsers)
			r.Post("/users", rt.handleCreateUser)
			r.Put("/users/{id}", rt.handleUpdateUser)
			r.Delete("/users/{id}", rt.handleDeleteUser)

			r.Get("/projects", rt.handleListProjects)
			r.Post("/projects", rt.handleCreateProject)
			r.Get("/projects/{id}", rt.handleGetProject)
			r.Put("/projects/{id}", rt.handleUpdateProject)
			r.Post("/projects/{id}/members/{userID}", rt.handleToggleMember)
			r.Get("/projects/{id}/tasks", rt.handleProjectTasks)
			r.Post("/projects/{id}/summary", rt.handleSummarize)

			r.Get("/tasks", rt.handleListTasks)
			r.Post("/tasks", rt.handleCreateTask)
			r.Get("/tasks/{id}", rt.handleGetTask)
			r.Put("/tasks/{id}", rt.handleUpdateTask)
			r.Delete("/tasks/{id}", rt.handleDeleteTask)
			r.Put("/tasks/{id}/status", rt.handleMoveTask)
			r.Post("/tasks/{id}/assignees/{userID}", rt.handleToggleAssignee)
			r.Post("/tasks/{id}/comments", rt.handleAddComment)
			r.Post("/tasks/{id}/subtasks", rt.handleSuggestSubtasks)

			r.Get("/reports", rt.handleListReports)
			r.Post("/reports", rt.handleCreateReport)
			r.Get("/reports/{id}", rt.handleGetReport)
			r.Put("/reports/{id}", rt.handleUpdateReport)
			r.Delete("/reports/{id}", rt.handleDeleteReport)
			r.Get("/reports/{id}/xlsx", rt.handleReportXLSX)
			r.Put("/reports/{id}/title", rt.handleRenameReport)
			r.Post("/reports/{id}/columns", rt.handleAddColumn)
			r.Put("/reports/{id}/columns/{columnID}", rt.handleRenameColumn)
			r.Delete("/reports/{id}/columns/{columnID}", rt.handleDeleteColumn)
			r.Post("/reports/{id}/rows", rt.handleAddRow)
			r.Delete("/reports/{id}/rows/{rowID}", rt.handleDeleteRow)
			r.Put("/reports/{id}/rows/{rowID}/cells/{columnID}", rt.handleUpdateCell)

			r.Get("/announcements", rt.handleListAnnouncements)
			r.Post("/announcements", rt.handleCreateAnnouncement)
			r.Delete("/announcements/{id}", rt.handleDeleteAnnouncement)

			r.Get("/logs", rt.handleListLogs)
			r.Get("/export/tasks.csv", rt.handleExportCSV)
			r.Get("/export/tasks.xlsx", rt.handleExportXLSX)
		})
	})

	return r
}

// handleHealth reports whether the storage backend is reachable.
func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := rt.store.Ping(r.Context()); err != nil {
		rt.logger.Warn().Err(err).Msg("health check failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// requireSession rejects API calls made while nobody is logged in.
func (rt *Router) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rt.store.Session() == nil {
			rt.writeError(w, r, errNoSession)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rt *Router) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		rt.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}
