// Package server exposes the application builder sessions over HTTP.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"application-builder/internal/builder/analytics"
	"application-builder/internal/builder/portfolio"
	"application-builder/internal/builder/session"
	"application-builder/internal/common/database"
	"application-builder/internal/common/logger"
	"application-builder/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const readinessTimeout = 3 * time.Second

// ApplicationService changes applications that were already submitted.
type ApplicationService interface {
	Update(ctx context.Context, applicationID string, req models.UpdateApplicationRequest) (*models.ApiResponse, error)
	Withdraw(ctx context.Context, applicationID string) (*models.ApiResponse, error)
}

type Options struct {
	Manager *session.Manager
	Ranker  *portfolio.Ranker
	Checks  *database.Checks
	Logger  logger.Logger
	// Metrics serves GET /metrics; nil uses the default Prometheus registry.
	Metrics http.Handler
	// Tracker serves GET /analytics/events when set.
	Tracker *analytics.Tracker
	// Applications serves PUT and DELETE /applications/{id} when set.
	Applications ApplicationService
}

type Server struct {
	manager      *session.Manager
	ranker       *portfolio.Ranker
	checks       *database.Checks
	tracker      *analytics.Tracker
	applications ApplicationService
	logger       logger.Logger
	validator    *validator.Validate
	mux          *http.ServeMux
}

func New(opts Options) *Server {
	ranker := opts.Ranker
	if ranker == nil {
		ranker = portfolio.NewDefaultRanker()
	}
	checks := opts.Checks
	if checks == nil {
		checks = database.NewChecks()
	}
	metricsHandler := opts.Metrics
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}

	s := &Server{
		manager:      opts.Manager,
		ranker:       ranker,
		checks:       checks,
		tracker:      opts.Tracker,
		applications: opts.Applications,
		logger:       opts.Logger.WithFields(map[string]interface{}{"component": "http"}),
		validator:    validator.New(),
		mux:          http.NewServeMux(),
	}

	s.mux.HandleFunc("GET /templates", s.handleListTemplates)
	s.mux.HandleFunc("GET /portfolio", s.handleListPortfolio)

	s.mux.HandleFunc("POST /sessions", s.handleCreateSession)
	s.mux.HandleFunc("GET /sessions/{id}", s.handleGetSession)
	s.mux.HandleFunc("DELETE /sessions/{id}", s.handleCancelSession)
	s.mux.HandleFunc("POST /sessions/{id}/template", s.handleSelectTemplate)
	s.mux.HandleFunc("PUT /sessions/{id}/cover-letter", s.handleEditCoverLetter)
	s.mux.HandleFunc("POST /sessions/{id}/portfolio/{itemId}", s.handleTogglePortfolioItem)
	s.mux.HandleFunc("PUT /sessions/{id}/notes", s.handleEditNotes)
	s.mux.HandleFunc("PUT /sessions/{id}/resume", s.handleAttachResume)
	s.mux.HandleFunc("POST /sessions/{id}/next", s.handleNext)
	s.mux.HandleFunc("POST /sessions/{id}/previous", s.handlePrevious)
	s.mux.HandleFunc("POST /sessions/{id}/submit", s.handleSubmit)

	if s.applications != nil {
		s.mux.HandleFunc("PUT /applications/{id}", s.handleUpdateApplication)
		s.mux.HandleFunc("DELETE /applications/{id}", s.handleWithdrawApplication)
	}
	if s.tracker != nil {
		s.mux.HandleFunc("GET /analytics/events", s.handleAnalyticsEvents)
	}

	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /ready", s.handleReady)
	s.mux.Handle("GET /metrics", metricsHandler)

	return s
}

// Handler returns the routed API wrapped in request logging.
func (s *Server) Handler() http.Handler {
	return s.withLogging(s.mux)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		if r.URL.Path == "/metrics" || r.URL.Path == "/health" {
			return
		}
		s.logger.Debug("request handled", map[string]interface{}{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     rec.status,
			"durationMs": time.Since(start).Milliseconds(),
		})
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	results, err := s.checks.Run(r.Context(), readinessTimeout)
	body := map[string]interface{}{
		"status": "ready",
		"checks": results,
		"time":   time.Now().Format(time.RFC3339),
	}
	if err != nil {
		body["status"] = "not_ready"
		s.jsonResponse(w, http.StatusServiceUnavailable, body)
		return
	}
	s.jsonResponse(w, http.StatusOK, body)
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode response", map[string]interface{}{"error": err.Error()})
	}
}

// submitContext keeps a submission running after the client disconnects.
func submitContext(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}
