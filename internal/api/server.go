package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/dgallion1/coursedraft/internal/config"
	"github.com/dgallion1/coursedraft/internal/docpath"
	"github.com/dgallion1/coursedraft/internal/editor"
	"github.com/dgallion1/coursedraft/internal/gateway"
	"github.com/dgallion1/coursedraft/internal/pipeline"
)

// Server is the HTTP API server for coursedraft.
type Server struct {
	router chi.Router
	editor *editor.Editor
	jobs   *pipeline.Orchestrator
	gw     gateway.Gateway
	log    *slog.Logger
	cfg    config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(ed *editor.Editor, jobs *pipeline.Orchestrator, gw gateway.Gateway, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		editor: ed,
		jobs:   jobs,
		gw:     gw,
		log:    log,
		cfg:    cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))
	r.Use(Metrics)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
	}).Handler)

	// Public endpoints.
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Get("/api/projects", s.handleListProjects)
		r.Post("/api/projects/generate", s.handleGenerate)
		r.Post("/api/projects/new", s.handleNewProject)
		r.Put("/api/projects/active", s.handleSelectProject)
		r.Delete("/api/projects/{projectID}", s.handleDeleteProject)
		r.Get("/api/jobs/{jobID}", s.handleJobStatus)

		r.Get("/api/document", s.handleGetDocument)
		r.Patch("/api/document/field", s.handleEditField)
		r.Put("/api/document/value", s.handleSetValue)
		r.Post("/api/document/reorder", s.handleReorder)
		r.Post("/api/document/save", s.handleSave)
		r.Post("/api/document/refine", s.handleRefine)
		r.Post("/api/document/lesson-content", s.handleLessonContent)

		r.Get("/api/history", s.handleHistory)
		r.Post("/api/history/undo", s.handleUndo)
		r.Post("/api/history/redo", s.handleRedo)

		r.Post("/api/outreach", s.handleOutreach)
		r.Post("/api/narration", s.handleNarration)

		r.Get("/api/export/{format}", s.handleExport)
		r.Post("/api/briefs", s.handleBrief)

		r.Get("/api/preferences/theme", s.handleGetTheme)
		r.Put("/api/preferences/theme", s.handleSetTheme)

		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// decodeJSON reads a request body and runs its Validate method when it has one.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	if vv, ok := v.(validation.Validatable); ok {
		if err := vv.Validate(); err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return false
		}
	}
	return true
}

// writeError maps domain errors onto HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		pathErr  *docpath.PathError
		limitErr *gateway.RateLimitError
		genErr   *gateway.GenerationError
		valErrs  validation.Errors
	)
	switch {
	case errors.As(err, &limitErr):
		w.Header().Set("Retry-After", fmt.Sprint(int(math.Ceil(limitErr.RetryAfter.Seconds()))))
		jsonError(w, limitErr.UserMessage(), http.StatusTooManyRequests)
	case errors.As(err, &pathErr), errors.Is(err, docpath.ErrInvalidPath):
		jsonError(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &valErrs), errors.Is(err, editor.ErrInvalidTheme):
		jsonError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, editor.ErrProjectNotFound):
		jsonError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, editor.ErrNoActiveProject), errors.Is(err, pipeline.ErrTargetBusy):
		jsonError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, gateway.ErrNotConfigured), errors.Is(err, pipeline.ErrQueueFull):
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
	case errors.As(err, &genErr):
		s.log.Warn("generation failed", "path", r.URL.Path, "error", err)
		jsonError(w, "content generation failed: "+err.Error(), http.StatusBadGateway)
	default:
		s.log.Error("request failed", "path", r.URL.Path, "error", err)
		jsonError(w, err.Error(), http.StatusInternalServerError)
	}
}
