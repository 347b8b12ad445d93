package browse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"exifatlas/internal/api"
	"exifatlas/internal/logging"
	"exifatlas/internal/services"
)

const (
	defaultRunLimit = 20
	shutdownTimeout = 5 * time.Second
)

// Store is the catalog surface the server reads.
type Store interface {
	api.CatalogReader
	StatusCounter
}

// Options configures the server.
type Options struct {
	Bind         string
	ExcludeYears []int
}

// Server is the read-only browse HTTP server.
type Server struct {
	bind    string
	logger  *slog.Logger
	svc     *api.CatalogService
	metrics *metrics
	router  chi.Router

	listener net.Listener
	server   *http.Server
}

// New builds a server around store. Nothing listens until Start.
func New(store Store, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		bind:    strings.TrimSpace(opts.Bind),
		logger:  logging.NewComponentLogger(logger, "browse"),
		svc:     api.NewCatalogService(store, opts.ExcludeYears),
		metrics: newMetrics(store),
	}

	r := chi.NewRouter()
	r.Use(s.metrics.middleware)
	r.Get("/api/stats", s.handleStats)
	r.Get("/api/timeline", s.handleTimeline)
	r.Get("/api/timeline/{day}/photos", s.handleDayPhotos)
	r.Get("/api/photos/{id}", s.handlePhoto)
	r.Get("/api/photos/{id}/file", s.handlePhotoFile)
	r.Get("/api/runs", s.handleRuns)
	r.Method(http.MethodGet, "/metrics", s.metrics.handler())
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		s.writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	s.router = r

	s.server = &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler exposes the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr is the bound listener address once started.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.bind
	}
	return s.listener.Addr().String()
}

// Start binds the listener and serves in the background.
func (s *Server) Start() error {
	if s.bind == "" {
		return services.Wrap(services.ErrConfiguration, "browse", "listen", "browse.bind is empty", nil)
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("browse listen: %w", err)
	}
	s.listener = listener
	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("browse server error", logging.Error(err))
		}
	}()
	s.logger.Info("browse server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Run starts the server and blocks until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	return s.Shutdown()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("browse shutdown: %w", err)
	}
	s.logger.Info("browse server stopped")
	return nil
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.Stats(r.Context())
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	entries, err := s.svc.Timeline(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.TimelineResponse{Entries: entries})
}

func (s *Server) handleDayPhotos(w http.ResponseWriter, r *http.Request) {
	day := chi.URLParam(r, "day")
	location := r.URL.Query().Get("location")
	photos, err := s.svc.DayPhotos(r.Context(), day, location)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.PhotoListResponse{Day: day, Location: location, Photos: photos})
}

func (s *Server) handlePhoto(w http.ResponseWriter, r *http.Request) {
	photo, ok := s.lookupPhoto(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, photo)
}

func (s *Server) handlePhotoFile(w http.ResponseWriter, r *http.Request) {
	photo, ok := s.lookupPhoto(w, r)
	if !ok {
		return
	}
	info, err := os.Stat(photo.Path)
	if err != nil || !info.Mode().IsRegular() {
		s.writeError(w, http.StatusNotFound, "photo file not found")
		return
	}
	http.ServeFile(w, r, photo.Path)
}

func (s *Server) lookupPhoto(w http.ResponseWriter, r *http.Request) (*api.Photo, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		s.writeError(w, http.StatusBadRequest, "invalid photo id")
		return nil, false
	}
	photo, err := s.svc.Describe(r.Context(), id)
	if err != nil {
		s.writeFailure(w, err)
		return nil, false
	}
	return photo, true
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	limit := defaultRunLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	runs, err := s.svc.Runs(r.Context(), limit)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.RunListResponse{Runs: runs})
}

func (s *Server) writeFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	default:
		s.logger.Error("browse request failed", logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message})
}
