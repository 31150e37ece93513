package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"cratekeeper/internal/config"
	"cratekeeper/internal/logging"
	"cratekeeper/internal/manager"
	"cratekeeper/internal/reconcile"
	"cratekeeper/internal/registry"
)

// TrackLister yields an external track list for reconciliation. The Plex
// client implements it.
type TrackLister interface {
	ListTracks(ctx context.Context) ([]reconcile.Track, error)
}

// Server exposes the collection engine over HTTP.
type Server struct {
	bind      string
	token     string
	logger    *slog.Logger
	manager   *manager.Manager
	registry  *registry.Store
	external  TrackLister
	threshold float64

	router   *mux.Router
	server   *http.Server
	listener net.Listener
}

// Option customizes a Server.
type Option func(*Server)

// WithTrackLister attaches an external track source for reconciliation.
func WithTrackLister(lister TrackLister) Option {
	return func(s *Server) { s.external = lister }
}

// New builds a Server from configuration and its collaborators.
func New(cfg *config.Config, mgr *manager.Manager, reg *registry.Store, logger *slog.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	srv := &Server{
		bind:      strings.TrimSpace(cfg.Paths.APIBind),
		token:     strings.TrimSpace(cfg.Paths.APIToken),
		logger:    logger.With(logging.String("component", "api-server")),
		manager:   mgr,
		registry:  reg,
		threshold: cfg.Reconcile.ThresholdPercent,
	}
	for _, opt := range opts {
		opt(srv)
	}
	srv.router = srv.routes()
	srv.server = &http.Server{
		Handler:           srv.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.authMiddleware)

	api.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)

	api.HandleFunc("/sources", s.handleListSources).Methods(http.MethodGet)
	api.HandleFunc("/sources", s.handleRegisterSource).Methods(http.MethodPost)
	api.HandleFunc("/sources/{id}", s.handleDeleteSource).Methods(http.MethodDelete)
	api.HandleFunc("/cache/invalidate", s.handleInvalidate).Methods(http.MethodPost)

	api.HandleFunc("/tree", s.handleTree).Methods(http.MethodGet)
	api.HandleFunc("/tree/folders", s.handleCreateFolder).Methods(http.MethodPost)
	api.HandleFunc("/tree/playlists", s.handleCreatePlaylist).Methods(http.MethodPost)
	api.HandleFunc("/tree/move", s.handleMove).Methods(http.MethodPost)
	api.HandleFunc("/tree/move-batch", s.handleMoveBatch).Methods(http.MethodPost)
	api.HandleFunc("/tree/duplicate", s.handleDuplicate).Methods(http.MethodPost)
	api.HandleFunc("/tree/rename", s.handleRename).Methods(http.MethodPost)
	api.HandleFunc("/tree/delete", s.handleDelete).Methods(http.MethodPost)

	api.HandleFunc("/playlists/orphans", s.handleOrphans).Methods(http.MethodPost)
	api.HandleFunc("/playlists/release-companion", s.handleReleaseCompanion).Methods(http.MethodPost)

	api.HandleFunc("/tracks", s.handleListTracks).Methods(http.MethodGet)
	api.HandleFunc("/tracks", s.handleUpdateTracks).Methods(http.MethodPatch)
	api.HandleFunc("/tracks/merge", s.handleMerge).Methods(http.MethodPost)

	api.HandleFunc("/comments/categories", s.handleCommentCategories).Methods(http.MethodGet)
	api.HandleFunc("/tags/mined", s.handleMinedTags).Methods(http.MethodGet)
	api.HandleFunc("/tags/preview", s.handleTagPreview).Methods(http.MethodPost)
	api.HandleFunc("/tags/write", s.handleTagWrite).Methods(http.MethodPost)

	api.HandleFunc("/reconcile", s.handleReconcile).Methods(http.MethodPost)

	return r
}

// Handler exposes the routed handler, primarily for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins serving and returns once the listener is bound. The server
// shuts down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", slog.String("error", err.Error()))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", slog.String("address", listener.Addr().String()))
	return nil
}

// Stop shuts the server down, draining in-flight requests.
func (s *Server) Stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

// Addr returns the bound listen address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// authMiddleware validates bearer tokens. An empty configured token disables
// authentication.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	if s.token == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") != s.token {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

const userHeader = "X-User-Id"

// userID resolves the requesting user. Single-user deployments can omit the
// header entirely.
func userID(r *http.Request) string {
	if user := strings.TrimSpace(r.Header.Get(userHeader)); user != "" {
		return user
	}
	return "default"
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(s.logger, w, http.StatusOK, statusResponse{
		Running:            true,
		ExternalConfigured: s.external != nil,
		ThresholdPercent:   s.threshold,
	})
}

type statusResponse struct {
	Running            bool    `json:"running"`
	ExternalConfigured bool    `json:"externalConfigured"`
	ThresholdPercent   float64 `json:"thresholdPercent"`
}
