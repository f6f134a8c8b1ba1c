package origin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"photoreel/internal/album"
	"photoreel/internal/config"
	"photoreel/internal/logging"
	"photoreel/internal/manifest"
)

// ServerOptions configures the origin HTTP server.
type ServerOptions struct {
	Bind           string
	AllowedOrigins []string
	AssetMaxAge    int
}

// Server serves the published album tree with the same keys Sync writes.
type Server struct {
	store   *manifest.Store
	opts    ServerOptions
	logger  *slog.Logger
	handler http.Handler

	listener net.Listener
	server   *http.Server
}

// NewServer builds the router for store.
func NewServer(store *manifest.Store, opts ServerOptions, logger *slog.Logger) *Server {
	s := &Server{
		store:  store,
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "origin-server"),
	}

	allowed := opts.AllowedOrigins
	if len(allowed) == 0 {
		allowed = []string{"*"}
	}
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: allowed,
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Range", "If-None-Match", "If-Modified-Since"},
		ExposedHeaders: []string{"Content-Length", "ETag"},
		MaxAge:         300,
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(corsHandler.Handler)
	r.Use(middleware.GetHead)

	r.Get("/healthz", s.handleHealth)
	r.Get("/"+ManifestKey, s.handleGlobalManifest)
	r.Get("/{folder}/"+album.MetadataFile, s.handleAlbumMetadata)
	r.Get("/{folder}/{variant}/{file}", s.handleAsset)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		s.writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	s.handler = r
	s.server = &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// NewServerFromConfig serves cfg's albums directory on serve.bind.
func NewServerFromConfig(cfg *config.Config, logger *slog.Logger) *Server {
	store := manifest.NewStore(cfg.Paths.AlbumsDir, cfg.Paths.ManifestPath)
	return NewServer(store, ServerOptions{
		Bind:           cfg.Serve.Bind,
		AllowedOrigins: cfg.Serve.AllowedOrigins,
		AssetMaxAge:    cfg.Origin.AssetMaxAge,
	}, logger)
}

// Handler exposes the router for embedding and tests.
func (s *Server) Handler() http.Handler { return s.handler }

// Addr is the bound listen address once Run has started listening.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run listens on the configured bind address and serves until ctx is done.
// ready, when non-nil, is called with the bound address once listening.
func (s *Server) Run(ctx context.Context, ready func(addr string)) error {
	listener, err := net.Listen("tcp", s.opts.Bind)
	if err != nil {
		return fmt.Errorf("origin listen: %w", err)
	}
	s.listener = listener
	s.logger.Info("origin server listening",
		logging.String("address", listener.Addr().String()),
		logging.String("root", s.store.AlbumsDir()),
	)
	if ready != nil {
		ready(listener.Addr().String())
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("origin shutdown: %w", err)
	}
	s.logger.Info("origin server stopped")
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGlobalManifest(w http.ResponseWriter, r *http.Request) {
	s.serveFile(w, r, s.store.ManifestPath(), NoCache)
}

func (s *Server) handleAlbumMetadata(w http.ResponseWriter, r *http.Request) {
	folder := chi.URLParam(r, "folder")
	if !validSegment(folder) {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}
	s.serveFile(w, r, filepath.Join(s.store.AlbumDir(folder), album.MetadataFile), NoCache)
}

func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	folder := chi.URLParam(r, "folder")
	variant := chi.URLParam(r, "variant")
	file := chi.URLParam(r, "file")
	if variant != album.LowDir && variant != album.FullDir {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}
	if !validSegment(folder) || !validSegment(file) {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}
	root := s.store.AlbumsDir()
	target := filepath.Join(root, folder, variant, file)
	if !contained(root, target) {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}
	s.serveFile(w, r, target, AssetCacheControl(s.opts.AssetMaxAge))
}

func (s *Server) serveFile(w http.ResponseWriter, r *http.Request, filePath, cacheControl string) {
	f, err := os.Open(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.writeError(w, http.StatusNotFound, "not found")
			return
		}
		s.logger.Warn("open failed", logging.String("path", filePath), logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, "read failed")
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}
	w.Header().Set("Cache-Control", cacheControl)
	w.Header().Set("Content-Type", ContentType(filePath))
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			logging.String(logging.FieldRequestID, middleware.GetReqID(r.Context())),
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Int("status", ww.Status()),
			logging.Int("bytes", ww.BytesWritten()),
			logging.String("remote", r.RemoteAddr),
			logging.Duration("duration", time.Since(start)),
		)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", NoCache)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// validSegment rejects empty, hidden, and parent path segments.
func validSegment(segment string) bool {
	return segment != "" && segment[0] != '.' && filepath.Base(segment) == segment
}

func contained(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	return err == nil && rel != ".." && !filepath.IsAbs(rel) && (len(rel) < 3 || rel[:3] != ".."+string(filepath.Separator))
}
