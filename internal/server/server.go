// Package server exposes the salon REST API consumed by the CLI.
package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/ruminaider/salon-sync/internal/assets"
	"github.com/ruminaider/salon-sync/internal/ratelimit"
	"github.com/ruminaider/salon-sync/internal/repository"
	"github.com/ruminaider/salon-sync/internal/response"
	"go.uber.org/zap"
)

// DefaultMaxUploadBytes caps concern photo uploads at 5 MiB.
const DefaultMaxUploadBytes int64 = 5 << 20

// Repository is the storage the handlers need. *repository.Postgres and
// *repository.Memory both implement it.
type Repository interface {
	Ping(ctx context.Context) error
	GetProfile(ctx context.Context, userID, salonID string) (*repository.ProfileRecord, error)
	UpsertProfile(ctx context.Context, r *repository.ProfileRecord) error
	Subscribe(ctx context.Context, email string) (*repository.Subscriber, error)
	ListTables(ctx context.Context) ([]string, error)
}

// AssetStore persists uploaded files and serves them back.
type AssetStore interface {
	Save(ctx context.Context, name string, r io.Reader) (assets.Asset, error)
	Handler() http.Handler
}

// Config tunes the HTTP surface.
type Config struct {
	AllowedOrigins []string
	MaxUploadBytes int64
	RequestTimeout time.Duration
	// TrustProxy takes the client address from X-Forwarded-For and
	// X-Real-IP. Enable it only behind a proxy that overwrites them.
	TrustProxy bool
}

// Server holds the dependencies shared by all handlers.
type Server struct {
	repo    Repository
	assets  AssetStore
	limiter ratelimit.Limiter
	logger  *zap.Logger
	cfg     Config
}

// New builds a Server. limiter may be nil to disable newsletter rate
// limiting.
func New(repo Repository, store AssetStore, limiter ratelimit.Limiter, logger *zap.Logger, cfg Config) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	return &Server{repo: repo, assets: store, limiter: limiter, logger: logger, cfg: cfg}
}

// Routes returns the root handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if s.cfg.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(LoggerMiddleware(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", s.health)
	r.Handle(assets.URLPrefix+"*", s.assets.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/customer-records/profile/{userID}", s.getProfile)
		r.Post("/customer-records/profile", s.saveProfile)
		r.Post("/uploads", s.upload)
		r.Get("/tables", s.listTables)

		r.Group(func(r chi.Router) {
			if s.limiter != nil {
				r.Use(ratelimit.Middleware(s.limiter, s.logger))
			}
			r.Post("/newsletter", s.subscribe)
			r.Post("/newsletter/subscribe", s.subscribe)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotFound, "Endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Ping(r.Context()); err != nil {
		s.logger.Warn("health check failed", zap.Error(err))
		response.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listTables(w http.ResponseWriter, r *http.Request) {
	tables, err := s.repo.ListTables(r.Context())
	if err != nil {
		s.logger.Error("listing tables", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if tables == nil {
		tables = []string{}
	}
	response.JSON(w, http.StatusOK, map[string][]string{"tables": tables})
}

// LoggerMiddleware logs one line per request.
func LoggerMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("remote_addr", r.RemoteAddr),
			)
		})
	}
}
