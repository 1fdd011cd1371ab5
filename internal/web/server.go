package web

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/vbonduro/wardrobe/internal/service"
)

const (
	shutdownTimeout = 10 * time.Second

	defaultStreamHeartbeat    = 30 * time.Second
	defaultStreamWriteTimeout = 60 * time.Second
)

// Services are the application services the API exposes.
type Services struct {
	Clothes  *service.ClothingService
	Outfits  *service.OutfitService
	Tags     *service.TagService
	Filters  *service.SavedFilterService
	Insights *service.InsightsService
}

// Options tune the HTTP surface.
type Options struct {
	// CORSOrigins lists the browser origins allowed to call the API from
	// another host. Empty means same-origin only.
	CORSOrigins []string

	// StreamHeartbeat is the idle interval between keep-alive comments on
	// event streams. StreamWriteTimeout bounds each stream write; it must be
	// longer than the heartbeat. Zero selects the defaults.
	StreamHeartbeat    time.Duration
	StreamWriteTimeout time.Duration
}

type Server struct {
	svc    Services
	opts   Options
	router chi.Router
	logger *slog.Logger
}

func NewServer(svc Services, opts Options, logger *slog.Logger) *Server {
	if opts.StreamHeartbeat <= 0 {
		opts.StreamHeartbeat = defaultStreamHeartbeat
	}
	if opts.StreamWriteTimeout <= 0 {
		opts.StreamWriteTimeout = defaultStreamWriteTimeout
	}
	s := &Server{svc: svc, opts: opts, logger: logger}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(func(next http.Handler) http.Handler { return requestLogger(s.logger, next) })
	r.Use(securityHeaders)
	r.Use(chimw.CleanPath)
	if len(s.opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.opts.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/clothes", func(r chi.Router) {
			r.Get("/", s.handleListClothes)
			r.Post("/", s.handleCreateClothing)
			r.Post("/suggest", s.handleSuggest)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetClothing)
				r.Put("/", s.handleUpdateClothing)
				r.Delete("/", s.handleDeleteClothing)
				r.Put("/tags", s.handleSetClothingTags)
				r.Post("/photo", s.handleUploadPhoto)
				r.Get("/photo", s.handleGetPhoto)
				r.Delete("/photo", s.handleDeletePhoto)
			})
		})

		r.Route("/outfits", func(r chi.Router) {
			r.Get("/", s.handleListOutfits)
			r.Post("/", s.handleCreateOutfit)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetOutfit)
				r.Put("/", s.handleUpdateOutfit)
				r.Delete("/", s.handleDeleteOutfit)
				r.Put("/clothes", s.handleSetOutfitClothes)
				r.Put("/clothes/{clothingID}", s.handleAddOutfitClothing)
				r.Delete("/clothes/{clothingID}", s.handleRemoveOutfitClothing)
				r.Get("/wears", s.handleListWears)
				r.Post("/wears", s.handleLogWear)
				r.Put("/worn-today", s.handleMarkWornToday)
				r.Delete("/worn-today", s.handleUnmarkWornToday)
			})
		})
		r.Delete("/wears/{id}", s.handleDeleteWear)

		r.Route("/tags", func(r chi.Router) {
			r.Get("/", s.handleListTags)
			r.Post("/", s.handleCreateTag)
			r.Put("/{id}", s.handleRenameTag)
			r.Delete("/{id}", s.handleDeleteTag)
		})

		r.Route("/filters", func(r chi.Router) {
			r.Get("/", s.handleListFilters)
			r.Post("/", s.handleCreateFilter)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetFilter)
				r.Put("/", s.handleUpdateFilter)
				r.Delete("/", s.handleDeleteFilter)
				r.Get("/clothes", s.handleApplyFilter)
			})
		})

		r.Get("/insights", s.handleInsights)

		r.Route("/stream", func(r chi.Router) {
			r.Get("/clothes", s.handleStreamClothes)
			r.Get("/outfits", s.handleStreamOutfits)
			r.Get("/outfits/{id}", s.handleStreamOutfit)
			r.Get("/tags", s.handleStreamTags)
			r.Get("/filters", s.handleStreamFilters)
			r.Get("/insights", s.handleStreamInsights)
		})
	})
	return r
}

// securityHeaders adds defensive HTTP response headers to every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'none'; img-src 'self'; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the underlying writer, which the
// event streams need for flushing.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
// Request contexts derive from ctx so open event streams end with it.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.logger.Info("starting server", "addr", addr)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
