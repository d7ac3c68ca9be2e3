// Package server exposes the session controller as a JSON API for a web
// frontend.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/abhisek/knowflow/internal/session"
)

// Generation calls can take a while on local models.
const requestTimeout = 3 * time.Minute

// maxBodyBytes bounds request bodies. Topics and configs are small.
const maxBodyBytes = 64 << 10

// Options configures a Server.
type Options struct {
	Controller     *session.Controller
	Logger         *slog.Logger
	AllowedOrigins []string
}

// Server serves the API over one controller. Every client shares the
// same session, matching the terminal UI.
type Server struct {
	ctrl   *session.Controller
	logger *slog.Logger
	router chi.Router
}

// New builds the router.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		ctrl:   opts.Controller,
		logger: logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger(logger), middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.RequestSize(maxBodyBytes))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(api chi.Router) {
		api.Get("/state", s.handleState)
		api.Post("/topic", s.handleTopic)
		api.Post("/home", s.intent(s.ctrl.GoHome))
		api.Post("/resume", s.intent(s.ctrl.Resume))
		api.Post("/error/dismiss", s.intent(func() error {
			s.ctrl.DismissError()
			return nil
		}))

		api.Route("/history", func(hr chi.Router) {
			hr.Get("/", s.handleHistory)
			hr.Post("/{id}/open", s.handleOpenHistory)
			hr.Delete("/{id}", s.handleDeleteHistory)
		})

		api.Post("/nodes/{id}/quiz", s.handleSelectNode)

		api.Route("/quiz", func(qr chi.Router) {
			qr.Post("/select", s.handleSelectOption)
			qr.Post("/confirm", s.intent(s.ctrl.ConfirmAnswer))
			qr.Post("/next", s.handleNext)
			qr.Post("/close", s.intent(s.ctrl.CloseQuiz))
		})

		api.Post("/summary/continue", s.intent(s.ctrl.Continue))

		api.Get("/settings", s.handleGetSettings)
		api.Put("/settings", s.handlePutSettings)
	})

	s.router = r
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.logger.Info("shutting down server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("server forced to shutdown", "err", err)
		return err
	}
	return nil
}

// requestLogger logs one line per request at DEBUG, or WARN for 5xx.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			level := slog.LevelDebug
			if ww.Status() >= http.StatusInternalServerError {
				level = slog.LevelWarn
			}
			logger.Log(r.Context(), level, "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
