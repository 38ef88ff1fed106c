package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/antojitos/comanda/internal/handler"
	"github.com/antojitos/comanda/internal/notify"
	"github.com/antojitos/comanda/internal/server/middleware"
	"github.com/antojitos/comanda/internal/service"
	"github.com/antojitos/comanda/internal/store"
)

// Config holds the HTTP server configuration.
type Config struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
	CORSOrigins     []string
	RateLimit       int           // requests per client IP per RateWindow
	RateWindow      time.Duration // sliding window for the global limiter
	TokenRateLimit  int           // per-minute budget for /orders/generateToken
}

// DefaultConfig returns a Config with sensible production defaults. The
// global rate budget matches the storefront's traffic shape: 50 requests
// per client IP per 15 minutes.
func DefaultConfig() Config {
	return Config{
		Host:            "0.0.0.0",
		Port:            3000,
		ShutdownTimeout: 30 * time.Second,
		CORSOrigins:     []string{"*"},
		RateLimit:       50,
		RateWindow:      15 * time.Minute,
		TokenRateLimit:  10,
	}
}

// Server is the top-level HTTP server. It owns the chi router, the store,
// the token and auth services, and the notification sender.
type Server struct {
	cfg        Config
	router     chi.Router
	store      *store.Store
	tokens     *service.TokenService
	auth       *service.AuthService
	sender     notify.Sender
	httpServer *http.Server
	logger     *slog.Logger
}

// New creates a Server with all routes and middleware wired. Call
// ListenAndServe to start accepting connections.
func New(cfg Config, st *store.Store, tokens *service.TokenService, auth *service.AuthService, sender notify.Sender, logger *slog.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		store:  st,
		tokens: tokens,
		auth:   auth,
		sender: sender,
		logger: logger,
	}
	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", middleware.OrderKeyHeader},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	if s.cfg.RateLimit > 0 {
		r.Use(middleware.RateLimit(s.cfg.RateLimit, s.cfg.RateWindow))
	}

	r.Get("/healthz", s.handleHealthz)

	adminGate := middleware.Authenticate(s.tokens, s.store, s.logger)
	orderGate := middleware.CheckOrderToken(s.tokens, s.logger)

	adminHandler := handler.NewAdminHandler(s.store, s.auth, s.logger)
	productHandler := handler.NewProductHandler(s.store, s.logger)
	companionHandler := handler.NewCompanionHandler(s.store, s.logger)
	orderHandler := handler.NewOrderHandler(s.store, s.tokens, s.sender, s.logger)
	scheduleHandler := handler.NewScheduleHandler(s.store, s.logger)

	r.Route("/administrators", func(r chi.Router) {
		r.Post("/login", adminHandler.Login)
		r.Post("/logout", adminHandler.Logout)

		r.Group(func(r chi.Router) {
			r.Use(adminGate)
			r.Get("/", adminHandler.List)
			r.Delete("/delete/{admin_code}", adminHandler.Delete)
		})
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/sizes/{id}", productHandler.Sizes)
		r.Get("/{typePath}", productHandler.ListByType)

		r.Group(func(r chi.Router) {
			r.Use(adminGate)
			r.Post("/add", productHandler.Add)
			r.Put("/edit/{id}", productHandler.Edit)
			r.Put("/highlight/{id}", productHandler.Highlight)
			r.Delete("/delete/{id}", productHandler.Delete)
		})
	})

	r.Route("/companions", func(r chi.Router) {
		r.Get("/", companionHandler.List)

		r.Group(func(r chi.Router) {
			r.Use(adminGate)
			r.Post("/add", companionHandler.Add)
			r.Put("/edit/{id}", companionHandler.Edit)
			r.Delete("/delete/{id}", companionHandler.Delete)
		})
	})

	r.Route("/orders", func(r chi.Router) {
		// Token issuance gets its own per-minute budget on top of the
		// global limiter: one token per submission, no reason to mint more.
		r.Group(func(r chi.Router) {
			if s.cfg.TokenRateLimit > 0 {
				r.Use(middleware.RateLimit(s.cfg.TokenRateLimit, time.Minute))
			}
			r.Post("/generateToken", orderHandler.GenerateToken)
		})

		r.Group(func(r chi.Router) {
			r.Use(orderGate)
			r.Post("/add", orderHandler.Add)
		})

		r.Group(func(r chi.Router) {
			r.Use(adminGate)
			r.Get("/{typePath}", orderHandler.ListByState)
			r.Put("/edit/{id}", orderHandler.EditState)
		})
	})

	r.Route("/schedules", func(r chi.Router) {
		r.Get("/", scheduleHandler.List)
		r.Get("/{day}", scheduleHandler.GetByDay)

		r.Group(func(r chi.Router) {
			r.Use(adminGate)
			r.Post("/", scheduleHandler.Upsert)
			r.Put("/{day}", scheduleHandler.UpdateByDay)
			r.Delete("/{day}", scheduleHandler.DeleteByDay)
		})
	})

	s.router = r
}

// Router exposes the configured handler, used by the HTTP tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// handleHealthz is a liveness probe.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// ListenAndServe starts the HTTP server and blocks until SIGINT or SIGTERM,
// then drains in-flight requests within the configured shutdown timeout.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server listen: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutdown signal received, draining connections...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}
