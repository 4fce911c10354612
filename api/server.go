// Package api exposes the daily-brief service over HTTP: normalized
// financials, data-quality reports, macro series, and filings.
package api

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/markmullin/investors-daily-brief-v2-sub011/internal/briefing"
	"github.com/markmullin/investors-daily-brief-v2-sub011/internal/config"
)

// Server is the HTTP API server.
type Server struct {
	router chi.Router
	cfg    *config.Config
	svc    *briefing.Service
	logger *log.Logger
}

// NewServer wires routes and middleware around an already-built service.
func NewServer(cfg *config.Config, svc *briefing.Service, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{cfg: cfg, svc: svc, logger: logger}
	s.router = s.buildRouter()
	return s
}

// Router returns the chi router, mainly for tests.
func (s *Server) Router() chi.Router { return s.router }

// ListenAndServe runs the server until SIGINT/SIGTERM, then drains
// in-flight requests.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Fatalf("http server: %v", err)
		}
	}()
	s.logger.Printf("listening on %s", addr)

	<-done
	s.logger.Println("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(ctx)
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	origins := s.cfg.API.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/financials/{ticker}", s.handleFinancials)
		r.Get("/financials/{ticker}/quality", s.handleQuality)
		r.Post("/financials/batch", s.handleBatch)
		r.Get("/macro", s.handleMacro)
		r.Get("/filings/{ticker}", s.handleFilings)
		r.Get("/providers", s.handleProviders)
	})

	return r
}
