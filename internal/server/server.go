package server

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/marketbay/auction-engine/internal/dependency"
	"github.com/marketbay/auction-engine/pkg/config"
	"github.com/marketbay/auction-engine/pkg/logger"
)

type Server struct {
	HTTPServer *http.Server
	Deps       *dependency.Dependencies
	Logger     *logger.Logger
	cfg        *config.Config
}

func New(cfg *config.Config, deps *dependency.Dependencies, log *logger.Logger) *Server {
	mux := chi.NewMux()

	mux.Use(chimw.RequestID)
	mux.Use(chimw.Logger)
	mux.Use(chimw.Recoverer)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Actor-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	s := &Server{
		HTTPServer: &http.Server{
			Addr:         cfg.Server.Address(),
			Handler:      mux,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		Deps:   deps,
		Logger: log,
		cfg:    cfg,
	}

	s.Routes(mux)
	return s
}

func (s *Server) Run() error {
	s.Logger.Infof("[SERVER] running at -> %s", s.HTTPServer.Addr)

	// Create context that listens for the interrupt signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s.Deps.Scheduler.Start()

	// Run Server in the background
	go func() {
		if err := s.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Logger.Fatalf("[SERVER] failed to serve -> %s", err.Error())
		}
	}()

	// Listen for the interrupt signal
	<-ctx.Done()

	shutCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	s.Deps.Scheduler.Stop()

	if err := s.HTTPServer.Shutdown(shutCtx); err != nil {
		s.Logger.Errorw("[SERVER] shutdown failed", "error", err)
		return err
	}
	return s.Deps.Close(shutCtx)
}
