package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"ubot-platform/internal/config"

	"github.com/rs/zerolog"
)

// Server owns the listening http.Server for the API router.
type Server struct {
	srv *http.Server
	log *zerolog.Logger
}

// NewServer binds handler to cfg.Port with the configured timeouts.
func NewServer(cfg config.ServerConfig, handler http.Handler, logger *zerolog.Logger) *Server {
	read, write := cfg.ReadTimeout, cfg.WriteTimeout
	if read <= 0 {
		read = 10 * time.Second
	}
	if write <= 0 {
		write = 30 * time.Second
	}
	return &Server{
		srv: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           handler,
			ReadTimeout:       read,
			ReadHeaderTimeout: read,
			WriteTimeout:      write,
			IdleTimeout:       2 * write,
		},
		log: logger,
	}
}

func (s *Server) Addr() string { return s.srv.Addr }

// Start blocks until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.srv.Addr).Msg("http server listening")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
