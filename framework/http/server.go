package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ShutdownTimeout bounds the graceful shutdown of a Server.
const ShutdownTimeout = 5 * time.Second

// Server runs an http.Handler until its context ends.
type Server struct {
	srv    *http.Server
	logger *zap.Logger
}

// NewServer creates a server for handler on addr.
func NewServer(addr string, handler http.Handler, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Addr returns the listen address.
func (s *Server) Addr() string { return s.srv.Addr }

// Service listens until ctx is done, then shuts down gracefully.
func (s *Server) Service(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", s.srv.Addr))
		errc <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdown, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdown); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("stopped", zap.String("addr", s.srv.Addr))
	return nil
}
