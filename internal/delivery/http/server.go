package http

import (
	"context"
	"errors"
	nethttp "net/http"
	"time"

	"go.uber.org/zap"
)

const readHeaderTimeout = 10 * time.Second

type Server struct {
	srv    *nethttp.Server
	logger *zap.Logger
}

func NewServer(address string, cfg RouterConfig) *Server {
	return &Server{
		srv: &nethttp.Server{
			Addr:              address,
			Handler:           NewRouter(cfg),
			ReadHeaderTimeout: readHeaderTimeout,
		},
		logger: cfg.Logger,
	}
}

// Run serves until Shutdown is called.
func (s *Server) Run() error {
	s.logger.Info("http server listening", zap.String("address", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
