package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/sagar-qa007/cypress-repeat-pro/metrics"
)

// Service exposes /healthz and /metrics over HTTP for long repeat sessions.
// It is opt-in: the command only starts it when a monitor address is
// configured, and both endpoints share that one address.
type Service struct {
	ctx    context.Context
	server *http.Server
	log    zerolog.Logger
}

func New(logger zerolog.Logger) *Service {
	return &Service{log: logger}
}

// Start serves in the background. A monitor failure is logged and counted,
// never fatal to the run itself.
func (s *Service) Start(ctx context.Context, addr string) {
	s.server = &http.Server{
		Handler: s.handler(),
		Addr:    addr,
	}
	s.ctx = ctx

	go func() {
		s.log.Info().Str("addr", addr).Msg("monitor server starting")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("monitor server failed")
			metrics.RecordErrorDetails("monitor_server", err)
		}
	}()
}

func (s *Service) Shutdown() error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(s.ctx)
}
