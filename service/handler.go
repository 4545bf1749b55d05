package service

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

func (s *Service) handler() http.Handler {
	hdlr := http.NewServeMux()
	hdlr.HandleFunc("/healthz", s.handleHealthz)
	hdlr.Handle("/metrics", promhttp.Handler())
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
	})
	return c.Handler(hdlr)
}

func (s *Service) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.log.Debug().Str("path", r.URL.Path).Msg("received health check request")
	w.Write([]byte("OK")) //nolint:errcheck
}
