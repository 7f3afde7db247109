// Package health serves the gateway HTTP surface: liveness probes and any
// webhook handlers the channels need mounted.
package health

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

type Server struct {
	mux    *http.ServeMux
	srv    *http.Server
	logger *zap.Logger
}

func NewServer(host string, port int, logger *zap.Logger) *Server {
	mux := http.NewServeMux()
	s := &Server{
		mux:    mux,
		srv:    &http.Server{Addr: fmt.Sprintf("%s:%d", host, port), Handler: mux},
		logger: logger,
	}
	mux.HandleFunc("/", s.handleOK)
	mux.HandleFunc("/health", s.handleOK)
	return s
}

// Handle mounts an extra handler on the gateway mux. Longer patterns take
// precedence over the probe catch-all.
func (s *Server) Handle(pattern string, handler http.Handler) {
	s.mux.Handle(pattern, handler)
}

func (s *Server) Addr() string {
	return s.srv.Addr
}

func (s *Server) Start() error {
	s.logger.Info("http server listening", zap.String("addr", s.srv.Addr))
	return s.srv.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleOK(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/health" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"ok":true}`))
}
