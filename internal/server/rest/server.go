// Package rest serves the identity operations as a JSON API with gorilla/mux.
package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/taskerid/internal/logging"
	"github.com/dmitrijs2005/taskerid/internal/server/metrics"
	"github.com/dmitrijs2005/taskerid/internal/server/throttle"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	address string
	router  *mux.Router
	logger  logging.Logger
}

type Options struct {
	Limiter  throttle.Limiter
	Metrics  *metrics.Metrics
	Registry *prometheus.Registry
	Ready    map[string]Pinger
}

func NewServer(address string, svc IdentityService, opts Options, l logging.Logger) *Server {
	logger := l.With("module", "http_server")

	limiter := opts.Limiter
	if limiter == nil {
		limiter = throttle.Unlimited{}
	}

	r := mux.NewRouter()
	r.Use(recoveryMiddleware(logger), loggingMiddleware(logger))

	NewHandlers(svc, opts.Metrics, logger).RegisterRoutes(r, throttleMiddleware(limiter, opts.Metrics, logger))

	r.HandleFunc("/healthz", Liveness).Methods(http.MethodGet)
	r.HandleFunc("/readyz", Readiness(opts.Ready)).Methods(http.MethodGet)
	if opts.Registry != nil {
		r.Handle("/metrics", metrics.Handler(opts.Registry)).Methods(http.MethodGet)
	}

	return &Server{address: address, router: r, logger: logger}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

func (s *Server) Serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
