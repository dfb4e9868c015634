package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"parking-gates/internal/logging"
	"parking-gates/internal/parking"
)

type Options struct {
	Port         string
	ServiceName  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type Server struct {
	httpServer *http.Server
	handler    *Handler
	metrics    *Metrics
}

func NewServer(opts Options, facility *parking.InstrumentedFacility) *Server {
	metrics := NewMetrics()
	handler := NewHandler(facility, metrics, opts.ServiceName)

	httpServer := &http.Server{
		Addr:         ":" + opts.Port,
		Handler:      newRouter(handler, metrics, opts.ServiceName),
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		IdleTimeout:  opts.IdleTimeout,
	}

	return &Server{
		httpServer: httpServer,
		handler:    handler,
		metrics:    metrics,
	}
}

func newRouter(handler *Handler, metrics *Metrics, serviceName string) http.Handler {
	r := chi.NewRouter()

	r.Use(RecoveryMiddleware)
	r.Use(RequestIDMiddleware)
	r.Use(TracingMiddleware(serviceName))
	r.Use(LoggingMiddleware)
	r.Use(MetricsMiddleware(metrics))
	r.Use(CORSMiddleware)

	r.Get("/health", handler.HealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))

	r.Route("/api/parking", func(r chi.Router) {
		r.Post("/enter", handler.Enter)
		r.Post("/exit", handler.Exit)
		r.Get("/status", handler.GetStatus)
		r.Get("/tickets/{id}", handler.GetTicket)
		r.Get("/find/{license}", handler.FindByLicense)
	})

	return r
}

func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() error {
	logging.Info(context.Background(), "starting HTTP server", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info(ctx, "shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) GetAddress() string {
	return fmt.Sprintf("http://localhost%s", s.httpServer.Addr)
}
