// Package server exposes a notification center over HTTP: a JSON API using
// the {success, data, message} envelope, a websocket snapshot stream, and
// prometheus metrics.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/hay-kot/toastq/internal/core/logging"
	"github.com/hay-kot/toastq/internal/core/notify"
	"github.com/hay-kot/toastq/pkg/kv"
)

const (
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// Server serves a notification center over HTTP.
type Server struct {
	center   *notify.Center[string]
	history  notify.Store
	registry *prometheus.Registry
	metrics  *Metrics
	logger   zerolog.Logger

	handles  *kv.Store[string, *notify.Handle[string]]
	clients  *kv.Store[string, *streamClient]
	upgrader websocket.Upgrader

	unsubscribe []func()
}

// Option configures a Server.
type Option func(*Server)

// WithHistory serves GET /api/history from store.
func WithHistory(store notify.Store) Option {
	return func(s *Server) { s.history = store }
}

// WithMetrics registers toast metrics with reg and serves them on /metrics.
func WithMetrics(reg *prometheus.Registry) Option {
	return func(s *Server) { s.registry = reg }
}

// New creates a server for center. Call Close to release its subscriptions.
func New(center *notify.Center[string], opts ...Option) *Server {
	s := &Server{
		center:  center,
		logger:  logging.Component("server"),
		handles: kv.New[string, *notify.Handle[string]](),
		clients: kv.New[string, *streamClient](),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	for _, opt := range opts {
		opt(s)
	}

	s.unsubscribe = append(s.unsubscribe, center.Subscribe(s.pruneHandles))
	if s.registry != nil {
		s.metrics = NewMetrics(s.registry)
		s.unsubscribe = append(s.unsubscribe, center.Subscribe(s.metrics.Observe))
	}

	return s
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Route("/toasts", func(r chi.Router) {
			r.Get("/", s.handleList)
			r.Post("/", s.handleCreate)
			r.Delete("/", s.handleClear)
			r.Post("/dismiss", s.handleDismissAll)
			r.Get("/stream", s.handleStream)

			r.Route("/{id}", func(r chi.Router) {
				r.Patch("/", s.handleUpdate)
				r.Delete("/", s.handleRemove)
				r.Post("/dismiss", s.handleDismiss)
			})
		})
		r.Get("/history", s.handleHistory)
	})

	if s.registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}

	return r
}

// Run listens on addr and blocks until ctx is cancelled or the listener
// fails.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	s.logger.Info().Str("addr", addr).Msg("server listening")

	var err error
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		// Stream connections are hijacked, Shutdown does not wait for them.
		s.closeClients()
		err = srv.Shutdown(shutdownCtx)
		<-errCh
	case err = <-errCh:
	}

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}

	s.logger.Info().Msg("server stopped")
	return nil
}

// Close releases center subscriptions and disconnects stream clients.
func (s *Server) Close() {
	for _, unsub := range s.unsubscribe {
		unsub()
	}
	s.unsubscribe = nil
	s.closeClients()
}

// pruneHandles drops handles whose notification left the center. snap may
// be older than a handle stored by a concurrent create, so an id missing from
// snap is only dropped once the center no longer has it either.
func (s *Server) pruneHandles(snap []notify.Notification[string]) {
	live := make(map[string]struct{}, len(snap))
	for _, n := range snap {
		live[n.ID] = struct{}{}
	}
	s.handles.DeleteFunc(func(id string, _ *notify.Handle[string]) bool {
		if _, ok := live[id]; ok {
			return false
		}
		_, ok := s.center.Get(id)
		return !ok
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.WithRequestID(r.Context(), middleware.GetReqID(r.Context()))
		r = r.WithContext(ctx)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		s.logger.Debug().Ctx(ctx).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}
