package bridge

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vango-dev/helm/internal/config"
	"github.com/vango-dev/helm/internal/errors"
	"github.com/vango-dev/helm/pkg/middleware"
	"github.com/vango-dev/helm/pkg/router"
	"github.com/vango-dev/helm/pkg/source"
	"go.opentelemetry.io/otel/trace"
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRegistry sets the Prometheus registry used for the dispatch metrics
// and served at the metrics path. Default: the global registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) {
		s.registerer = reg
		s.gatherer = reg
	}
}

// WithTracerProvider sets the tracer provider for dispatch spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Server) {
		s.tracerProvider = tp
	}
}

// WithReadTimeout closes a connection when its page is silent for d.
func WithReadTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.readTimeout = d
	}
}

// Server serves the manifest routes to browsers.
type Server struct {
	cfg            *config.Config
	logger         *slog.Logger
	registerer     prometheus.Registerer
	gatherer       prometheus.Gatherer
	tracerProvider trace.TracerProvider
	readTimeout    time.Duration
	upgrader       websocket.Upgrader
	observe        router.HandlerFunc

	mu      sync.Mutex
	conns   map[string]*source.Conn
	closing bool
	wg      sync.WaitGroup
}

// New creates a Server for cfg. cfg must be valid.
func New(cfg *config.Config, opts ...Option) *Server {
	s := &Server{
		cfg:        cfg,
		logger:     slog.Default().With("component", "bridge"),
		registerer: prometheus.DefaultRegisterer,
		gatherer:   prometheus.DefaultGatherer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		conns: make(map[string]*source.Conn),
	}
	for _, opt := range opts {
		opt(s)
	}

	otelOpts := []middleware.OTelOption{middleware.WithTracerName(cfg.Tracing.TracerName)}
	if s.tracerProvider != nil {
		otelOpts = append(otelOpts, middleware.WithTracerProvider(s.tracerProvider))
	}

	// one chain entry observing the whole dispatch, shared by every router
	s.observe = router.Chain(
		middleware.Recover(nil),
		middleware.Logger(nil),
		middleware.OpenTelemetry(otelOpts...),
		middleware.Prometheus(
			middleware.WithNamespace(cfg.Metrics.Namespace),
			middleware.WithRegistry(s.registerer),
		),
	)
	return s
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)

	r.Get("/helm.js", s.handleShim)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/routes", s.handleRoutes)
	r.Get(s.cfg.Serve.SocketPath, s.handleSocket)
	if s.cfg.MetricsEnabled() {
		r.Handle(s.cfg.Serve.MetricsPath, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Run serves on the manifest address until ctx is done, then shuts down,
// closing every browser connection.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Address(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", srv.Addr, "socket", s.cfg.Serve.SocketPath)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.New("H041").Wrap(err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	s.refuseConnections()
	s.CloseAll()
	s.wg.Wait()
	if err != nil {
		return errors.New("H041").Wrap(err)
	}
	return nil
}

// Connections returns the number of open browser connections.
func (s *Server) Connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// CloseAll closes every browser connection.
func (s *Server) CloseAll() {
	s.mu.Lock()
	conns := make([]*source.Conn, 0, len(s.conns))
	for _, c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
}

func (s *Server) handleShim(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write([]byte(Shim(s.cfg.Serve.SocketPath)))
}

func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.cfg.Routes)
}

func (s *Server) handleSocket(w http.ResponseWriter, req *http.Request) {
	ws, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		middleware.RecordSocketError("upgrade")
		s.logger.Warn("upgrade failed", "error", err)
		return
	}

	id := uuid.NewString()
	log := s.logger.With("conn_id", id)

	conn := source.NewConn(ws, req.URL.Query().Get("hash"),
		source.WithLogger(log),
		source.WithReadTimeout(s.readTimeout),
	)

	rt := router.New(conn, append(s.cfg.RouterOptions(), router.WithLogger(log))...)
	rt.Use(s.observe)
	err = s.cfg.Register(rt, func(route config.Route) router.HandlerFunc {
		return RouteHandler(rt, route, func(m Match) {
			if err := conn.Send(m); err != nil {
				middleware.RecordSocketError("write")
				log.Warn("route report failed", "route", m.Name, "error", err)
			}
		})
	})
	if err != nil {
		// the manifest was validated, so this is a programming error
		log.Error("register routes", "error", err)
		conn.Close()
		return
	}

	if !s.track(id, conn) {
		log.Info("rejected, shutting down")
		rt.Stop()
		conn.Close()
		return
	}
	defer s.untrack(id)

	log.Info("connected", "path", conn.Path())
	rt.Dispatch("")

	if err := conn.ReadLoop(); err != nil {
		middleware.RecordSocketError("read")
	}
	rt.Stop()
	log.Info("disconnected")
}

// refuseConnections makes track reject every later connection, so wg does
// not grow while Run waits on it.
func (s *Server) refuseConnections() {
	s.mu.Lock()
	s.closing = true
	s.mu.Unlock()
}

// track registers c unless the server is shutting down.
func (s *Server) track(id string, c *source.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closing {
		return false
	}
	s.conns[id] = c
	s.wg.Add(1)
	middleware.RecordConnectionOpen()
	return true
}

func (s *Server) untrack(id string) {
	s.mu.Lock()
	delete(s.conns, id)
	s.mu.Unlock()
	s.wg.Done()
	middleware.RecordConnectionClose()
}
