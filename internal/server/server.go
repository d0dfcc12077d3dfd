// Package server serves the interactive chart dashboard over HTTP.
package server

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/huangsam/stepviz/core"
	"github.com/huangsam/stepviz/internal/contract"
	"github.com/huangsam/stepviz/schema"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

//go:embed templates/*.html
var templateFS embed.FS

const shutdownTimeout = 5 * time.Second

// Server holds one dashboard session: the loaded records and the computation
// channel every handler reads from.
type Server struct {
	cfg         *contract.Config
	records     []schema.ExperimentDataPoint
	experiments []schema.ExperimentSummary
	metrics     []string
	ch          *core.Channel
	tmpl        *template.Template
	mux         *http.ServeMux

	selMu sync.Mutex // Serializes read-modify-write selection changes
}

// New creates a server session over records and issues the initial selection:
// cfg.Selected when given, otherwise every experiment.
func New(ctx context.Context, cfg *contract.Config, records []schema.ExperimentDataPoint) *Server {
	s := &Server{
		cfg:         cfg,
		records:     records,
		experiments: core.SummarizeExperiments(records),
		metrics:     core.MetricNames(records),
		ch:          core.NewChannel(ctx, core.ChannelOptions{Threshold: cfg.Threshold, QueueSize: cfg.QueueSize}),
		tmpl:        template.Must(template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")),
		mux:         http.NewServeMux(),
	}
	s.routes()

	initial := core.NormalizeSelection(cfg.Selected)
	if len(initial) == 0 {
		initial = core.ExperimentIDs(records)
	}
	s.ch.Request(records, initial)
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/experiments", s.handleExperiments)
	s.mux.HandleFunc("GET /api/charts", s.handleCharts)
	s.mux.HandleFunc("POST /api/selection", s.handleSetSelection)
	s.mux.HandleFunc("POST /api/selection/toggle", s.handleToggleSelection)
	s.mux.HandleFunc("GET /charts/{file}", s.handleChartImage)
	s.mux.HandleFunc("GET /charts.html", s.handleChartsHTML)
	s.mux.Handle("GET /metrics", promhttp.Handler())
}

// Handler returns the HTTP handler with request logging.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		s.mux.ServeHTTP(w, r)
		logrus.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start),
		}).Debug("Handled request")
	})
}

// Start serves on cfg.Addr until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.Infof("Serving dashboard on http://%s", ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close tears down the computation channel.
func (s *Server) Close() {
	s.ch.Close()
}
