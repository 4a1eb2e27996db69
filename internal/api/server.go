// Package api serves the curvature explorer over HTTP: a dashboard with the
// three sliders, the rendered chart and PNG, and JSON endpoints that drive
// the panel.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/curvature.report/internal/fsutil"
	"github.com/banshee-data/curvature.report/internal/monitoring"
	"github.com/banshee-data/curvature.report/internal/panel"
	"github.com/banshee-data/curvature.report/internal/surface"
	"github.com/banshee-data/curvature.report/internal/surface/echart"
	"github.com/banshee-data/curvature.report/internal/surface/pngplot"
	"github.com/banshee-data/curvature.report/internal/timeutil"
)

// ANSI escape codes for request logging
const (
	colorCyan      = "\033[36m"
	colorReset     = "\033[0m"
	colorYellow    = "\033[33m"
	colorBoldGreen = "\033[1;32m"
	colorBoldRed   = "\033[1;31m"
)

// Config wires a server to a panel and the scene it draws on.
type Config struct {
	Address   string
	Panel     *panel.Panel
	Scene     *surface.Scene
	PNG       *pngplot.Renderer
	Chart     echart.Options
	ExportDir string            // POST /api/export writes here; empty disables it
	FS        fsutil.FileSystem // defaults to the OS filesystem
	Clock     timeutil.Clock    // times request logs; defaults to the real clock
}

// Server owns the panel and scene. The panel is single-threaded, so every
// handler that touches either holds mu.
type Server struct {
	mu       sync.Mutex
	panel    *panel.Panel
	scene    *surface.Scene
	seriesID string

	png       *pngplot.Renderer
	chart     echart.Options
	exportDir string
	fs        fsutil.FileSystem
	clock     timeutil.Clock

	address string
	server  *http.Server
}

// NewServer creates a server for cfg. The initial series gets a fresh id.
func NewServer(cfg Config) *Server {
	s := &Server{
		panel:     cfg.Panel,
		scene:     cfg.Scene,
		seriesID:  uuid.New().String(),
		png:       cfg.PNG,
		chart:     cfg.Chart,
		exportDir: cfg.ExportDir,
		fs:        cfg.FS,
		clock:     cfg.Clock,
		address:   cfg.Address,
	}
	if s.png == nil {
		s.png = pngplot.New(10, 9)
	}
	if s.chart.AssetsHost == "" {
		s.chart = echart.DefaultOptions()
	}
	if s.fs == nil {
		s.fs = fsutil.OSFileSystem{}
	}
	if s.clock == nil {
		s.clock = timeutil.RealClock{}
	}
	s.server = &http.Server{
		Addr:              s.address,
		Handler:           LoggingMiddleware(s.clock, s.ServeMux()),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// ServeMux returns the explorer routes.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/", s.handleDashboard)
	mux.HandleFunc("/chart", s.handleChart)
	mux.HandleFunc("/plot.png", s.handlePlot)
	mux.HandleFunc("/api/state", s.handleState)
	mux.HandleFunc("/api/params", s.handleParams)
	mux.HandleFunc("/api/series", s.handleSeries)
	mux.HandleFunc("/api/export", s.handleExport)
	return mux
}

// Start serves until ctx is cancelled, then shuts down gracefully. It
// returns early with an error if the listener cannot be opened.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.address, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		monitoring.Logf("Starting HTTP server on %s", ln.Addr())
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	monitoring.Logf("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		monitoring.Logf("HTTP server shutdown error: %v", err)
		if err := s.server.Close(); err != nil {
			monitoring.Logf("HTTP server force close error: %v", err)
		}
	}
	monitoring.Logf("HTTP server routine stopped")
	return nil
}

// snapshot copies the scene under the lock so rendering can run without it.
func (s *Server) snapshot() surface.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.scene.Snapshot()
	if l := s.panel.Label(); l != "" {
		snap.Title = l
	}
	return snap
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func statusCodeColor(statusCode int) string {
	code := strconv.Itoa(statusCode)
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + code + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + code + colorReset
	case statusCode >= 400:
		return colorBoldRed + code + colorReset
	default:
		return code
	}
}

// LoggingMiddleware logs method, path, status, and duration.
func LoggingMiddleware(clock timeutil.Clock, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := clock.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		monitoring.Logf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(clock.Since(start).Nanoseconds())/1e6,
		)
	})
}
