package api

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/banshee-data/curvature.report/internal/curve"
	"github.com/banshee-data/curvature.report/internal/fsutil"
	"github.com/banshee-data/curvature.report/internal/httputil"
	"github.com/banshee-data/curvature.report/internal/monitoring"
	"github.com/banshee-data/curvature.report/internal/panel"
	"github.com/banshee-data/curvature.report/internal/security"
	"github.com/banshee-data/curvature.report/internal/surface/echart"
	"github.com/banshee-data/curvature.report/internal/version"
)

//go:embed dashboard.html
var dashboardFS embed.FS

var dashboardTemplate = template.Must(template.ParseFS(dashboardFS, "dashboard.html"))

// StateResponse is the body of GET /api/state and of successful updates.
type StateResponse struct {
	SeriesID string      `json:"series_id"`
	State    panel.State `json:"state"`
}

// ParamsRequest is the body of POST /api/params. Each present field is
// applied as its own notification in the order sigma, curvature threshold,
// gradient threshold.
type ParamsRequest struct {
	Sigma              *float64 `json:"sigma,omitempty"`
	CurvatureThreshold *float64 `json:"curvature_threshold,omitempty"`
	GradientThreshold  *float64 `json:"gradient_threshold,omitempty"`
}

// SeriesRequest is the body of POST /api/series. With Sigma set the samples
// and sigma are overridden together; otherwise sigma is kept.
type SeriesRequest struct {
	X     []float64 `json:"x"`
	Y     []float64 `json:"y"`
	Sigma *float64  `json:"sigma,omitempty"`
	Label *string   `json:"label,omitempty"`
}

// ExportRequest is the body of POST /api/export.
type ExportRequest struct {
	Format string `json:"format"` // "png" or "html"
	Name   string `json:"name,omitempty"`
}

// errorStatus maps panel and model errors to an HTTP status.
func errorStatus(err error) int {
	if errors.Is(err, curve.ErrInvalidInput) || errors.Is(err, curve.ErrInvalidParameter) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) stateLocked() StateResponse {
	return StateResponse{SeriesID: s.seriesID, State: s.panel.State()}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	s.mu.Lock()
	id := s.seriesID
	s.mu.Unlock()
	httputil.WriteJSONOK(w, map[string]string{
		"status":    "ok",
		"version":   version.Version,
		"git_sha":   version.GitSHA,
		"series_id": id,
	})
}

type dashboardData struct {
	Title   string
	Version string
	StateResponse
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		httputil.NotFound(w, "not found")
		return
	}
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	s.mu.Lock()
	data := dashboardData{Title: s.panel.Label(), Version: version.Version, StateResponse: s.stateLocked()}
	s.mu.Unlock()
	if data.Title == "" {
		data.Title = "curvature explorer"
	}
	httputil.WriteBody(w, "text/html; charset=utf-8", func(out io.Writer) error {
		return dashboardTemplate.Execute(out, data)
	})
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	snap := s.snapshot()
	httputil.WriteBody(w, "text/html; charset=utf-8", func(out io.Writer) error {
		return echart.Render(out, snap, s.chart)
	})
}

func (s *Server) handlePlot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	snap := s.snapshot()
	w.Header().Set("Cache-Control", "no-store")
	httputil.WriteBody(w, "image/png", func(out io.Writer) error {
		return s.png.Render(out, snap)
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	s.mu.Lock()
	resp := s.stateLocked()
	s.mu.Unlock()
	httputil.WriteJSONOK(w, resp)
}

func (s *Server) handleParams(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	var req ParamsRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	steps := []struct {
		v   *float64
		set func(float64) error
	}{
		{req.Sigma, s.panel.SetSigma},
		{req.CurvatureThreshold, s.panel.SetCurvatureThreshold},
		{req.GradientThreshold, s.panel.SetGradientThreshold},
	}
	for _, step := range steps {
		if step.v == nil {
			continue
		}
		if err := step.set(*step.v); err != nil {
			httputil.WriteJSONError(w, errorStatus(err), err.Error())
			return
		}
	}
	httputil.WriteJSONOK(w, s.stateLocked())
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	var req SeriesRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var err error
	if req.Sigma != nil {
		err = s.panel.Override(req.X, req.Y, *req.Sigma)
	} else {
		err = s.panel.Load(req.X, req.Y)
	}
	if err != nil {
		httputil.WriteJSONError(w, errorStatus(err), err.Error())
		return
	}
	if req.Label != nil {
		s.panel.SetLabel(*req.Label)
	}
	s.seriesID = uuid.New().String()
	monitoring.Logf("api: loaded series %s with %d samples", s.seriesID, len(req.X))
	httputil.WriteJSONOK(w, s.stateLocked())
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	if s.exportDir == "" {
		httputil.NotFound(w, "export is disabled")
		return
	}
	var req ExportRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	s.mu.Lock()
	name := req.Name
	if name == "" {
		name = s.panel.Label()
	}
	if name == "" {
		name = s.seriesID
	}
	s.mu.Unlock()
	snap := s.snapshot()

	var (
		wt  io.WriterTo
		ext string
		err error
	)
	switch req.Format {
	case "png":
		ext = ".png"
		wt, err = s.png.WriterTo(snap)
	case "html":
		ext = ".html"
		wt, err = echart.WriterTo(snap, s.chart)
	default:
		httputil.BadRequest(w, fmt.Sprintf("unknown export format %q", req.Format))
		return
	}
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}

	path, err := security.ExportPath(s.exportDir, name, ext)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	if err := fsutil.SaveTo(s.fs, path, wt); err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}
	monitoring.Logf("api: exported %s", path)
	httputil.WriteJSONOK(w, map[string]string{"path": path})
}
