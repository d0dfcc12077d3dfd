package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/huangsam/stepviz/core"
	"github.com/huangsam/stepviz/internal/render"
	"github.com/huangsam/stepviz/schema"
	"github.com/sirupsen/logrus"
)

// ChartsResponse is the JSON view of the current chart state.
type ChartsResponse struct {
	Status    core.Status               `json:"status"`
	Computing bool                      `json:"computing"`
	Error     string                    `json:"error,omitempty"`
	Selection []string                  `json:"selection"`
	Pending   []string                  `json:"pending"`
	Charts    []schema.ChartRenderInput `json:"charts"`
}

// ExperimentsResponse lists every experiment, every metric and the requested selection.
type ExperimentsResponse struct {
	Experiments []schema.ExperimentSummary `json:"experiments"`
	Metrics     []string                   `json:"metrics"`
	Selected    []string                   `json:"selected"`
}

// SelectionRequest replaces the selection.
type SelectionRequest struct {
	IDs []string `json:"ids"`
}

func newChartsResponse(st core.ViewState) ChartsResponse {
	return ChartsResponse{
		Status:    st.Status,
		Computing: st.Computing,
		Error:     st.ErrMessage(),
		Selection: nonNil(st.Selection),
		Pending:   nonNil(st.Pending),
		Charts:    core.BuildDashboard(st.Result, st.Selection),
	}
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logrus.WithError(err).Warn("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	st := s.ch.Snapshot()
	code := http.StatusOK
	if st.Status == core.StatusError && errors.Is(st.Err, schema.ErrComputationUnavailable) {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{"status": st.Status, "records": len(s.records)})
}

func (s *Server) handleExperiments(w http.ResponseWriter, r *http.Request) {
	st := s.ch.Snapshot()
	exps := s.experiments
	if exps == nil {
		exps = []schema.ExperimentSummary{}
	}
	writeJSON(w, http.StatusOK, ExperimentsResponse{Experiments: exps, Metrics: s.metrics, Selected: nonNil(st.Pending)})
}

func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newChartsResponse(s.ch.Snapshot()))
}

func (s *Server) handleSetSelection(w http.ResponseWriter, r *http.Request) {
	var req SelectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid selection body: %v", err))
		return
	}
	s.selMu.Lock()
	seq := s.ch.Request(s.records, core.NormalizeSelection(req.IDs))
	s.selMu.Unlock()
	s.respondSelection(w, r, seq)
}

func (s *Server) handleToggleSelection(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing experiment id")
		return
	}
	s.selMu.Lock()
	next := core.ToggleSelection(s.ch.Snapshot().Pending, id)
	seq := s.ch.Request(s.records, next)
	s.selMu.Unlock()
	s.respondSelection(w, r, seq)
}

// respondSelection answers a selection change. With ?wait=true the response
// carries the state once the request's outcome (or a newer one) is applied.
func (s *Server) respondSelection(w http.ResponseWriter, r *http.Request, seq uint64) {
	if r.URL.Query().Get("wait") != "true" {
		writeJSON(w, http.StatusAccepted, map[string]uint64{"seq": seq})
		return
	}
	st, err := s.ch.Wait(r.Context(), seq)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, newChartsResponse(st))
}

func (s *Server) handleChartImage(w http.ResponseWriter, r *http.Request) {
	file := r.PathValue("file")
	format := schema.RenderFormat(strings.TrimPrefix(path.Ext(file), "."))
	var contentType string
	switch format {
	case schema.PNGRender:
		contentType = "image/png"
	case schema.SVGRender:
		contentType = "image/svg+xml"
	default:
		writeError(w, http.StatusBadRequest, "chart images are .png or .svg")
		return
	}

	st := s.ch.Snapshot()
	for _, in := range core.BuildDashboard(st.Result, st.Selection) {
		if render.ChartFileName(in.Metric, format) != file {
			continue
		}
		var buf bytes.Buffer
		if err := render.RenderImage(&buf, in, format); err != nil {
			if errors.Is(err, render.ErrNothingToDraw) {
				writeError(w, http.StatusNotFound, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write(buf.Bytes())
		return
	}
	writeError(w, http.StatusNotFound, "no chart for "+file)
}

func (s *Server) handleChartsHTML(w http.ResponseWriter, r *http.Request) {
	st := s.ch.Snapshot()
	var buf bytes.Buffer
	if err := render.RenderHTML(&buf, core.BuildDashboard(st.Result, st.Selection), "stepviz"); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// indexExperiment is one row of the dashboard experiment list.
type indexExperiment struct {
	schema.ExperimentSummary
	Selected bool
	Color    string
}

type indexData struct {
	Experiments []indexExperiment
	State       core.ViewState
	Charts      []schema.ChartRenderInput
	Threshold   int
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	st := s.ch.Snapshot()
	data := indexData{
		State:     st,
		Charts:    core.BuildDashboard(st.Result, st.Selection),
		Threshold: s.cfg.Threshold,
	}
	for _, e := range s.experiments {
		row := indexExperiment{ExperimentSummary: e}
		for i, id := range st.Pending {
			if id == e.ExperimentID {
				row.Selected = true
				row.Color = core.LineColor(i)
			}
		}
		data.Experiments = append(data.Experiments, row)
	}

	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, "index.html", data); err != nil {
		logrus.WithError(err).Error("Failed to render dashboard")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
