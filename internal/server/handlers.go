package server

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"stockchart/internal/analysis"
	"stockchart/internal/chart"
	"stockchart/internal/indicator"
	"stockchart/internal/metrics"
	"stockchart/internal/quote"
	"stockchart/internal/session"
	"stockchart/pkg/alphavantage"

	"go.uber.org/zap"
)

//go:embed web/index.html
var indexHTML []byte

const maxBodyBytes = 1 << 16

type fetchRequest struct {
	Ticker string `json:"ticker"`
	Start  string `json:"start"`
	End    string `json:"end"`
}

type indicatorsRequest struct {
	Indicators []string `json:"indicators"`
}

type analysisResponse struct {
	Analysis string `json:"analysis"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.sessionFor(w, r)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexHTML)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "source": s.source.Name()})
}

// handleFetch loads a new table into the session. A failed fetch leaves the
// session exactly as it was.
func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)

	var req fetchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	symbol := quote.NormalizeSymbol(req.Ticker)
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "ticker is required")
		return
	}
	window, err := quote.ParseWindow(req.Start, req.End)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	log := s.logger.With(
		zap.String("session", sess.ID()),
		zap.String("symbol", symbol),
		zap.String("window", window.String()),
		zap.String("source", s.source.Name()),
	)

	started := time.Now()
	table, err := s.source.Fetch(r.Context(), symbol, window)
	if err != nil {
		status, outcome := classifyFetchError(err)
		s.metrics.ObserveFetch(s.source.Name(), outcome, started, 0)
		log.Warn("fetch failed", zap.String("outcome", outcome), zap.Error(err))
		writeError(w, status, err.Error())
		return
	}
	s.metrics.ObserveFetch(s.source.Name(), metrics.OutcomeOK, started, table.Len())

	if err := sess.Load(table, window); err != nil {
		log.Error("load session", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	view := sess.View()
	for _, k := range view.Selected {
		s.metrics.CountIndicator(k.String())
	}

	log.Info("fetch completed", zap.Int("bars", table.Len()), zap.Duration("elapsed", time.Since(started)))
	writeJSON(w, http.StatusOK, chart.FromView(view))
}

func classifyFetchError(err error) (int, string) {
	var perr *alphavantage.ProviderError
	switch {
	case errors.Is(err, quote.ErrMalformedRecord):
		return http.StatusUnprocessableEntity, metrics.OutcomeMalformed
	case errors.Is(err, quote.ErrNetworkFailure):
		return http.StatusBadGateway, metrics.OutcomeNetwork
	case errors.As(err, &perr):
		return http.StatusBadGateway, metrics.OutcomeProvider
	}
	return http.StatusInternalServerError, metrics.OutcomeError
}

func (s *Server) handleIndicators(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)

	var req indicatorsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	kinds, err := indicator.ParseKinds(req.Indicators)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	before := sess.View()
	if err := sess.Select(kinds); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if before.State == session.Loaded {
		for _, k := range newKinds(before.Selected, kinds) {
			s.metrics.CountIndicator(k.String())
		}
	}
	writeJSON(w, http.StatusOK, chart.FromView(sess.View()))
}

func newKinds(prev, next []indicator.Kind) []indicator.Kind {
	had := make(map[indicator.Kind]bool, len(prev))
	for _, k := range prev {
		had[k] = true
	}
	var out []indicator.Kind
	for _, k := range next {
		if !had[k] {
			out = append(out, k)
		}
	}
	return out
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)
	writeJSON(w, http.StatusOK, chart.FromView(sess.View()))
}

func (s *Server) handleChartPNG(w http.ResponseWriter, r *http.Request) {
	view := s.sessionFor(w, r).View()
	if view.State != session.Loaded {
		writeError(w, http.StatusConflict, "fetch data first")
		return
	}

	opts := s.chartOpts
	opts.Title = view.Symbol
	var buf bytes.Buffer
	if err := chart.Render(&buf, view.Bars, view.Overlays, opts); err != nil {
		s.logger.Error("render chart", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	view := s.sessionFor(w, r).View()

	started := time.Now()
	narrative, err := s.runner.Run(r.Context(), view)
	switch {
	case errors.Is(err, analysis.ErrNotLoaded):
		writeError(w, http.StatusConflict, "fetch data first")
		return
	case err != nil:
		s.metrics.ObserveAnalysis(metrics.OutcomeError, started)
		s.logger.Warn("analysis failed", zap.String("session", view.ID), zap.Error(err))
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.metrics.ObserveAnalysis(metrics.OutcomeOK, started)
	writeJSON(w, http.StatusOK, analysisResponse{Analysis: narrative})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
