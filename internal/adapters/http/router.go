package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/projectscope/estimation-service/internal/config"
	"github.com/projectscope/estimation-service/internal/core/domain"
	"github.com/projectscope/estimation-service/internal/core/usecase"
	"github.com/projectscope/estimation-service/internal/observability/metrics"
)

const serviceName = "estimation-api"

type Router struct {
	submitUC *usecase.SubmitAnalysisUseCase
	cfg      config.Config
	metrics  *metrics.HTTPServerMetrics
}

func NewRouter(submitUC *usecase.SubmitAnalysisUseCase, cfg config.Config, m *metrics.HTTPServerMetrics) *Router {
	return &Router{
		submitUC: submitUC,
		cfg:      cfg,
		metrics:  m,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/analyses", rt.submitAnalysis)
	mux.HandleFunc("/v1/analyses/", rt.getAnalysisByID)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxConcurrent, time.Duration(rt.cfg.APIQueueWaitMS)*time.Millisecond)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) submitAnalysis(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var input domain.ProjectInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	analysis, err := rt.submitUC.Submit(r.Context(), input)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusAccepted, submitResponse{
		Analysis: analysis,
		Message:  "analysis accepted for processing",
	})
}

type submitResponse struct {
	*domain.Analysis
	Message string `json:"message"`
}

func (rt *Router) getAnalysisByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/analyses/")
	if id == "" || strings.Contains(id, "/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "analysis id is required"})
		return
	}

	analysis, err := rt.submitUC.GetByID(r.Context(), id)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
