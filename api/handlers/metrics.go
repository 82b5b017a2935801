package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/healx-platform/healx-api/api"
	"github.com/healx-platform/healx-api/config"
)

// Metrics exposes the in-process request metrics for operators
type Metrics struct{}

// SummaryHandler returns overall request counts, error rate and throughput
func (m Metrics) SummaryHandler(w http.ResponseWriter, r *http.Request) {
	b, err := json.Marshal(api.GetMetrics().GetSummary())
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// RoutesHandler returns per-route aggregates
func (m Metrics) RoutesHandler(w http.ResponseWriter, r *http.Request) {
	b, err := json.Marshal(api.GetMetrics().GetRouteMetrics())
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// TracesHandler returns recent request traces. Accepts limit and minutes
// query parameters.
func (m Metrics) TracesHandler(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = l
	}
	minutes := 15
	if mins, err := strconv.Atoi(r.URL.Query().Get("minutes")); err == nil && mins > 0 {
		minutes = mins
	}
	since := time.Now().Add(-time.Duration(minutes) * time.Minute)

	b, err := json.Marshal(api.GetMetrics().GetTraces(limit, since))
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// SlowestRoutesHandler returns routes ordered by average latency
func (m Metrics) SlowestRoutesHandler(w http.ResponseWriter, r *http.Request) {
	limit, page := paginationParams(r)
	offset := (page - 1) * limit

	b, err := json.Marshal(api.GetMetrics().GetSlowestRoutes(limit, offset))
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// FrequentRoutesHandler returns routes ordered by request count
func (m Metrics) FrequentRoutesHandler(w http.ResponseWriter, r *http.Request) {
	limit, page := paginationParams(r)
	offset := (page - 1) * limit

	b, err := json.Marshal(api.GetMetrics().GetMostFrequentRoutes(limit, offset))
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
