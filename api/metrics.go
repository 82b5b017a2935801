package api

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"
)

// RequestTrace tracks timing for a single request
type RequestTrace struct {
	RequestID     string         `json:"requestId"`
	Method        string         `json:"method"`
	Path          string         `json:"path"`
	Status        int            `json:"status"`
	StartTime     time.Time      `json:"startTime"`
	EndTime       time.Time      `json:"endTime"`
	TotalDuration time.Duration  `json:"totalDuration"`
	DBQueries     []DBQueryTrace `json:"dbQueries"`
	DBTotalTime   time.Duration  `json:"dbTotalTime"`
	Error         string         `json:"error,omitempty"`
}

// DBQueryTrace tracks a single database query
type DBQueryTrace struct {
	Operation  string        `json:"operation"`
	Collection string        `json:"collection"`
	Duration   time.Duration `json:"duration"`
	Error      string        `json:"error,omitempty"`
	Timestamp  time.Time     `json:"timestamp"`
}

// RouteMetrics aggregates metrics for a specific route
type RouteMetrics struct {
	Method      string        `json:"method"`
	Path        string        `json:"path"`
	Count       int64         `json:"count"`
	ErrorCount  int64         `json:"errorCount"`
	TotalTime   time.Duration `json:"totalTime"`
	AvgTime     time.Duration `json:"avgTime"`
	MinTime     time.Duration `json:"minTime"`
	MaxTime     time.Duration `json:"maxTime"`
	P95Time     time.Duration `json:"p95Time"`
	DBTotalTime time.Duration `json:"dbTotalTime"`
	LastRequest time.Time     `json:"lastRequest"`
}

// MetricsCollector collects and aggregates request metrics. Traces flow in
// through a buffered channel; a full channel drops the trace so metrics never
// slow a request down.
type MetricsCollector struct {
	mu             sync.RWMutex
	traces         []RequestTrace
	maxTraces      int
	routeMetrics   map[string]*RouteMetrics
	windowStart    time.Time
	windowDuration time.Duration
	totalRequests  int64
	totalErrors    int64
	traceChan      chan RequestTrace
	stopChan       chan struct{}
}

var globalMetrics *MetricsCollector

// InitMetrics initializes the global metrics collector
func InitMetrics(maxTraces int, windowDuration time.Duration) {
	globalMetrics = &MetricsCollector{
		traces:         make([]RequestTrace, 0, maxTraces),
		maxTraces:      maxTraces,
		routeMetrics:   make(map[string]*RouteMetrics),
		windowStart:    time.Now(),
		windowDuration: windowDuration,
		traceChan:      make(chan RequestTrace, 1000),
		stopChan:       make(chan struct{}),
	}

	go globalMetrics.processTraces()
	go globalMetrics.cleanup()
}

// GetMetrics returns the global metrics collector
func GetMetrics() *MetricsCollector {
	if globalMetrics == nil {
		InitMetrics(10000, 1*time.Hour)
	}
	return globalMetrics
}

// RecordTrace queues a trace without blocking. A full buffer drops it.
func (mc *MetricsCollector) RecordTrace(trace RequestTrace) {
	select {
	case mc.traceChan <- trace:
	default:
	}
}

func (mc *MetricsCollector) processTraces() {
	for {
		select {
		case trace := <-mc.traceChan:
			mc.processTrace(trace)
		case <-mc.stopChan:
			return
		}
	}
}

func (mc *MetricsCollector) processTrace(trace RequestTrace) {
	defer func() {
		// metrics must never take the process down
		_ = recover()
	}()

	mc.mu.Lock()
	defer mc.mu.Unlock()

	if len(mc.traces) >= mc.maxTraces {
		mc.traces = mc.traces[1:]
	}
	mc.traces = append(mc.traces, trace)

	routeKey := trace.Method + " " + normalizeRoutePath(trace.Path)

	metrics, exists := mc.routeMetrics[routeKey]
	if !exists {
		metrics = &RouteMetrics{
			Method:  trace.Method,
			Path:    normalizeRoutePath(trace.Path),
			MinTime: trace.TotalDuration,
		}
		mc.routeMetrics[routeKey] = metrics
	}

	metrics.Count++
	metrics.TotalTime += trace.TotalDuration
	metrics.AvgTime = metrics.TotalTime / time.Duration(metrics.Count)
	metrics.LastRequest = trace.StartTime
	metrics.DBTotalTime += trace.DBTotalTime

	if trace.TotalDuration < metrics.MinTime {
		metrics.MinTime = trace.TotalDuration
	}
	if trace.TotalDuration > metrics.MaxTime {
		metrics.MaxTime = trace.TotalDuration
	}
	if trace.Status >= 400 {
		metrics.ErrorCount++
		mc.totalErrors++
	}

	mc.totalRequests++

	if metrics.Count%100 == 0 {
		mc.calculatePercentiles(routeKey)
	}
}

// GetTraces returns recent traces, newest last
func (mc *MetricsCollector) GetTraces(limit int, since time.Time) []RequestTrace {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	var filtered []RequestTrace
	for i := len(mc.traces) - 1; i >= 0 && len(filtered) < limit; i-- {
		if mc.traces[i].StartTime.After(since) {
			filtered = append([]RequestTrace{mc.traces[i]}, filtered...)
		}
	}
	return filtered
}

// GetRouteMetrics returns aggregated metrics for all routes
func (mc *MetricsCollector) GetRouteMetrics() map[string]*RouteMetrics {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	result := make(map[string]*RouteMetrics)
	for k, v := range mc.routeMetrics {
		metrics := *v
		result[k] = &metrics
	}
	return result
}

// GetSummary returns overall summary metrics
func (mc *MetricsCollector) GetSummary() map[string]interface{} {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	elapsed := time.Since(mc.windowStart)
	if elapsed > mc.windowDuration {
		elapsed = mc.windowDuration
	}

	var tps float64
	if elapsed.Seconds() > 0 {
		tps = float64(mc.totalRequests) / elapsed.Seconds()
	}
	var errorRate float64
	if mc.totalRequests > 0 {
		errorRate = float64(mc.totalErrors) / float64(mc.totalRequests)
	}

	return map[string]interface{}{
		"totalRequests": mc.totalRequests,
		"totalErrors":   mc.totalErrors,
		"errorRate":     errorRate,
		"tps":           tps,
		"windowStart":   mc.windowStart,
		"routeCount":    len(mc.routeMetrics),
		"traceCount":    len(mc.traces),
	}
}

// normalizeRoutePath collapses dynamic id segments so similar requests group
// under one route, e.g. /api/v1/emergency/507f1f77bcf86cd799439011 becomes
// /api/v1/emergency/{id}
func normalizeRoutePath(path string) string {
	objectIDPattern := regexp.MustCompile(`/[0-9a-fA-F]{24}(/|$)`)
	path = objectIDPattern.ReplaceAllString(path, "/{id}$1")

	uuidPattern := regexp.MustCompile(`/[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}(/|$)`)
	path = uuidPattern.ReplaceAllString(path, "/{id}$1")

	path = strings.ReplaceAll(path, "//", "/")
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	return path
}

// GetSlowestRoutes returns routes ordered by average time, slowest first
func (mc *MetricsCollector) GetSlowestRoutes(limit, offset int) []*RouteMetrics {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	routes := make([]*RouteMetrics, 0, len(mc.routeMetrics))
	for _, metrics := range mc.routeMetrics {
		routes = append(routes, metrics)
	}
	sort.Slice(routes, func(i, j int) bool { return routes[i].AvgTime > routes[j].AvgTime })

	return paginateRoutes(routes, limit, offset)
}

// GetMostFrequentRoutes returns routes ordered by request count
func (mc *MetricsCollector) GetMostFrequentRoutes(limit, offset int) []*RouteMetrics {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	routes := make([]*RouteMetrics, 0, len(mc.routeMetrics))
	for _, metrics := range mc.routeMetrics {
		routes = append(routes, metrics)
	}
	sort.Slice(routes, func(i, j int) bool { return routes[i].Count > routes[j].Count })

	return paginateRoutes(routes, limit, offset)
}

// RouteCount returns the number of distinct routes seen
func (mc *MetricsCollector) RouteCount() int {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return len(mc.routeMetrics)
}

func paginateRoutes(routes []*RouteMetrics, limit, offset int) []*RouteMetrics {
	if offset >= len(routes) {
		return []*RouteMetrics{}
	}
	end := offset + limit
	if end > len(routes) {
		end = len(routes)
	}
	return routes[offset:end]
}

func (mc *MetricsCollector) calculatePercentiles(routeKey string) {
	metrics := mc.routeMetrics[routeKey]
	if metrics == nil {
		return
	}

	var durations []time.Duration
	for _, trace := range mc.traces {
		if trace.Method+" "+normalizeRoutePath(trace.Path) == routeKey {
			durations = append(durations, trace.TotalDuration)
		}
	}
	if len(durations) == 0 {
		return
	}
	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

	p95Idx := int(float64(len(durations)) * 0.95)
	if p95Idx < len(durations) {
		metrics.P95Time = durations[p95Idx]
	}
}

func (mc *MetricsCollector) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		mc.mu.Lock()
		now := time.Now()

		cutoff := now.Add(-mc.windowDuration)
		var validTraces []RequestTrace
		for _, trace := range mc.traces {
			if trace.StartTime.After(cutoff) {
				validTraces = append(validTraces, trace)
			}
		}
		mc.traces = validTraces

		if now.Sub(mc.windowStart) > mc.windowDuration {
			mc.windowStart = now
		}

		mc.mu.Unlock()
	}
}

type requestTraceContextKey struct{}

type requestTraceContext struct {
	trace *RequestTrace
	mu    sync.Mutex
}

func getRequestTraceFromContext(ctx context.Context) *requestTraceContext {
	if val := ctx.Value(requestTraceContextKey{}); val != nil {
		return val.(*requestTraceContext)
	}
	return nil
}

// WithRequestTrace adds request trace to context
func WithRequestTrace(ctx context.Context, trace *RequestTrace) context.Context {
	return context.WithValue(ctx, requestTraceContextKey{}, &requestTraceContext{trace: trace})
}

// RecordDBQueryFromContext appends a query timing to the request's trace.
// Requests without a trace in context are ignored.
func RecordDBQueryFromContext(ctx context.Context, operation, collection string, duration time.Duration, err error) {
	reqTrace := getRequestTraceFromContext(ctx)
	if reqTrace == nil || reqTrace.trace == nil {
		return
	}

	reqTrace.mu.Lock()
	trace := DBQueryTrace{
		Operation:  operation,
		Collection: collection,
		Duration:   duration,
		Timestamp:  time.Now(),
	}
	if err != nil {
		trace.Error = err.Error()
	}
	reqTrace.trace.DBQueries = append(reqTrace.trace.DBQueries, trace)
	reqTrace.trace.DBTotalTime += duration
	reqTrace.mu.Unlock()
}
