// Package server exposes the request-serving surface: a liveness
// health report and the Prometheus exposition endpoint.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"strategy-engine-go/monitor"
	"strategy-engine-go/strategy"
)

// Handler 健康检查与指标暴露的HTTP面。
// 只读取状态快照，从不触碰可变字段。
type Handler struct {
	state *strategy.State
	mon   *monitor.Monitor
	now   func() time.Time
}

// New 创建Handler实例
func New(state *strategy.State, mon *monitor.Monitor) *Handler {
	return &Handler{
		state: state,
		mon:   mon,
		now:   time.Now,
	}
}

// HealthReport /health 的响应体。status 只反映进程存活，
// 不反映broker连通性。
type HealthReport struct {
	Status       string  `json:"status"`
	LastPrice    float64 `json:"last_price"`
	LastSymbol   string  `json:"last_symbol"`
	LastSource   string  `json:"last_source"`
	LastTickTime *string `json:"last_tick_time"`
}

// Routes 构建带请求计数/延迟指标的路由。
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/health", h.instrument("/health", http.HandlerFunc(h.handleHealth)))
	mux.Handle("/metrics", h.instrument("/metrics", h.metricsHandler()))
	return mux
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := h.state.Snapshot()
	report := HealthReport{
		Status:     "ok",
		LastPrice:  snap.LastPrice,
		LastSymbol: snap.LastSymbol,
		LastSource: snap.LastSource,
	}
	if !snap.LastTick.IsZero() {
		ts := snap.LastTick.UTC().Format(time.RFC3339Nano)
		report.LastTickTime = &ts
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(report)
}

// metricsHandler refreshes the staleness gauge from the state snapshot
// before every scrape, so the age reflects report time rather than the
// last tick time.
func (h *Handler) metricsHandler() http.Handler {
	inner := h.mon.Handler()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.mon.UpdateTickAge(h.state.TickAgeSeconds(h.now()))
		inner.ServeHTTP(w, r)
	})
}

// instrument 包装handler，记录请求数与延迟。
func (h *Handler) instrument(path string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := h.now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.mon.RecordHTTPRequest(path, rec.code)
		h.mon.RecordHTTPLatency(path, h.now().Sub(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}
