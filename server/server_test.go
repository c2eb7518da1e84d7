package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"strategy-engine-go/monitor"
	"strategy-engine-go/strategy"
	"strategy-engine-go/tick"
)

func newTestHandler() (*Handler, *strategy.State) {
	st := strategy.NewState()
	mon := monitor.New(monitor.DefaultConfig())
	return New(st, mon), st
}

func getJSON(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, HealthReport) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var report HealthReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("unmarshal health report: %v", err)
	}
	return rec, report
}

// 健康端点只反映进程存活：消费循环从未启动时也返回ok，
// 这是沿用的弱liveness语义。
func TestHealthReportsOKWithoutAnyTick(t *testing.T) {
	h, _ := newTestHandler()
	routes := h.Routes()

	rec, report := getJSON(t, routes, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if report.Status != "ok" {
		t.Fatalf("expected status ok, got %q", report.Status)
	}
	if report.LastPrice != 0 || report.LastSymbol != "" || report.LastSource != "" {
		t.Fatalf("expected default state, got %+v", report)
	}
	if report.LastTickTime != nil {
		t.Fatalf("expected null last_tick_time, got %v", *report.LastTickTime)
	}
}

func TestHealthReflectsAppliedState(t *testing.T) {
	h, st := newTestHandler()
	now := time.Now()
	st.Apply(tick.Tick{Symbol: "FAKE", Price: 101.0, Source: "market-data"}, now)

	_, report := getJSON(t, h.Routes(), "/health")
	if report.LastPrice != 101.0 || report.LastSymbol != "FAKE" || report.LastSource != "market-data" {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.LastTickTime == nil {
		t.Fatal("expected last_tick_time to be set")
	}
	parsed, err := time.Parse(time.RFC3339Nano, *report.LastTickTime)
	if err != nil {
		t.Fatalf("unparsable last_tick_time: %v", err)
	}
	if parsed.Sub(now).Abs() > time.Millisecond {
		t.Fatalf("last_tick_time drifted: %v vs %v", parsed, now)
	}
}

func TestMetricsExpositionAndRequestMetrics(t *testing.T) {
	h, st := newTestHandler()
	routes := h.Routes()
	st.Apply(tick.Tick{Symbol: "FAKE", Price: 100.0, Source: "src"}, time.Now())

	// 先打一次health，让请求指标有内容
	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	rec = httptest.NewRecorder()
	routes.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, name := range []string{
		"ticks_total",
		"signals_total",
		"errors_total",
		"last_price",
		"last_tick_age_seconds",
		`http_requests_total{code="200",path="/health"}`,
		"http_request_duration_seconds",
	} {
		if !strings.Contains(body, name) {
			t.Errorf("exposition missing %s", name)
		}
	}
}

// 陈旧度在读取时重算，而不是停留在tick时刻的值。
func TestMetricsRecomputesTickAgeAtScrape(t *testing.T) {
	h, st := newTestHandler()
	applied := time.Now().Add(-30 * time.Second)
	st.Apply(tick.Tick{Symbol: "FAKE", Price: 100.0, Source: "src"}, applied)

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	found := false
	for _, line := range strings.Split(rec.Body.String(), "\n") {
		if strings.HasPrefix(line, "last_tick_age_seconds ") {
			found = true
			var v float64
			if _, err := fmt.Sscanf(line, "last_tick_age_seconds %f", &v); err != nil {
				t.Fatalf("parse gauge line %q: %v", line, err)
			}
			if v < 29 || v > 60 {
				t.Fatalf("expected age near 30s, got %v", v)
			}
		}
	}
	if !found {
		t.Fatal("last_tick_age_seconds not in exposition")
	}
}
