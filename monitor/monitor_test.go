package monitor

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersAreMonotonic(t *testing.T) {
	m := New(DefaultConfig())

	m.RecordTick()
	m.RecordTick()
	m.RecordSignal()
	m.RecordError()

	if got := testutil.ToFloat64(m.ticksProcessed); got != 2 {
		t.Errorf("expected ticks_total 2, got %f", got)
	}
	if got := testutil.ToFloat64(m.signalsFired); got != 1 {
		t.Errorf("expected signals_total 1, got %f", got)
	}
	if got := testutil.ToFloat64(m.consumeErrors); got != 1 {
		t.Errorf("expected errors_total 1, got %f", got)
	}
}

func TestGaugesAreLastWriteWins(t *testing.T) {
	m := New(DefaultConfig())

	m.UpdateLastPrice(100.5)
	m.UpdateLastPrice(101.2)
	m.UpdateTickAge(3.0)
	m.UpdateTickAge(0.5)

	if got := testutil.ToFloat64(m.lastPrice); got != 101.2 {
		t.Errorf("expected last_price 101.2, got %f", got)
	}
	if got := testutil.ToFloat64(m.lastTickAge); got != 0.5 {
		t.Errorf("expected last_tick_age_seconds 0.5, got %f", got)
	}
}

func TestConcurrentIncrementsDoNotLoseUpdates(t *testing.T) {
	m := New(DefaultConfig())

	var wg sync.WaitGroup
	const workers = 8
	const perWorker = 500
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				m.RecordTick()
			}
		}()
	}
	wg.Wait()

	if got := testutil.ToFloat64(m.ticksProcessed); got != workers*perWorker {
		t.Errorf("lost increments: expected %d, got %f", workers*perWorker, got)
	}
}

func TestHandlerExposesEngineAndHTTPMetrics(t *testing.T) {
	m := New(DefaultConfig())
	m.RecordTick()
	m.UpdateLastPrice(101.0)
	m.RecordHTTPRequest("/health", http.StatusOK)
	m.RecordHTTPLatency("/health", 25*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rec.Body.String()
	for _, name := range []string{
		"ticks_total",
		"signals_total",
		"errors_total",
		"last_price",
		"last_tick_age_seconds",
		"http_requests_total",
		"http_request_duration_seconds",
	} {
		if !strings.Contains(body, name) {
			t.Errorf("exposition missing %s", name)
		}
	}
}

func TestNamespacePrefix(t *testing.T) {
	m := New(Config{Namespace: "strategy", Subsystem: "engine"})
	m.RecordTick()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "strategy_engine_ticks_total") {
		t.Errorf("expected namespaced metric name in exposition")
	}
}
