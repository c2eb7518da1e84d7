// Package monitor collects Prometheus metrics for the signal engine.
package monitor

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Monitor Prometheus监控指标收集器。一个进程只构造一次，
// 由消费循环和HTTP服务共同引用。
type Monitor struct {
	registry *prometheus.Registry

	// 消费指标
	ticksProcessed prometheus.Counter
	signalsFired   prometheus.Counter
	consumeErrors  prometheus.Counter

	// 状态指标
	lastPrice   prometheus.Gauge
	lastTickAge prometheus.Gauge

	// 服务面指标
	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
}

// Config 监控配置
type Config struct {
	Namespace string
	Subsystem string
}

// DefaultConfig 返回默认配置。指标名直接对外暴露
// （ticks_total 等），默认不加前缀。
func DefaultConfig() Config {
	return Config{}
}

// New 创建新的Monitor实例
func New(cfg Config) *Monitor {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Monitor{
		registry: reg,

		ticksProcessed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "ticks_total",
			Help:      "Total number of successfully decoded ticks",
		}),
		signalsFired: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "signals_total",
			Help:      "Total number of buy signals fired",
		}),
		consumeErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "errors_total",
			Help:      "Total number of decode and consume errors",
		}),

		lastPrice: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "last_price",
			Help:      "Last observed tick price",
		}),
		lastTickAge: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "last_tick_age_seconds",
			Help:      "Seconds since the last successfully applied tick",
		}),

		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests served",
			},
			[]string{"path", "code"},
		),
		httpLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"path"},
		),
	}

	return m
}

// 消费相关方法
func (m *Monitor) RecordTick() {
	m.ticksProcessed.Inc()
}

func (m *Monitor) RecordSignal() {
	m.signalsFired.Inc()
}

func (m *Monitor) RecordError() {
	m.consumeErrors.Inc()
}

// 状态相关方法
func (m *Monitor) UpdateLastPrice(value float64) {
	m.lastPrice.Set(value)
}

func (m *Monitor) UpdateTickAge(seconds float64) {
	m.lastTickAge.Set(seconds)
}

// 服务面相关方法
func (m *Monitor) RecordHTTPRequest(path string, code int) {
	m.httpRequests.WithLabelValues(path, strconv.Itoa(code)).Inc()
}

func (m *Monitor) RecordHTTPLatency(path string, d time.Duration) {
	m.httpLatency.WithLabelValues(path).Observe(d.Seconds())
}

// Handler 返回HTTP handler用于暴露指标
func (m *Monitor) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry 返回prometheus registry
func (m *Monitor) Registry() *prometheus.Registry {
	return m.registry
}
