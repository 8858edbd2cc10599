package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the HTTP API.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec // labels: route, status
	RequestDur      *prometheus.HistogramVec
	CalcDur         prometheus.Histogram
	CalcRows        prometheus.Gauge
	CalcErrorsTotal prometheus.Counter
	ReportsTotal    *prometheus.CounterVec // labels: source

	gatherer prometheus.Gatherer
}

// NewMetrics registers and returns all metrics on reg.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "analyst_http_requests_total",
			Help: "HTTP requests by route and status code",
		}, []string{"route", "status"}),
		RequestDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "analyst_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		CalcDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "analyst_calculation_duration_seconds",
			Help:    "Indicator calculation latency",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		CalcRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "analyst_calculation_rows",
			Help: "Daily rows in the most recent indicator table",
		}),
		CalcErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "analyst_calculation_errors_total",
			Help: "Calculations rejected because of malformed input",
		}),
		ReportsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "analyst_reports_total",
			Help: "Reports generated by data source",
		}, []string{"source"}),
		gatherer: reg,
	}

	reg.MustRegister(
		m.RequestsTotal,
		m.RequestDur,
		m.CalcDur,
		m.CalcRows,
		m.CalcErrorsTotal,
		m.ReportsTotal,
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// instrument counts requests and observes latency under a fixed route label.
func (m *Metrics) instrument(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		h(sw, r)
		m.RequestDur.WithLabelValues(route).Observe(time.Since(start).Seconds())
		m.RequestsTotal.WithLabelValues(route, strconv.Itoa(sw.status)).Inc()
	}
}
