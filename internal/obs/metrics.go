package obs

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the Prometheus collectors exported by the service.
type Metrics struct {
	ReqTotal        *prometheus.CounterVec
	ReqDur          *prometheus.HistogramVec
	Reconciliations *prometheus.CounterVec
	PaymentLinks    *prometheus.CounterVec
}

// NewMetrics creates and registers all collectors against reg.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		ReqTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests handled by the server.",
		}, []string{"method", "route", "status"}),
		ReqDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency distribution in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		}, []string{"method", "route"}),
		Reconciliations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_reconciliations_total",
			Help:      "Inbound gateway notifications by reconciliation outcome.",
		}, []string{"result"}),
		PaymentLinks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_links_total",
			Help:      "Outbound payment links built, by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.ReqTotal, m.ReqDur, m.Reconciliations, m.PaymentLinks)
	return m
}

// ObserveReconciliation counts one notification outcome. Safe on a nil receiver.
func (m *Metrics) ObserveReconciliation(result string) {
	if m == nil {
		return
	}
	m.Reconciliations.WithLabelValues(result).Inc()
}

// ObservePaymentLink counts one payment link build. Safe on a nil receiver.
func (m *Metrics) ObservePaymentLink(result string) {
	if m == nil {
		return
	}
	m.PaymentLinks.WithLabelValues(result).Inc()
}

// Middleware records request counts and latencies per route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := routePattern(r)
		m.ReqTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.ReqDur.WithLabelValues(r.Method, route).Observe(float64(time.Since(start)) / float64(time.Millisecond))
	})
}
