package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ticket_inventory"

// Metrics holds the service collectors. A nil *Metrics is valid and records
// nothing, so components can be built without a registry in tests.
type Metrics struct {
	registry *prometheus.Registry

	StoreWrites     *prometheus.CounterVec
	WriteRollbacks  *prometheus.CounterVec
	PendingWrites   prometheus.Gauge
	RemoteFetches   *prometheus.CounterVec
	HTTPRequests    *prometheus.CounterVec
	CollectionItems prometheus.Gauge
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: reg,
		StoreWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_writes_total",
			Help:      "Store writes by operation and result",
		}, []string{"op", "result"}),
		WriteRollbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "write_rollbacks_total",
			Help:      "Optimistic changes reverted after a failed write",
		}, []string{"op"}),
		PendingWrites: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_writes",
			Help:      "Writes queued or in flight",
		}),
		RemoteFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_fetch_total",
			Help:      "Ticket feed requests by endpoint and result",
		}, []string{"endpoint", "result"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		CollectionItems: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "collection_items",
			Help:      "Listings held in memory",
		}),
	}

	reg.MustRegister(
		m.StoreWrites,
		m.WriteRollbacks,
		m.PendingWrites,
		m.RemoteFetches,
		m.HTTPRequests,
		m.CollectionItems,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveWrite(op string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.StoreWrites.WithLabelValues(op, result).Inc()
}

func (m *Metrics) ObserveRollback(op string) {
	if m == nil {
		return
	}
	m.WriteRollbacks.WithLabelValues(op).Inc()
}

func (m *Metrics) AddPending(delta float64) {
	if m == nil {
		return
	}
	m.PendingWrites.Add(delta)
}

func (m *Metrics) ObserveRemote(endpoint string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.RemoteFetches.WithLabelValues(endpoint, result).Inc()
}

func (m *Metrics) ObserveHTTP(method, route string, status int) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

func (m *Metrics) SetCollectionSize(n int) {
	if m == nil {
		return
	}
	m.CollectionItems.Set(float64(n))
}
