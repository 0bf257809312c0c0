// Package metrics exposes Prometheus metrics for the listing service.
//
//	listing_requests_total{kind}              list reads served
//	listing_cache_lookups_total{kind,result}  cache hits and misses
//	listing_request_duration_seconds{kind}    list latency
//	application_transitions_total{to}         status changes applied
//	application_transitions_rejected_total    refused status changes
//	application_deletions_total               applications deleted
//	positions_closed_total                    positions closed by the sweep
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"careers/listing-service/internal/kanban"
)

// Collector records service metrics. It satisfies kanban.Observer and
// cache.Observer.
type Collector struct {
	requests    *prometheus.CounterVec
	cache       *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	transitions *prometheus.CounterVec
	rejected    prometheus.Counter
	deleted     prometheus.Counter
	closed      prometheus.Counter

	gatherer prometheus.Gatherer
}

var _ kanban.Observer = (*Collector)(nil)

// NewCollector creates the metrics and registers them on reg.
func NewCollector(reg *prometheus.Registry) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "listing_requests_total",
			Help: "Listing reads served, by record kind",
		}, []string{"kind"}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "listing_cache_lookups_total",
			Help: "Listing cache lookups, by record kind and result",
		}, []string{"kind", "result"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "listing_request_duration_seconds",
			Help:    "Listing read latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "application_transitions_total",
			Help: "Application status changes applied, by target status",
		}, []string{"to"}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "application_transitions_rejected_total",
			Help: "Application status changes or deletions refused by the workflow",
		}),
		deleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "application_deletions_total",
			Help: "Applications deleted",
		}),
		closed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "positions_closed_total",
			Help: "Positions closed because their deadline passed",
		}),
		gatherer: reg,
	}
	reg.MustRegister(c.requests, c.cache, c.latency, c.transitions, c.rejected, c.deleted, c.closed)
	return c
}

// ObserveList records one listing read of kind that took d.
func (c *Collector) ObserveList(kind string, d time.Duration) {
	c.requests.WithLabelValues(kind).Inc()
	c.latency.WithLabelValues(kind).Observe(d.Seconds())
}

func (c *Collector) CacheHit(kind string)  { c.cache.WithLabelValues(kind, "hit").Inc() }
func (c *Collector) CacheMiss(kind string) { c.cache.WithLabelValues(kind, "miss").Inc() }

func (c *Collector) TransitionApplied(to kanban.Status) {
	c.transitions.WithLabelValues(string(to)).Inc()
}

func (c *Collector) TransitionRejected() { c.rejected.Inc() }
func (c *Collector) ApplicationDeleted() { c.deleted.Inc() }

// PositionsClosed records a sweep result.
func (c *Collector) PositionsClosed(n int64) { c.closed.Add(float64(n)) }

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
