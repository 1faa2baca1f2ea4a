// Package metrics exposes Prometheus counters for message handling.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records message handling outcomes.
type Collector struct {
	received   prometheus.Counter
	skipped    *prometheus.CounterVec
	replied    prometheus.Counter
	postFailed prometheus.Counter
	latency    prometheus.Histogram
}

// NewCollector creates a Collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		received: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "timebot_messages_received_total",
			Help: "Messages received from Slack.",
		}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "timebot_messages_skipped_total",
			Help: "Messages skipped without a reply, by reason.",
		}, []string{"reason"}),
		replied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "timebot_replies_posted_total",
			Help: "Replies posted to Slack.",
		}),
		postFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "timebot_reply_failures_total",
			Help: "Replies that Slack rejected or that failed in transit.",
		}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "timebot_handle_seconds",
			Help:    "Time spent handling a single message.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.received,
		c.skipped,
		c.replied,
		c.postFailed,
		c.latency,
	)

	return c
}

// RecordReceived counts an inbound message.
func (c *Collector) RecordReceived() {
	c.received.Inc()
}

// RecordSkipped counts a message dropped for reason.
func (c *Collector) RecordSkipped(reason string) {
	c.skipped.WithLabelValues(reason).Inc()
}

// RecordReplied counts a posted reply.
func (c *Collector) RecordReplied() {
	c.replied.Inc()
}

// RecordPostFailure counts a reply that could not be posted.
func (c *Collector) RecordPostFailure() {
	c.postFailed.Inc()
}

// RecordLatency observes the time spent handling one message.
func (c *Collector) RecordLatency(d time.Duration) {
	c.latency.Observe(d.Seconds())
}

// Handler returns an HTTP handler serving the metrics in gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
