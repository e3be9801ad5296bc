// Package metrics exposes Prometheus metrics for queues and monitors.
package metrics

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/frenchie4111/redis-queue/pkg/redisqueue"
)

const (
	Namespace = "redisqueue"

	// Status label values for enqueue results.
	StatusSuccess = "success"
	StatusError   = "error"
)

// Labels holds constant labels applied to all metrics.
type Labels struct {
	ConsumerID string // Identifies the process, useful when several monitor one queue
}

func (l Labels) toPrometheusLabels() prometheus.Labels {
	labels := prometheus.Labels{}
	if l.ConsumerID != "" {
		labels["consumer_id"] = l.ConsumerID
	}
	return labels
}

// Metrics counts enqueues, delivered messages and monitor errors per queue.
type Metrics struct {
	enqueued *prometheus.CounterVec // by queue, status
	messages *prometheus.CounterVec // by queue
	failures *prometheus.CounterVec // by queue, kind
}

// New creates a new Metrics instance and registers all metrics with reg.
func New(reg prometheus.Registerer, labels Labels) (*Metrics, error) {
	if promLabels := labels.toPrometheusLabels(); len(promLabels) > 0 {
		reg = prometheus.WrapRegistererWith(promLabels, reg)
	}

	m := &Metrics{
		enqueued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "enqueued_total",
			Help:      "Total enqueue calls by queue and status",
		}, []string{"queue", "status"}),
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "messages_total",
			Help:      "Total messages delivered by monitors",
		}, []string{"queue"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "errors_total",
			Help:      "Total monitor errors by queue and kind",
		}, []string{"queue", "kind"}),
	}

	for _, c := range []prometheus.Collector{m.enqueued, m.messages, m.failures} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(err, "unable to register metric")
		}
	}
	return m, nil
}

// ObserveEnqueue records the result of an enqueue on queue.
func (m *Metrics) ObserveEnqueue(queue string, err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	m.enqueued.WithLabelValues(queue, status).Inc()
}

// ObserveMessage records a delivered message.
func (m *Metrics) ObserveMessage(queue string) {
	m.messages.WithLabelValues(queue).Inc()
}

// ObserveError records a monitor error, labelled with its kind.
func (m *Metrics) ObserveError(queue string, err error) {
	m.failures.WithLabelValues(queue, redisqueue.Kind(err)).Inc()
}

// Instrument registers handlers on mon that count its events.
func (m *Metrics) Instrument(mon *redisqueue.Monitor, queue string) *redisqueue.Monitor {
	return mon.
		OnMessage(func(string, interface{}) { m.ObserveMessage(queue) }).
		OnError(func(err error) { m.ObserveError(queue, err) })
}
