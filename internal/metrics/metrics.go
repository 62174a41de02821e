// Package metrics declares the Prometheus collectors of the notifier.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	NotificationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifier_notifications_created_total",
			Help: "Total number of notifications created",
		},
		[]string{"type", "priority"},
	)

	Deliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifier_deliveries_total",
			Help: "Delivery attempts per channel and outcome",
		},
		[]string{"channel", "status"},
	)

	DeliveryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notifier_delivery_duration_seconds",
			Help:    "Duration of a single channel delivery",
			Buckets: []float64{.005, .01, .05, .1, .25, .5, 1, 2, 5},
		},
		[]string{"channel"},
	)

	DeferredDispatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifier_deferred_dispatches_total",
			Help: "Dispatches postponed by schedule or digest",
		},
		[]string{"kind"},
	)

	BusDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifier_bus_dropped_events_total",
			Help: "Events dropped because a subscriber was lagging",
		},
		[]string{"topic"},
	)

	BoundaryQueued = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "notifier_boundary_queued_records",
			Help: "Cached push records waiting for confirmation",
		},
	)

	BoundarySyncs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifier_boundary_sync_records_total",
			Help: "Background sync outcomes per record",
		},
		[]string{"result"},
	)

	PushDeviceFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifier_push_device_failures_total",
			Help: "Failed push sends per device subscription",
		},
		[]string{"reason"},
	)

	PushConfirmations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notifier_push_confirmations_total",
			Help: "Push payloads confirmed by device boundaries",
		},
	)
)

// ObserveDelivery records one channel attempt.
func ObserveDelivery(channel string, err error, d time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}

	Deliveries.WithLabelValues(channel, status).Inc()
	DeliveryDuration.WithLabelValues(channel).Observe(d.Seconds())
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
