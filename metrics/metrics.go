package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "train_booking"

var (
	// BookingsCreated The total number of confirmed bookings created (counter)
	BookingsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_created_total",
			Help:      "The total number of bookings created",
		},
	)

	// BookingsCancelled The total number of bookings moved to CANCELLED (counter)
	BookingsCancelled = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_cancelled_total",
			Help:      "The total number of cancelled bookings",
		},
	)

	// OperationFailures booking and passenger operations that returned an error (counter)
	OperationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_failures_total",
			Help:      "The total number of failed booking operations by kind of failure",
		},
		[]string{"operation", "reason"},
	)

	// SeatsReserved seats taken from fare type inventory (counter)
	SeatsReserved = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "seats_reserved_total",
			Help:      "The total number of seats taken from fare type inventory",
		},
	)

	// SeatsReleased seats returned to fare type inventory (counter)
	SeatsReleased = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "seats_released_total",
			Help:      "The total number of seats returned to fare type inventory",
		},
	)

	// Logins login attempts by result (counter)
	Logins = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "The total number of login attempts",
		},
		[]string{"result"},
	)

	// HTTPRequests handled HTTP requests (counter)
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "The total number of handled HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration time spent serving HTTP requests (histogram)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "The time spent serving HTTP requests",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)
