package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BackendRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "powerev_backend_requests_total",
		Help: "Total number of requests issued to the upstream catalog API",
	}, []string{"method", "collection", "status"})

	BackendRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "powerev_backend_request_duration_seconds",
		Help:    "Latency of upstream catalog API requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "collection"})

	EntitySavesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "powerev_entity_saves_total",
		Help: "Total number of admin create/update submissions",
	}, []string{"collection", "result"})

	EntityDeletesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "powerev_entity_deletes_total",
		Help: "Total number of admin entity deletions",
	}, []string{"collection", "result"})

	ValidationFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "powerev_validation_failures_total",
		Help: "Total number of drafts rejected before any network call",
	}, []string{"collection"})

	OrdersPlacedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "powerev_orders_placed_total",
		Help: "Total number of storefront checkouts",
	})

	CartsClearedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "powerev_carts_cleared_total",
		Help: "Total number of session carts cleared",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
