package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "imagelab_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "imagelab_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Processing metrics
	processRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "imagelab_process_requests_total",
			Help: "Total number of processing requests",
		},
		[]string{"technique", "status"}, // status: success, error
	)

	processingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "imagelab_processing_duration_seconds",
			Help:    "Technique processing duration in seconds",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"technique"},
	)

	// File upload metrics
	uploadSizeBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "imagelab_upload_size_bytes",
			Help:    "Size of uploaded files in bytes",
			Buckets: []float64{1024, 10 * 1024, 100 * 1024, 1024 * 1024, 10 * 1024 * 1024, 25 * 1024 * 1024},
		},
	)

	// WebSocket metrics
	websocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "imagelab_websocket_active_connections",
			Help: "Number of active WebSocket connections",
		},
	)

	websocketMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "imagelab_websocket_messages_total",
			Help: "Total number of WebSocket messages",
		},
		[]string{"direction"}, // direction: sent, received
	)
)
