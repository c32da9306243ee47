package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flutter_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flutter_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "route"},
	)

	HTTPActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "flutter_http_active_requests",
			Help: "Current number of in-flight HTTP requests",
		},
	)

	StorageQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flutter_storage_query_duration_seconds",
			Help:    "Duration of post storage operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	StorageErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flutter_storage_errors_total",
			Help: "Total number of failed post storage operations",
		},
		[]string{"operation"},
	)

	PostsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "flutter_posts_created_total",
			Help: "Total number of created posts",
		},
	)

	LikesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "flutter_likes_total",
			Help: "Total number of likes recorded",
		},
	)
)

func RecordHTTPRequest(method, route string, status int, d time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func TrackActiveRequest(start bool) {
	if start {
		HTTPActiveRequests.Inc()
		return
	}
	HTTPActiveRequests.Dec()
}

// RecordStorageOp observes one storage call. err is the call's result, not-found
// results are expected outcomes and should be passed as nil.
func RecordStorageOp(operation string, d time.Duration, err error) {
	StorageQueryDuration.WithLabelValues(operation).Observe(d.Seconds())
	if err != nil {
		StorageErrors.WithLabelValues(operation).Inc()
	}
}
