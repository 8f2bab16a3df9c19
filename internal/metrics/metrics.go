package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestDuration tracks the duration of HTTP requests
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "status_page_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status"},
	)

	// HTTPRequestTotal counts the HTTP requests
	HTTPRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "status_page_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// HTTPRequestInFlight tracks the requests currently being served
	HTTPRequestInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "status_page_http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		},
	)

	// StatusPageRenders counts the rendered status pages by format (html or json)
	StatusPageRenders = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "status_page_renders_total",
			Help: "Total number of status snapshots rendered",
		},
		[]string{"format"},
	)

	// PanicsRecovered counts the handler panics caught by the recovery middleware
	PanicsRecovered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "status_page_panics_recovered_total",
			Help: "Total number of panics recovered while serving requests",
		},
	)

	buildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "status_page_build_info",
			Help: "Build information for the status page service",
		},
		[]string{"version", "build", "build_date", "profiles"},
	)
)

// SetBuildInfo publishes the build information, replacing any previous value.
func SetBuildInfo(version, build, buildDate, profiles string) {
	buildInfo.Reset()
	buildInfo.WithLabelValues(version, build, buildDate, profiles).Set(1)
}
