package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Library metrics
var (
	ScanDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_library_scan_duration_seconds",
			Help:    "Time to index the library",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 20.0},
		},
		[]string{"source"},
	)

	ScannedFiles = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_library_scanned_files",
			Help: "Number of files found by the last scan",
		},
		[]string{"source"},
	)

	ScanErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_library_scan_errors_total",
			Help: "Total failed scans",
		},
		[]string{"source"},
	)

	ListRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_library_list_requests_total",
			Help: "Total listing requests",
		},
		[]string{"engine", "result"},
	)
)

// HTTP metrics
var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_library_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_library_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

func init() {
	prometheus.MustRegister(
		ScanDuration,
		ScannedFiles,
		ScanErrorsTotal,
		ListRequestsTotal,
		HTTPRequestsTotal,
		HTTPRequestDuration,
	)
}

// ObserveScan records the outcome of one library scan.
func ObserveScan(source string, started time.Time, files int, err error) {
	ScanDuration.WithLabelValues(source).Observe(time.Since(started).Seconds())
	if err != nil {
		ScanErrorsTotal.WithLabelValues(source).Inc()
		return
	}
	ScannedFiles.WithLabelValues(source).Set(float64(files))
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// EchoMiddleware returns Echo middleware that instruments HTTP requests.
func EchoMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}

			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			HTTPRequestsTotal.WithLabelValues(c.Request().Method, path, strconv.Itoa(status)).Inc()
			HTTPRequestDuration.WithLabelValues(c.Request().Method, path).Observe(time.Since(start).Seconds())
			return err
		}
	}
}
