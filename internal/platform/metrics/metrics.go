package metrics

import (
	"net/http"
	"strconv"
	"time"

	"cat-care/internal/middleware"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of http request",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status_code"},
	)

	// Eventos de dominio que vale la pena graficar.
	activityTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cat_care_activity_transitions_total",
			Help: "Activity writes by resulting status",
		},
		[]string{"operation", "status"},
	)
	adminActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cat_care_admin_actions_total",
			Help: "Admin user-lifecycle operations by outcome code",
		},
		[]string{"action", "outcome"},
	)
)

// Middleware mide cada request usando el patrón de ruta chi como label.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		labels := prometheus.Labels{
			"method":      r.Method,
			"path":        middleware.RoutePattern(r),
			"status_code": strconv.Itoa(status),
		}
		httpRequestTotal.With(labels).Inc()
		httpRequestDuration.With(labels).Observe(time.Since(start).Seconds())
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func ActivityWritten(operation, status string) {
	activityTransitions.WithLabelValues(operation, status).Inc()
}

// AdminAction registra el resultado ("ok" o el código de error).
func AdminAction(action, outcome string) {
	adminActions.WithLabelValues(action, outcome).Inc()
}
