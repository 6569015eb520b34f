package middleware

import (
	"net/http"
	"time"

	"cat-care/internal/platform/logger"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// RequestLog registra una línea por request (nivel debug para 2xx/3xx).
func RequestLog(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			fields := map[string]any{
				"request_id":  chimw.GetReqID(r.Context()),
				"method":      r.Method,
				"route":       RoutePattern(r),
				"status":      ww.Status(),
				"duration_ms": time.Since(start).Milliseconds(),
			}
			switch {
			case ww.Status() >= http.StatusInternalServerError:
				log.Error("http request", fields)
			case ww.Status() >= http.StatusBadRequest:
				log.Info("http request", fields)
			default:
				log.Debug("http request", fields)
			}
		})
	}
}

// RoutePattern devuelve el patrón chi ("/cats/{catID}") para no explotar la
// cardinalidad de logs/métricas con ids.
func RoutePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
