package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/warp/coldstore-billing/pkg/logger"
)

// RequestLogger logs one structured line per request.
func RequestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.Nop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				fields := []any{
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"latency_ms", time.Since(start).Milliseconds(),
					"request_id", middleware.GetReqID(r.Context()),
				}
				switch {
				case ww.Status() >= http.StatusInternalServerError:
					log.Errorw("request", fields...)
				case ww.Status() >= http.StatusBadRequest:
					log.Warnw("request", fields...)
				default:
					log.Infow("request", fields...)
				}
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
