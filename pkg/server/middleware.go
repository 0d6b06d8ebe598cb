package server

import (
	"net/http"
	"time"

	"github.com/m-mizutani/prospector/pkg/utils/logging"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		logger := logging.From(r.Context()).With("method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(rec, r.WithContext(logging.With(r.Context(), logger)))

		logger.Info("request completed",
			"status", rec.status,
			"duration", time.Since(start))
	})
}
