package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"autoparc/internal/auth"
	"autoparc/internal/logger"
)

// responseRecorder captures the HTTP status code written downstream.
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (r *responseRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

// Logging logs every HTTP request with method, path, status and duration.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rec, r)

		uid, _ := auth.UserIDFromContext(r.Context())
		logger.L().Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.statusCode),
			zap.Duration("duration", time.Since(start)),
			zap.Uint("user_id", uid),
		)
	})
}
