package middleware

import (
	"gamification_hub/internal/platform/logger"
	"net/http"

	"github.com/go-chi/httplog/v2"
)

// RequestLogContext hands the httplog request logger to code that only sees a
// context, so service logs carry the request's fields.
func RequestLogContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logger.WithLogger(r.Context(), httplog.LogEntry(r.Context()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
