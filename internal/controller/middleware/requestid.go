package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"ledgersync/internal/logger"
)

// RequestID assigns each request an ID, propagated through the context
// for log correlation and echoed back in the X-Request-ID header.
// An ID supplied by the caller is kept.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}

		ctx := logger.WithRequestID(r.Context(), id)
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
