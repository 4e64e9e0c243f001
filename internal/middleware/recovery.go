package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"
)

// Recovery recovers from panics, logs them with a stack trace and answers
// 500 with the panic value as the error message.
func Recovery(logger *zap.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered",
						zap.Any("error", rec),
						zap.ByteString("stack", debug.Stack()),
						zap.String("method", r.Method),
						zap.String("path", r.URL.Path),
						zap.String("request_id", RequestIDFromContext(r.Context())),
					)

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]any{
						"success": false,
						"error":   fmt.Sprint(rec),
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
