package middleware

import (
	"net/http"
	"strings"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/opsdeck/scenario-hub/models"
	"github.com/opsdeck/scenario-hub/repositories"
	"github.com/opsdeck/scenario-hub/userctx"
)

// ActivityLogger records mutation requests and server errors into the
// activity log. Reads are not logged. Entries are written asynchronously so
// the response is never held up by the log insert.
func ActivityLogger(activityRepo repositories.ActivityRepository, logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			mutation := r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodDelete
			if !mutation && status < http.StatusInternalServerError {
				return
			}

			level := models.LogLevelActivity
			if status >= http.StatusInternalServerError {
				level = models.LogLevelError
			}

			entry := &models.ActivityLogEntry{
				Level:      level,
				UserEmail:  userctx.GetUserEmail(r.Context()),
				Method:     r.Method,
				Path:       r.URL.Path,
				StatusCode: status,
				UserAgent:  r.UserAgent(),
				IPAddress:  clientIP(r),
			}

			go func() {
				if err := activityRepo.Create(entry); err != nil {
					logger.Warn("failed to write activity log entry",
						zap.String("path", entry.Path),
						zap.Error(err))
				}
			}()
		})
	}
}

// clientIP extracts the caller address, preferring proxy headers
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
