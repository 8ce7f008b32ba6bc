package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/devilmonastery/jobfinder/internal/auth"
	"github.com/devilmonastery/jobfinder/internal/pkg/logger"
	"github.com/devilmonastery/jobfinder/internal/pkg/metrics"
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// RequestID returns the id assigned to the request, if any
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int64
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// LogRequest assigns a request id, logs each request and records HTTP metrics.
// The user id is logged when an inner handler authenticated the request.
func LogRequest(log *slog.Logger) mux.MiddlewareFunc {
	log = log.With(slog.String("component", "http"))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get(RequestIDHeader)
			if _, err := uuid.Parse(requestID); err != nil {
				requestID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, requestID)

			// inner middleware stores the caller here once authenticated
			holder := &userHolder{}
			ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
			ctx = context.WithValue(ctx, userHolderKey{}, holder)

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			metrics.HTTPActiveRequests.Inc()
			next.ServeHTTP(wrapped, r.WithContext(ctx))
			metrics.HTTPActiveRequests.Dec()

			duration := time.Since(start)
			route := routeTemplate(r)
			metrics.RecordHTTPRequest(r.Method, route, wrapped.statusCode, duration)

			reqLog := logger.WithHTTPRequest(logger.WithRequest(log, requestID), r.Method, r.URL.Path)
			reqLog = logger.WithDuration(reqLog, duration)
			if holder.userID != "" {
				reqLog = logger.WithUser(reqLog, holder.userID)
			}
			level := slog.LevelInfo
			if wrapped.statusCode >= 500 {
				level = slog.LevelError
			}
			reqLog.Log(r.Context(), level, "http request",
				slog.String("route", route),
				slog.Int("status", wrapped.statusCode),
				slog.Int64("bytes", wrapped.written),
				slog.String("client_ip", clientIP(r)))
		})
	}
}

type userHolderKey struct{}

type userHolder struct {
	userID string
}

// TrackUser records the authenticated caller for the request log line
func TrackUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if holder, ok := r.Context().Value(userHolderKey{}).(*userHolder); ok {
			if user, err := auth.GetUserFromContext(r.Context()); err == nil {
				holder.userID = user.UserID
			}
		}
		next.ServeHTTP(w, r)
	})
}

// routeTemplate returns the matched route pattern so metrics labels stay bounded
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return r.RemoteAddr
}
