package api

import (
	"bufio"
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/alexbotov/casino/internal/auth"
	"github.com/alexbotov/casino/internal/session"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type contextKey int

const sessionKey contextKey = iota

func sessionFrom(r *http.Request) *session.Session {
	return r.Context().Value(sessionKey).(*session.Session)
}

// bearerToken reads the token from the Authorization header, falling back to
// the token query parameter for WebSocket clients that cannot set headers.
func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		t := r.URL.Query().Get("token")
		return t, t != ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", false
	}
	return parts[1], true
}

// AuthMiddleware validates the session token and puts the session in the
// request context
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			respondError(w, http.StatusUnauthorized, "NO_TOKEN", "Bearer token required")
			return
		}

		claims, err := h.auth.ValidateToken(token)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				respondError(w, http.StatusUnauthorized, "TOKEN_EXPIRED", "Session token has expired")
			} else {
				respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid token")
			}
			return
		}

		sess, err := h.sessions.Get(claims.SessionID)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "SESSION_NOT_FOUND", "Session not found")
			return
		}

		ctx := context.WithValue(r.Context(), sessionKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OperatorMiddleware guards the admin routes with the X-Operator-Key header
func (h *Handler) OperatorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.auth.OperatorEnabled() {
			respondError(w, http.StatusForbidden, "OPERATOR_DISABLED", "Operator endpoints are disabled")
			return
		}
		if !h.auth.CheckOperatorKey(r.Header.Get("X-Operator-Key")) {
			respondError(w, http.StatusUnauthorized, "INVALID_OPERATOR_KEY", "Invalid operator key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Hijack lets the WebSocket upgrader take over the connection.
func (s *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := s.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return hj.Hijack()
}

// LoggingMiddleware logs every request and counts it by route template
func (h *Handler) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		endpoint := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				endpoint = tpl
			}
		}
		if h.metrics != nil {
			h.metrics.HTTPRequests.WithLabelValues(r.Method, endpoint).Inc()
		}
		h.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("endpoint", endpoint),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}

// CORSMiddleware adds CORS headers
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Operator-Key")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RecoveryMiddleware recovers from panics
func (h *Handler) RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				h.log.Error("panic in handler",
					zap.Any("panic", err),
					zap.String("path", r.URL.Path))
				respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
