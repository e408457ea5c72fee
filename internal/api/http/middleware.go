package http

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"rentaltracker-backend/internal/config"
	"rentaltracker-backend/internal/domain"
	"rentaltracker-backend/internal/logger"
	"rentaltracker-backend/internal/security"
)

const (
	headerRequestID = "X-Request-ID"
	headerCSRF      = "X-CSRF-Token"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// requestLogging tags the request with an id and a request-scoped logger.
func requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get(headerRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(headerRequestID, requestID)

		log := logger.Get().With("request_id", requestID)
		ctx := logger.WithContext(r.Context(), log)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r.WithContext(ctx))

		log.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}

type authMiddleware struct {
	tokens security.TokenManager
}

// Middleware enforces the security level configured for the matched route
// template. State-changing requests must also echo the session's CSRF token.
func (m *authMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		template := ""
		if route := mux.CurrentRoute(r); route != nil {
			template, _ = route.GetPathTemplate()
		}

		level := config.GetSecurityLevel(r.Method, template)
		if level == config.SecurityPublic {
			next.ServeHTTP(w, r)
			return
		}

		token := bearerToken(r)
		if token == "" {
			writeError(w, r, domain.ErrUnauthenticated)
			return
		}
		claims, err := m.tokens.ValidateToken(token)
		if err != nil {
			logger.FromContext(r.Context()).Info("Rejected session token", "error", err)
			writeError(w, r, domain.ErrUnauthenticated)
			return
		}

		switch level {
		case config.SecurityUser:
			if claims.Role != domain.RoleUser {
				writeError(w, r, domain.ErrForbidden)
				return
			}
		case config.SecurityAdmin:
			if claims.Role != domain.RoleAdmin {
				writeError(w, r, domain.ErrForbidden)
				return
			}
		}

		if isStateChanging(r.Method) && !csrfMatches(r.Header.Get(headerCSRF), claims.CSRF) {
			logger.FromContext(r.Context()).Warn("CSRF token mismatch", "user_id", claims.UserID, "path", r.URL.Path)
			writeError(w, r, domain.ErrInvalidSubmission)
			return
		}

		next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

func isStateChanging(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func csrfMatches(submitted, expected string) bool {
	if submitted == "" || expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(submitted), []byte(expected)) == 1
}
