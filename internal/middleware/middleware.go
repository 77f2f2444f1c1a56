package middleware

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"phonestore/internal/guard"
	"phonestore/internal/model"

	"github.com/rs/zerolog"
)

// CORS adds CORS headers to the response.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		// Handle preflight requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Authenticate requires a bearer token and stores the caller identity in the
// request context. Rejected requests get a 401 naming the login route and
// the path that was asked for.
func Authenticate(g *guard.Guard, decoder *guard.Decoder, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			from := r.URL.RequestURI()

			decision := g.RequireAuthenticated(token, from)
			if !decision.Allowed {
				logger.Debug().Str("path", r.URL.Path).Msg("missing bearer token")
				deny(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "authentication required", decision)
				return
			}

			id, err := decoder.Decode(token)
			if err != nil {
				logger.Warn().Err(err).Str("path", r.URL.Path).Msg("rejected bearer token")
				decision = g.RequireAuthenticated("", from)
				deny(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "invalid token", decision)
				return
			}
			id.Token = token

			next.ServeHTTP(w, r.WithContext(guard.WithIdentity(r.Context(), id)))
		})
	}
}

// RequireRole lets through callers whose role is one of roles. It must run
// after Authenticate.
func RequireRole(g *guard.Guard, roles []string, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, _ := guard.IdentityFromContext(r.Context())

			decision := g.RequireRole(id, roles)
			if !decision.Allowed {
				role := ""
				if id != nil {
					role = id.Role
				}
				logger.Warn().Str("path", r.URL.Path).Str("role", role).Msg("role not allowed")
				deny(w, http.StatusForbidden, model.ErrCodeForbidden, "insufficient role", decision)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Logging logs HTTP requests with timing information.
func Logging(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Create a response writer wrapper to capture status code
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)

			ev := logger.Info()
			if rw.statusCode >= http.StatusInternalServerError {
				ev = logger.Error()
			}
			ev.Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rw.statusCode).
				Dur("duration", time.Since(start)).
				Str("remote_addr", r.RemoteAddr).
				Msg("http request")
		})
	}
}

// Recovery recovers from panics and returns a 500 error.
func Recovery(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error().
						Interface("panic", err).
						Str("method", r.Method).
						Str("path", r.URL.Path).
						Msg("panic recovered")

					writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{
						Error:   model.ErrCodeInternalError,
						Message: "internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code.
func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func deny(w http.ResponseWriter, status int, code, message string, d guard.Decision) {
	writeJSON(w, status, model.ErrorResponse{
		Error:    code,
		Message:  message,
		Redirect: d.Redirect,
		From:     d.From,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
