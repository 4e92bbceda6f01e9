package adapthttp

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"bookstore/internal/app"
	"bookstore/internal/domain"
)

type contextKey string

const identityContextKey contextKey = "identity"

const sessionCookieName = "x-session"

// identityFrom extracts the authenticated identity set by requireAuth.
func identityFrom(ctx context.Context) *domain.Identity {
	id, _ := ctx.Value(identityContextKey).(*domain.Identity)
	return id
}

// isAuthFailure reports whether err is one of the gate's rejection states,
// as opposed to an infrastructure failure.
func isAuthFailure(err error) bool {
	return errors.Is(err, app.ErrMissingToken) ||
		errors.Is(err, app.ErrInvalidToken) ||
		errors.Is(err, app.ErrSessionExpired) ||
		errors.Is(err, app.ErrSessionInvalidated)
}

// requireAuth validates the session cookie and attaches the identity to the
// request context. Every rejection surfaces as the same generic 401; the
// specific reason is only logged.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var token string
		if cookie, err := r.Cookie(sessionCookieName); err == nil {
			token = cookie.Value
		}

		identity, err := s.auth.Authenticate(r.Context(), token)
		if err != nil {
			if isAuthFailure(err) {
				log.Printf("auth rejected path=%s reason=%v", r.URL.Path, err)
				writeFail(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			log.Printf("auth store error path=%s err=%v", r.URL.Path, err)
			writeFail(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}

		ctx := context.WithValue(r.Context(), identityContextKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAdmin composes after requireAuth: it re-reads the credential's role
// and forbids everyone but admins, elevating the context identity on success.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := identityFrom(r.Context())
		if identity == nil {
			writeFail(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		elevated, err := s.auth.RequireAdmin(r.Context(), identity.Subject)
		if err != nil {
			if errors.Is(err, app.ErrForbidden) {
				log.Printf("admin gate rejected subject=%s path=%s", identity.Subject, r.URL.Path)
				writeFail(w, http.StatusForbidden, "Forbidden")
				return
			}
			writeFail(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}

		ctx := context.WithValue(r.Context(), identityContextKey, elevated)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// loggingMiddleware records method, path, status and latency.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("request method=%s path=%s status=%d duration=%s",
			r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
