package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"growthlog/internal/security"
	"growthlog/internal/service"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// GuardianContextKey holds the resolved guardian id for the request.
const GuardianContextKey ContextKey = "guardian"

// Middleware holds dependencies for middleware functions
type Middleware struct {
	guardians  *service.GuardianService
	cookieName string
	tokenTTL   time.Duration
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(guardians *service.GuardianService, cookieName string, tokenTTL time.Duration) *Middleware {
	return &Middleware{
		guardians:  guardians,
		cookieName: cookieName,
		tokenTTL:   tokenTTL,
	}
}

// WithGuardian resolves the calling guardian from the token cookie,
// provisioning a new guardian on first use. The resolved id is added to
// the request context; a freshly minted token is set back as a cookie.
func (m *Middleware) WithGuardian(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var token string
		if cookie, err := r.Cookie(m.cookieName); err == nil {
			token = cookie.Value
		}

		guardianID, fresh, err := m.guardians.ResolveIdentity(r.Context(), token)
		if err != nil {
			respondWithError(w, http.StatusServiceUnavailable, "service unavailable", "failed to resolve guardian", err)
			return
		}
		if fresh != "" {
			http.SetCookie(w, security.CreateTokenCookie(r, m.cookieName, fresh, m.tokenTTL))
		}

		ctx := context.WithValue(r.Context(), GuardianContextKey, guardianID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

// GuardianFromContext retrieves the guardian id from the request context
func GuardianFromContext(ctx context.Context) string {
	guardianID, _ := ctx.Value(GuardianContextKey).(string)
	return guardianID
}
