package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/NALLOO/AnTruaNao-V2/pkg/response"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// AdminIDKey is the context key for the authenticated admin ID
	AdminIDKey ContextKey = "admin_id"

	// SessionCookieName holds the signed admin session token
	SessionCookieName = "__admin_session"
)

// TokenValidator resolves a session token to an admin ID
type TokenValidator interface {
	Validate(token string) (string, error)
}

// RequireAdmin rejects requests without a valid admin session
func RequireAdmin(v TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := sessionToken(r)
			if token == "" {
				response.Unauthorized(w, "Admin session required")
				return
			}

			adminID, err := v.Validate(token)
			if err != nil || adminID == "" {
				response.Unauthorized(w, "Invalid or expired session")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithAdminID(r.Context(), adminID)))
		})
	}
}

// OptionalAdmin attaches the admin ID when a valid session is present and
// otherwise lets the request through anonymously
func OptionalAdmin(v TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := sessionToken(r); token != "" {
				if adminID, err := v.Validate(token); err == nil && adminID != "" {
					r = r.WithContext(WithAdminID(r.Context(), adminID))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// sessionToken reads the session cookie, falling back to "Bearer <token>"
func sessionToken(r *http.Request) string {
	if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// WithAdminID stores the admin ID on the context
func WithAdminID(ctx context.Context, adminID string) context.Context {
	return context.WithValue(ctx, AdminIDKey, adminID)
}

// GetAdminID extracts the admin ID from the request context
func GetAdminID(ctx context.Context) (string, bool) {
	adminID, ok := ctx.Value(AdminIDKey).(string)
	return adminID, ok && adminID != ""
}

// IsAdmin reports whether the request carries an admin session
func IsAdmin(ctx context.Context) bool {
	_, ok := GetAdminID(ctx)
	return ok
}

// ClientIP returns the caller address, honouring proxy headers
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if first != "" {
			return first
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
