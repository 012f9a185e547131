package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/AnshRaj112/afterthedoll-backend/pkg/auth"
)

type ctxKey int

const uidKey ctxKey = iota

// SessionValidator resolves a session token to a uid.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (uid string, ok bool)
}

// AuthMiddleware attaches the caller's uid to the request context. Handlers
// read it once with UIDFromContext and pass it on explicitly.
type AuthMiddleware struct {
	sessions SessionValidator
}

func NewAuthMiddleware(sessions SessionValidator) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

// Optional attaches the uid when a valid token is present and lets anonymous
// requests through.
func (m *AuthMiddleware) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if uid, ok := m.sessions.Validate(r.Context(), auth.ExtractBearerToken(r)); ok {
			r = r.WithContext(WithUID(r.Context(), uid))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth rejects requests without a valid session with 401.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, ok := m.sessions.Validate(r.Context(), auth.ExtractBearerToken(r))
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"success": false,
				"message": "Authentication required",
			})
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUID(r.Context(), uid)))
	})
}

func WithUID(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, uidKey, uid)
}

// UIDFromContext returns the authenticated uid, or "" for anonymous requests.
func UIDFromContext(ctx context.Context) string {
	uid, _ := ctx.Value(uidKey).(string)
	return uid
}
