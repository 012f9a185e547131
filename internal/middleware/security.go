package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
)

// apiCSP forbids every fetch and framing. The API only serves JSON, and
// journal markdown is rendered by the frontend, never by this origin.
const apiCSP = "default-src 'none'; frame-ancestors 'none'; base-uri 'none'; form-action 'none'"

// SecurityHeaders sets the response headers for a JSON-only API. Responses to
// authenticated requests carry private journal data and are never cached.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Content-Security-Policy", apiCSP)
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Cross-Origin-Resource-Policy", "same-site")
		h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		if r.Header.Get("Authorization") != "" {
			h.Set("Cache-Control", "no-store")
		}
		next.ServeHTTP(w, r)
	})
}

// HostCheck rejects requests whose Host is not allowedHost (bare hostname, no
// scheme or port) with a JSON 403. /health is exempt; platform health checks
// use an internal host name. An empty allowedHost disables the check.
func HostCheck(allowedHost string) func(http.Handler) http.Handler {
	allowed := strings.TrimSpace(allowedHost)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if allowed == "" || r.URL.Path == "/health" {
				next.ServeHTTP(w, r)
				return
			}
			host := r.Host
			if h, _, err := net.SplitHostPort(host); err == nil {
				host = h
			}
			if !strings.EqualFold(strings.TrimSpace(host), allowed) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_ = json.NewEncoder(w).Encode(map[string]interface{}{
					"success": false,
					"message": "Unknown host",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ProductionSecurity returns the production-only middlewares in order.
func ProductionSecurity(allowedHost string) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		SecurityHeaders,
		HostCheck(allowedHost),
	}
}
