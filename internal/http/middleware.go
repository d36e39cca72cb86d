package http

import (
	"net/http"
	"strings"
)

const (
	cspAPI     = "default-src 'none'; frame-ancestors 'none'"
	cspSwagger = "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:"
	cspApp     = "default-src 'self'; img-src 'self' data:; style-src 'self' 'unsafe-inline'; connect-src 'self'"
)

// SecurityHeaders adds security-related headers to all responses.
// API responses get the strictest policy; the bundled frontend may load its own assets.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		switch {
		case strings.HasPrefix(r.URL.Path, "/swagger/"):
			w.Header().Set("Content-Security-Policy", cspSwagger)
		case strings.HasPrefix(r.URL.Path, "/api/"), r.URL.Path == "/health":
			w.Header().Set("Content-Security-Policy", cspAPI)
		default:
			w.Header().Set("Content-Security-Policy", cspApp)
		}

		next.ServeHTTP(w, r)
	})
}
