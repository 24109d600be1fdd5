package middleware

import (
	"net/http"
)

// DefaultMaxBodySize bounds JSON request bodies.
const DefaultMaxBodySize int64 = 1 << 20

// RequestSize wraps the body in http.MaxBytesReader. Handlers see a
// *http.MaxBytesError when they read past maxBytes.
func RequestSize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
