package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

// CORS allows the chat page to be served from another origin during development.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Requested-With"},
		MaxAge:         300,
	})
}

// OriginAllowed applies the CORS origin list to a single origin. Entries
// follow the cors.Options rules: "*" allows everything and one "*" inside an
// entry matches any run of characters, e.g. "https://*.example.com".
func OriginAllowed(allowedOrigins []string, origin string) bool {
	origin = strings.ToLower(origin)
	for _, allowed := range allowedOrigins {
		allowed = strings.ToLower(strings.TrimSpace(allowed))
		if allowed == "*" || allowed == origin {
			return true
		}
		if i := strings.IndexByte(allowed, '*'); i >= 0 {
			prefix, suffix := allowed[:i], allowed[i+1:]
			if len(origin) >= len(prefix)+len(suffix) && strings.HasPrefix(origin, prefix) && strings.HasSuffix(origin, suffix) {
				return true
			}
		}
	}
	return false
}
