package metadata

import (
	"net"
	"net/http"
	"strings"

	"procuration/pkg/requestcontext"
)

// ClientOrigin resolves the client address and stores it as the request
// origin, the key the submission throttle counts against.
// Apply it early in the chain.
func ClientOrigin(trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := ClientIPFromRequest(r, trustProxy)
			next.ServeHTTP(w, r.WithContext(requestcontext.WithOrigin(r.Context(), origin)))
		})
	}
}

// ClientIPFromRequest extracts the client IP. Forwarding headers are only
// honoured behind a trusted proxy; otherwise any client could pick its own
// throttle bucket.
func ClientIPFromRequest(r *http.Request, trustProxy bool) string {
	if trustProxy {
		// X-Forwarded-For is "client, proxy1, proxy2"; the first hop is the client.
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
		if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
			return xri
		}
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}
