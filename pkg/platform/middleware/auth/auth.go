package auth

import (
	"log/slog"
	"net/http"

	request "procuration/pkg/platform/middleware/request"
	"procuration/pkg/requestcontext"
)

// SessionValidator returns the identity a session token is scoped to.
type SessionValidator interface {
	Validate(tokenString string) (string, error)
}

// LoadSession reads the session cookie and, when it validates, scopes the
// request to its identity. Anonymous and invalid sessions pass through with
// no identity; transitions that need one reject the call themselves.
func LoadSession(validator SessionValidator, cookieName string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			identity, err := validator.Validate(cookie.Value)
			if err != nil {
				logger.WarnContext(ctx, "ignoring invalid session cookie",
					"error", err,
					"request_id", request.GetRequestID(ctx),
				)
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithIdentity(ctx, identity)))
		})
	}
}

// SetSessionCookie stores a freshly issued session on the client.
func SetSessionCookie(w http.ResponseWriter, name, value string, maxAgeSeconds int, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAgeSeconds,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
