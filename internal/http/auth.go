package httpapi

import (
	"context"
	"log/slog"
	"net/http"
)

type contextKey string

const UserIDKey contextKey = "userId"

const devUser = "dev-user"

// ExtractUserMiddleware reads the user set by the auth proxy in front of the
// server.
func ExtractUserMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Traefik BasicAuth sets this header
		userID := r.Header.Get("X-Auth-User")

		if userID == "" {
			userID = r.Header.Get("X-Forwarded-User")
		}
		if userID == "" {
			userID = r.Header.Get("Remote-User")
		}

		// Development mode: no proxy in front
		if userID == "" {
			userID = devUser
			slog.Debug("No auth header, using dev user")
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetUserID(r *http.Request) string {
	userID, ok := r.Context().Value(UserIDKey).(string)
	if !ok {
		return ""
	}
	return userID
}
