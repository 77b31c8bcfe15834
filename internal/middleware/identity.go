// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"wordcats/internal/platform"
)

// UserIDHeader names the account id set by the host platform proxy.
const UserIDHeader = "X-User-ID"

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	playerKey    contextKey = "player"
	requestIDKey contextKey = "request_id"
)

// Identify resolves the X-User-ID header through the host identity service
// and stores the account in the request context. Requests without the
// header pass through anonymously; unknown ids are rejected.
func Identify(identity platform.Identity) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(UserIDHeader)
			if id == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := identity.User(r.Context(), id)
			if err != nil {
				slog.Error("resolve player", "user_id", id, "error", err)
				writeError(w, http.StatusBadGateway, "identity service unavailable")
				return
			}
			if user == nil {
				writeError(w, http.StatusUnauthorized, "unknown user")
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), playerKey, user)))
		})
	}
}

// RequirePlayer rejects requests that Identify did not resolve.
func RequirePlayer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if PlayerFrom(r.Context()) == nil {
			writeError(w, http.StatusUnauthorized, "player identity required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// PlayerFrom returns the resolved player, or nil.
func PlayerFrom(ctx context.Context) *platform.User {
	u, _ := ctx.Value(playerKey).(*platform.User)
	return u
}

// WithPlayer returns a context carrying u. Used by tests and background
// callers that act on behalf of a player.
func WithPlayer(ctx context.Context, u *platform.User) context.Context {
	return context.WithValue(ctx, playerKey, u)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":"` + msg + `"}`))
}
