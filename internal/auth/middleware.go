package auth

import (
	"errors"
	"net/http"

	"github.com/petermazzocco/thumbnail-mixer/internal/store"
)

// Middleware loads the session's user into the request context. Requests
// without a valid session pass through anonymously.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := s.store.Get(r, SessionName)
		if err != nil {
			s.log.Debug("ignoring unreadable session", "error", err)
			next.ServeHTTP(w, r)
			return
		}

		userID, ok := session.Values[userIDKey].(uint)
		if !ok || userID == 0 {
			next.ServeHTTP(w, r)
			return
		}

		user, err := s.users.GetByID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				next.ServeHTTP(w, r)
				return
			}
			s.log.Error("failed to load session user", "user_id", userID, "error", err)
			http.Error(w, "Failed to load user", http.StatusInternalServerError)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// RequireUser rejects requests that Middleware did not resolve to a user.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if CurrentUser(r.Context()) == nil {
			http.Error(w, "Not Authorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
