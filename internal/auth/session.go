// Package auth signs users in with OAuth and resolves the caller from the
// session cookie.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"

	"github.com/petermazzocco/thumbnail-mixer/internal/store"
	"github.com/petermazzocco/thumbnail-mixer/models"
)

const (
	// SessionName is the cookie holding the signed-in user.
	SessionName = "thumbnail_mixer_session"

	userIDKey = "user_id"
)

type contextKey struct{}

// NewCookieStore returns the cookie store shared by the app session and gothic.
func NewCookieStore(secret string, maxAge int, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.MaxAge(maxAge)
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.Secure = secure
	store.Options.SameSite = http.SameSiteLaxMode
	return store
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

// CurrentUser returns the signed-in user, or nil.
func CurrentUser(ctx context.Context) *models.User {
	user, _ := ctx.Value(contextKey{}).(*models.User)
	return user
}

// Sessions ties the session cookie to stored users.
type Sessions struct {
	store sessions.Store
	users store.UserRepository
	log   *slog.Logger

	completeAuth func(http.ResponseWriter, *http.Request) (goth.User, error)
}

func NewSessions(cookies sessions.Store, users store.UserRepository, log *slog.Logger) *Sessions {
	return &Sessions{
		store:        cookies,
		users:        users,
		log:          log,
		completeAuth: gothic.CompleteUserAuth,
	}
}

// Login records user as the owner of the session.
func (s *Sessions) Login(w http.ResponseWriter, r *http.Request, user *models.User) error {
	session, err := s.store.Get(r, SessionName)
	if err != nil && session == nil {
		return fmt.Errorf("failed to get session: %w", err)
	}
	session.Values[userIDKey] = user.ID
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Logout expires the session cookie. The cookie is reissued with the store's
// options and a negative max age so the browser drops it.
func (s *Sessions) Logout(w http.ResponseWriter, r *http.Request) error {
	session, err := s.store.Get(r, SessionName)
	if err != nil && session == nil {
		return fmt.Errorf("failed to get session: %w", err)
	}
	delete(session.Values, userIDKey)
	options := *session.Options
	options.MaxAge = -1
	session.Options = &options
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}
