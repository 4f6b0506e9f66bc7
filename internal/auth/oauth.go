package auth

import (
	"net/http"

	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"

	"github.com/petermazzocco/thumbnail-mixer/models"
)

// BeginAuth redirects to the provider named in the route, or finishes right
// away when gothic already holds a usable provider session.
func (s *Sessions) BeginAuth(w http.ResponseWriter, r *http.Request) {
	if gothUser, err := s.completeAuth(w, r); err == nil {
		s.signIn(w, r, gothUser)
		return
	}
	gothic.BeginAuthHandler(w, r)
}

// Callback completes the OAuth exchange, upserts the user and signs them in.
func (s *Sessions) Callback(w http.ResponseWriter, r *http.Request) {
	gothUser, err := s.completeAuth(w, r)
	if err != nil {
		s.log.Warn("oauth callback failed", "error", err)
		http.Error(w, "Authentication failed", http.StatusUnauthorized)
		return
	}
	s.signIn(w, r, gothUser)
}

func (s *Sessions) signIn(w http.ResponseWriter, r *http.Request, gothUser goth.User) {
	name := gothUser.Name
	if name == "" {
		name = gothUser.NickName
	}
	user := &models.User{
		OpenID:      gothUser.UserID,
		Name:        name,
		Email:       gothUser.Email,
		LoginMethod: gothUser.Provider,
	}
	if err := s.users.UpsertOnSignIn(r.Context(), user); err != nil {
		s.log.Error("failed to upsert user", "open_id", gothUser.UserID, "error", err)
		http.Error(w, "Failed to save user", http.StatusInternalServerError)
		return
	}

	if err := s.Login(w, r, user); err != nil {
		s.log.Error("failed to start session", "user_id", user.ID, "error", err)
		http.Error(w, "Failed to save session", http.StatusInternalServerError)
		return
	}
	s.log.Info("user signed in", "user_id", user.ID, "provider", gothUser.Provider)

	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}
