package handlers

import (
	"github.com/petermazzocco/thumbnail-mixer/models"
)

type logoutResult struct {
	Success bool `json:"success"`
}

// me returns the signed-in user, or null for anonymous callers.
func (h *Handler) me(c *Context, _ noInput) (*models.User, error) {
	return c.User, nil
}

func (h *Handler) logout(c *Context, _ noInput) (logoutResult, error) {
	if err := h.sessions.Logout(c.Writer, c.Request); err != nil {
		h.log.Warn("failed to clear session", "error", err)
	}
	return logoutResult{Success: true}, nil
}
