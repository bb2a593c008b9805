package service

import (
	"errors"

	"ratehub/internal/http-api/models"
)

// ErrForbidden is returned when an authenticated requester lacks the role
// or ownership a write operation requires.
var ErrForbidden = errors.New("changing other people's content not allowed")

// Actor identifies the authenticated requester to the service layer.
// Handlers build it from the token claims.
type Actor struct {
	ID   string
	Role models.Role
}

// CanModerate reports whether the actor may edit content they do not own.
func (a Actor) CanModerate() bool {
	return a.Role == models.RoleModerator || a.Role == models.RoleAdmin
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}
