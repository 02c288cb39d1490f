package domain

import "strings"

// Actor is the authenticated caller of a request.
type Actor struct {
	UserID uint
	Role   string
}

func (a Actor) IsAdmin() bool {
	return strings.EqualFold(a.Role, RoleAdmin)
}

// CanAccess reports whether the actor may read data owned by userID.
func (a Actor) CanAccess(userID uint) bool {
	return a.IsAdmin() || a.UserID == userID
}
