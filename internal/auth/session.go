package auth

import "errors"

const (
	RoleAdmin  = "Admin"
	RoleMember = "Member"

	AdminColor  = "#ed4245"
	MemberColor = "#ffffff"
)

var (
	ErrNotAuthenticated = errors.New("no session established")
	ErrForbidden        = errors.New("admin role required")
)

// Session is the server-held identity of one connection: resolved once at
// login time and consulted for every subsequent action. Never persisted.
type Session struct {
	Name  string `json:"user"`
	Role  string `json:"role"`
	Color string `json:"color"`
}

// IsAdmin reports whether the session may perform moderation actions.
func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}
