// Package auth contains domain-level types for authentication, sessions and user identity.
// It is pure and free of framework/adapter concerns.
package auth

import (
	"slices"
	"time"
)

// Role represents the coarse application role derived from IdP groups at login.
// Keep string form for easy persistence and cookies.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
	RoleGuest Role = "guest"
)

// RoleKey returns the persisted role key a login role is granted as.
// Guests are granted nothing.
func (r Role) RoleKey() string {
	switch r {
	case RoleAdmin:
		return RoleKeyAdmin
	case RoleUser:
		return RoleKeyCommon
	default:
		return ""
	}
}

// Role keys as stored with users. RoleKeyDefault is filled in when a user has none.
const (
	RoleKeyAdmin   = "admin"
	RoleKeyCommon  = "common"
	RoleKeyDefault = "ROLE_DEFAULT"
)

// PermissionAll is the wildcard permission granted to administrators.
const PermissionAll = "*:*:*"

// Principal represents the authenticated principal returned by an IdP.
// Adapters map provider-specific claims into this shape.
type Principal struct {
	UserID    string // stable user identifier (e.g., samAccountName or sub)
	FirstName string
	LastName  string
	Email     string
	Groups    []string
	ExpiresAt time.Time // absolute expiry from IdP token
}

// DisplayName joins first and last name, falling back to the user ID.
func (p Principal) DisplayName() string {
	switch {
	case p.FirstName != "" && p.LastName != "":
		return p.FirstName + " " + p.LastName
	case p.FirstName != "":
		return p.FirstName
	case p.LastName != "":
		return p.LastName
	default:
		return p.UserID
	}
}

// Session is the server-side record we persist for an authenticated user.
// ID is an opaque session identifier carried inside the session token.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsGuest returns true if the session role is guest.
func (s Session) IsGuest() bool { return s.Role == RoleGuest }

// User is the persisted profile of an application user.
type User struct {
	ID       int64  `json:"userId"`
	Subject  string `json:"subject"`
	UserName string `json:"userName"`
	NickName string `json:"nickName"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar"`
	DeptName string `json:"deptName,omitempty"`
}

// Identity is the user identity fetched once per session: profile plus the
// role and permission lists that drive route generation.
type Identity struct {
	User        User     `json:"user"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

// HasRoles reports whether the identity carries at least one role.
func (i Identity) HasRoles() bool { return len(i.Roles) > 0 }

// IsAdmin reports whether the identity holds the admin role key.
func (i Identity) IsAdmin() bool { return slices.Contains(i.Roles, RoleKeyAdmin) }

// HasAnyPermission reports whether the identity holds one of perms.
// The wildcard permission satisfies any request.
func (i Identity) HasAnyPermission(perms ...string) bool {
	for _, have := range i.Permissions {
		if have == PermissionAll {
			return true
		}
		if slices.Contains(perms, have) {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the identity holds one of roles.
// The admin role satisfies any request.
func (i Identity) HasAnyRole(roles ...string) bool {
	for _, have := range i.Roles {
		if have == RoleKeyAdmin || slices.Contains(roles, have) {
			return true
		}
	}
	return false
}

// WithDefaultRole returns the identity with RoleKeyDefault filled in when it
// carries no roles.
func (i Identity) WithDefaultRole() Identity {
	if len(i.Roles) == 0 {
		i.Roles = []string{RoleKeyDefault}
	}
	return i
}
