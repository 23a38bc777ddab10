// Package authroles maps IdP groups to application roles.
package authroles

import (
	"slices"
	"strings"

	domainauth "github.com/target/navguard/internal/domain/auth"
	"github.com/target/navguard/internal/ports"
)

// StaticRoleMapper grants roles by group membership. Admin groups win over
// user groups; a principal in neither is a guest. Group names compare
// case-insensitively.
type StaticRoleMapper struct {
	AdminGroups []string
	UserGroups  []string
}

var _ ports.RoleMapper = StaticRoleMapper{}

// NewStaticRoleMapper builds a mapper from single group names, ignoring empty ones.
func NewStaticRoleMapper(adminGroup, userGroup string) StaticRoleMapper {
	var m StaticRoleMapper
	if g := strings.TrimSpace(adminGroup); g != "" {
		m.AdminGroups = []string{g}
	}
	if g := strings.TrimSpace(userGroup); g != "" {
		m.UserGroups = []string{g}
	}
	return m
}

func (m StaticRoleMapper) Map(groups []string) domainauth.Role {
	switch {
	case memberOf(groups, m.AdminGroups):
		return domainauth.RoleAdmin
	case memberOf(groups, m.UserGroups):
		return domainauth.RoleUser
	default:
		return domainauth.RoleGuest
	}
}

func memberOf(groups, wanted []string) bool {
	return slices.ContainsFunc(groups, func(g string) bool {
		return slices.ContainsFunc(wanted, func(w string) bool { return strings.EqualFold(g, w) })
	})
}
