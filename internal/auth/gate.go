package auth

import (
	"github.com/askelund/adminpanel/internal/constants"
	"github.com/askelund/adminpanel/internal/models"
)

// roleLevels orders the backend-user roles, strongest first.
var roleLevels = map[string]int{
	constants.RoleSuperAdmin: 3,
	constants.RoleAdmin:      2,
	constants.RoleUser:       1,
}

// Allows reports whether a user holding role may act at requiredRole level.
// Unknown roles never pass.
func Allows(role, requiredRole string) bool {
	have, ok := roleLevels[role]
	if !ok {
		return false
	}
	want, ok := roleLevels[requiredRole]
	if !ok {
		return false
	}
	return have >= want
}

// CanManage reports whether actor may create, edit, or delete target. Admins
// manage users below admin level; super admins manage everyone. Users may
// always manage themselves.
func CanManage(actor, target *models.BackendUser) bool {
	if actor == nil || target == nil {
		return false
	}
	if actor.ID == target.ID && actor.ID != 0 {
		return true
	}
	switch actor.Role {
	case constants.RoleSuperAdmin:
		return true
	case constants.RoleAdmin:
		return target.Role == constants.RoleUser
	default:
		return false
	}
}

// CanAssignRole reports whether actor may grant role to another user. Nobody
// hands out a role stronger than their own.
func CanAssignRole(actor *models.BackendUser, role string) bool {
	if actor == nil {
		return false
	}
	if _, ok := roleLevels[role]; !ok {
		return false
	}
	return roleLevels[actor.Role] >= roleLevels[role]
}
