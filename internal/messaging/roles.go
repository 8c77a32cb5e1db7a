package messaging

import (
	"github.com/amhamid/go-marketplace/internal/types"
)

// CanSend reports whether a sender with role from may message a recipient
// with role to. The switch is total over the closed Role set; adding a role
// forces a decision here. Unknown roles are always denied.
func CanSend(from, to types.Role) bool {
	if !to.Valid() {
		return false
	}

	switch from {
	case types.RoleClient:
		// clients can only reach the support tier
		return to == types.RoleModerator
	case types.RoleModerator:
		return true
	case types.RoleAdmin:
		return true
	default:
		return false
	}
}
