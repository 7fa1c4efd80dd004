package rbac

import "slices"

const (
	PermissionReadProject   = "project:read"
	PermissionGeneratePlan  = "plan:generate"
	PermissionOverrideStage = "stage:override"
	PermissionUpdateTask    = "task:update"

	// admin only
	PermissionReplayOutbox = "outbox:replay"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

var rolePermissions = map[string][]string{
	RoleUser: {
		PermissionReadProject,
		PermissionGeneratePlan,
		PermissionOverrideStage,
		PermissionUpdateTask,
	},
	RoleAdmin: {
		PermissionReadProject,
		PermissionGeneratePlan,
		PermissionOverrideStage,
		PermissionUpdateTask,
		PermissionReplayOutbox,
	},
}

// NormalizeRole maps an empty or unknown role claim to RoleUser.
func NormalizeRole(role string) string {
	if _, ok := rolePermissions[role]; ok {
		return role
	}
	return RoleUser
}

func HasPermission(role, permission string) bool {
	return slices.Contains(rolePermissions[NormalizeRole(role)], permission)
}

// CheckPermission is HasPermission returning a typed error.
func CheckPermission(userID, role, permission string) error {
	if !HasPermission(role, permission) {
		return &PermissionDeniedError{UserID: userID, Permission: permission}
	}
	return nil
}

// CheckProjectAccess requires permission and, for non-admins, ownership of the project.
func CheckProjectAccess(userID, role, ownerID, permission string) error {
	if err := CheckPermission(userID, role, permission); err != nil {
		return err
	}
	if NormalizeRole(role) == RoleAdmin || userID == ownerID {
		return nil
	}
	return &OwnershipError{UserID: userID, OwnerID: ownerID}
}

type PermissionDeniedError struct {
	UserID     string
	Permission string
}

func (e *PermissionDeniedError) Error() string {
	return "insufficient permissions: " + e.Permission
}

// OwnershipError means the caller does not own the project.
type OwnershipError struct {
	UserID  string
	OwnerID string
}

func (e *OwnershipError) Error() string {
	return "project belongs to another user"
}
