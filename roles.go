package auth

import (
	"github.com/goliatone/go-router"
)

// roleHierarchy orders roles from least to most privileged. Unknown
// roles rank below everything.
var roleHierarchy = map[UserRole]int{
	RoleUser:  0,
	RoleAdmin: 1,
}

// ValidRole checks if the role is one of the predefined valid roles
func ValidRole(role UserRole) bool {
	_, ok := roleHierarchy[role]
	return ok
}

// ParseRole safely parses a string into a known UserRole
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(roleStr)
	return role, ValidRole(role)
}

// RoleAtLeast checks if role meets the minimum required level. An
// unrecognized role on either side never satisfies the check.
func RoleAtLeast(role, minRole UserRole) bool {
	currentLevel, ok := roleHierarchy[role]
	if !ok {
		return false
	}

	minLevel, ok := roleHierarchy[minRole]
	if !ok {
		return false
	}

	return currentLevel >= minLevel
}

// AllRoles returns all predefined roles in hierarchical order
func AllRoles() []UserRole {
	return []UserRole{
		RoleUser,
		RoleAdmin,
	}
}

// RequireRole gates a route behind a minimum role. It reads the session
// the token middleware stored in the request locals, so it must run
// after ProtectedRoute. Missing sessions get a 401, insufficient roles
// a 403.
func RequireRole(minRole UserRole, contextKey ...string) router.MiddlewareFunc {
	key := DefaultContextKey
	if len(contextKey) > 0 && contextKey[0] != "" {
		key = contextKey[0]
	}

	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			session, err := GetRouterSession(c, key)
			if err != nil {
				return c.JSON(router.StatusUnauthorized, map[string]string{
					"error": "Unauthorized",
				})
			}

			if !RoleAtLeast(session.Role, minRole) {
				return c.JSON(router.StatusForbidden, map[string]string{
					"error": "Insufficient permissions",
				})
			}

			return next(c)
		}
	}
}
