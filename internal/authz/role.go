package authz

import "fmt"

// Role is an authorization role attached to a user profile. Privilege order,
// highest to lowest: moderator > assistant_moderator > operator > user.
type Role string

const (
	RoleModerator          Role = "moderator"
	RoleAssistantModerator Role = "assistant_moderator"
	RoleOperator           Role = "operator"
	RoleUser               Role = "user"
)

// ParseRole validates a raw role string from storage or input.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleModerator, RoleAssistantModerator, RoleOperator, RoleUser:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// ModeratorTier reports whether the role may mutate other users' profiles,
// force password changes, delete accounts, and manage order records.
func (r Role) ModeratorTier() bool {
	return r == RoleModerator || r == RoleAssistantModerator
}
