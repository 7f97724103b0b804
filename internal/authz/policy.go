package authz

import "github.com/google/uuid"

// Action identifies a privileged operation submitted to the policy.
type Action string

const (
	ActionSetPassword   Action = "set_password"
	ActionDeleteAccount Action = "delete_account"
	ActionUpdateProfile Action = "update_profile"
	ActionCreateUser    Action = "create_user"
	ActionListUsers     Action = "list_users"
	ActionVerifyOrder   Action = "verify_order"
	ActionUpdateOrder   Action = "update_order"
	ActionDeleteOrder   Action = "delete_order"
	ActionViewAuditLog  Action = "view_audit_log"
)

// Decision is the outcome of a policy evaluation.
type Decision int

const (
	Deny Decision = iota
	Allow
)

func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "deny"
}

// Decide is the single source of truth for who may do what. It is pure: the
// caller's role must come from the stored profile, never from request input.
//
// Rules, first match governs:
//  1. A caller may change their own password.
//  2. Moderator-tier roles may perform any privileged action.
//  3. Everything else is denied.
func Decide(callerID uuid.UUID, role Role, targetID uuid.UUID, action Action) Decision {
	if action == ActionSetPassword && callerID != uuid.Nil && callerID == targetID {
		return Allow
	}
	if role.ModeratorTier() {
		return Allow
	}
	return Deny
}
