package auth

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

type Action string

const (
	ActionViewOwn           Action = "view_own"
	ActionViewTeam          Action = "view_team"
	ActionViewAll           Action = "view_all"
	ActionCreateReview      Action = "create_review"
	ActionEditOwnDraft      Action = "edit_own_draft"
	ActionEditAnyDraft      Action = "edit_any_draft"
	ActionSubmitReview      Action = "submit_review"
	ActionAcknowledgeReview Action = "acknowledge_review"
	ActionManageCycle       Action = "manage_cycle"
	ActionExportData        Action = "export_data"
)

// Roles and Actions are closed enumerations; the policy matrix must carry an
// explicit answer for every pair.
func Roles() []Role {
	return []Role{RoleAdmin, RoleManager, RoleEmployee}
}

func Actions() []Action {
	return []Action{
		ActionViewOwn,
		ActionViewTeam,
		ActionViewAll,
		ActionCreateReview,
		ActionEditOwnDraft,
		ActionEditAnyDraft,
		ActionSubmitReview,
		ActionAcknowledgeReview,
		ActionManageCycle,
		ActionExportData,
	}
}

func ParseRole(value string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(value))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleManager:
		return RoleManager, nil
	case RoleEmployee:
		return RoleEmployee, nil
	}
	return "", fmt.Errorf("unknown role %q", value)
}

type UserContext struct {
	UserID string
	Email  string
	Role   Role
}
