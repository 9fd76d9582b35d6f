package auth

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Policy is the role × action permission matrix. It is configuration data:
// the gate never branches on role names, it only looks the pair up.
type Policy map[Role]map[Action]bool

type Gate struct {
	policy Policy
}

// NewGate rejects any policy that is not total over the closed role and
// action enumerations, so Can never has to invent a default answer.
func NewGate(policy Policy) (*Gate, error) {
	for _, role := range Roles() {
		row, ok := policy[role]
		if !ok {
			return nil, fmt.Errorf("policy missing role %q", role)
		}
		for _, action := range Actions() {
			if _, ok := row[action]; !ok {
				return nil, fmt.Errorf("policy missing action %q for role %q", action, role)
			}
		}
	}
	return &Gate{policy: clonePolicy(policy)}, nil
}

// Can is pure and total: the same (role, action) pair always yields the same
// answer for a given policy. Unknown pairs are denied.
func (g *Gate) Can(role Role, action Action) bool {
	row, ok := g.policy[role]
	if !ok {
		return false
	}
	return row[action]
}

// DefaultPolicy grants admin everything, managers their team's review
// workflow, and employees their own reviews plus the acknowledge step.
func DefaultPolicy() Policy {
	policy := Policy{
		RoleAdmin: {},
		RoleManager: {
			ActionViewOwn:           true,
			ActionViewTeam:          true,
			ActionViewAll:           false,
			ActionCreateReview:      true,
			ActionEditOwnDraft:      true,
			ActionEditAnyDraft:      false,
			ActionSubmitReview:      true,
			ActionAcknowledgeReview: true,
			ActionManageCycle:       false,
			ActionExportData:        true,
		},
		RoleEmployee: {
			ActionViewOwn:           true,
			ActionViewTeam:          false,
			ActionViewAll:           false,
			ActionCreateReview:      false,
			ActionEditOwnDraft:      true,
			ActionEditAnyDraft:      false,
			ActionSubmitReview:      true,
			ActionAcknowledgeReview: true,
			ActionManageCycle:       false,
			ActionExportData:        false,
		},
	}
	for _, action := range Actions() {
		policy[RoleAdmin][action] = true
	}
	return policy
}

type policyFile struct {
	Roles map[string]map[string]bool `yaml:"roles"`
}

// LoadPolicy reads a role × action matrix from a YAML file. Missing cells are
// rejected by NewGate, not defaulted, so a truncated file cannot silently
// widen or narrow access.
func LoadPolicy(path string) (Policy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file policyFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("policy file %s: %w", path, err)
	}

	policy := Policy{}
	for roleName, row := range file.Roles {
		role, err := ParseRole(roleName)
		if err != nil {
			return nil, fmt.Errorf("policy file %s: %w", path, err)
		}
		policy[role] = map[Action]bool{}
		for actionName, allowed := range row {
			policy[role][Action(actionName)] = allowed
		}
	}
	return policy, nil
}

func clonePolicy(policy Policy) Policy {
	out := Policy{}
	for role, row := range policy {
		out[role] = map[Action]bool{}
		for action, allowed := range row {
			out[role][action] = allowed
		}
	}
	return out
}
