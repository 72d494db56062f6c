package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Role is a Clash lane slot on a role-based team.
type Role string

const (
	RoleTop     Role = "Top"
	RoleJungle  Role = "Jg"
	RoleMid     Role = "Mid"
	RoleBottom  Role = "Bot"
	RoleSupport Role = "Supp"
)

// Roles lists every slot in display order. Projections of a role roster
// follow this order.
var Roles = []Role{RoleTop, RoleJungle, RoleMid, RoleBottom, RoleSupport}

var (
	ErrUnknownRole     = errors.New("unknown role")
	ErrRoleOccupied    = errors.New("role is already occupied")
	ErrPlayerHasRole   = errors.New("player already holds a role on this team")
	ErrInvalidPlayerID = errors.New("player id must not be empty")
)

// ParseRole accepts any casing of a role name.
func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if strings.EqualFold(string(r), strings.TrimSpace(s)) {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// RoleAssignments is a partial one-to-one mapping between roles and player
// ids. Values are never mutated in place: Assign and Release return a new
// mapping, so a RoleAssignments read from the store can be shared safely.
type RoleAssignments struct {
	byRole map[Role]string
}

func NewRoleAssignments() RoleAssignments {
	return RoleAssignments{byRole: map[Role]string{}}
}

// RoleAssignmentsFromMap validates a stored role map.
func RoleAssignmentsFromMap(m map[string]string) (RoleAssignments, error) {
	a := NewRoleAssignments()
	for name, playerID := range m {
		role, err := ParseRole(name)
		if err != nil {
			return RoleAssignments{}, err
		}
		next, err := a.Assign(role, playerID)
		if err != nil {
			return RoleAssignments{}, fmt.Errorf("role %s: %w", role, err)
		}
		a = next
	}
	return a, nil
}

func (a RoleAssignments) Len() int {
	return len(a.byRole)
}

// Player returns the occupant of role.
func (a RoleAssignments) Player(role Role) (string, bool) {
	p, ok := a.byRole[role]
	return p, ok
}

// RoleOf is the reverse lookup.
func (a RoleAssignments) RoleOf(playerID string) (Role, bool) {
	for role, p := range a.byRole {
		if p == playerID {
			return role, true
		}
	}
	return "", false
}

func (a RoleAssignments) IsFree(role Role) bool {
	_, taken := a.byRole[role]
	return role.Valid() && !taken
}

func (a RoleAssignments) Assign(role Role, playerID string) (RoleAssignments, error) {
	if !role.Valid() {
		return a, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	if playerID == "" {
		return a, ErrInvalidPlayerID
	}
	if _, taken := a.byRole[role]; taken {
		return a, ErrRoleOccupied
	}
	if _, has := a.RoleOf(playerID); has {
		return a, ErrPlayerHasRole
	}
	next := a.clone()
	next.byRole[role] = playerID
	return next, nil
}

// Release clears whatever role playerID holds. Releasing a player without a
// role returns an equal mapping.
func (a RoleAssignments) Release(playerID string) RoleAssignments {
	next := a.clone()
	for role, p := range next.byRole {
		if p == playerID {
			delete(next.byRole, role)
		}
	}
	return next
}

// Players projects the mapping onto the flat player set stored next to it.
func (a RoleAssignments) Players() []string {
	players := make([]string, 0, len(a.byRole))
	for _, role := range Roles {
		if p, ok := a.byRole[role]; ok {
			players = append(players, p)
		}
	}
	return players
}

func (a RoleAssignments) Map() map[string]string {
	m := make(map[string]string, len(a.byRole))
	for role, p := range a.byRole {
		m[string(role)] = p
	}
	return m
}

func (a RoleAssignments) clone() RoleAssignments {
	next := NewRoleAssignments()
	for role, p := range a.byRole {
		next.byRole[role] = p
	}
	return next
}

func (a RoleAssignments) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Map())
}

func (a *RoleAssignments) UnmarshalJSON(data []byte) error {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	parsed, err := RoleAssignmentsFromMap(m)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
