package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"
)

// TeamVersion tags the stored roster shape.
type TeamVersion int

const (
	TeamVersionLegacy TeamVersion = 1
	TeamVersionRoles  TeamVersion = 2
)

const MaxTeamSize = 5

var ErrUnknownTeamVersion = errors.New("unknown team version")

// Roster is implemented by LegacyRoster and RoleRoster only. Code that
// mutates a team switches on the concrete type.
type Roster interface {
	Version() TeamVersion
	Players() []string
	Has(playerID string) bool
	Len() int
	// CanSeat reports whether playerID could be added in role. Legacy
	// rosters ignore the role.
	CanSeat(playerID string, role Role) bool

	roster()
}

// LegacyRoster is an unordered player set without role binding.
type LegacyRoster struct {
	Members []string
}

func (LegacyRoster) Version() TeamVersion { return TeamVersionLegacy }

func (r LegacyRoster) Players() []string {
	if r.Members == nil {
		return []string{}
	}
	return slices.Clone(r.Members)
}

func (r LegacyRoster) Has(playerID string) bool {
	return slices.Contains(r.Members, playerID)
}

func (r LegacyRoster) Len() int { return len(r.Members) }

func (r LegacyRoster) CanSeat(playerID string, _ Role) bool {
	return playerID != "" && !r.Has(playerID) && len(r.Members) < MaxTeamSize
}

// With returns a roster that also contains playerID. Adding an existing
// member is a no-op, mirroring set semantics in the store.
func (r LegacyRoster) With(playerID string) LegacyRoster {
	if r.Has(playerID) {
		return LegacyRoster{Members: r.Players()}
	}
	return LegacyRoster{Members: append(r.Players(), playerID)}
}

func (r LegacyRoster) Without(playerID string) LegacyRoster {
	members := make([]string, 0, len(r.Members))
	for _, m := range r.Members {
		if m != playerID {
			members = append(members, m)
		}
	}
	return LegacyRoster{Members: members}
}

func (LegacyRoster) roster() {}

// RoleRoster binds each occupied role to exactly one player. The flat
// player list is always derived from Roles.
type RoleRoster struct {
	Roles RoleAssignments
}

func (RoleRoster) Version() TeamVersion { return TeamVersionRoles }

func (r RoleRoster) Players() []string { return r.Roles.Players() }

func (r RoleRoster) Has(playerID string) bool {
	_, ok := r.Roles.RoleOf(playerID)
	return ok
}

func (r RoleRoster) Len() int { return r.Roles.Len() }

func (r RoleRoster) CanSeat(playerID string, role Role) bool {
	return playerID != "" && !r.Has(playerID) && r.Roles.IsFree(role)
}

func (RoleRoster) roster() {}

type Team struct {
	Name           string
	ServerName     string
	TournamentName string
	TournamentDay  string
	StartTime      time.Time
	Roster         Roster
}

func (t *Team) Key() TeamKey {
	return TeamKey{
		TeamName:       t.Name,
		ServerName:     t.ServerName,
		TournamentName: t.TournamentName,
		TournamentDay:  t.TournamentDay,
	}
}

func (t *Team) Tournament() TournamentRef {
	return TournamentRef{Name: t.TournamentName, Day: t.TournamentDay}
}

func (t *Team) Version() TeamVersion {
	if t.Roster == nil {
		return TeamVersionLegacy
	}
	return t.Roster.Version()
}

func (t *Team) Players() []string {
	if t.Roster == nil {
		return []string{}
	}
	return t.Roster.Players()
}

func (t *Team) Has(playerID string) bool {
	return t.Roster != nil && t.Roster.Has(playerID)
}

func (t *Team) Len() int {
	if t.Roster == nil {
		return 0
	}
	return t.Roster.Len()
}

// RoleAssignments returns the role map of a role-based team.
func (t *Team) RoleAssignments() (RoleAssignments, bool) {
	rr, ok := t.Roster.(RoleRoster)
	if !ok {
		return RoleAssignments{}, false
	}
	return rr.Roles, true
}

// teamJSON is the wire shape shared by the HTTP API, broadcast messages and
// roster exports.
type teamJSON struct {
	TeamName       string            `json:"teamName"`
	ServerName     string            `json:"serverName"`
	TournamentName string            `json:"tournamentName"`
	TournamentDay  string            `json:"tournamentDay"`
	StartTime      time.Time         `json:"startTime"`
	Players        []string          `json:"players"`
	PlayersWRoles  map[string]string `json:"playersWRoles,omitempty"`
	Version        int               `json:"version,omitempty"`
}

func (t Team) MarshalJSON() ([]byte, error) {
	out := teamJSON{
		TeamName:       t.Name,
		ServerName:     t.ServerName,
		TournamentName: t.TournamentName,
		TournamentDay:  t.TournamentDay,
		StartTime:      t.StartTime,
		Players:        t.Players(),
	}
	switch r := t.Roster.(type) {
	case nil, LegacyRoster:
	case RoleRoster:
		out.PlayersWRoles = r.Roles.Map()
		out.Version = int(TeamVersionRoles)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownTeamVersion, r)
	}
	return json.Marshal(out)
}

func (t *Team) UnmarshalJSON(data []byte) error {
	var in teamJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	roster, err := BuildRoster(TeamVersion(in.Version), in.Players, in.PlayersWRoles)
	if err != nil {
		return err
	}
	*t = Team{
		Name:           in.TeamName,
		ServerName:     in.ServerName,
		TournamentName: in.TournamentName,
		TournamentDay:  in.TournamentDay,
		StartTime:      in.StartTime,
		Roster:         roster,
	}
	return nil
}

// BuildRoster decodes a stored record. A zero version is a legacy record
// written before versions existed.
func BuildRoster(version TeamVersion, players []string, playersWRoles map[string]string) (Roster, error) {
	switch version {
	case 0, TeamVersionLegacy:
		return LegacyRoster{Members: slices.Clone(players)}, nil
	case TeamVersionRoles:
		roles, err := RoleAssignmentsFromMap(playersWRoles)
		if err != nil {
			return nil, err
		}
		return RoleRoster{Roles: roles}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownTeamVersion, version)
	}
}
