package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeamKey_RoundTripWithSeparators(t *testing.T) {
	keys := []TeamKey{
		{TeamName: "Team Abra", ServerName: "Srv", TournamentName: "msi2024", TournamentDay: "1"},
		{TeamName: "a#b", ServerName: "c", TournamentName: "d", TournamentDay: "e"},
		{TeamName: `back\slash#`, ServerName: "#", TournamentName: "", TournamentDay: `\`},
	}
	for _, k := range keys {
		parsed, err := ParseTeamKey(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}

	a := TeamKey{TeamName: "a#b", ServerName: "c", TournamentName: "d", TournamentDay: "e"}
	b := TeamKey{TeamName: "a", ServerName: "b#c", TournamentName: "d", TournamentDay: "e"}
	assert.NotEqual(t, a.String(), b.String())

	assert.Equal(t, "Team Abra#Srv#msi2024#1", keys[0].String())
}

func TestParseKey_Malformed(t *testing.T) {
	_, err := ParseTeamKey("a#b#c")
	assert.ErrorIs(t, err, ErrMalformedKey)

	_, err = ParseTentativeKey(`a#b#c\`)
	assert.ErrorIs(t, err, ErrMalformedKey)

	k, err := ParseTentativeKey("Srv#msi#2")
	require.NoError(t, err)
	assert.Equal(t, TentativeKey{ServerName: "Srv", TournamentName: "msi", TournamentDay: "2"}, k)
}

func TestLegacyRoster(t *testing.T) {
	r := LegacyRoster{}
	assert.Equal(t, []string{}, r.Players())
	assert.True(t, r.CanSeat("P1", ""))

	r = r.With("P1").With("P2").With("P1")
	assert.Equal(t, []string{"P1", "P2"}, r.Players())
	assert.False(t, r.CanSeat("P1", ""))

	full := LegacyRoster{Members: []string{"1", "2", "3", "4", "5"}}
	assert.False(t, full.CanSeat("6", ""))

	assert.Equal(t, []string{"P2"}, r.Without("P1").Players())
	assert.Equal(t, []string{"P1", "P2"}, r.Players())
}

func TestRoleRoster_CanSeat(t *testing.T) {
	roles, err := RoleAssignmentsFromMap(map[string]string{"Top": "P1"})
	require.NoError(t, err)
	r := RoleRoster{Roles: roles}

	assert.True(t, r.CanSeat("P2", RoleMid))
	assert.False(t, r.CanSeat("P2", RoleTop))
	assert.False(t, r.CanSeat("P1", RoleMid))
	assert.Equal(t, []string{"P1"}, r.Players())
}

func TestTeam_JSON(t *testing.T) {
	start := time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC)
	legacy := Team{
		Name: "Team Abra", ServerName: "Srv", TournamentName: "msi", TournamentDay: "1",
		StartTime: start, Roster: LegacyRoster{Members: []string{"P1"}},
	}
	data, err := json.Marshal(legacy)
	require.NoError(t, err)
	assert.JSONEq(t, `{"teamName":"Team Abra","serverName":"Srv","tournamentName":"msi",
		"tournamentDay":"1","startTime":"2024-05-01T18:00:00Z","players":["P1"]}`, string(data))

	roles, err := RoleAssignmentsFromMap(map[string]string{"Top": "P1", "Mid": "P2"})
	require.NoError(t, err)
	v2 := legacy
	v2.Roster = RoleRoster{Roles: roles}
	data, err = json.Marshal(&v2)
	require.NoError(t, err)

	var decoded Team
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, TeamVersionRoles, decoded.Version())
	assert.Equal(t, []string{"P1", "P2"}, decoded.Players())
	assert.Equal(t, v2.Key(), decoded.Key())
}

func TestBuildRoster_UnknownVersion(t *testing.T) {
	_, err := BuildRoster(TeamVersion(7), nil, nil)
	assert.ErrorIs(t, err, ErrUnknownTeamVersion)

	r, err := BuildRoster(0, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, TeamVersionLegacy, r.Version())
	assert.Equal(t, 0, r.Len())
}
