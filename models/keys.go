package models

import (
	"errors"
	"strings"
)

const keySeparator = '#'

var ErrMalformedKey = errors.New("malformed composite key")

// TeamKey identifies a team record. Team names are unique per server,
// tournament and day.
type TeamKey struct {
	TeamName       string
	ServerName     string
	TournamentName string
	TournamentDay  string
}

func (k TeamKey) String() string {
	return joinKey(k.TeamName, k.ServerName, k.TournamentName, k.TournamentDay)
}

func ParseTeamKey(s string) (TeamKey, error) {
	parts, err := splitKey(s, 4)
	if err != nil {
		return TeamKey{}, err
	}
	return TeamKey{
		TeamName:       parts[0],
		ServerName:     parts[1],
		TournamentName: parts[2],
		TournamentDay:  parts[3],
	}, nil
}

// TentativeKey identifies the tentative list of one server for one tournament.
type TentativeKey struct {
	ServerName     string
	TournamentName string
	TournamentDay  string
}

func (k TentativeKey) String() string {
	return joinKey(k.ServerName, k.TournamentName, k.TournamentDay)
}

func ParseTentativeKey(s string) (TentativeKey, error) {
	parts, err := splitKey(s, 3)
	if err != nil {
		return TentativeKey{}, err
	}
	return TentativeKey{ServerName: parts[0], TournamentName: parts[1], TournamentDay: parts[2]}, nil
}

// joinKey escapes backslashes and separators inside each field so that
// distinct field tuples always serialize to distinct strings.
func joinKey(fields ...string) string {
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(keySeparator)
		}
		for _, r := range f {
			if r == '\\' || r == keySeparator {
				b.WriteByte('\\')
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

func splitKey(s string, want int) ([]string, error) {
	parts := make([]string, 0, want)
	var cur strings.Builder
	escaped := false
	for _, r := range s {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == keySeparator:
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	if escaped {
		return nil, ErrMalformedKey
	}
	parts = append(parts, cur.String())
	if len(parts) != want {
		return nil, ErrMalformedKey
	}
	return parts, nil
}
