package models

import (
	"strings"
	"time"
)

// Tournament is a scheduled Clash slot, identified by name and day.
type Tournament struct {
	Name             string    `json:"tournamentName" db:"tournament_name"`
	Day              string    `json:"tournamentDay" db:"tournament_day"`
	StartTime        time.Time `json:"startTime" db:"start_time"`
	RegistrationTime time.Time `json:"registrationTime" db:"registration_time"`
}

// IsOpen reports whether registration is still possible at now.
func (t Tournament) IsOpen(now time.Time) bool {
	return !now.After(t.StartTime)
}

func (t Tournament) Ref() TournamentRef {
	return TournamentRef{Name: t.Name, Day: t.Day}
}

// TournamentRef is the (name, day) identity of a tournament as passed in
// registration requests.
type TournamentRef struct {
	Name string `json:"tournamentName"`
	Day  string `json:"tournamentDay"`
}

// Key is the bucket key teams are grouped by.
func (r TournamentRef) Key() string {
	return joinKey(r.Name, r.Day)
}

func (r TournamentRef) Matches(name, day string) bool {
	return strings.Contains(strings.ToLower(r.Name), strings.ToLower(name)) &&
		strings.Contains(strings.ToLower(r.Day), strings.ToLower(day))
}
