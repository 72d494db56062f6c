package models

import "slices"

// TentativeList holds the players of one server who are available for a
// tournament but not on a team. Emptied lists are kept.
type TentativeList struct {
	ServerName        string        `json:"serverName"`
	TournamentDetails TournamentRef `json:"tournamentDetails"`
	TentativePlayers  []string      `json:"tentativePlayers"`
}

func NewTentativeList(server string, tournament TournamentRef, players ...string) *TentativeList {
	return &TentativeList{
		ServerName:        server,
		TournamentDetails: tournament,
		TentativePlayers:  append([]string{}, players...),
	}
}

func (l *TentativeList) Key() TentativeKey {
	return TentativeKey{
		ServerName:     l.ServerName,
		TournamentName: l.TournamentDetails.Name,
		TournamentDay:  l.TournamentDetails.Day,
	}
}

func (l *TentativeList) Contains(playerID string) bool {
	return l != nil && slices.Contains(l.TentativePlayers, playerID)
}
