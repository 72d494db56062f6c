package models

// Subscription is a player's profile on a server.
type Subscription struct {
	PlayerID           string   `json:"playerId" db:"player_id"`
	PlayerName         string   `json:"playerName" db:"player_name"`
	ServerName         string   `json:"serverName" db:"server_name"`
	PreferredChampions []string `json:"preferredChampions" db:"preferred_champions"`
}

type PlayerDetails struct {
	PlayerName         string   `json:"playerName"`
	PreferredChampions []string `json:"preferredChampions"`
}
