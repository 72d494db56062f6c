package handlers

import (
	"strings"

	"github.com/Dosada05/clash-teams/models"
)

type registerRequest struct {
	PlayerID    string                 `json:"playerId"`
	ServerName  string                 `json:"serverName"`
	Tournaments []models.TournamentRef `json:"tournaments"`
}

type joinRequest struct {
	PlayerID    string                 `json:"playerId"`
	ServerName  string                 `json:"serverName"`
	Tournaments []models.TournamentRef `json:"tournaments"`
	TeamName    string                 `json:"teamName"`
}

type registerV2Request struct {
	PlayerID    string                 `json:"playerId"`
	ServerName  string                 `json:"serverName"`
	Role        string                 `json:"role"`
	Tournaments []models.TournamentRef `json:"tournaments"`
}

type joinV2Request struct {
	PlayerID   string               `json:"playerId"`
	ServerName string               `json:"serverName"`
	Role       string               `json:"role"`
	Tournament models.TournamentRef `json:"tournament"`
	TeamName   string               `json:"teamName"`
}

type tentativeRequest struct {
	PlayerID   string               `json:"playerId"`
	ServerName string               `json:"serverName"`
	Tournament models.TournamentRef `json:"tournament"`
}

type exportRequest struct {
	Tournament models.TournamentRef `json:"tournament"`
}

type profileRequest struct {
	PlayerName         string   `json:"playerName"`
	ServerName         string   `json:"serverName"`
	PreferredChampions []string `json:"preferredChampions"`
}

// requireFields collects a "must not be empty" message for each blank value.
func requireFields(values map[string]string) map[string]string {
	problems := make(map[string]string)
	for field, value := range values {
		if strings.TrimSpace(value) == "" {
			problems[field] = "must not be empty"
		}
	}
	return problems
}

func validTournament(problems map[string]string, field string, ref models.TournamentRef) {
	if strings.TrimSpace(ref.Name) == "" || strings.TrimSpace(ref.Day) == "" {
		problems[field] = "tournamentName and tournamentDay are required"
	}
}

func parseRole(problems map[string]string, raw string) models.Role {
	role, err := models.ParseRole(raw)
	if err != nil {
		problems["role"] = err.Error()
	}
	return role
}
