package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Dosada05/clash-teams/models"
	"github.com/Dosada05/clash-teams/repositories"
	"golang.org/x/sync/errgroup"
)

type PlayerView struct {
	PlayerID           string   `json:"playerId"`
	PlayerName         string   `json:"playerName"`
	Role               string   `json:"role,omitempty"`
	PreferredChampions []string `json:"preferredChampions"`
}

// TeamView is a team enriched with profile data for display.
type TeamView struct {
	TeamName       string       `json:"teamName"`
	ServerName     string       `json:"serverName"`
	TournamentName string       `json:"tournamentName"`
	TournamentDay  string       `json:"tournamentDay"`
	StartTime      time.Time    `json:"startTime"`
	Version        int          `json:"version"`
	Players        []PlayerView `json:"players"`
}

type TeamQueryService interface {
	GetTeams(ctx context.Context, server string) ([]*models.Team, error)
	GetTeamsV2(ctx context.Context, server string) ([]*models.Team, error)
	GetAllTeams(ctx context.Context, server string) ([]*models.Team, error)
	GetActiveTeamViews(ctx context.Context, server string, now time.Time) ([]TeamView, error)
	GetTournamentTeamViews(ctx context.Context, server string, tournament models.TournamentRef) ([]TeamView, error)
}

type teamQueryService struct {
	teamRepo    repositories.TeamRepository
	tournaments TournamentService
	profiles    ProfileService
}

func NewTeamQueryService(teamRepo repositories.TeamRepository, tournaments TournamentService, profiles ProfileService) TeamQueryService {
	return &teamQueryService{teamRepo: teamRepo, tournaments: tournaments, profiles: profiles}
}

func (s *teamQueryService) GetTeams(ctx context.Context, server string) ([]*models.Team, error) {
	return s.teamRepo.ListByServer(ctx, server, models.TeamVersionLegacy)
}

func (s *teamQueryService) GetTeamsV2(ctx context.Context, server string) ([]*models.Team, error) {
	return s.teamRepo.ListByServer(ctx, server, models.TeamVersionRoles)
}

func (s *teamQueryService) GetAllTeams(ctx context.Context, server string) ([]*models.Team, error) {
	var legacy, roles []*models.Team
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		legacy, err = s.GetTeams(gctx, server)
		return err
	})
	g.Go(func() error {
		var err error
		roles, err = s.GetTeamsV2(gctx, server)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to list teams for %s: %w", server, err)
	}
	return append(legacy, roles...), nil
}

func (s *teamQueryService) GetActiveTeamViews(ctx context.Context, server string, now time.Time) ([]TeamView, error) {
	open, err := s.tournaments.ListOpen(ctx, now)
	if err != nil {
		return nil, err
	}
	active := make(map[string]struct{}, len(open))
	for _, t := range open {
		active[t.Ref().Key()] = struct{}{}
	}
	return s.views(ctx, server, func(team *models.Team) bool {
		_, ok := active[team.Tournament().Key()]
		return ok
	})
}

func (s *teamQueryService) GetTournamentTeamViews(ctx context.Context, server string, tournament models.TournamentRef) ([]TeamView, error) {
	return s.views(ctx, server, func(team *models.Team) bool {
		return team.Tournament() == tournament
	})
}

func (s *teamQueryService) views(ctx context.Context, server string, keep func(*models.Team) bool) ([]TeamView, error) {
	teams, err := s.GetAllTeams(ctx, server)
	if err != nil {
		return nil, err
	}

	selected := make([]*models.Team, 0, len(teams))
	seen := make(map[string]struct{})
	ids := make([]string, 0)
	for _, team := range teams {
		if !keep(team) {
			continue
		}
		selected = append(selected, team)
		for _, id := range team.Players() {
			if _, dup := seen[id]; !dup {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}

	details, err := s.profiles.RetrieveAllUserDetails(ctx, ids)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(selected, func(i, j int) bool {
		a, b := selected[i], selected[j]
		if !a.StartTime.Equal(b.StartTime) {
			return a.StartTime.Before(b.StartTime)
		}
		if a.TournamentName != b.TournamentName {
			return a.TournamentName < b.TournamentName
		}
		if a.TournamentDay != b.TournamentDay {
			return a.TournamentDay < b.TournamentDay
		}
		return a.Name < b.Name
	})

	views := make([]TeamView, 0, len(selected))
	for _, team := range selected {
		views = append(views, toTeamView(team, details))
	}
	return views, nil
}

func toTeamView(team *models.Team, details map[string]models.PlayerDetails) TeamView {
	view := TeamView{
		TeamName:       team.Name,
		ServerName:     team.ServerName,
		TournamentName: team.TournamentName,
		TournamentDay:  team.TournamentDay,
		StartTime:      team.StartTime,
		Version:        int(team.Version()),
		Players:        make([]PlayerView, 0, team.Len()),
	}
	roles, _ := team.RoleAssignments()
	for _, id := range team.Players() {
		pv := PlayerView{PlayerID: id, PlayerName: id, PreferredChampions: []string{}}
		if d, ok := details[id]; ok {
			pv.PlayerName = d.PlayerName
			pv.PreferredChampions = d.PreferredChampions
		}
		if role, ok := roles.RoleOf(id); ok {
			pv.Role = string(role)
		}
		view.Players = append(view.Players, pv)
	}
	return view
}
