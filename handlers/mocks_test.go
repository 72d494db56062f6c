package handlers

import (
	"context"
	"time"

	"github.com/Dosada05/clash-teams/models"
	"github.com/Dosada05/clash-teams/services"
	"github.com/stretchr/testify/mock"
)

type mockTeamService struct{ mock.Mock }

func (m *mockTeamService) registration(args mock.Arguments) (*services.RegistrationResult, error) {
	if res := args.Get(0); res != nil {
		return res.(*services.RegistrationResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTeamService) teams(args mock.Arguments) ([]*models.Team, error) {
	if res := args.Get(0); res != nil {
		return res.([]*models.Team), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTeamService) RegisterPlayer(ctx context.Context, playerID, server string, tournaments []models.TournamentRef) (*services.RegistrationResult, error) {
	return m.registration(m.Called(ctx, playerID, server, tournaments))
}

func (m *mockTeamService) RegisterPlayerV2(ctx context.Context, playerID string, role models.Role, server string, tournaments []models.TournamentRef) (*services.RegistrationResult, error) {
	return m.registration(m.Called(ctx, playerID, role, server, tournaments))
}

func (m *mockTeamService) RegisterWithSpecificTeam(ctx context.Context, playerID, server string, tournaments []models.TournamentRef, teamName string) (*services.RegistrationResult, error) {
	return m.registration(m.Called(ctx, playerID, server, tournaments, teamName))
}

func (m *mockTeamService) RegisterWithSpecificTeamV2(ctx context.Context, playerID string, role models.Role, server string, tournament models.TournamentRef, teamName string) (*services.RegistrationResult, error) {
	return m.registration(m.Called(ctx, playerID, role, server, tournament, teamName))
}

func (m *mockTeamService) DeregisterPlayer(ctx context.Context, playerID, server string, tournaments []models.TournamentRef) ([]*models.Team, error) {
	return m.teams(m.Called(ctx, playerID, server, tournaments))
}

func (m *mockTeamService) DeregisterPlayerV2(ctx context.Context, playerID, server string, tournaments []models.TournamentRef) ([]*models.Team, error) {
	return m.teams(m.Called(ctx, playerID, server, tournaments))
}

func (m *mockTeamService) ToggleTentative(ctx context.Context, playerID, server string, tournament models.TournamentRef) (*services.TentativeResult, error) {
	args := m.Called(ctx, playerID, server, tournament)
	if res := args.Get(0); res != nil {
		return res.(*services.TentativeResult), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockTournamentService struct{ mock.Mock }

func (m *mockTournamentService) tournaments(args mock.Arguments) ([]models.Tournament, error) {
	if res := args.Get(0); res != nil {
		return res.([]models.Tournament), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTournamentService) ListOpen(ctx context.Context, now time.Time) ([]models.Tournament, error) {
	return m.tournaments(m.Called(ctx, now))
}

func (m *mockTournamentService) Find(ctx context.Context, name, day string) ([]models.Tournament, error) {
	return m.tournaments(m.Called(ctx, name, day))
}

func (m *mockTournamentService) Get(ctx context.Context, name, day string) (*models.Tournament, error) {
	args := m.Called(ctx, name, day)
	if res := args.Get(0); res != nil {
		return res.(*models.Tournament), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTournamentService) Create(ctx context.Context, tournament *models.Tournament) error {
	return m.Called(ctx, tournament).Error(0)
}

func (m *mockTournamentService) ResolveOpen(ctx context.Context, refs []models.TournamentRef, now time.Time) ([]models.TournamentRef, error) {
	args := m.Called(ctx, refs, now)
	if res := args.Get(0); res != nil {
		return res.([]models.TournamentRef), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockQueryService struct{ mock.Mock }

func (m *mockQueryService) teams(args mock.Arguments) ([]*models.Team, error) {
	if res := args.Get(0); res != nil {
		return res.([]*models.Team), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockQueryService) views(args mock.Arguments) ([]services.TeamView, error) {
	if res := args.Get(0); res != nil {
		return res.([]services.TeamView), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockQueryService) GetTeams(ctx context.Context, server string) ([]*models.Team, error) {
	return m.teams(m.Called(ctx, server))
}

func (m *mockQueryService) GetTeamsV2(ctx context.Context, server string) ([]*models.Team, error) {
	return m.teams(m.Called(ctx, server))
}

func (m *mockQueryService) GetAllTeams(ctx context.Context, server string) ([]*models.Team, error) {
	return m.teams(m.Called(ctx, server))
}

func (m *mockQueryService) GetActiveTeamViews(ctx context.Context, server string, now time.Time) ([]services.TeamView, error) {
	return m.views(m.Called(ctx, server, now))
}

func (m *mockQueryService) GetTournamentTeamViews(ctx context.Context, server string, tournament models.TournamentRef) ([]services.TeamView, error) {
	return m.views(m.Called(ctx, server, tournament))
}

type mockExportService struct{ mock.Mock }

func (m *mockExportService) ExportRoster(ctx context.Context, server string, tournament models.TournamentRef) (*services.ExportResult, error) {
	args := m.Called(ctx, server, tournament)
	if res := args.Get(0); res != nil {
		return res.(*services.ExportResult), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockProfileService struct{ mock.Mock }

func (m *mockProfileService) RetrievePlayerNames(ctx context.Context, ids []string) (map[string]string, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *mockProfileService) RetrieveAllUserDetails(ctx context.Context, ids []string) (map[string]models.PlayerDetails, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(map[string]models.PlayerDetails), args.Error(1)
}

func (m *mockProfileService) Upsert(ctx context.Context, sub *models.Subscription) error {
	return m.Called(ctx, sub).Error(0)
}
