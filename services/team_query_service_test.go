package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Dosada05/clash-teams/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memorySubscriptionRepo struct {
	subs      map[string]models.Subscription
	requested [][]string
	err       error
}

func (r *memorySubscriptionRepo) GetByIDs(_ context.Context, ids []string) ([]models.Subscription, error) {
	r.requested = append(r.requested, ids)
	if r.err != nil {
		return nil, r.err
	}
	out := make([]models.Subscription, 0, len(ids))
	for _, id := range ids {
		if sub, ok := r.subs[id]; ok {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (r *memorySubscriptionRepo) Upsert(_ context.Context, sub *models.Subscription) error {
	if r.subs == nil {
		r.subs = make(map[string]models.Subscription)
	}
	r.subs[sub.PlayerID] = *sub
	return nil
}

func setupQueryService(subs *memorySubscriptionRepo, teams ...*models.Team) (TeamQueryService, *memoryTeamRepo) {
	repo := newMemoryTeamRepo(teams...)
	tournaments := setupTournamentService()
	return NewTeamQueryService(repo, tournaments, NewProfileService(subs)), repo
}

func TestTeamQueryService_GetTeamsByShape(t *testing.T) {
	svc, _ := setupQueryService(&memorySubscriptionRepo{},
		legacyTeam("Team Old", t1, "P1"),
		roleTeam("Team Abra", t1, map[string]string{"Top": "P2"}),
	)

	legacy, err := svc.GetTeams(ctx, "Srv")
	require.NoError(t, err)
	require.Len(t, legacy, 1)
	assert.Equal(t, "Team Old", legacy[0].Name)

	roles, err := svc.GetTeamsV2(ctx, "Srv")
	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.Equal(t, "Team Abra", roles[0].Name)

	all, err := svc.GetAllTeams(ctx, "Srv")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	none, err := svc.GetAllTeams(ctx, "Other")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestTeamQueryService_TournamentViews(t *testing.T) {
	subs := &memorySubscriptionRepo{subs: map[string]models.Subscription{
		"P1": {PlayerID: "P1", PlayerName: "Faker", PreferredChampions: []string{"Ahri"}},
		"P2": {PlayerID: "P2", PlayerName: "Keria"},
	}}
	svc, _ := setupQueryService(subs,
		roleTeam("Team Zubat", t1, map[string]string{"Mid": "P1", "Supp": "P2"}),
		legacyTeam("Team Abra", t1, "P3", "P1"),
		legacyTeam("Team Later", t2, "P4"),
	)

	views, err := svc.GetTournamentTeamViews(ctx, "Srv", t1)
	require.NoError(t, err)
	require.Len(t, views, 2)

	assert.Equal(t, "Team Abra", views[0].TeamName)
	assert.Equal(t, 1, views[0].Version)
	assert.Equal(t, []PlayerView{
		{PlayerID: "P3", PlayerName: "P3", PreferredChampions: []string{}},
		{PlayerID: "P1", PlayerName: "Faker", PreferredChampions: []string{"Ahri"}},
	}, views[0].Players)

	assert.Equal(t, "Team Zubat", views[1].TeamName)
	assert.Equal(t, 2, views[1].Version)
	assert.Equal(t, []PlayerView{
		{PlayerID: "P1", PlayerName: "Faker", Role: "Mid", PreferredChampions: []string{"Ahri"}},
		{PlayerID: "P2", PlayerName: "Keria", Role: "Supp", PreferredChampions: []string{}},
	}, views[1].Players)

	require.Len(t, subs.requested, 1)
	assert.ElementsMatch(t, []string{"P1", "P2", "P3"}, subs.requested[0], "profiles are fetched once per distinct player")
}

func TestTeamQueryService_ActiveViewsSkipClosedTournaments(t *testing.T) {
	worlds := models.TournamentRef{Name: "worlds", Day: "1"}
	svc, _ := setupQueryService(&memorySubscriptionRepo{},
		legacyTeam("Team Past", worlds, "P1"),
		legacyTeam("Team Day2", t2, "P2"),
		legacyTeam("Team Day1", t1, "P3"),
	)

	views, err := svc.GetActiveTeamViews(ctx, "Srv", t1Start.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, views, 2)

	names := []string{views[0].TeamName, views[1].TeamName}
	assert.ElementsMatch(t, []string{"Team Day1", "Team Day2"}, names)
}

func TestTeamQueryService_ProfileErrorPropagates(t *testing.T) {
	boom := errors.New("profiles down")
	svc, _ := setupQueryService(&memorySubscriptionRepo{err: boom}, legacyTeam("Team Abra", t1, "P1"))

	_, err := svc.GetTournamentTeamViews(ctx, "Srv", t1)
	assert.ErrorIs(t, err, boom)
}

func TestProfileService_Upsert(t *testing.T) {
	subs := &memorySubscriptionRepo{}
	svc := NewProfileService(subs)

	err := svc.Upsert(ctx, &models.Subscription{PlayerName: "nobody"})
	assert.ErrorIs(t, err, ErrValidationFailed)

	require.NoError(t, svc.Upsert(ctx, &models.Subscription{PlayerID: "P1", PlayerName: "Faker"}))
	names, err := svc.RetrievePlayerNames(ctx, []string{"P1", "P2"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"P1": "Faker"}, names)
}
