package services

import (
	"testing"
	"time"

	"github.com/Dosada05/clash-teams/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTournamentService() TournamentService {
	return NewTournamentService(&memoryTournamentRepo{tournaments: []models.Tournament{
		{Name: "msi", Day: "1", StartTime: t1Start},
		{Name: "msi", Day: "2", StartTime: t1Start.Add(24 * time.Hour)},
		{Name: "worlds", Day: "1", StartTime: t1Start.Add(-24 * time.Hour)},
	}})
}

func TestTournamentService_ListOpen(t *testing.T) {
	svc := setupTournamentService()

	open, err := svc.ListOpen(ctx, t1Start.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, open, 2)
	assert.Equal(t, "1", open[0].Day)
	assert.Equal(t, "2", open[1].Day)

	open, err = svc.ListOpen(ctx, t1Start)
	require.NoError(t, err)
	assert.Len(t, open, 2, "a tournament is open up to its start time")

	open, err = svc.ListOpen(ctx, t1Start.Add(72*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestTournamentService_Find(t *testing.T) {
	svc := setupTournamentService()

	found, err := svc.Find(ctx, "MSI", "")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = svc.Find(ctx, "", "1")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = svc.Find(ctx, "lck", "")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestTournamentService_Get(t *testing.T) {
	svc := setupTournamentService()

	got, err := svc.Get(ctx, "msi", "2")
	require.NoError(t, err)
	assert.Equal(t, t1Start.Add(24*time.Hour), got.StartTime)

	_, err = svc.Get(ctx, "msi", "9")
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestTournamentService_Create(t *testing.T) {
	svc := setupTournamentService()

	err := svc.Create(ctx, &models.Tournament{Name: "lck", Day: "1", StartTime: t1Start, RegistrationTime: t1Start.Add(-time.Hour)})
	require.NoError(t, err)

	err = svc.Create(ctx, &models.Tournament{Name: "msi", Day: "1", StartTime: t1Start})
	assert.ErrorIs(t, err, ErrTournamentConflict)

	err = svc.Create(ctx, &models.Tournament{Name: " ", StartTime: t1Start, RegistrationTime: t1Start.Add(time.Hour)})
	require.ErrorIs(t, err, ErrValidationFailed)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "tournamentName")
	assert.Contains(t, verr.Fields, "tournamentDay")
	assert.Contains(t, verr.Fields, "registrationTime")
	assert.NotContains(t, verr.Fields, "startTime")
}

func TestTournamentService_ResolveOpen(t *testing.T) {
	svc := setupTournamentService()
	now := t1Start.Add(-time.Hour)

	refs, err := svc.ResolveOpen(ctx, nil, now)
	require.NoError(t, err)
	assert.Equal(t, []models.TournamentRef{t1, t2}, refs)

	refs, err = svc.ResolveOpen(ctx, []models.TournamentRef{t2}, now)
	require.NoError(t, err)
	assert.Equal(t, []models.TournamentRef{t2}, refs)

	_, err = svc.ResolveOpen(ctx, []models.TournamentRef{{Name: "worlds", Day: "1"}}, now)
	assert.ErrorIs(t, err, ErrRegistrationClosed)

	_, err = svc.ResolveOpen(ctx, []models.TournamentRef{{Name: "lck", Day: "1"}}, now)
	assert.ErrorIs(t, err, ErrTournamentNotFound)

	_, err = svc.ResolveOpen(ctx, nil, t1Start.Add(72*time.Hour))
	assert.ErrorIs(t, err, ErrNoTournaments)
}
