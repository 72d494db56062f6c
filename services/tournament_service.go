package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/clash-teams/models"
	"github.com/Dosada05/clash-teams/repositories"
)

type TournamentService interface {
	// ListOpen returns the tournaments whose registration is open at now.
	ListOpen(ctx context.Context, now time.Time) ([]models.Tournament, error)
	// Find matches name and day as case-insensitive substrings. Empty
	// filters match everything.
	Find(ctx context.Context, name, day string) ([]models.Tournament, error)
	Get(ctx context.Context, name, day string) (*models.Tournament, error)
	Create(ctx context.Context, tournament *models.Tournament) error
	// ResolveOpen checks that every requested tournament exists and is open
	// at now. With no refs it returns every open tournament.
	ResolveOpen(ctx context.Context, refs []models.TournamentRef, now time.Time) ([]models.TournamentRef, error)
}

type tournamentService struct {
	repo repositories.TournamentRepository
}

func NewTournamentService(repo repositories.TournamentRepository) TournamentService {
	return &tournamentService{repo: repo}
}

func (s *tournamentService) ListOpen(ctx context.Context, now time.Time) ([]models.Tournament, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	open := make([]models.Tournament, 0, len(all))
	for _, t := range all {
		if t.IsOpen(now) {
			open = append(open, t)
		}
	}
	return open, nil
}

func (s *tournamentService) Find(ctx context.Context, name, day string) ([]models.Tournament, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	found := make([]models.Tournament, 0)
	for _, t := range all {
		if t.Ref().Matches(name, day) {
			found = append(found, t)
		}
	}
	return found, nil
}

func (s *tournamentService) Get(ctx context.Context, name, day string) (*models.Tournament, error) {
	t, err := s.repo.Get(ctx, name, day)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (s *tournamentService) Create(ctx context.Context, t *models.Tournament) error {
	fields := map[string]string{}
	if strings.TrimSpace(t.Name) == "" {
		fields["tournamentName"] = "must not be empty"
	}
	if strings.TrimSpace(t.Day) == "" {
		fields["tournamentDay"] = "must not be empty"
	}
	if t.StartTime.IsZero() {
		fields["startTime"] = "must be set"
	}
	if !t.RegistrationTime.IsZero() && t.RegistrationTime.After(t.StartTime) {
		fields["registrationTime"] = "must not be after startTime"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}

	if err := s.repo.Create(ctx, t); err != nil {
		if errors.Is(err, repositories.ErrTournamentConflict) {
			return ErrTournamentConflict
		}
		return fmt.Errorf("failed to create tournament: %w", err)
	}
	return nil
}

func (s *tournamentService) ResolveOpen(ctx context.Context, refs []models.TournamentRef, now time.Time) ([]models.TournamentRef, error) {
	if len(refs) == 0 {
		open, err := s.ListOpen(ctx, now)
		if err != nil {
			return nil, err
		}
		if len(open) == 0 {
			return nil, ErrNoTournaments
		}
		resolved := make([]models.TournamentRef, 0, len(open))
		for _, t := range open {
			resolved = append(resolved, t.Ref())
		}
		return resolved, nil
	}

	resolved := make([]models.TournamentRef, 0, len(refs))
	for _, ref := range refs {
		t, err := s.Get(ctx, ref.Name, ref.Day)
		if err != nil {
			return nil, err
		}
		if !t.IsOpen(now) {
			return nil, fmt.Errorf("%s day %s: %w", t.Name, t.Day, ErrRegistrationClosed)
		}
		resolved = append(resolved, t.Ref())
	}
	return resolved, nil
}
