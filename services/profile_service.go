package services

import (
	"context"
	"fmt"

	"github.com/Dosada05/clash-teams/models"
	"github.com/Dosada05/clash-teams/repositories"
)

type ProfileService interface {
	RetrievePlayerNames(ctx context.Context, ids []string) (map[string]string, error)
	RetrieveAllUserDetails(ctx context.Context, ids []string) (map[string]models.PlayerDetails, error)
	Upsert(ctx context.Context, sub *models.Subscription) error
}

type profileService struct {
	repo repositories.SubscriptionRepository
}

func NewProfileService(repo repositories.SubscriptionRepository) ProfileService {
	return &profileService{repo: repo}
}

func (s *profileService) RetrievePlayerNames(ctx context.Context, ids []string) (map[string]string, error) {
	subs, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load player names: %w", err)
	}
	names := make(map[string]string, len(subs))
	for _, sub := range subs {
		names[sub.PlayerID] = sub.PlayerName
	}
	return names, nil
}

func (s *profileService) RetrieveAllUserDetails(ctx context.Context, ids []string) (map[string]models.PlayerDetails, error) {
	subs, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load player details: %w", err)
	}
	details := make(map[string]models.PlayerDetails, len(subs))
	for _, sub := range subs {
		champions := sub.PreferredChampions
		if champions == nil {
			champions = []string{}
		}
		details[sub.PlayerID] = models.PlayerDetails{PlayerName: sub.PlayerName, PreferredChampions: champions}
	}
	return details, nil
}

func (s *profileService) Upsert(ctx context.Context, sub *models.Subscription) error {
	if sub.PlayerID == "" {
		return &ValidationError{Fields: map[string]string{"playerId": "must not be empty"}}
	}
	return s.repo.Upsert(ctx, sub)
}
