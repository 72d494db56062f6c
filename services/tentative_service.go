package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/Dosada05/clash-teams/models"
	"github.com/Dosada05/clash-teams/repositories"
)

type TentativeService interface {
	IsTentative(ctx context.Context, playerID, server string, tournament models.TournamentRef) (bool, *models.TentativeList, error)
	// AddToTentative appends to existing, or creates the list when existing
	// is nil. A concurrent add of the same player fails with
	// repositories.ErrConditionFailed.
	AddToTentative(ctx context.Context, playerID, server string, tournament models.TournamentRef, existing *models.TentativeList) (*models.TentativeList, error)
	// RemoveFromTentative returns list unchanged when it is nil or has no
	// player slice.
	RemoveFromTentative(ctx context.Context, playerID string, list *models.TentativeList) (*models.TentativeList, error)
	HandleTentative(ctx context.Context, playerID, server string, tournament models.TournamentRef) (*models.TentativeList, error)
	ListForServer(ctx context.Context, server string) ([]*models.TentativeList, error)
}

type tentativeService struct {
	repo   repositories.TentativeRepository
	logger *slog.Logger
}

func NewTentativeService(repo repositories.TentativeRepository, logger *slog.Logger) TentativeService {
	return &tentativeService{repo: repo, logger: logger}
}

func (s *tentativeService) IsTentative(ctx context.Context, playerID, server string, tournament models.TournamentRef) (bool, *models.TentativeList, error) {
	key := models.TentativeKey{ServerName: server, TournamentName: tournament.Name, TournamentDay: tournament.Day}
	list, err := s.repo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, repositories.ErrTentativeNotFound) {
			return false, nil, nil
		}
		return false, nil, fmt.Errorf("failed to load tentative list %s: %w", key, err)
	}
	return list.Contains(playerID), list, nil
}

func (s *tentativeService) AddToTentative(ctx context.Context, playerID, server string, tournament models.TournamentRef, existing *models.TentativeList) (*models.TentativeList, error) {
	if existing.Contains(playerID) {
		return existing, nil
	}
	key := models.TentativeKey{ServerName: server, TournamentName: tournament.Name, TournamentDay: tournament.Day}
	if existing != nil {
		key = existing.Key()
	}

	saved, err := s.repo.AddPlayer(ctx, key, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to add %s to tentative list %s: %w", playerID, key, err)
	}
	s.logger.InfoContext(ctx, "Player added to tentative",
		slog.String("player_id", playerID),
		slog.String("server", saved.ServerName),
		slog.String("tournament", saved.TournamentDetails.Key()))
	return saved, nil
}

func (s *tentativeService) RemoveFromTentative(ctx context.Context, playerID string, list *models.TentativeList) (*models.TentativeList, error) {
	if list == nil || list.TentativePlayers == nil || !slices.Contains(list.TentativePlayers, playerID) {
		return list, nil
	}

	saved, err := s.repo.RemovePlayer(ctx, list.Key(), playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to remove %s from tentative list %s: %w", playerID, list.Key(), err)
	}
	s.logger.InfoContext(ctx, "Player removed from tentative",
		slog.String("player_id", playerID),
		slog.String("server", saved.ServerName),
		slog.String("tournament", saved.TournamentDetails.Key()))
	return saved, nil
}

func (s *tentativeService) HandleTentative(ctx context.Context, playerID, server string, tournament models.TournamentRef) (*models.TentativeList, error) {
	onTentative, list, err := s.IsTentative(ctx, playerID, server, tournament)
	if err != nil {
		return nil, err
	}
	if onTentative {
		return s.RemoveFromTentative(ctx, playerID, list)
	}
	return s.AddToTentative(ctx, playerID, server, tournament, list)
}

func (s *tentativeService) ListForServer(ctx context.Context, server string) ([]*models.TentativeList, error) {
	lists, err := s.repo.ListByServer(ctx, server)
	if err != nil {
		return nil, fmt.Errorf("failed to list tentative lists for %s: %w", server, err)
	}
	return lists, nil
}
