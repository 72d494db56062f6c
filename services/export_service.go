package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/Dosada05/clash-teams/models"
	"github.com/Dosada05/clash-teams/storage"
	"github.com/google/uuid"
)

type RosterExport struct {
	ExportID   string               `json:"exportId"`
	ServerName string               `json:"serverName"`
	Tournament models.TournamentRef `json:"tournament"`
	ExportedAt time.Time            `json:"exportedAt"`
	Teams      []TeamView           `json:"teams"`
}

type ExportResult struct {
	ExportID string `json:"exportId"`
	Key      string `json:"key"`
	URL      string `json:"url"`
	Teams    int    `json:"teams"`
}

type ExportService interface {
	ExportRoster(ctx context.Context, server string, tournament models.TournamentRef) (*ExportResult, error)
}

type exportService struct {
	queries  TeamQueryService
	uploader storage.FileUploader
	logger   *slog.Logger
	now      func() time.Time
}

// NewExportService accepts a nil uploader; exports then fail with
// ErrStorageDisabled.
func NewExportService(queries TeamQueryService, uploader storage.FileUploader, logger *slog.Logger) ExportService {
	return &exportService{queries: queries, uploader: uploader, logger: logger, now: time.Now}
}

func rosterKey(server string, tournament models.TournamentRef) string {
	return fmt.Sprintf("rosters/%s/%s/%s.json",
		url.PathEscape(server), url.PathEscape(tournament.Name), url.PathEscape(tournament.Day))
}

func (s *exportService) ExportRoster(ctx context.Context, server string, tournament models.TournamentRef) (*ExportResult, error) {
	if s.uploader == nil {
		return nil, ErrStorageDisabled
	}
	views, err := s.queries.GetTournamentTeamViews(ctx, server, tournament)
	if err != nil {
		return nil, err
	}

	export := RosterExport{
		ExportID:   uuid.NewString(),
		ServerName: server,
		Tournament: tournament,
		ExportedAt: s.now().UTC(),
		Teams:      views,
	}
	body, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode roster export: %w", err)
	}

	key := rosterKey(server, tournament)
	uploaded, err := s.uploader.Upload(ctx, key, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to upload roster export: %w", err)
	}

	s.logger.InfoContext(ctx, "Roster exported",
		slog.String("server", server),
		slog.String("tournament", tournament.Name),
		slog.String("day", tournament.Day),
		slog.String("key", uploaded.Key),
		slog.Int("teams", len(views)))

	return &ExportResult{
		ExportID: export.ExportID,
		Key:      uploaded.Key,
		URL:      uploaded.Location,
		Teams:    len(views),
	}, nil
}
