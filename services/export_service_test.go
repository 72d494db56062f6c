package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/Dosada05/clash-teams/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUploader struct {
	mock.Mock
	body []byte
}

func (m *mockUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	m.body = data
	args := m.Called(ctx, key, contentType)
	if res := args.Get(0); res != nil {
		return res.(*storage.UploadResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUploader) GetPublicURL(key string) string {
	return m.Called(key).String(0)
}

func TestExportService_ExportRoster(t *testing.T) {
	queries, _ := setupQueryService(&memorySubscriptionRepo{},
		legacyTeam("Team Abra", t1, "P1"),
		legacyTeam("Team Later", t2, "P2"),
	)
	uploader := new(mockUploader)
	key := "rosters/My%20Server/msi/1.json"
	uploader.On("Upload", mock.Anything, key, "application/json").
		Return(&storage.UploadResult{Key: key, Location: "https://cdn.example.com/" + key}, nil)

	svc := NewExportService(queries, uploader, discardLog).(*exportService)
	svc.now = func() time.Time { return t1Start }

	res, err := svc.ExportRoster(ctx, "My Server", t1)
	require.NoError(t, err)
	uploader.AssertExpectations(t)

	assert.Equal(t, key, res.Key)
	assert.Equal(t, "https://cdn.example.com/"+key, res.URL)
	assert.NotEmpty(t, res.ExportID)

	var doc RosterExport
	require.NoError(t, json.Unmarshal(uploader.body, &doc))
	assert.Equal(t, res.ExportID, doc.ExportID)
	assert.Equal(t, t1, doc.Tournament)
	assert.True(t, doc.ExportedAt.Equal(t1Start))
}

func TestExportService_CountsOnlyTournamentTeams(t *testing.T) {
	queries, _ := setupQueryService(&memorySubscriptionRepo{},
		legacyTeam("Team Abra", t1, "P1"),
		legacyTeam("Team Bravo", t1, "P3"),
		legacyTeam("Team Later", t2, "P2"),
	)
	uploader := new(mockUploader)
	uploader.On("Upload", mock.Anything, "rosters/Srv/msi/1.json", "application/json").
		Return(&storage.UploadResult{Key: "rosters/Srv/msi/1.json"}, nil)

	res, err := NewExportService(queries, uploader, discardLog).ExportRoster(ctx, "Srv", t1)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Teams)

	var doc RosterExport
	require.NoError(t, json.Unmarshal(uploader.body, &doc))
	assert.Len(t, doc.Teams, 2)
}

func TestExportService_UploadError(t *testing.T) {
	queries, _ := setupQueryService(&memorySubscriptionRepo{})
	boom := errors.New("bucket unavailable")
	uploader := new(mockUploader)
	uploader.On("Upload", mock.Anything, mock.Anything, mock.Anything).Return(nil, boom)

	_, err := NewExportService(queries, uploader, discardLog).ExportRoster(ctx, "Srv", t1)
	assert.ErrorIs(t, err, boom)
}

func TestExportService_StorageDisabled(t *testing.T) {
	queries, _ := setupQueryService(&memorySubscriptionRepo{})

	_, err := NewExportService(queries, nil, discardLog).ExportRoster(ctx, "Srv", t1)
	assert.ErrorIs(t, err, ErrStorageDisabled)
}
