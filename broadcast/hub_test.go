package broadcast

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/clash-teams/models"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(hub, conn, RoomForServer(r.URL.Query().Get("server")))
		if !hub.Join(client) {
			conn.Close()
			return
		}
		go client.WritePump()
		go client.ReadPump()
	}))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, server string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?server=" + server
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHub_PublishTeamsReachesOnlyServerRoom(t *testing.T) {
	hub, srv := startHub(t)
	watcher := dial(t, srv, "Srv")
	other := dial(t, srv, "Other")

	assert.Eventually(t, func() bool {
		return hub.ClientCount(RoomForServer("Srv")) == 1 && hub.ClientCount(RoomForServer("Other")) == 1
	}, time.Second, 10*time.Millisecond)

	team := &models.Team{
		Name: "Team Abra", ServerName: "Srv", TournamentName: "msi", TournamentDay: "1",
		Roster: models.LegacyRoster{Members: []string{"P1"}},
	}
	hub.PublishTeams("Srv", []*models.Team{team})

	require.NoError(t, watcher.SetReadDeadline(time.Now().Add(time.Second)))
	_, data, err := watcher.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Type    string        `json:"type"`
		Room    string        `json:"room"`
		Payload []models.Team `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, MessageTeamsUpdated, msg.Type)
	assert.Equal(t, "server_Srv", msg.Room)
	require.Len(t, msg.Payload, 1)
	assert.Equal(t, []string{"P1"}, msg.Payload[0].Players())

	require.NoError(t, other.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err = other.ReadMessage()
	assert.Error(t, err, "clients of other servers must not receive the update")
}

func TestHub_UnregisterOnDisconnect(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, srv, "Srv")

	assert.Eventually(t, func() bool { return hub.ClientCount(RoomForServer("Srv")) == 1 },
		time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())

	assert.Eventually(t, func() bool { return hub.ClientCount(RoomForServer("Srv")) == 0 },
		time.Second, 10*time.Millisecond)
}

func TestHub_PublishWithoutClientsOrTeams(t *testing.T) {
	hub, _ := startHub(t)
	assert.NotPanics(t, func() {
		hub.PublishTeams("Nobody", nil)
		hub.PublishTeams("Nobody", []*models.Team{{Name: "Team Abra", Roster: models.LegacyRoster{}}})
	})
}
