package broadcast

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/Dosada05/clash-teams/models"
)

const MessageTeamsUpdated = "TEAMS_UPDATED"

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
	Room    string      `json:"room,omitempty"`
}

// Hub fans messages out to websocket clients grouped into rooms, one room
// per Discord server.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client
	rooms      map[string]map[*Client]bool
	mu         sync.RWMutex
	done       chan struct{}
	logger     *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

func RoomForServer(server string) string {
	return "server_" + server
}

// Run processes registrations until ctx is cancelled, then closes every
// client's send channel.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for room, clients := range h.rooms {
				for client := range clients {
					close(client.Send)
				}
				delete(h.rooms, room)
			}
			h.mu.Unlock()
			h.logger.Info("Broadcast hub stopped")
			return

		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.rooms[client.Room]; !ok {
				h.rooms[client.Room] = make(map[*Client]bool)
			}
			h.rooms[client.Room][client] = true
			size := len(h.rooms[client.Room])
			h.mu.Unlock()
			h.logger.Debug("Client registered",
				slog.String("client_id", client.ID),
				slog.String("room", client.Room),
				slog.Int("clients", size))

		case client := <-h.Unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.Room]; ok {
				if _, present := clients[client]; present {
					// Send is only ever closed here, under the write lock.
					close(client.Send)
					delete(clients, client)
					if len(clients) == 0 {
						delete(h.rooms, client.Room)
					}
				}
			}
			h.mu.Unlock()
			h.logger.Debug("Client unregistered",
				slog.String("client_id", client.ID),
				slog.String("room", client.Room))
		}
	}
}

// Join registers client. It reports false if the hub has stopped.
func (h *Hub) Join(client *Client) bool {
	select {
	case h.Register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.done:
	}
}

// BroadcastToRoom never blocks; clients with a full buffer miss the message.
func (h *Hub) BroadcastToRoom(room string, message Message) {
	message.Room = room
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("Failed to marshal broadcast message",
			slog.String("room", room),
			slog.String("type", message.Type),
			slog.Any("error", err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.rooms[room] {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("Client send buffer full, dropping message",
				slog.String("client_id", client.ID),
				slog.String("room", room))
		}
	}
}

// PublishTeams sends the updated teams to everyone watching server.
func (h *Hub) PublishTeams(server string, teams []*models.Team) {
	if len(teams) == 0 {
		return
	}
	h.BroadcastToRoom(RoomForServer(server), Message{Type: MessageTeamsUpdated, Payload: teams})
}

func (h *Hub) ClientCount(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
