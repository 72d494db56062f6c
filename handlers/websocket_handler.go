package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/clash-teams/broadcast"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	hub      *broadcast.Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewWebSocketHandler accepts connections from allowedOrigins. A "*" entry
// or an empty list allows any origin.
func NewWebSocketHandler(hub *broadcast.Hub, allowedOrigins []string, logger *slog.Logger) *WebSocketHandler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}
	_, allowAll := allowed["*"]

	return &WebSocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if allowAll || len(allowed) == 0 || origin == "" {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
		logger: logger,
	}
}

// ServeWs godoc
// @Summary Subscribe to team updates of a server
// @Tags websocket
// @Description Upgrades to a websocket that receives a TEAMS_UPDATED message with the affected teams after every registration change on the server.
// @Param server path string true "Discord server name"
// @Success 101
// @Router /ws/servers/{server} [get]
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	server, err := serverFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.logger.WarnContext(r.Context(), "Websocket upgrade failed",
			slog.String("server", server),
			slog.Any("error", err))
		return
	}

	client := broadcast.NewClient(h.hub, conn, broadcast.RoomForServer(server))
	if !h.hub.Join(client) {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()

	h.logger.InfoContext(r.Context(), "Websocket client connected",
		slog.String("client_id", client.ID),
		slog.String("room", client.Room))
}
