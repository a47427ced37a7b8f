package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"party-deduction/internal/game"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// wsClient serialises writes to one connection.
type wsClient struct {
	conn     *websocket.Conn
	playerID string
	mu       sync.Mutex
}

func (c *wsClient) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

type wsHub struct {
	mu     sync.Mutex
	groups map[string]map[*wsClient]struct{}
	logger *zap.Logger
}

type wsMessage struct {
	Type  string      `json:"type"`
	Event *game.Event `json:"event,omitempty"`
	View  *game.View  `json:"view,omitempty"`
}

func newWSHub(logger *zap.Logger) *wsHub {
	return &wsHub{
		groups: make(map[string]map[*wsClient]struct{}),
		logger: logger,
	}
}

func (h *wsHub) Add(roomID string, client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.groups[roomID]
	if group == nil {
		group = make(map[*wsClient]struct{})
		h.groups[roomID] = group
	}
	group[client] = struct{}{}
}

func (h *wsHub) Remove(roomID string, client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.groups[roomID]
	if group == nil {
		return
	}
	delete(group, client)
	_ = client.conn.Close()
	if len(group) == 0 {
		delete(h.groups, roomID)
	}
}

func (h *wsHub) Send(client *wsClient, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	_ = client.write(data)
}

// Publish delivers room-wide events to every connection in the room and
// private events only to connections of their recipients.
func (h *wsHub) Publish(_ context.Context, roomID string, events []game.Event) {
	if len(events) == 0 {
		return
	}
	h.mu.Lock()
	group := h.groups[roomID]
	clients := make([]*wsClient, 0, len(group))
	for client := range group {
		clients = append(clients, client)
	}
	h.mu.Unlock()

	for i := range events {
		event := events[i]
		data, err := json.Marshal(wsMessage{Type: "event", Event: &event})
		if err != nil {
			continue
		}
		for _, client := range clients {
			if !eventVisibleTo(event, client.playerID) {
				continue
			}
			if err := client.write(data); err != nil {
				h.Remove(roomID, client)
			}
		}
	}
}

func eventVisibleTo(event game.Event, playerID string) bool {
	if len(event.Recipients) == 0 {
		return true
	}
	if playerID == "" {
		return false
	}
	for _, id := range event.Recipients {
		if id == playerID {
			return true
		}
	}
	return false
}

func (h *wsHub) connections(roomID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.groups[roomID])
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type wsQuery struct {
	PlayerID string `form:"player_id"`
}

func (s *Server) handleWebsocket(c *gin.Context) {
	var uri roomURI
	if !bindURI(c, &uri) {
		return
	}
	var query wsQuery
	if !bindQuery(c, &query) {
		return
	}
	ctx := c.Request.Context()
	view, err := s.service.State(ctx, uri.RoomID, query.PlayerID)
	if err != nil {
		writeGameError(c, err)
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	client := &wsClient{conn: conn, playerID: query.PlayerID}
	s.logger.Info("ws connected", zap.String("room_id", uri.RoomID), zap.String("player_id", query.PlayerID), zap.String("remote", c.Request.RemoteAddr))
	s.ws.Add(uri.RoomID, client)
	s.ws.Send(client, wsMessage{Type: "state", View: &view})
	go s.readWS(uri.RoomID, client)
}

// readWS treats every inbound frame as a presence heartbeat.
func (s *Server) readWS(roomID string, client *wsClient) {
	defer s.ws.Remove(roomID, client)
	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			s.logger.Info("ws disconnected", zap.String("room_id", roomID), zap.String("player_id", client.playerID), zap.Error(err))
			return
		}
		if client.playerID != "" {
			if err := s.service.Heartbeat(context.Background(), roomID, client.playerID); err != nil {
				s.logger.Warn("heartbeat failed", zap.String("room_id", roomID), zap.Error(err))
			}
		}
	}
}
