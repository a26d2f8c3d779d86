package web

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/dbehnke/cdma-visualizer/pkg/logger"
)

// WebSocketHub manages WebSocket connections
type WebSocketHub struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
	mu         sync.RWMutex
	logger     *logger.Logger
}

// WebSocketMessage represents a WebSocket message
type WebSocketMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func newWebSocketHub(bufferSize int, log *logger.Logger) *WebSocketHub {
	return &WebSocketHub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, bufferSize),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		logger:     log,
	}
}

// run owns client writes until ctx is cancelled, then closes every client
func (hub *WebSocketHub) run(ctx context.Context) {
	defer close(hub.done)
	for {
		select {
		case <-ctx.Done():
			hub.mu.Lock()
			for client := range hub.clients {
				hub.drop(client)
			}
			hub.mu.Unlock()
			return

		case client := <-hub.register:
			hub.mu.Lock()
			hub.clients[client] = true
			hub.mu.Unlock()

		case client := <-hub.unregister:
			hub.mu.Lock()
			if _, ok := hub.clients[client]; ok {
				hub.drop(client)
			}
			hub.mu.Unlock()

		case message := <-hub.broadcast:
			hub.mu.Lock()
			for client := range hub.clients {
				if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
					hub.drop(client)
				}
			}
			hub.mu.Unlock()
		}
	}
}

// drop removes and closes a client; hub.mu must be held
func (hub *WebSocketHub) drop(client *websocket.Conn) {
	delete(hub.clients, client)
	if err := client.Close(); err != nil {
		hub.logger.Debug("failed to close websocket client", logger.Error(err))
	}
}

// add hands a client to the hub. It reports false once the hub has stopped.
func (hub *WebSocketHub) add(client *websocket.Conn) bool {
	select {
	case hub.register <- client:
		return true
	case <-hub.done:
		return false
	}
}

// remove asks the hub to close a client; a stopped hub has already closed it
func (hub *WebSocketHub) remove(client *websocket.Conn) {
	select {
	case hub.unregister <- client:
	case <-hub.done:
	}
}

// Count returns the number of connected clients
func (hub *WebSocketHub) Count() int {
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	return len(hub.clients)
}

// broadcastWebSocketMessage broadcasts a message to all WebSocket clients
func (s *Server) broadcastWebSocketMessage(messageType string, data interface{}) {
	if !s.config.WebSocket.Enabled {
		return
	}

	jsonData, err := json.Marshal(WebSocketMessage{Type: messageType, Data: data})
	if err != nil {
		s.logger.Error("Failed to marshal WebSocket message", logger.Error(err))
		return
	}

	select {
	case s.websocketHub.broadcast <- jsonData:
	default:
		// Don't block if broadcast channel is full
		s.logger.Warn("WebSocket broadcast channel full, dropping message",
			logger.String("message_type", messageType))
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !s.config.WebSocket.Enabled {
		s.writeError(w, http.StatusNotFound, "Route not found")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("WebSocket upgrade failed", logger.Error(err))
		return
	}

	s.logger.Debug("New WebSocket connection", logger.String("remote", r.RemoteAddr))

	// Initial data is written before the hub may write to this connection
	s.sendWebSocketMessage(conn, "stats_update", s.statsResponse())

	if !s.websocketHub.add(conn) {
		_ = conn.Close()
		return
	}
	defer s.websocketHub.remove(conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				s.logger.Warn("WebSocket error", logger.Error(err))
			}
			break
		}
	}
}

func (s *Server) sendWebSocketMessage(conn *websocket.Conn, messageType string, data interface{}) {
	if err := conn.WriteJSON(WebSocketMessage{Type: messageType, Data: data}); err != nil {
		s.logger.Error("Failed to send WebSocket message", logger.Error(err))
	}
}
