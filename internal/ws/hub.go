package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"messenger-service/internal/models"
	"messenger-service/internal/observability"
)

// Hub maintains active websocket rooms, one per conversation. It is the push
// channel that replaces a hosted platform's reactive subscriptions: every
// mutation that changes a conversation broadcasts an event so subscribed
// clients can re-fetch.
type Hub struct {
	rooms    map[int64]map[*websocket.Conn]bool
	connInfo map[int64]map[*websocket.Conn]ConnInfo
	// gorilla/websocket allows at most one concurrent writer per connection,
	// so each connection carries its own write lock.
	writeMu map[*websocket.Conn]*sync.Mutex
	mu      sync.RWMutex
	log     zerolog.Logger
}

// NewHub creates an empty hub.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		rooms:    make(map[int64]map[*websocket.Conn]bool),
		connInfo: make(map[int64]map[*websocket.Conn]ConnInfo),
		writeMu:  make(map[*websocket.Conn]*sync.Mutex),
		log:      log,
	}
}

// AddClient registers a websocket connection to a conversation room.
func (h *Hub) AddClient(conversationID int64, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[conversationID]; !ok {
		h.rooms[conversationID] = make(map[*websocket.Conn]bool)
	}
	h.rooms[conversationID][conn] = true
	if _, ok := h.connInfo[conversationID]; !ok {
		h.connInfo[conversationID] = make(map[*websocket.Conn]ConnInfo)
	}
	h.connInfo[conversationID][conn] = info
	if _, ok := h.writeMu[conn]; !ok {
		h.writeMu[conn] = &sync.Mutex{}
	}
}

// RemoveClient removes a websocket connection from a conversation room.
func (h *Hub) RemoveClient(conversationID int64, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.rooms[conversationID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.rooms, conversationID)
		}
	}
	if infos, ok := h.connInfo[conversationID]; ok {
		delete(infos, conn)
		if len(infos) == 0 {
			delete(h.connInfo, conversationID)
		}
	}
	delete(h.writeMu, conn)
}

// BroadcastMessage pushes a new message to all clients in the conversation.
func (h *Hub) BroadcastMessage(conversationID int64, msg models.Message) {
	h.broadcast(conversationID, models.ConversationEvent{Type: "message", Message: &msg})
}

// BroadcastDeletion notifies clients that a message was soft-deleted.
func (h *Hub) BroadcastDeletion(conversationID int64, messageID int64) {
	h.broadcast(conversationID, models.ConversationEvent{Type: "message_deleted", MessageID: messageID})
}

// BroadcastReaction notifies clients that a reaction was toggled.
func (h *Hub) BroadcastReaction(conversationID int64, messageID int64, clerkID string, emoji models.Emoji) {
	h.broadcast(conversationID, models.ConversationEvent{
		Type:      "reaction",
		MessageID: messageID,
		ClerkID:   clerkID,
		Emoji:     string(emoji),
	})
}

// BroadcastTyping notifies clients that a member started or stopped typing.
func (h *Hub) BroadcastTyping(conversationID int64, clerkID string, typing bool) {
	h.broadcast(conversationID, models.ConversationEvent{Type: "typing", ClerkID: clerkID, Typing: typing})
}

type broadcastTarget struct {
	conn *websocket.Conn
	mu   *sync.Mutex
}

func (h *Hub) broadcast(conversationID int64, event models.ConversationEvent) {
	h.mu.RLock()
	targets := make([]broadcastTarget, 0, len(h.rooms[conversationID]))
	for conn := range h.rooms[conversationID] {
		targets = append(targets, broadcastTarget{conn: conn, mu: h.writeMu[conn]})
	}
	h.mu.RUnlock()

	payload, _ := json.Marshal(event)
	for _, t := range targets {
		t.mu.Lock()
		err := t.conn.WriteMessage(websocket.TextMessage, payload)
		t.mu.Unlock()
		if err != nil {
			h.log.Warn().Err(err).Int64("conversation_id", conversationID).Msg("websocket write error")
			t.conn.Close()
			h.publishWSError(conversationID, t.conn, err)
			h.RemoveClient(conversationID, t.conn)
		}
	}
}

func (h *Hub) publishWSError(conversationID int64, conn *websocket.Conn, err error) {
	info, ok := h.getConnInfo(conversationID, conn)
	if !ok {
		return
	}

	payload := map[string]interface{}{
		"ws": map[string]interface{}{
			"conversation_id": conversationID,
			"event":           "ws_error",
			"conn_id":         info.ConnID,
			"duration_ms":     time.Since(info.ConnectedAt).Milliseconds(),
			"reason":          err.Error(),
		},
		"identity": map[string]interface{}{
			"clerk_id":  info.ClerkID,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}

	headers := observability.BuildHeaders(info.RequestID, info.TraceID)
	_ = observability.PublishEvent(context.Background(), "ws_events.conversations",
		observability.NewEventEnvelope("ws_events", "ws_error", payload), headers)
	observability.IncWSEvent("ws_error")
}

func (h *Hub) getConnInfo(conversationID int64, conn *websocket.Conn) (ConnInfo, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if infos, ok := h.connInfo[conversationID]; ok {
		info, exists := infos[conn]
		return info, exists
	}
	return ConnInfo{}, false
}
