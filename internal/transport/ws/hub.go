package ws

import (
	"encoding/json"
	"sync"

	"govready/internal/logger"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Message types pushed to assessment subscribers
const (
	MsgSectionStateChanged MessageType = "section_state_changed"
	MsgScoreUpdated        MessageType = "score_updated"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub fans collaboration events out to everyone watching an assessment
type Hub struct {
	// assessmentID -> subscribers
	conns map[string]map[*Connection]struct{}

	mu  sync.RWMutex
	log *logger.Logger

	// Channels for coordination
	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
}

// Connection is one subscriber of an assessment's event stream
type Connection struct {
	AssessmentID string
	UserID       string
	Send         chan []byte
	Hub          *Hub
}

// BroadcastMessage is a message to broadcast
type BroadcastMessage struct {
	AssessmentID string
	Message      *Message
}

// NewHub creates a new WebSocket hub
func NewHub(log *logger.Logger) *Hub {
	h := &Hub{
		conns:      make(map[string]map[*Connection]struct{}),
		log:        log.With("component", "ws"),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *BroadcastMessage, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.conns[conn.AssessmentID] == nil {
				h.conns[conn.AssessmentID] = make(map[*Connection]struct{})
			}
			h.conns[conn.AssessmentID][conn] = struct{}{}
			h.mu.Unlock()
			h.log.Debug("subscriber connected", "assessmentId", conn.AssessmentID, "userId", conn.UserID)

		case conn := <-h.unregister:
			h.mu.Lock()
			if subs, ok := h.conns[conn.AssessmentID]; ok {
				if _, ok := subs[conn]; ok {
					delete(subs, conn)
					close(conn.Send)
					if len(subs) == 0 {
						delete(h.conns, conn.AssessmentID)
					}
					h.log.Debug("subscriber disconnected", "assessmentId", conn.AssessmentID, "userId", conn.UserID)
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			data, err := json.Marshal(msg.Message)
			if err != nil {
				h.log.Error("failed to encode ws message", "type", msg.Message.Type, "error", err)
				continue
			}
			h.mu.RLock()
			for conn := range h.conns[msg.AssessmentID] {
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// Subscribers reports how many connections watch an assessment
func (h *Hub) Subscribers(assessmentID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[assessmentID])
}

// BroadcastToAssessment sends a message to every subscriber of an assessment (implements service.Broadcaster)
func (h *Hub) BroadcastToAssessment(assessmentID string, msgType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.Error("failed to encode ws payload", "type", msgType, "error", err)
		return
	}
	h.broadcast <- &BroadcastMessage{
		AssessmentID: assessmentID,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
}
